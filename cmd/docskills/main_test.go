package main

import (
	"os"
	"testing"

	"github.com/masahif/docskills/internal/cmd"
)

func TestVersionVariables(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty string")
	}
	if BuildTime == "" {
		t.Error("BuildTime should not be empty string")
	}
}

// TestMainLogic runs the sequence main() runs, minus os.Exit.
func TestMainLogic(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	t.Chdir(t.TempDir())

	cmd.SetVersionInfo(Version, BuildTime)

	for _, args := range [][]string{
		{"docskills", "--help"},
		{"docskills", "--version"},
		{"docskills", "crawl", "--help"},
	} {
		os.Args = args
		if err := cmd.Execute(); err != nil {
			t.Errorf("Execute(%v) error = %v", args[1:], err)
		}
	}
}
