package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
)

// Scopes for target presets.
const (
	ScopeProject = "project"
	ScopeUser    = "user"
)

// TargetCustom uses the output field as-is.
const TargetCustom = "custom"

type target struct {
	name       string
	projectDir string
	userDir    string // relative to the home directory
	userConfig bool   // userDir is relative to XDG_CONFIG_HOME instead
}

var targets = []target{
	{name: "github-copilot", projectDir: ".github/skills", userDir: ".copilot/skills"},
	{name: "claude-code", projectDir: ".claude/skills", userDir: ".claude/skills"},
	{name: "cursor", projectDir: ".cursor/skills", userDir: ".cursor/skills"},
	{name: "antigravity", projectDir: ".gemini/skills", userDir: ".gemini/skills"},
	{name: "openai-codex", projectDir: ".codex/skills", userDir: ".codex/skills"},
	{name: "opencode", projectDir: ".opencode/skills", userDir: "opencode/skills", userConfig: true},
}

var targetAliases = map[string]string{
	"copilot":   "github-copilot",
	"claude":    "claude-code",
	"gemini":    "antigravity",
	"codex":     "openai-codex",
	"openai":    "openai-codex",
	"open-code": "opencode",
}

func lookupTarget(name string) (target, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == TargetCustom {
		return target{name: TargetCustom}, true
	}
	if canonical, ok := targetAliases[name]; ok {
		name = canonical
	}
	for _, t := range targets {
		if t.name == name {
			return t, true
		}
	}
	return target{}, false
}

// TargetNames lists the accepted target names, aliases included.
func TargetNames() []string {
	names := []string{TargetCustom}
	for _, t := range targets {
		names = append(names, t.name)
	}
	for alias := range targetAliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// IsCustomTarget reports whether the output field decides the output directory.
func (c *Config) IsCustomTarget() bool {
	t, ok := lookupTarget(c.Target)
	return ok && t.name == TargetCustom
}

// OutputDir resolves the directory skills are written to.
func (c *Config) OutputDir() (string, error) {
	t, ok := lookupTarget(c.Target)
	if !ok {
		return "", &ConfigError{Field: "target", Value: c.Target, Err: ErrUnknownTarget}
	}
	if t.name == TargetCustom {
		return c.Output, nil
	}
	if c.Scope != ScopeUser {
		return t.projectDir, nil
	}

	if t.userConfig {
		return filepath.Join(xdg.ConfigHome, t.userDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory: fall back to the project location
		return t.projectDir, nil
	}
	return filepath.Join(home, t.userDir), nil
}
