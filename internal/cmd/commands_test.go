package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/masahif/docskills/internal/config"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func docsServer(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/docs/": `<html><head><title>Docs</title></head><body><main>
<h1>Docs</h1><p>Start here.</p><a href="a">A</a> <a href="/blog/">Blog</a>
</main></body></html>`,
		"/docs/a": `<html><head><title>Page A</title>
<meta name="description" content="All about A."></head><body><main>
<h1>Page A</h1><p>Details about A.</p><a href="/docs/">Back</a>
</main></body></html>`,
		"/blog/": `<html><head><title>Blog</title></head><body><p>News</p></body></html>`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, err := runCommand(t, "", "init")
	if err != nil {
		t.Fatalf("init error = %v", err)
	}
	if !strings.Contains(out, "Created "+config.DefaultFileName) {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, config.DefaultFileName)); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	if _, err := runCommand(t, "", "init"); err == nil || !strings.Contains(err.Error(), "--force") {
		t.Errorf("second init error = %v, want a hint about --force", err)
	}

	if _, err := runCommand(t, "", "init", "-f"); err != nil {
		t.Errorf("init -f error = %v", err)
	}

	// The written template loads and validates.
	if _, err := runCommand(t, "", "validate"); err != nil {
		t.Errorf("validate after init error = %v", err)
	}
}

func TestCrawlCommand(t *testing.T) {
	srv := docsServer(t)
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SKILLS_STATE_FILE", filepath.Join(dir, "state.db"))
	output := filepath.Join(dir, "skills")

	want := "Crawl complete: 3 discovered, 2 visited, 2 written, 1 skipped (1 by rule, 0 by policy), 0 failed"

	out, err := runCommand(t, "", "crawl", srv.URL+"/docs/", "-o", output, "-d", "0", "-q")
	if err != nil {
		t.Fatalf("crawl error = %v", err)
	}
	if !strings.Contains(out, want) {
		t.Errorf("output = %q, want %q", out, want)
	}

	for _, name := range []string{"docs", "docs-a"} {
		data, err := os.ReadFile(filepath.Join(output, name, "SKILL.md"))
		if err != nil {
			t.Errorf("skill %s not written: %v", name, err)
			continue
		}
		if !strings.HasPrefix(string(data), "---\nname: "+name+"\n") {
			t.Errorf("skill %s front matter:\n%s", name, data)
		}
	}
	if _, err := os.Stat(filepath.Join(output, "blog")); !os.IsNotExist(err) {
		t.Error("page outside the seed should not be written")
	}

	t.Run("resume", func(t *testing.T) {
		out, err := runCommand(t, "", "crawl", srv.URL+"/docs/", "-o", output, "-d", "0", "-q", "--resume")
		if err != nil {
			t.Fatalf("crawl --resume error = %v", err)
		}
		if !strings.Contains(out, want) {
			t.Errorf("output = %q, want %q", out, want)
		}
	})

	t.Run("dry run", func(t *testing.T) {
		dryOutput := filepath.Join(dir, "dry")
		out, err := runCommand(t, "", "crawl", srv.URL+"/docs/", "-o", dryOutput, "-d", "0", "-q", "--dry-run")
		if err != nil {
			t.Fatalf("crawl --dry-run error = %v", err)
		}
		if !strings.Contains(out, "Dry run: no files were written") {
			t.Errorf("output = %q", out)
		}
		if _, err := os.Stat(dryOutput); !os.IsNotExist(err) {
			t.Error("dry run should not create the output directory")
		}
	})
}

func TestCrawlCommandSeedWithFragment(t *testing.T) {
	srv := docsServer(t)
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SKILLS_STATE_FILE", filepath.Join(dir, "state.db"))
	output := filepath.Join(dir, "skills")

	out, err := runCommand(t, "", "crawl", srv.URL+"/docs/#intro", "-o", output, "-d", "0", "-q")
	if err != nil {
		t.Fatalf("crawl error = %v", err)
	}
	want := "Crawl complete: 3 discovered, 2 visited, 2 written, 1 skipped (1 by rule, 0 by policy), 0 failed"
	if !strings.Contains(out, want) {
		t.Errorf("output = %q, want %q", out, want)
	}
	if _, err := os.Stat(filepath.Join(output, "docs", "SKILL.md")); err != nil {
		t.Errorf("seed page not written: %v", err)
	}
}

func TestCrawlCommandRejectsBadSeed(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SKILLS_STATE_FILE", filepath.Join(dir, "state.db"))

	if _, err := runCommand(t, "", "crawl", "ftp://example.com/", "-o", filepath.Join(dir, "out"), "-q"); err == nil {
		t.Error("expected an error for a non-http seed")
	}
}

func TestSingleCommand(t *testing.T) {
	srv := docsServer(t)
	dir := t.TempDir()
	t.Chdir(dir)
	output := filepath.Join(dir, "skills")

	out, err := runCommand(t, "", "single", srv.URL+"/docs/a", "-o", output, "--stdout", "-q")
	if err != nil {
		t.Fatalf("single --stdout error = %v", err)
	}
	if !strings.HasPrefix(out, "---\nname: docs-a\n") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "Details about A.") {
		t.Errorf("output missing page content:\n%s", out)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("--stdout should not write files")
	}

	out, err = runCommand(t, "", "single", srv.URL+"/docs/a", "-o", output, "-q")
	if err != nil {
		t.Fatalf("single error = %v", err)
	}
	if !strings.Contains(out, "(docs-a)") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(output, "docs-a", "SKILL.md")); err != nil {
		t.Errorf("skill not written: %v", err)
	}
}

func TestCleanCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	output := filepath.Join(dir, "skills")
	state := filepath.Join(dir, "state.db")
	t.Setenv("SKILLS_STATE_FILE", state)

	skillDoc := "---\nname: x\n---\n\n# X\n"
	for _, name := range []string{"guide", "api"} {
		if err := os.MkdirAll(filepath.Join(output, name), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(output, name, "SKILL.md"), []byte(skillDoc), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files := map[string]string{
		"flat.md":   skillDoc,
		"notes.txt": "keep me",
		"readme.md": "# not a skill",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(output, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(state, []byte("checkpoint"), 0o644); err != nil {
		t.Fatal(err)
	}

	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(output, name))
		return err == nil
	}

	out, err := runCommand(t, "n\n", "clean", "-o", output)
	if err != nil {
		t.Fatalf("clean error = %v", err)
	}
	if !strings.Contains(out, "Aborted.") || !exists("guide") {
		t.Errorf("declined clean should keep everything, output = %q", out)
	}

	out, err = runCommand(t, "", "clean", "-o", output, "-f", "-p", "gu*")
	if err != nil {
		t.Fatalf("clean -p error = %v", err)
	}
	if !strings.Contains(out, "Removed 1 skills") {
		t.Errorf("output = %q", out)
	}
	if exists("guide") || !exists("api") {
		t.Error("pattern clean should remove only guide")
	}
	if _, err := os.Stat(state); err != nil {
		t.Error("pattern clean should keep the checkpoint")
	}

	out, err = runCommand(t, "y\n", "clean", "-o", output)
	if err != nil {
		t.Fatalf("clean error = %v", err)
	}
	if !strings.Contains(out, "Removed 2 skills") {
		t.Errorf("output = %q", out)
	}
	if exists("api") || exists("flat.md") {
		t.Error("clean should remove every generated skill")
	}
	if !exists("notes.txt") || !exists("readme.md") {
		t.Error("clean should keep files that are not skills")
	}
	if _, err := os.Stat(state); !os.IsNotExist(err) {
		t.Error("full clean should remove the checkpoint")
	}

	out, err = runCommand(t, "", "clean", "-o", output, "-f")
	if err != nil {
		t.Fatalf("clean error = %v", err)
	}
	if !strings.Contains(out, "No generated skills found") {
		t.Errorf("output = %q", out)
	}
}
