package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"
)

// TemplateValues are the settings filled into the configuration template.
type TemplateValues struct {
	Target      string
	Scope       string
	Output      string
	DelayMS     int
	MaxDepth    int
	Concurrency int
}

// DefaultTemplateValues returns the values of DefaultConfig.
func DefaultTemplateValues() TemplateValues {
	cfg := DefaultConfig()
	return TemplateValues{
		Target:      cfg.Target,
		Scope:       cfg.Scope,
		Output:      cfg.Output,
		DelayMS:     cfg.DelayMS,
		MaxDepth:    cfg.MaxDepth,
		Concurrency: cfg.Concurrency,
	}
}

var configTemplate = template.Must(template.New("skills.yaml").Parse(`# docskills configuration

# Target agent tool for generated skills
# Supported targets: github-copilot, claude-code, cursor, antigravity, openai-codex, opencode, custom
target: {{.Target}}

# Where presets are installed
# - project: relative to the working directory (e.g. .cursor/skills/)
# - user: relative to the home directory (e.g. ~/.cursor/skills/)
scope: {{.Scope}}

# Output directory for generated skills (only used when target is "custom")
output: {{printf "%q" .Output}}

# Write <name>.md files instead of <name>/SKILL.md directories
flat: false

# User-Agent header sent with every request (default: docskills/<version>)
# user_agent: "docskills/1.0"

# Minimum delay between requests to the same host, in milliseconds
delay_ms: {{.DelayMS}}

# Maximum link depth from the seed URL (0 = seed only)
max_depth: {{.MaxDepth}}

# Request timeout in seconds
request_timeout_secs: 30

# Respect robots.txt
respect_robots_txt: true

# Follow links to subdomains of the seed host
subdomains: false

# Number of pages processed in parallel
concurrency: {{.Concurrency}}

# URL filtering rules. When any allow rule exists, only URLs matching an allow
# rule are crawled. An ignore rule always wins.
rules:
  # - url: "*/docs/*"
  #   action: allow
  # - url: "*/api/internal/*"
  #   action: ignore

# CSS selectors removed from every page before conversion. Setting this list
# replaces the defaults (nav, footer, header, .sidebar, .toc, ...).
# remove_selectors:
#   - ".custom-sidebar"
#   - "#ad-container"
`))

// DefaultConfigYAML is written by `docskills init` when no questions are asked.
var DefaultConfigYAML = string(mustRender(DefaultTemplateValues()))

// RenderTemplate fills the commented configuration template with v. The
// result is checked by the same rules as a loaded configuration.
func RenderTemplate(v TemplateValues) ([]byte, error) {
	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("failed to render config template: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Target, cfg.Scope, cfg.Output = v.Target, v.Scope, v.Output
	cfg.DelayMS, cfg.MaxDepth, cfg.Concurrency = v.DelayMS, v.MaxDepth, v.Concurrency
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mustRender(v TemplateValues) []byte {
	data, err := RenderTemplate(v)
	if err != nil {
		panic(err)
	}
	return data
}

// WriteTemplate writes DefaultConfigYAML to path. An existing file is only
// replaced when force is set.
func WriteTemplate(path string, force bool) error {
	return WriteFile(path, []byte(DefaultConfigYAML), force)
}

// WriteFile writes a rendered configuration to path, creating its directory.
func WriteFile(path string, data []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to check %s: %w", path, err)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
