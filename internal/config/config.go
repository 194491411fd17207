// Package config provides configuration management for docskills.
// It defines the skills.yaml schema, its default values, output target presets
// and validation of rules and removal selectors.
package config

import (
	"fmt"
	"time"

	"github.com/andybalholm/cascadia"

	"github.com/masahif/docskills/internal/rules"
)

const (
	// DefaultFileName is the config file looked up in the working directory.
	DefaultFileName = "skills.yaml"

	// DefaultUserAgent is sent when user_agent is not configured.
	DefaultUserAgent = "docskills/1.0 (+https://github.com/masahif/docskills)"
)

// Config holds a crawl configuration. It is loaded once per run and is not
// modified while a crawl is in progress.
type Config struct {
	// Output location
	Output string `mapstructure:"output" yaml:"output"`         // Output directory when target is custom
	Target string `mapstructure:"target" yaml:"target"`         // Agent tool preset (claude-code, cursor, ...)
	Scope  string `mapstructure:"scope" yaml:"scope"`           // project or user
	Flat   bool   `mapstructure:"flat" yaml:"flat"`             // <name>.md instead of <name>/SKILL.md

	// Crawling parameters
	UserAgent          string `mapstructure:"user_agent" yaml:"user_agent"`
	DelayMS            int    `mapstructure:"delay_ms" yaml:"delay_ms"`
	MaxDepth           int    `mapstructure:"max_depth" yaml:"max_depth"`
	RequestTimeoutSecs int    `mapstructure:"request_timeout_secs" yaml:"request_timeout_secs"`
	RespectRobotsTxt   bool   `mapstructure:"respect_robots_txt" yaml:"respect_robots_txt"`
	Subdomains         bool   `mapstructure:"subdomains" yaml:"subdomains"`
	Concurrency        int    `mapstructure:"concurrency" yaml:"concurrency"`

	// URL filtering and content cleaning
	Rules           []rules.Rule `mapstructure:"rules" yaml:"rules"`
	RemoveSelectors []string     `mapstructure:"remove_selectors" yaml:"remove_selectors"`

	// Resume checkpoint location; derived from the output directory when empty
	StateFile string `mapstructure:"state_file" yaml:"state_file,omitempty"`

	// Logging
	LogFormat string `mapstructure:"log_format" yaml:"log_format,omitempty"`
	LogFile   string `mapstructure:"log_file" yaml:"log_file,omitempty"`
}

// DefaultRemoveSelectors are removed from every page before conversion.
var DefaultRemoveSelectors = []string{
	"nav",
	"footer",
	"header",
	"script",
	"style",
	"noscript",
	"iframe",
	".toc",
	".table-of-contents",
	".sidebar",
	".navigation",
	".nav",
	".menu",
	".breadcrumb",
	".breadcrumbs",
	".ads",
	".advertisement",
	".cookie-banner",
	".cookie-consent",
	"[role='navigation']",
	"[role='banner']",
	"[role='contentinfo']",
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Output:             ".agent/skills",
		Target:             TargetCustom,
		Scope:              ScopeProject,
		Flat:               false,
		DelayMS:            100,
		MaxDepth:           25,
		RequestTimeoutSecs: 30,
		RespectRobotsTxt:   true,
		Subdomains:         false,
		Concurrency:        4,
		RemoveSelectors:    append([]string(nil), DefaultRemoveSelectors...),
		LogFormat:          "text",
	}
}

// Delay is the minimum spacing between two fetches to the same host.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

// Agent returns the configured user agent or DefaultUserAgent.
func (c *Config) Agent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

// RequestTimeout bounds a single page fetch and its processing.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// Validate checks if the configuration is valid. The returned error is a
// *ConfigError wrapping one of the sentinel errors.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return &ConfigError{Field: "concurrency", Value: c.Concurrency, Err: ErrInvalidConcurrency}
	}

	if c.RequestTimeoutSecs <= 0 {
		return &ConfigError{Field: "request_timeout_secs", Value: c.RequestTimeoutSecs, Err: ErrInvalidTimeout}
	}

	if c.DelayMS < 0 {
		return &ConfigError{Field: "delay_ms", Value: c.DelayMS, Err: ErrInvalidDelay}
	}

	if c.MaxDepth < 0 {
		return &ConfigError{Field: "max_depth", Value: c.MaxDepth, Err: ErrInvalidDepth}
	}

	if _, ok := lookupTarget(c.Target); !ok {
		return &ConfigError{Field: "target", Value: c.Target, Err: ErrUnknownTarget}
	}

	switch c.Scope {
	case "", ScopeProject, ScopeUser:
	default:
		return &ConfigError{Field: "scope", Value: c.Scope, Err: ErrUnknownScope}
	}

	if c.IsCustomTarget() && c.Output == "" {
		return &ConfigError{Field: "output", Value: c.Output, Err: ErrEmptyOutput}
	}

	for i, r := range c.Rules {
		if _, err := rules.ParseAction(string(r.Action)); err != nil {
			return &ConfigError{Field: fmt.Sprintf("rules[%d].action", i), Value: r.Action, Err: ErrInvalidRuleAction}
		}
	}
	if _, err := rules.Compile(c.Rules); err != nil {
		return &ConfigError{Field: "rules", Value: err.Error(), Err: ErrInvalidGlob}
	}

	for i, sel := range c.RemoveSelectors {
		if _, err := cascadia.Compile(sel); err != nil {
			return &ConfigError{Field: fmt.Sprintf("remove_selectors[%d]", i), Value: sel, Err: ErrInvalidSelector}
		}
	}

	return nil
}

// Filter compiles the configured rules.
func (c *Config) Filter() (*rules.Filter, error) {
	f, err := rules.Compile(c.Rules)
	if err != nil {
		return nil, &ConfigError{Field: "rules", Value: err.Error(), Err: ErrInvalidGlob}
	}
	return f, nil
}
