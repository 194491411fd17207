// Package rules implements URL admission against ordered allow/ignore glob rules.
//
// Patterns are compiled once when a Filter is built and matched many times
// during a crawl. In a glob, `*` matches any run of characters including `/`.
// That lets `*/docs/*` cover both the scheme and the host of a URL.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Action tells a rule whether matching URLs are admitted or dropped.
type Action string

const (
	Allow  Action = "allow"
	Ignore Action = "ignore"
)

// ErrUnknownAction is returned for a rule whose action is neither allow nor ignore.
var ErrUnknownAction = errors.New("rule action must be 'allow' or 'ignore'")

// Rule is one entry of the `rules` list in skills.yaml.
type Rule struct {
	URL    string `mapstructure:"url" yaml:"url"`
	Action Action `mapstructure:"action" yaml:"action"`
}

// PatternError reports a rule that could not be compiled.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid rule pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

type matcher struct {
	pattern string
	g       glob.Glob
}

// Filter is a compiled rule set. It is safe for concurrent use.
type Filter struct {
	rules  []Rule
	allow  []matcher
	ignore []matcher
}

// Compile builds a Filter from rules, keeping their declared order.
func Compile(rules []Rule) (*Filter, error) {
	f := &Filter{rules: append([]Rule(nil), rules...)}

	for _, r := range rules {
		action, err := ParseAction(string(r.Action))
		if err != nil {
			return nil, &PatternError{Pattern: r.URL, Err: err}
		}

		g, err := glob.Compile(r.URL)
		if err != nil {
			return nil, &PatternError{Pattern: r.URL, Err: err}
		}

		m := matcher{pattern: r.URL, g: g}
		if action == Allow {
			f.allow = append(f.allow, m)
		} else {
			f.ignore = append(f.ignore, m)
		}
	}

	return f, nil
}

// ParseAction normalizes an action name.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case Allow:
		return Allow, nil
	case Ignore:
		return Ignore, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Admit reports whether url passes the rule set.
//
// With at least one allow rule, a URL must match an allow rule and no ignore
// rule. Without allow rules, a URL is admitted unless an ignore rule matches.
// An empty rule set admits everything.
func (f *Filter) Admit(url string) bool {
	if f == nil {
		return true
	}

	for _, m := range f.ignore {
		if m.g.Match(url) {
			return false
		}
	}

	if len(f.allow) == 0 {
		return true
	}

	for _, m := range f.allow {
		if m.g.Match(url) {
			return true
		}
	}
	return false
}

// HasAllow reports whether the rule set contains an allow rule.
func (f *Filter) HasAllow() bool {
	return f != nil && len(f.allow) > 0
}

// Rules returns the rules in declared order.
func (f *Filter) Rules() []Rule {
	if f == nil {
		return nil
	}
	return append([]Rule(nil), f.rules...)
}
