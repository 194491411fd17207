package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConcurrency is returned when concurrency is less than 1
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")
	// ErrInvalidTimeout is returned when request timeout is not greater than 0
	ErrInvalidTimeout = errors.New("request_timeout_secs must be greater than 0")
	// ErrInvalidDelay is returned when the delay is negative
	ErrInvalidDelay = errors.New("delay_ms cannot be negative")
	// ErrInvalidDepth is returned when the max depth is negative
	ErrInvalidDepth = errors.New("max_depth cannot be negative")
	// ErrEmptyOutput is returned when the custom target has no output directory
	ErrEmptyOutput = errors.New("output cannot be empty")
	// ErrUnknownTarget is returned for a target that is not a known preset
	ErrUnknownTarget = errors.New("unknown target")
	// ErrUnknownScope is returned for a scope other than project or user
	ErrUnknownScope = errors.New("scope must be 'project' or 'user'")
	// ErrInvalidRuleAction is returned when a rule action is neither allow nor ignore
	ErrInvalidRuleAction = errors.New("rule action must be 'allow' or 'ignore'")
	// ErrInvalidGlob is returned when a rule pattern does not compile
	ErrInvalidGlob = errors.New("invalid rule pattern")
	// ErrInvalidSelector is returned when a removal selector does not compile
	ErrInvalidSelector = errors.New("invalid CSS selector")
	// ErrConfigExists is returned by WriteTemplate when the file is already there
	ErrConfigExists = errors.New("config file already exists")
)

// ConfigError names the field that failed validation.
type ConfigError struct {
	Field string
	Value any
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s (%v): %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
