package parser

import "fmt"

// Config holds tunable parsing behavior. The resolver bounds are heuristic
// constants tuned to observed statement data, so they are configurable rather
// than hard-coded.
type Config struct {
	// ZelleCodeMinLength and ZelleCodeMaxLength bound the plausible length of
	// an alphanumeric Zelle confirmation code when splitting glued tokens
	ZelleCodeMinLength int `json:"zelle_code_min_length"`
	ZelleCodeMaxLength int `json:"zelle_code_max_length"`

	// TraceAmountLimit rejects trace-number splits whose resulting amount is
	// implausibly large, which signals the digits were cut in the wrong place
	TraceAmountLimit float64 `json:"trace_amount_limit"`

	// MaxParseErrors caps how many line-level parse errors are collected per
	// document before further ones are dropped
	MaxParseErrors int `json:"max_parse_errors"`
}

// DefaultConfig returns parsing thresholds that work for typical statements
func DefaultConfig() *Config {
	return &Config{
		ZelleCodeMinLength: 6,
		ZelleCodeMaxLength: 12,
		TraceAmountLimit:   100000,
		MaxParseErrors:     100,
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.ZelleCodeMinLength <= 0 {
		return fmt.Errorf("zelle code minimum length must be positive")
	}
	if c.ZelleCodeMaxLength < c.ZelleCodeMinLength {
		return fmt.Errorf("zelle code maximum length cannot be below the minimum")
	}
	if c.TraceAmountLimit <= 0 {
		return fmt.Errorf("trace amount limit must be positive")
	}
	if c.MaxParseErrors < 0 {
		return fmt.Errorf("max parse errors cannot be negative")
	}
	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
