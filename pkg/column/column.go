// Package column tags table headers as inputs or expectations.
package column

import (
	"fmt"
	"regexp"
)

// Role is the part a column plays in a table.
type Role string

const (
	Input       Role = "input"
	Expectation Role = "expectation"
)

// Classifier applies the configured expectation pattern to headers.
// The zero pattern recognizes no expectation columns.
type Classifier struct {
	pattern string
	re      *regexp.Regexp
}

// New compiles pattern anchored at the start of the header. Patterns that
// want to match anywhere start with ".*". Matching is case-sensitive unless
// the pattern carries its own (?i) flag.
func New(pattern string) (*Classifier, error) {
	c := &Classifier{pattern: pattern}
	if pattern == "" {
		return c, nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid expectation pattern %q: %w", pattern, err)
	}
	c.re = re
	return c, nil
}

// MustNew is New for tests and fixed patterns.
func MustNew(pattern string) *Classifier {
	c, err := New(pattern)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns Expectation when header matches the pattern.
func (c *Classifier) Classify(header string) Role {
	if c == nil || c.re == nil {
		return Input
	}
	if c.re.MatchString(header) {
		return Expectation
	}
	return Input
}

// Pattern returns the pattern as configured.
func (c *Classifier) Pattern() string {
	if c == nil {
		return ""
	}
	return c.pattern
}
