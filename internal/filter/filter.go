// Package filter decides which bundle paths take part in a deployment.
// Rules are rsync-style globs evaluated in order; the first match wins and a
// path that matches nothing is included.
package filter

// Rule is one include or exclude pattern.
type Rule struct {
	Pattern *Pattern
	Include bool
}

// Chain is an ordered rule list. The zero value and a nil *Chain include
// everything.
type Chain struct {
	rules []Rule
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add compiles pattern and appends it as an include or exclude rule.
func (c *Chain) Add(pattern string, include bool) error {
	p, err := Compile(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: p, Include: include})
	return nil
}

// AddExclude appends an exclude rule.
func (c *Chain) AddExclude(pattern string) error { return c.Add(pattern, false) }

// AddInclude appends an include rule.
func (c *Chain) AddInclude(pattern string) error { return c.Add(pattern, true) }

// Empty reports whether the chain has no rules.
func (c *Chain) Empty() bool {
	return c == nil || len(c.rules) == 0
}

// Rules returns the rules in evaluation order.
func (c *Chain) Rules() []Rule {
	if c == nil {
		return nil
	}
	return c.rules
}

// Match reports whether the bundle path rel is included. isDir selects
// directory-only rules.
func (c *Chain) Match(rel string, isDir bool) bool {
	if c == nil {
		return true
	}
	for _, r := range c.rules {
		if r.Pattern.Match(rel, isDir) {
			return r.Include
		}
	}
	return true
}
