package genericflow

import (
	"fmt"
	"regexp"
)

// Pattern is one entry in a PatternSet: an ID the caller uses to recognize
// which pattern fired, and the expression to match.
type Pattern struct {
	ID   int
	Expr string
}

// PatternMatch is returned by PatternSet.Scan for each pattern that matched.
type PatternMatch struct {
	ID   int
	Data []byte
}

// PatternSet is a compile-once, scan-many multi-pattern content matcher used
// by the DCE-payload single-shot matcher (spec.md §4.3.3). It keeps the shape
// of the teacher's waf.MultiRegexEngine/hyperscan.Engine abstraction (compile
// once up front, reuse across many scans) but is backed by the standard
// library's regexp package rather than Hyperscan; see DESIGN.md for why
// Hyperscan itself was not wired into this repository.
type PatternSet struct {
	compiled []compiledPattern
}

type compiledPattern struct {
	id int
	rx *regexp.Regexp
}

// NewPatternSet compiles every pattern up front, the way hyperscan.Engine
// builds its block database once at construction.
func NewPatternSet(patterns []Pattern) (*PatternSet, error) {
	ps := &PatternSet{compiled: make([]compiledPattern, 0, len(patterns))}
	for _, p := range patterns {
		rx, err := regexp.Compile(p.Expr)
		if err != nil {
			return nil, fmt.Errorf("genericflow: failed to compile pattern %d (%q): %w", p.ID, p.Expr, err)
		}
		ps.compiled = append(ps.compiled, compiledPattern{id: p.ID, rx: rx})
	}
	return ps, nil
}

// Scan reports every pattern in the set that matches input. Like Hyperscan's
// SingleMatch flag, at most one match per pattern ID is reported.
func (ps *PatternSet) Scan(input []byte) []PatternMatch {
	var matches []PatternMatch
	for _, cp := range ps.compiled {
		if loc := cp.rx.FindIndex(input); loc != nil {
			matches = append(matches, PatternMatch{ID: cp.id, Data: input[loc[0]:loc[1]]})
		}
	}
	return matches
}

// MatchAny reports whether any pattern in the set matches input, without
// collecting match data. Used by the DCE-payload single-shot path, which only
// needs a boolean.
func (ps *PatternSet) MatchAny(input []byte) bool {
	for _, cp := range ps.compiled {
		if cp.rx.Match(input) {
			return true
		}
	}
	return false
}
