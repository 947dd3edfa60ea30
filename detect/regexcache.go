package detect

import (
	"github.com/Schnaffon/suricata/detect/genericflow"
	lru "github.com/hashicorp/golang-lru/v2"
)

// RegexSelectorCache memoizes the generic-flow Program and DCE-payload
// PatternSet resolved for a given signature generation + signature ID pair,
// so repeated lookups within one rule-set generation reuse the first result.
// The generation is part of the key, so after a reload every signature is
// resolved again, whether or not it changed.
//
// A nil *RegexSelectorCache is valid: every method falls back to calling
// build directly, uncached, so callers that don't want caching can leave the
// engine's cache field unset instead of threading a feature flag through it.
type RegexSelectorCache struct {
	programs    *lru.Cache[regexCacheKey, *genericflow.Program]
	patternSets *lru.Cache[regexCacheKey, *genericflow.PatternSet]
}

type regexCacheKey struct {
	generation uint64
	sigID      int
}

// NewRegexSelectorCache builds a cache holding up to size entries per kind
// (generic flow programs and DCE pattern sets are tracked separately).
func NewRegexSelectorCache(size int) (*RegexSelectorCache, error) {
	programs, err := lru.New[regexCacheKey, *genericflow.Program](size)
	if err != nil {
		return nil, err
	}
	patternSets, err := lru.New[regexCacheKey, *genericflow.PatternSet](size)
	if err != nil {
		return nil, err
	}
	return &RegexSelectorCache{programs: programs, patternSets: patternSets}, nil
}

// GetOrCompileProgram returns the cached generic flow Program for
// (generation, sigID), resolving and caching it via build if absent.
func (c *RegexSelectorCache) GetOrCompileProgram(generation uint64, sigID int, build func() (*genericflow.Program, error)) (*genericflow.Program, error) {
	if c == nil {
		return build()
	}
	key := regexCacheKey{generation: generation, sigID: sigID}
	if p, ok := c.programs.Get(key); ok {
		return p, nil
	}
	p, err := build()
	if err != nil {
		return nil, err
	}
	c.programs.Add(key, p)
	return p, nil
}

// GetOrCompilePatternSet returns the cached PatternSet for (generation,
// sigID), compiling and caching it via build if absent.
func (c *RegexSelectorCache) GetOrCompilePatternSet(generation uint64, sigID int, build func() (*genericflow.PatternSet, error)) (*genericflow.PatternSet, error) {
	if c == nil {
		return build()
	}
	key := regexCacheKey{generation: generation, sigID: sigID}
	if ps, ok := c.patternSets.Get(key); ok {
		return ps, nil
	}
	ps, err := build()
	if err != nil {
		return nil, err
	}
	c.patternSets.Add(key, ps)
	return ps, nil
}

// PurgeGeneration drops every entry belonging to an older rule-set
// generation, called after a reload settles (spec.md §4.6).
func (c *RegexSelectorCache) PurgeGeneration(current uint64) {
	if c == nil {
		return
	}
	for _, key := range c.programs.Keys() {
		if key.generation != current {
			c.programs.Remove(key)
		}
	}
	for _, key := range c.patternSets.Keys() {
		if key.generation != current {
			c.patternSets.Remove(key)
		}
	}
}

// Len reports how many entries are currently cached, across both kinds.
func (c *RegexSelectorCache) Len() int {
	if c == nil {
		return 0
	}
	return c.programs.Len() + c.patternSets.Len()
}
