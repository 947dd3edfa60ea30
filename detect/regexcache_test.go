package detect

import (
	"testing"

	"github.com/Schnaffon/suricata/detect/genericflow"
	"github.com/stretchr/testify/assert"
)

func TestRegexSelectorCacheBuildsOnceAndReuses(t *testing.T) {
	c, err := NewRegexSelectorCache(8)
	assert.NoError(t, err)

	builds := 0
	build := func() (*genericflow.PatternSet, error) {
		builds++
		return genericflow.NewPatternSet([]genericflow.Pattern{{ID: 1, Expr: "foo"}})
	}

	ps1, err := c.GetOrCompilePatternSet(1, 100, build)
	assert.NoError(t, err)
	ps2, err := c.GetOrCompilePatternSet(1, 100, build)
	assert.NoError(t, err)

	assert.Same(t, ps1, ps2)
	assert.Equal(t, 1, builds)
}

func TestRegexSelectorCacheSeparatesGenerations(t *testing.T) {
	c, err := NewRegexSelectorCache(8)
	assert.NoError(t, err)

	build := func() (*genericflow.PatternSet, error) {
		return genericflow.NewPatternSet([]genericflow.Pattern{{ID: 1, Expr: "foo"}})
	}

	_, err = c.GetOrCompilePatternSet(1, 100, build)
	assert.NoError(t, err)
	_, err = c.GetOrCompilePatternSet(2, 100, build)
	assert.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	c.PurgeGeneration(2)
	assert.Equal(t, 1, c.Len())
}

func TestRegexSelectorCachePropagatesBuildError(t *testing.T) {
	c, err := NewRegexSelectorCache(8)
	assert.NoError(t, err)

	_, err = c.GetOrCompilePatternSet(1, 1, func() (*genericflow.PatternSet, error) {
		return genericflow.NewPatternSet([]genericflow.Pattern{{ID: 1, Expr: "("}})
	})
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestRegexSelectorCacheTracksProgramsAndPatternSetsSeparately(t *testing.T) {
	c, err := NewRegexSelectorCache(8)
	assert.NoError(t, err)

	progBuilds, psBuilds := 0, 0
	prog, err := c.GetOrCompileProgram(1, 100, func() (*genericflow.Program, error) {
		progBuilds++
		return &genericflow.Program{}, nil
	})
	assert.NoError(t, err)
	ps, err := c.GetOrCompilePatternSet(1, 100, func() (*genericflow.PatternSet, error) {
		psBuilds++
		return genericflow.NewPatternSet(nil)
	})
	assert.NoError(t, err)

	assert.NotNil(t, prog)
	assert.NotNil(t, ps)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, progBuilds)
	assert.Equal(t, 1, psBuilds)
}

func TestNilRegexSelectorCacheFallsBackToBuild(t *testing.T) {
	var c *RegexSelectorCache

	builds := 0
	ps, err := c.GetOrCompilePatternSet(1, 1, func() (*genericflow.PatternSet, error) {
		builds++
		return genericflow.NewPatternSet(nil)
	})
	assert.NoError(t, err)
	assert.NotNil(t, ps)
	assert.Equal(t, 1, builds)
	assert.Equal(t, 0, c.Len())
	assert.NotPanics(t, func() { c.PurgeGeneration(1) })
}
