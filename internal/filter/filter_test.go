package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyChainIncludesAll(t *testing.T) {
	c := NewChain()
	assert.True(t, c.Match("textures/a.png", false))
	assert.True(t, c.Match("textures", true))
	assert.True(t, c.Empty())

	var nilChain *Chain
	assert.True(t, nilChain.Match("anything", false))
	assert.True(t, nilChain.Empty())
}

func TestExcludePattern(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddExclude("*.blend"))

	assert.False(t, c.Match("model.blend", false))
	assert.False(t, c.Match("models/mob/model.blend", false))
	assert.True(t, c.Match("models/mob/model.b3d", false))
	assert.False(t, c.Empty())
}

func TestFirstMatchWins(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddInclude("keep.ogg"))
	require.NoError(t, c.AddExclude("*.ogg"))

	assert.True(t, c.Match("sounds/keep.ogg", false))
	assert.False(t, c.Match("sounds/drop.ogg", false))

	c = NewChain()
	require.NoError(t, c.AddExclude("*.ogg"))
	require.NoError(t, c.AddInclude("keep.ogg"))
	assert.False(t, c.Match("sounds/keep.ogg", false))
}

func TestDirOnlyRule(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddExclude("src/"))

	assert.False(t, c.Match("src", true))
	assert.False(t, c.Match("mods/default/src", true))
	assert.True(t, c.Match("src", false))
}

func TestInvalidPattern(t *testing.T) {
	c := NewChain()
	require.Error(t, c.AddExclude("//"))
	require.Error(t, c.AddExclude("/"))
	assert.True(t, c.Empty())
}
