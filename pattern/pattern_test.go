package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPlainAnchor(t *testing.T) {
	start, end, _, ok := Find("hello world", "^hello", 0)
	require.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, end)
}

func TestFindCharacterClass(t *testing.T) {
	start, end, caps, ok := Find("room 42", "%d+", 0)
	require.True(t, ok)
	assert.Equal(t, 5, start)
	assert.Equal(t, 7, end)
	// No explicit capture groups: the implicit whole-match capture is
	// what string.match returns as its sole result.
	require.Len(t, caps, 1)
	assert.Equal(t, "42", caps[0].Str)
}

func TestFindCapture(t *testing.T) {
	_, _, caps, ok := Find("key=value", "(%a+)=(%a+)", 0)
	require.True(t, ok)
	require.Len(t, caps, 2)
	assert.Equal(t, "key", caps[0].Str)
	assert.Equal(t, "value", caps[1].Str)
}

func TestFindBalancedMatch(t *testing.T) {
	start, end, _, ok := Find("(a(b)c)", "%b()", 0)
	require.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 7, end)
}

func TestFindNoMatch(t *testing.T) {
	_, _, _, ok := Find("abc", "%d+", 0)
	assert.False(t, ok)
}

func TestFindPositionCapture(t *testing.T) {
	_, _, caps, ok := Find("abc", "a()b", 0)
	require.True(t, ok)
	require.Len(t, caps, 1)
	assert.True(t, caps[0].Pos)
	assert.Equal(t, 2, caps[0].Start)
}
