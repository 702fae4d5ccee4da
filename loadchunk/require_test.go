package loadchunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveExpandsDottedModuleName(t *testing.T) {
	got := Resolve(DefaultPath, "a.b.c")
	assert.Equal(t, []string{"./a/b/c.lua", "./a/b/c/init.lua"}, got)
}

func TestResolveSkipsEmptyTemplates(t *testing.T) {
	got := Resolve("./?.lua;;", "foo")
	assert.Equal(t, []string{"./foo.lua"}, got)
}

func TestParseIndex(t *testing.T) {
	data := []byte(`{"vm":"5.4","version":2,"modules":{"json":"lib/json.lua"}}`)
	idx := ParseIndex(data)
	assert.Equal(t, "5.4", idx.VM)
	assert.Equal(t, int64(2), idx.Version)
	assert.Equal(t, "lib/json.lua", idx.Modules["json"])
}

func TestModuleCacheResolvedAndPath(t *testing.T) {
	c := NewModuleCache(8)
	c.Resolved("mymod", "./mymod.lua")
	path, ok := c.Path("mymod")
	assert.True(t, ok)
	assert.Equal(t, "./mymod.lua", path)

	_, ok = c.Path("missing")
	assert.False(t, ok)
}
