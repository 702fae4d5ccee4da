// Package loadchunk implements the require() module-resolution and
// module-cache machinery behind spec.md §4.9, consumed by
// stdlib.OpenBaseLib's require function.
package loadchunk

import (
	cacher "git.lolli.tech/lollipopkit/go_lru_cacher"
)

// entry is what ModuleCache remembers per module name: the path it was
// resolved to (returned by Path) and a loaded flag that Resolved sets.
// require checks _LOADED itself; it does not read loaded.
type entry struct {
	path   string
	loaded bool
}

// ModuleCache bounds the set of module-name → resolution facts this
// process remembers, per spec.md §4.9's "caches results in a
// process-wide loaded-modules table" — bounded with an LRU so a
// long-running host embedding many one-shot `require`d scripts doesn't
// grow this table without limit (the actual module *values* still live
// in Lua's own `_LOADED` table; this cache only tracks path
// resolution, so eviction here never invalidates already-loaded
// modules).
type ModuleCache struct {
	cache *cacher.Cacher[string, entry]
}

// NewModuleCache bounds the cache at capacity resolved module names.
func NewModuleCache(capacity int) *ModuleCache {
	return &ModuleCache{cache: cacher.New[string, entry](capacity)}
}

// Resolved records that name was resolved to path.
func (m *ModuleCache) Resolved(name, path string) {
	m.cache.Set(name, entry{path: path, loaded: true})
}

// Path returns the path name was last resolved to, if still cached.
func (m *ModuleCache) Path(name string) (string, bool) {
	e, ok := m.cache.Get(name)
	if !ok {
		return "", false
	}
	return e.path, true
}
