package loadchunk

import "github.com/tidwall/gjson"

// Index is a parsed module-index manifest: an index.json-shaped
// listing of built-in modules available to require's search path,
// grounded on the teacher's mods/mod.go manifest shape ({"vm":
// "<version>", "version": <int>, "modules": {name: relpath, ...}}).
type Index struct {
	VM      string
	Version int64
	Modules map[string]string
}

// ParseIndex parses a manifest previously read from disk or an
// embedded file system, per the manifest shape mods/mod.go produces.
func ParseIndex(data []byte) Index {
	root := gjson.ParseBytes(data)
	idx := Index{
		VM:      root.Get("vm").String(),
		Version: root.Get("version").Int(),
		Modules: map[string]string{},
	}
	root.Get("modules").ForEach(func(key, value gjson.Result) bool {
		idx.Modules[key.String()] = value.String()
		return true
	})
	return idx
}
