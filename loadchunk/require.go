package loadchunk

import "strings"

// DefaultPath is the ";"-separated search-path template require()
// consults when no package.path override is set, "?" substituting the
// module name, matching real Lua's own path-template convention.
const DefaultPath = "./?.lua;./?/init.lua"

// Resolve expands a ";"-separated path template against name,
// returning every candidate file path in order, "?" replaced by name
// with its dots turned into path separators. The caller tries each in
// turn against its own Environment.ReadFile/Stat until one exists.
func Resolve(path, name string) []string {
	asPath := strings.ReplaceAll(name, ".", "/")
	templates := strings.Split(path, ";")
	candidates := make([]string, 0, len(templates))
	for _, t := range templates {
		if t == "" {
			continue
		}
		candidates = append(candidates, strings.ReplaceAll(t, "?", asPath))
	}
	return candidates
}
