// Package consts holds small fixed values shared across packages that
// would otherwise need to import each other just to read one string.
package consts

// VERSION is the value of the global _VERSION, per spec §6's base
// library surface.
const VERSION = "Lua 5.4"
