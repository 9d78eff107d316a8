// Package config manages the map catalog: four builtin environments
// (small, medium, large and dynamic) plus any *_map.json files in the
// maps directory. Disk maps shadow builtins of the same name, and every
// environment handed out is a fresh copy so sessions never share state.
package config
