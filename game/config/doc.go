// Package config loads, validates and caches Sokoban level files.
//
// Levels live in a single directory as JSON (.json) or YAML (.yaml, .yml)
// files. The file name without its extension is the level identifier used
// when creating sessions. Each file holds a name, a description, the layout
// rows, an optional undo capacity and optional player messages:
//
//	{
//	  "name": "Tiny",
//	  "description": "One push",
//	  "layout": ["#####", "#@$.#", "#####"],
//	  "messages": {"welcome": "Go!", "solved": "Done"}
//	}
//
// Every level is checked with engine.ValidateLevelConfig before it is cached,
// so a malformed or structurally invalid file is never served.
//
// The default level is "classic" when present, otherwise the first level in
// identifier order, otherwise the built-in engine.DefaultLevelConfig.
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	level, err := manager.LoadConfig("classic")
//	levels, err := manager.ListConfigs()
package config
