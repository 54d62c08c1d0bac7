// Package engine provides the core Sokoban logic.
//
// The engine package implements the game mechanics including:
//   - A board of entities addressed by row and column
//   - Move resolution with a single-baggage push chain
//   - A bounded undo log
//   - Level text encoding and decoding
//   - Structural level validation and win detection
//
// Core Types:
//
// Board holds the cells of one level instance. Move and Undo are plain
// functions over a Board; GameEngine wraps them into a session object that
// owns its board, targets and undo log and exposes a serializable GameState.
// LevelConfig is the level file format.
//
// Usage:
//
//	eng, err := engine.NewEngine(engine.DefaultLevelConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	moved := eng.Move("right")
//	state := eng.GetState()
//
// Level Format:
//
// One text row per line using '#' wall, '$' baggage, '@' player, '.' target
// and ' ' floor. In GameMode targets live in a separate list so baggage can
// cover them; in BuilderMode they are grid cells.
package engine
