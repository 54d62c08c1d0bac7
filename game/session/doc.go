// Package session manages live Sokoban sessions.
//
// A session pairs an identifier with its own engine instance, the level it
// was created from and access timestamps. Sessions never share a board.
//
// Manager keeps sessions in memory in creation order. Identifiers are
// case-insensitive, limited to letters, digits, '-' and '_', and are
// generated as 4 hex characters when the caller leaves them empty.
//
// Persistence:
//
// A SessionPersistence backend can be attached with NewManagerWithPersistence.
// Sessions are then saved on creation and access, loaded lazily on Get and
// restored in bulk with LoadPersistedSessions. Two backends are provided:
//
//   - FilePersistence writes one JSON file per session
//   - SQLPersistence stores one row per session in SQLite or PostgreSQL
//
// Both persist the level identifier, a level snapshot and the game state.
// The undo log is not persisted, so restored sessions cannot undo moves made
// before the restart.
//
// Usage:
//
//	store, err := session.NewSQLitePersistence("data/sessions.db", configs)
//	manager := session.NewManagerWithPersistence(store)
//	sess, err := manager.Create("", "classic", level)
package session
