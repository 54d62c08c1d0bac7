// Package api provides the HTTP REST API for the Sokoban engine.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "classic"}, empty body uses the default level)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Sessions of one level (?configName= or ?sessionIds=a,b)
//   - GET /api/sessions/{id} - Session info including game state
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - {"direction": "up", "reset": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["up", "right"], "reset": false}
//   - POST /api/sessions/{id}/undo - Revert the last successful move
//   - POST /api/sessions/{id}/reset - Restore the initial board
//   - GET /api/sessions/{id}/history - Paginated history (?page=1&limit=20&order=desc)
//
// Levels:
//   - GET /api/configs - List level files with their dimensions
//   - GET /api/configs/{name} - Full level configuration
//   - POST /api/configs - Save a level (?id= overrides the id derived from its name)
//   - POST /api/levels/validate - {"level": "..."} or {"layout": [...]}
//
// Live updates are served on /ws?session={id}; see package websocket.
//
// Move responses carry a step record when the player moved and attempted_to
// with the blocker (wall, baggage, boundary) when it did not. Bulk moves stop
// at the first blocked move or when the level is solved and report the reason
// in stop_reason_code.
//
// Errors are returned as {"error": "..."} with the status derived from the
// underlying error: 404 for unknown sessions and levels, 400 for invalid
// input and unplayable levels, 409 for duplicate session IDs.
package api
