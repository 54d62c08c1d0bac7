// Package websocket pushes live Sokoban state to browser clients.
//
// A Hub groups connections by session ID. Clients connect with
// /ws?session=<id>; after every mutating API call the server broadcasts the
// new GameState to that session's clients only. Messages are JSON:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//
// Custom events (for example "solved" or "session_deleted") carry a data
// field instead of a state and are queued through the hub's event loop.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Slow clients whose send buffer fills up are dropped rather than blocking
// broadcasts to the rest of the session.
package websocket
