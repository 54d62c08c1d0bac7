// Package mcp exposes the Sokoban engine to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call is translated into a request to the
// REST API (package api) and the JSON response is rendered as text an agent
// can read. Nothing is cached on this side, so several MCP clients and browser
// sessions can drive the same game server.
//
// Tools:
//   - create_session, list_sessions, get_session, delete_session
//   - game_state: board rows with row numbers and counters
//   - move, bulk_move: walk or push, with an optional intent note
//   - undo, reset_game, move_history
//   - list_levels, validate_level
//   - describe_cell: occupant of a (row, col) and whether it is a target
//   - game_instructions: rules and strategy notes
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// The HTTP server also mounts the same MCP server on /mcp using the
// streamable HTTP transport.
package mcp
