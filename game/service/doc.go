// Package service provides the business logic layer for the Sokoban server.
//
// The service package implements:
//   - Multi-session game management
//   - Move, bulk move and undo processing with per-step events
//   - Level listing, loading, saving and validation
//   - Move history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads level files.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and the
// engine. Each session owns an independent engine instance; the service
// serializes operations so that a move and its resulting state are observed
// atomically.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("levels")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	result, err := gameService.Move(ctx, info.ID, "left", false)
//	result, err = gameService.Undo(ctx, info.ID)
//
// Bulk moves stop at the first blocked or invalid direction, or once the level
// is solved, and report the reason in BulkMoveResult.StopReasonCode.
package service
