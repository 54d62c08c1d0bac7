package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/sokoban/game/engine"
	"github.com/wricardo/sokoban/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Sokoban",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Sokoban - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Push every piece of baggage ($) onto a target (.). The player (@) walks
through empty floor and pushes a single piece of baggage one cell at a time.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session / delete_session
- game_state: Board, counters and last message
- move, bulk_move: Walk or push (up/down/left/right) - requires intent explanation
- undo: Revert the last successful move
- reset_game: Restore the initial board
- move_history: View past moves
- list_levels: Levels available for new sessions
- validate_level: Check whether level text is playable
- describe_cell: What occupies a given row/column
- game_instructions: Rules and strategy notes

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

var directionEnum = []string{"up", "down", "left", "right"}

// sessionArg is the session_id property shared by most tools
func sessionArg() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new game session, optionally on a specific level"),
		mcp.WithString("config_id", mcp.Description("Level identifier from list_levels (optional, defaults to the classic level)")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active game sessions"),
	), c.handleListSessions)

	c.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get details of a specific session"),
		sessionArg(),
	), c.handleGetSession)

	c.mcpServer.AddTool(mcp.NewTool("delete_session",
		mcp.WithDescription("Delete a session and its saved state"),
		sessionArg(),
	), c.handleDeleteSession)

	// Game operations
	c.mcpServer.AddTool(mcp.NewTool("game_state",
		mcp.WithDescription("Get the current board and counters"),
		sessionArg(),
	), c.handleGameState)

	c.mcpServer.AddTool(mcp.NewTool("move",
		mcp.WithDescription("Move the player one cell, pushing baggage if it is in the way"),
		sessionArg(),
		mcp.WithString("direction", mcp.Required(), mcp.Enum(directionEnum...), mcp.Description("Direction to move")),
		mcp.WithString("intent", mcp.Description("Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)")),
		mcp.WithBoolean("reset", mcp.Description("Reset before moving")),
	), c.handleMove)

	c.mcpServer.AddTool(mcp.NewTool("bulk_move",
		mcp.WithDescription(fmt.Sprintf("Execute up to %d moves in sequence; stops at the first blocked move or when the level is solved", engine.MaxBulkMoves)),
		sessionArg(),
		mcp.WithArray("moves", mcp.Required(), mcp.WithStringEnumItems(directionEnum), mcp.Description("Array of moves")),
		mcp.WithString("intent", mcp.Description("Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)")),
		mcp.WithBoolean("reset", mcp.Description("Reset before moving")),
	), c.handleBulkMove)

	c.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Revert the most recent successful move"),
		sessionArg(),
	), c.handleUndo)

	c.mcpServer.AddTool(mcp.NewTool("reset_game",
		mcp.WithDescription("Reset the game to its initial board"),
		sessionArg(),
	), c.handleReset)

	c.mcpServer.AddTool(mcp.NewTool("move_history",
		mcp.WithDescription("Get move history for a session"),
		sessionArg(),
		mcp.WithNumber("page", mcp.Description("Page number"), mcp.Min(1)),
		mcp.WithNumber("limit", mcp.Description("Items per page"), mcp.Min(1)),
	), c.handleMoveHistory)

	// Levels
	c.mcpServer.AddTool(mcp.NewTool("list_levels",
		mcp.WithDescription("List available levels"),
	), c.handleListLevels)

	c.mcpServer.AddTool(mcp.NewTool("validate_level",
		mcp.WithDescription("Check whether level text is playable: one player, walls on the border, as many targets as baggage"),
		mcp.WithString("level", mcp.Required(), mcp.Description("Level text, one row per line using # @ $ . and spaces")),
	), c.handleValidateLevel)

	c.mcpServer.AddTool(mcp.NewTool("game_instructions",
		mcp.WithDescription("Get comprehensive game instructions and rules"),
	), c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.NewTool("describe_cell",
		mcp.WithDescription("Get what occupies a cell of the board and whether it is a target"),
		sessionArg(),
		mcp.WithNumber("row", mcp.Required(), mcp.Description("Row of the cell (0-based, top is 0)")),
		mcp.WithNumber("col", mcp.Required(), mcp.Description("Column of the cell (0-based, left is 0)")),
	), c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := request.GetString("config_id", ""); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.Completed {
			status = "solved"
		}
		fmt.Fprintf(&b, "- %s (Level: %s, %s, Created: %s)\n",
			s.ID, s.ConfigName, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response map[string]string
	if err := c.apiCall(ctx, "DELETE", sessionPath(sessionID, ""), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response["message"]), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	direction, err := request.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Intent is only there for the caller's benefit
	_ = request.GetString("intent", "")

	body := map[string]interface{}{
		"direction": direction,
		"reset":     request.GetBool("reset", false),
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	moves, err := request.RequireStringSlice("moves")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_ = request.GetString("intent", "")

	body := map[string]interface{}{
		"moves": moves,
		"reset": request.GetBool("reset", false),
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/undo"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	header := "✓ Undone"
	if !result.Success {
		header = "✗ Nothing to undo"
	}
	return mcp.NewToolResultText(header + "\n\n" + formatGameState(result.GameState)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(&history)

	// Also fetch current segment from live state
	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err == nil {
		result += "\n" + formatCurrentSegment(&state)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Board: %d rows x %d cols, Baggage: %d\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Rows, cfg.Cols, cfg.Baggage)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleValidateLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	level, err := request.RequireString("level")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ValidationResult
	if err := c.apiCall(ctx, "POST", "/api/levels/validate", map[string]string{"level": level}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatValidation(&result)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Sokoban - Complete Instructions

GAME OBJECTIVE:
Push every piece of baggage onto a target. The level is solved the moment
each target holds baggage.

LEVEL LEGEND:
• # - Wall (impassable)
• @ - Player (you)
• $ - Baggage (can be pushed)
• . - Target (a destination for baggage)
• space - Empty floor
The "view" rows draw open targets as '.'; the "grid" rows show only what
occupies each cell, so a target covered by baggage or the player shows
as '$' or '@'.

MOVEMENT RULES:
• A move is one of up, down, left, right (w, s, a, d also work)
• Walking onto empty floor or a target always succeeds
• Walking into baggage pushes it one cell if the cell beyond is free
• Baggage cannot be pushed into a wall or into other baggage
• Baggage can never be pulled, so pushing one into a corner is permanent
• Blocked moves change nothing and report the blocker

COORDINATES:
• Positions are (row, col), 0-based, row 0 at the top
• up decreases row, down increases row, left decreases col, right increases col

UNDO AND RESET:
• undo reverts the last successful move, including any push
• Each level keeps a limited number of undo steps
• reset_game restores the initial board; history stays cumulative

STRATEGY:
• Before pushing, check the cell behind the baggage is where you want it
• Avoid pushing baggage against a wall unless a target is along that wall
• Use describe_cell to confirm what occupies a cell
• Use bulk_move for known paths; it stops at the first blocked move

SESSION MANAGEMENT:
• Multiple sessions can run simultaneously, each with its own board
• Session IDs are short hex strings and are case-insensitive
• list_levels shows the config_id to pass to create_session`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, err := request.RequireInt("row")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	col, err := request.RequireInt("col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	decoded, err := engine.DecodeRows(state.Grid, engine.GameMode)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	board := decoded.Board
	pos := engine.Position{Row: row, Col: col}
	info, err := engine.DescribeCell(board, state.Targets, pos)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Cell (%d,%d) is outside the board (%d rows)", row, col, board.Rows())), nil
	}

	return mcp.NewToolResultText(formatCellInfo(info, &state)), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s\nCreated: %s\nLast accessed: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "Game state unavailable"
	}

	var b strings.Builder
	if state.LevelName != "" {
		fmt.Fprintf(&b, "Level: %s\n", state.LevelName)
	}
	fmt.Fprintf(&b, "Player: (%d,%d)\n", state.PlayerPos.Row, state.PlayerPos.Col)
	fmt.Fprintf(&b, "Baggage on targets: %d/%d\n", state.OnTarget, state.TotalGoals)
	fmt.Fprintf(&b, "Moves: %d • Pushes: %d • Undo available: %d\n", state.CurrentMovesCount, state.Pushes, state.UndoDepth)
	if state.Completed {
		b.WriteString("Status: 🎉 SOLVED\n")
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	b.WriteString("\nBoard:\n")
	for i, row := range state.View {
		fmt.Fprintf(&b, "%2d %s\n", i, row)
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move failed\n")
	}

	if s := result.Step; s != nil {
		fmt.Fprintf(&b, "Step: %s (%d,%d)→(%d,%d)", s.Dir, s.From.Row, s.From.Col, s.To.Row, s.To.Col)
		if s.Pushed && s.BaggageTo != nil {
			fmt.Fprintf(&b, " pushed baggage to (%d,%d)", s.BaggageTo.Row, s.BaggageTo.Col)
			if s.OnTarget {
				b.WriteString(" [on target]")
			}
		}
		b.WriteString("\n")
	}

	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&b, "Blocked: attempted (%d,%d) tile=%q %s (blocker: %s)\n", a.Row, a.Col, a.TileChar, a.TileType, a.Blocker)
	}

	writeEvents(&b, result.Events)
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	levelName := ""
	if result.GameState != nil {
		levelName = result.GameState.LevelName
	}
	fmt.Fprintf(&b, "Session: %s • Level: %s\n", sessionID, levelName)

	fmt.Fprintf(&b, "Executed %d/%d moves", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s [%s]\n", result.StoppedReason, result.StopReasonCode)
	}
	fmt.Fprintf(&b, "Position: (%d,%d) → (%d,%d) • Pushes: +%d • On target: %d → %d\n",
		result.StartPos.Row, result.StartPos.Col, result.EndPos.Row, result.EndPos.Col,
		result.PushesDelta, result.OnTargetStart, result.OnTargetEnd)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			b.WriteString(formatStepLine(s))
		}
	}

	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&b, "\nBlocked at (%d,%d) tile=%q (%s)\n", a.Row, a.Col, a.TileChar, a.Blocker)
	}

	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s\n", strings.Join(result.PossibleMoves, ","))
	}
	if len(result.LocalView3x3) > 0 {
		b.WriteString("Local 3x3:\n")
		for _, row := range result.LocalView3x3 {
			b.WriteString(row)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatStepLine(s service.StepInfo) string {
	status := "✓"
	if !s.Success {
		status = "✗"
	}
	line := fmt.Sprintf("%d. %s (%d,%d)→(%d,%d) %s", s.Idx, s.Dir, s.From.Row, s.From.Col, s.To.Row, s.To.Col, status)
	if s.Pushed && s.BaggageTo != nil {
		line += fmt.Sprintf(" push→(%d,%d)", s.BaggageTo.Row, s.BaggageTo.Col)
	}
	if s.OnTarget {
		line += " on-target"
	}
	if s.Solved {
		line += " SOLVED"
	}
	return line + "\n"
}

func writeEvents(b *strings.Builder, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	b.WriteString("Events:\n")
	for _, event := range events {
		fmt.Fprintf(b, "- %s: %s\n", event.Type, event.Message)
	}
}

func formatValidation(result *service.ValidationResult) string {
	var b strings.Builder
	if result.Valid {
		b.WriteString("✓ Level is playable\n")
	} else {
		b.WriteString("✗ Level is not playable\n")
		for _, p := range result.Problems {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	s := result.Stats
	fmt.Fprintf(&b, "Rows: %d, Cols: %d, Walls: %d, Baggage: %d, Targets: %d, Players: %d\n",
		s.Rows, s.Cols, s.Walls, s.Baggage, s.Targets, s.Players)
	return b.String()
}

func formatCellInfo(info engine.CellInfo, state *engine.GameState) string {
	var b strings.Builder
	p := info.Position
	fmt.Fprintf(&b, "Cell (%d,%d): %s\n", p.Row, p.Col, info.Kind)
	if info.Target {
		if info.Kind == engine.Baggage {
			b.WriteString("Target: covered by baggage\n")
		} else {
			b.WriteString("Target: open\n")
		}
	}

	switch info.Kind {
	case engine.Wall:
		b.WriteString("Impassable\n")
	case engine.Baggage:
		b.WriteString("Pushable if the cell beyond it is free\n")
	case engine.Player:
		b.WriteString("Your current position\n")
	default:
		b.WriteString("Free to walk onto\n")
	}

	if info.Kind != engine.Player {
		fmt.Fprintf(&b, "Distance from player: %d\n", engine.ManhattanDistance(state.PlayerPos, p))
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) • Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		b.WriteString(formatHistoryEntry(move.MoveNumber, move))
	}
	return b.String()
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return "Current Segment: unavailable"
	}
	header := fmt.Sprintf("Current Move Segment • Moves: %d\n\n", state.CurrentMovesCount)
	if len(state.CurrentMoves) == 0 {
		return header + "(no moves in current segment)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, move := range state.CurrentMoves {
		b.WriteString(formatHistoryEntry(i+1, move))
	}
	return b.String()
}

func formatHistoryEntry(num int, move engine.MoveHistoryEntry) string {
	status := "✓"
	if !move.Success {
		status = "✗"
	}
	line := fmt.Sprintf("%d. %s %s (%d,%d)→(%d,%d)", num, move.Action, status,
		move.FromPosition.Row, move.FromPosition.Col, move.ToPosition.Row, move.ToPosition.Col)
	if move.Pushed {
		line += " [push]"
	}
	return line + "\n"
}
