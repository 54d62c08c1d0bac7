package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/sokoban/api"
	"github.com/wricardo/sokoban/game/config"
	"github.com/wricardo/sokoban/game/engine"
	"github.com/wricardo/sokoban/game/service"
	"github.com/wricardo/sokoban/game/session"
)

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected tool result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return text.Text
}

// newBackend starts the REST API on a temporary levels directory
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	level := `{"name": "Tiny", "description": "One push", "layout": ["######", "#@$ .#", "#    #", "######"]}`
	if err := os.WriteFile(filepath.Join(dir, "tiny.json"), []byte(level), 0644); err != nil {
		t.Fatal(err)
	}
	configs, err := config.NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	gameService := service.NewGameService(session.NewManager(), configs)
	srv := httptest.NewServer(api.NewServer(gameService, nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_ToolsRegistered(t *testing.T) {
	client := NewClient("http://localhost:8080")

	msg := client.GetMCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)

	want := []string{
		"bulk_move", "create_session", "delete_session", "describe_cell", "game_instructions",
		"game_state", "get_session", "list_levels", "list_sessions", "move", "move_history",
		"reset_game", "undo", "validate_level",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Unexpected tools:\n got %v\nwant %v", names, want)
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]string
	if err := client.apiCall(context.Background(), "GET", "/api/health", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("Unexpected response %v", response)
	}
}

func TestClient_apiCall_Errors(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1")
		if err := client.apiCall(context.Background(), "GET", "/api/health", nil, nil); err == nil {
			t.Error("Expected error for unreachable server")
		}
	})

	t.Run("plain status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
		if err == nil || !strings.Contains(err.Error(), "API error: 500") {
			t.Errorf("Expected 'API error: 500', got: %v", err)
		}
	})

	t.Run("json error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
		if err == nil || err.Error() != "session not found" {
			t.Errorf("Expected server message, got: %v", err)
		}
	})
}

func TestClient_MissingArguments(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	ctx := context.Background()

	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]any
	}{
		{"game_state", client.handleGameState, map[string]any{}},
		{"move", client.handleMove, map[string]any{"session_id": "ab12"}},
		{"bulk_move", client.handleBulkMove, map[string]any{"session_id": "ab12", "moves": "up"}},
		{"describe_cell", client.handleDescribeCell, map[string]any{"session_id": "ab12", "row": 1.0}},
		{"validate_level", client.handleValidateLevel, map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handler(ctx, callRequest(tt.name, tt.args))
			if err != nil {
				t.Fatalf("Handler returned error: %v", err)
			}
			if !result.IsError {
				t.Error("Expected tool error result")
			}
		})
	}
}

func TestClient_PlaySession(t *testing.T) {
	backend := newBackend(t)
	client := NewClient(backend.URL)
	ctx := context.Background()

	result, _ := client.handleCreateSession(ctx, callRequest("create_session", map[string]any{"config_id": "tiny"}))
	text := resultText(t, result)
	if result.IsError || !strings.Contains(text, "Level: tiny") {
		t.Fatalf("Unexpected create result: %s", text)
	}
	sessionID := strings.TrimSpace(strings.TrimPrefix(strings.SplitN(text, "\n", 2)[0], "Created session:"))

	result, _ = client.handleMove(ctx, callRequest("move", map[string]any{
		"session_id": sessionID,
		"direction":  "up",
		"intent":     "check the wall",
	}))
	text = resultText(t, result)
	if !strings.Contains(text, "✗ Move failed") || !strings.Contains(text, "blocker: wall") {
		t.Errorf("Expected blocked move, got:\n%s", text)
	}

	result, _ = client.handleBulkMove(ctx, callRequest("bulk_move", map[string]any{
		"session_id": sessionID,
		"moves":      []any{"right", "right", "right"},
	}))
	text = resultText(t, result)
	if !strings.Contains(text, "Executed 2/3 moves") || !strings.Contains(text, "SOLVED") {
		t.Errorf("Expected solve after two pushes, got:\n%s", text)
	}

	result, _ = client.handleDescribeCell(ctx, callRequest("describe_cell", map[string]any{
		"session_id": sessionID, "row": 1.0, "col": 4.0,
	}))
	text = resultText(t, result)
	if !strings.Contains(text, "Cell (1,4): baggage") || !strings.Contains(text, "covered by baggage") {
		t.Errorf("Unexpected cell description:\n%s", text)
	}

	result, _ = client.handleDescribeCell(ctx, callRequest("describe_cell", map[string]any{
		"session_id": sessionID, "row": 9.0, "col": 0.0,
	}))
	if !result.IsError {
		t.Error("Expected error for a cell outside the board")
	}

	result, _ = client.handleUndo(ctx, callRequest("undo", map[string]any{"session_id": sessionID}))
	text = resultText(t, result)
	if !strings.Contains(text, "✓ Undone") || strings.Contains(text, "SOLVED") {
		t.Errorf("Expected undo to unsolve, got:\n%s", text)
	}

	result, _ = client.handleMoveHistory(ctx, callRequest("move_history", map[string]any{
		"session_id": sessionID, "page": 1.0, "limit": 10.0,
	}))
	text = resultText(t, result)
	if !strings.Contains(text, "Total (cumulative): 4") || !strings.Contains(text, "[push]") {
		t.Errorf("Unexpected history:\n%s", text)
	}

	result, _ = client.handleReset(ctx, callRequest("reset_game", map[string]any{"session_id": sessionID}))
	if text = resultText(t, result); !strings.Contains(text, "Game reset successfully") || !strings.Contains(text, "Player: (1,1)") {
		t.Errorf("Unexpected reset result:\n%s", text)
	}

	result, _ = client.handleListSessions(ctx, callRequest("list_sessions", nil))
	if text = resultText(t, result); !strings.Contains(text, "Active Sessions (1)") {
		t.Errorf("Unexpected session list:\n%s", text)
	}

	result, _ = client.handleDeleteSession(ctx, callRequest("delete_session", map[string]any{"session_id": sessionID}))
	if result.IsError {
		t.Errorf("Delete failed: %s", resultText(t, result))
	}

	result, _ = client.handleGetSession(ctx, callRequest("get_session", map[string]any{"session_id": sessionID}))
	if !result.IsError || !strings.Contains(resultText(t, result), "not found") {
		t.Error("Expected deleted session to be gone")
	}
}

func TestClient_Levels(t *testing.T) {
	backend := newBackend(t)
	client := NewClient(backend.URL)
	ctx := context.Background()

	result, _ := client.handleListLevels(ctx, callRequest("list_levels", nil))
	text := resultText(t, result)
	if !strings.Contains(text, "Tiny (config_id: tiny)") || !strings.Contains(text, "4 rows x 6 cols, Baggage: 1") {
		t.Errorf("Unexpected level list:\n%s", text)
	}

	result, _ = client.handleValidateLevel(ctx, callRequest("validate_level", map[string]any{
		"level": "#####\n#@$.#\n#####",
	}))
	if text = resultText(t, result); !strings.Contains(text, "✓ Level is playable") {
		t.Errorf("Expected playable level:\n%s", text)
	}

	result, _ = client.handleValidateLevel(ctx, callRequest("validate_level", map[string]any{
		"level": "#####\n#@$ #\n#####",
	}))
	if text = resultText(t, result); !strings.Contains(text, "✗ Level is not playable") {
		t.Errorf("Expected unplayable level:\n%s", text)
	}
}

func TestFormatGameState(t *testing.T) {
	if got := formatGameState(nil); got != "Game state unavailable" {
		t.Errorf("Unexpected nil state output %q", got)
	}

	eng := engine.NewEngineWithDefaults()
	text := formatGameState(eng.GetState())
	for _, want := range []string{"Level: Classic", "Baggage on targets: 0/6", "Board:"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
}

func TestGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")
	result, err := client.handleGameInstructions(context.Background(), callRequest("game_instructions", nil))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, result)
	for _, want := range []string{"# - Wall", "$ - Baggage", ". - Target", "undo"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in instructions", want)
		}
	}
}
