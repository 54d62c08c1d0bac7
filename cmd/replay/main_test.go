package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/sokoban/api"
	"github.com/wricardo/sokoban/game/config"
	"github.com/wricardo/sokoban/game/service"
	"github.com/wricardo/sokoban/game/session"
)

// newBackend serves the REST API over a levels directory holding one level
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	level := `{"name": "Corridor", "description": "One push", "layout": ["#######", "#@ $ .#", "#     #", "#######"]}`
	if err := os.WriteFile(filepath.Join(dir, "corridor.json"), []byte(level), 0644); err != nil {
		t.Fatal(err)
	}
	configs, err := config.NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(api.NewServer(service.NewGameService(session.NewManager(), configs), nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseScript(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		want    string
		wantErr bool
	}{
		{"names", "up down, left right", "up,down,left,right", false},
		{"lurd", "rrDl", "right,right,down,left", false},
		{"mixed with comments", "# warmup\nright\n; push\nRR\n", "right,right,right", false},
		{"wasd names are words only", "UP Left", "up,left", false},
		{"empty", "  \n# nothing\n", "", false},
		{"unknown letter", "rrx", "", true},
		{"unknown word", "jump", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moves, err := parseScript(tt.script)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %v", moves)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := strings.Join(moves, ","); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPlay_Solves(t *testing.T) {
	srv := newBackend(t)
	client := NewClient(srv.URL + "/")

	summary, err := play(context.Background(), client, "corridor", []string{"right", "right", "right", "left"})
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if summary.Executed != 3 || summary.StopReason != service.StopSolved {
		t.Errorf("Expected to stop solved after 3 moves, got %d (%s)", summary.Executed, summary.StopReason)
	}
	if !summary.State.Completed || summary.State.Pushes != 2 {
		t.Errorf("Unexpected final state: completed=%v pushes=%d", summary.State.Completed, summary.State.Pushes)
	}
	if client.SessionID() != summary.SessionID || summary.SessionID == "" {
		t.Errorf("Session id mismatch: %q vs %q", client.SessionID(), summary.SessionID)
	}

	var buf bytes.Buffer
	printSummary(&buf, summary)
	for _, want := range []string{"3/4 moves played", "Pushes: 2", "Level solved", "#######"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Expected %q in summary:\n%s", want, buf.String())
		}
	}
}

func TestPlay_Blocked(t *testing.T) {
	srv := newBackend(t)
	client := NewClient(srv.URL)

	summary, err := play(context.Background(), client, "corridor", []string{"down", "down", "right"})
	if err == nil || !strings.Contains(err.Error(), "stopped on move 2") {
		t.Fatalf("Expected blocked error on move 2, got %v", err)
	}
	if summary.Executed != 1 || summary.StopReason != service.StopBlockedWall {
		t.Errorf("Unexpected summary %+v", summary)
	}
}

func TestPlay_Batches(t *testing.T) {
	srv := newBackend(t)
	client := NewClient(srv.URL)

	var moves []string
	for i := 0; i < 75; i++ {
		moves = append(moves, "down", "up")
	}
	summary, err := play(context.Background(), client, "", moves)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if summary.Executed != 150 || summary.StopReason != "" {
		t.Errorf("Expected all 150 moves across batches, got %d (%s)", summary.Executed, summary.StopReason)
	}
	if summary.State.CurrentMovesCount != 150 {
		t.Errorf("Expected 150 moves on the server, got %d", summary.State.CurrentMovesCount)
	}
}

func TestPlay_Errors(t *testing.T) {
	srv := newBackend(t)

	if _, err := play(context.Background(), NewClient(srv.URL), "missing", []string{"up"}); err == nil || !strings.Contains(err.Error(), "create session") {
		t.Errorf("Expected create session error, got %v", err)
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer broken.Close()
	if _, err := play(context.Background(), NewClient(broken.URL), "", []string{"up"}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Expected server error body in message, got %v", err)
	}
}

func TestApp(t *testing.T) {
	srv := newBackend(t)
	script := filepath.Join(t.TempDir(), "solve.txt")
	if err := os.WriteFile(script, []byte("# corridor\nrr\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	err := app.Run(context.Background(), []string{"replay", "--url", srv.URL, "--level", "corridor", "--file", script, "right"})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !strings.Contains(buf.String(), "3/3 moves played") || !strings.Contains(buf.String(), "Level solved") {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}

	app = newApp()
	app.Writer = &buf
	if err := app.Run(context.Background(), []string{"replay", "--url", srv.URL}); err == nil {
		t.Error("Expected error without moves")
	}
}
