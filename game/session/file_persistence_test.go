package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/sokoban/game/config"
	"github.com/wricardo/sokoban/game/engine"
	"github.com/wricardo/sokoban/game/service"
)

// newTestConfigManager writes the test level into a temporary levels directory
func newTestConfigManager(t *testing.T) (*config.Manager, string) {
	t.Helper()
	dir := t.TempDir()

	data, err := json.Marshal(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to marshal level: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "test.json"), data, 0644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}

	manager, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	return manager, dir
}

func newTestSession(t *testing.T, id string, level *engine.LevelConfig) *service.Session {
	t.Helper()
	eng, err := engine.NewEngine(level)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return &service.Session{
		ID:             id,
		ConfigID:       "test",
		Engine:         eng,
		Config:         level,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
}

// exercisePersistence runs the behaviour every SessionPersistence must share
func exercisePersistence(t *testing.T, persistence SessionPersistence, configManager service.ConfigManager) {
	gameConfig, err := configManager.LoadConfig("test")
	if err != nil {
		t.Fatalf("Failed to load level: %v", err)
	}
	session := newTestSession(t, "test1", gameConfig)

	t.Run("Save and Load Session", func(t *testing.T) {
		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}
		if !persistence.Exists("test1") {
			t.Error("Session should exist after save")
		}

		loadedSession, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if loadedSession.ID != session.ID || loadedSession.ConfigID != "test" {
			t.Errorf("Expected ID %s/test, got %s/%s", session.ID, loadedSession.ID, loadedSession.ConfigID)
		}
		if loadedSession.Config.Name != session.Config.Name {
			t.Errorf("Expected config name %s, got %s", session.Config.Name, loadedSession.Config.Name)
		}
	})

	t.Run("Save State Changes", func(t *testing.T) {
		if !session.Engine.Move("right") || !session.Engine.Move("down") {
			t.Fatal("Expected moves to succeed")
		}

		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save updated session: %v", err)
		}

		loadedSession, err := persistence.Load("TEST1")
		if err != nil {
			t.Fatalf("Failed to load updated session: %v", err)
		}

		want, got := session.Engine.GetState(), loadedSession.Engine.GetState()
		if got.PlayerPos != want.PlayerPos {
			t.Errorf("Player position not persisted: %+v vs %+v", got.PlayerPos, want.PlayerPos)
		}
		if strings.Join(got.Grid, "\n") != strings.Join(want.Grid, "\n") {
			t.Errorf("Board not persisted:\n%s\nvs\n%s", strings.Join(got.Grid, "\n"), strings.Join(want.Grid, "\n"))
		}
		if got.Pushes != 1 {
			t.Errorf("Expected 1 push, got %d", got.Pushes)
		}
		if len(loadedSession.Engine.GetMoveHistory()) != len(session.Engine.GetMoveHistory()) {
			t.Errorf("Move history not persisted correctly")
		}
		if loadedSession.Engine.CanUndo() {
			t.Error("Restored sessions start with an empty undo log")
		}
	})

	t.Run("List All Sessions", func(t *testing.T) {
		session2 := newTestSession(t, "test2", gameConfig)
		if err := persistence.Save(session2); err != nil {
			t.Fatalf("Failed to save second session: %v", err)
		}

		sessionIDs, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}

		found := make(map[string]bool)
		for _, id := range sessionIDs {
			found[id] = true
		}
		if !found["test1"] || !found["test2"] {
			t.Errorf("Expected sessions not found in list %v", sessionIDs)
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		if err := persistence.Delete("test2"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if persistence.Exists("test2") {
			t.Error("Session should not exist after delete")
		}
		if _, err := persistence.Load("test2"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Error Cases", func(t *testing.T) {
		if _, err := persistence.Load("nonexistent"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
		if err := persistence.Delete("nonexistent"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
		if err := persistence.Save(nil); err == nil {
			t.Error("Should get error when saving nil session")
		}
	})
}

func TestFilePersistence(t *testing.T) {
	configManager, _ := newTestConfigManager(t)

	persistence, err := NewFilePersistence(t.TempDir(), configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	exercisePersistence(t, persistence, configManager)
}

func TestFilePersistenceFileStructure(t *testing.T) {
	tempDir := t.TempDir()
	configManager, _ := newTestConfigManager(t)

	persistence, err := NewFilePersistence(tempDir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	session := newTestSession(t, "File_Test", createTestConfig())
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	// Session files are keyed by the lower-cased ID
	expectedFile := filepath.Join(tempDir, "file_test.json")
	data, err := os.ReadFile(expectedFile)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}

	content := string(data)
	expectedFields := []string{`"id"`, `"config_id"`, `"level"`, `"created_at"`, `"game_state"`, `"grid"`}
	for _, field := range expectedFields {
		if !strings.Contains(content, field) {
			t.Errorf("Session file should contain field %s", field)
		}
	}

	if _, err := os.Stat(expectedFile + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file should not be left behind")
	}
}

func TestFilePersistence_LevelSnapshotFallback(t *testing.T) {
	configManager, levelsDir := newTestConfigManager(t)
	sessionsDir := t.TempDir()

	persistence, err := NewFilePersistence(sessionsDir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	level, _ := configManager.LoadConfig("test")
	session := newTestSession(t, "orphan", level)
	session.Engine.Move("right")
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	// Remove the level file and start from a cold cache
	if err := os.Remove(filepath.Join(levelsDir, "test.json")); err != nil {
		t.Fatalf("Failed to remove level: %v", err)
	}
	coldConfigs, err := config.NewManager(levelsDir)
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	cold, _ := NewFilePersistence(sessionsDir, coldConfigs)

	loaded, err := cold.Load("orphan")
	if err != nil {
		t.Fatalf("Expected snapshot fallback, got %v", err)
	}
	if loaded.Config.Name != level.Name {
		t.Errorf("Expected level %s, got %s", level.Name, loaded.Config.Name)
	}
	if loaded.Engine.GetPlayerPosition() != (engine.Position{Row: 1, Col: 2}) {
		t.Errorf("Unexpected player position %+v", loaded.Engine.GetPlayerPosition())
	}
}
