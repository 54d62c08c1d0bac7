package session

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/sokoban/game/engine"
	"github.com/wricardo/sokoban/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions.
// Undo history is not persisted; a restored session starts with an empty log.
type PersistedSessionData struct {
	ID             string              `json:"id"`
	ConfigID       string              `json:"config_id"`
	Level          *engine.LevelConfig `json:"level"` // Snapshot used when the level file is gone
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
}

// snapshot captures the persistent part of a session
func snapshot(session *service.Session) (*PersistedSessionData, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if session.Engine == nil {
		return nil, fmt.Errorf("session %s has no engine", session.ID)
	}
	return &PersistedSessionData{
		ID:             session.ID,
		ConfigID:       session.ConfigID,
		Level:          session.Config,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState().Clone(),
	}, nil
}

// restore rebuilds a live session from persisted data. The level is looked up by
// its identifier first and falls back to the stored snapshot.
func restore(data *PersistedSessionData, configs service.ConfigManager) (*service.Session, error) {
	var level *engine.LevelConfig
	if configs != nil && data.ConfigID != "" {
		loaded, err := configs.LoadConfig(data.ConfigID)
		if err == nil {
			level = loaded
		} else {
			log.Debug().Err(err).Str("session", data.ID).Str("level", data.ConfigID).Msg("level unavailable, using stored snapshot")
		}
	}
	if level == nil {
		level = data.Level
	}
	if level == nil {
		return nil, fmt.Errorf("no level available for session %s", data.ID)
	}

	gameEngine, err := engine.NewEngine(level)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}

	if data.GameState != nil {
		if err := gameEngine.SetState(data.GameState); err != nil {
			return nil, fmt.Errorf("failed to set game state: %w", err)
		}
	}

	return &service.Session{
		ID:             data.ID,
		ConfigID:       data.ConfigID,
		Engine:         gameEngine,
		Config:         level,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}
