package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/sokoban/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Clone(),
		LevelConfig:    sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.LevelConfig
	var err error
	configID := configName
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found (available: %v): %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found, use /api/configs to list available levels: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.configs.DefaultID()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().Str("session", session.ID).Str("level", configID).Msg("session created")
	return sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.touch(sessionID)
	return sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.touch(sessionID)

	events := []GameEvent{}

	// Handle reset if requested
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	step, stepEvents, success := s.step(sess, 1, direction)
	state := sess.Engine.GetState().Clone()

	result := &MoveResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
		Events:    append(events, stepEvents...),
	}
	if success {
		result.Step = step
	} else {
		result.AttemptedTo = attemptInfo(sess.Engine)
	}

	s.persist(sessionID, "move")
	return result, nil
}

// BulkMove executes multiple moves in sequence, stopping at the first blocked
// move or once the level is solved
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.touch(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	// Handle reset
	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}

	// Initialize result and capture start snapshot
	start := sess.Engine.GetState()
	result.StartPos = start.PlayerPos
	result.OnTargetStart = start.OnTarget
	startPushes := start.Pushes

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if _, ok := engine.ParseDirection(move); !ok {
			result.Success = false
			result.StopReasonCode = StopInvalidDirection
			result.StoppedReason = fmt.Sprintf("move %d: unknown direction %q", i+1, move)
			result.StoppedOnMove = i + 1
			break
		}

		step, events, success := s.step(sess, i+1, move)
		result.Events = append(result.Events, events...)

		if !success {
			result.Success = false
			result.StopReasonCode = stopCode(sess.Engine.LastPlan().Blocked)
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, move)
			result.StoppedOnMove = i + 1
			result.AttemptedTo = attemptInfo(sess.Engine)
			break
		}

		result.MovesExecuted++
		result.Steps = append(result.Steps, *step)

		if step.Solved {
			result.StopReasonCode = StopSolved
			result.StoppedReason = "level solved"
			result.StoppedOnMove = i + 1
			break
		}
	}

	// Finalize snapshots
	end := sess.Engine.GetState().Clone()
	result.GameState = end
	result.EndPos = end.PlayerPos
	result.OnTargetEnd = end.OnTarget
	result.PushesDelta = end.Pushes - startPushes
	result.Solved = end.Completed
	result.Message = end.Message

	// Decision aids
	result.PossibleMoves = sess.Engine.GetPossibleMoves()
	result.LocalView3x3 = buildLocal3x3(end)

	s.persist(sessionID, "bulk move")
	return result, nil
}

// Undo reverts the most recent move of a session
func (s *gameServiceImpl) Undo(ctx context.Context, sessionID string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.touch(sessionID)

	from := sess.Engine.GetPlayerPosition()
	success := sess.Engine.Undo()
	state := sess.Engine.GetState().Clone()

	result := &MoveResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
	}
	if success {
		to := sess.Engine.GetPlayerPosition()
		result.Step = &StepInfo{Idx: 1, Dir: "undo", From: from, To: to, Success: true}
		if last := sess.Engine.GetLastMove(); last != nil && last.Pushed {
			result.Step.Pushed = true
		}
		result.Events = []GameEvent{{
			Type:      "undo",
			Message:   fmt.Sprintf("Undid last move, back at (%d,%d)", to.Row, to.Col),
			Timestamp: time.Now(),
			Position:  to,
		}}
	}

	s.persist(sessionID, "undo")
	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.touch(sessionID)
	state := sess.Engine.Reset().Clone()

	s.persist(sessionID, "reset")
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.touch(sessionID)
	return sess.Engine.GetState().Clone(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append([]engine.MoveHistoryEntry(nil), history[start:end]...)
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available level configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific level configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.LevelConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a level configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.LevelConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// ValidateLevel checks level text without creating a session
func (s *gameServiceImpl) ValidateLevel(ctx context.Context, level string) (*ValidationResult, error) {
	d, err := engine.Decode(level, engine.BuilderMode)
	if err != nil {
		return nil, err
	}

	problems := engine.StructureProblems(d.Board)
	if problems == nil {
		problems = []string{}
	}
	return &ValidationResult{
		Valid:    len(problems) == 0,
		Problems: problems,
		Stats:    engine.AnalyzeLayout(engine.EncodeRows(d.Board)),
	}, nil
}

// step executes one move and describes it
func (s *gameServiceImpl) step(sess *Session, idx int, direction string) (*StepInfo, []GameEvent, bool) {
	eng := sess.Engine
	wasSolved := eng.IsSolved()
	targets := targetSet(eng.Targets())

	success := eng.Move(direction)
	if !success {
		return nil, nil, false
	}

	plan := eng.LastPlan()
	state := eng.GetState()
	now := time.Now()
	step := &StepInfo{
		Idx:     idx,
		Dir:     strings.ToLower(strings.TrimSpace(direction)),
		From:    plan.From,
		To:      plan.To,
		Success: true,
		Solved:  state.Completed,
	}
	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Moved %s to (%d,%d)", step.Dir, plan.To.Row, plan.To.Col),
		Timestamp: now,
		Position:  plan.To,
	}}

	if plan.Pushes {
		from, to := plan.BaggageFrom, plan.BaggageTo
		step.Pushed = true
		step.BaggageFrom, step.BaggageTo = &from, &to
		step.OnTarget = targets[to]
		events = append(events, GameEvent{
			Type:      "push",
			Message:   fmt.Sprintf("Pushed baggage from (%d,%d) to (%d,%d)", from.Row, from.Col, to.Row, to.Col),
			Timestamp: now,
			Position:  to,
		})
		if targets[from] && !targets[to] {
			events = append(events, GameEvent{
				Type:      "target_left",
				Message:   fmt.Sprintf("Baggage left the target at (%d,%d)", from.Row, from.Col),
				Timestamp: now,
				Position:  from,
			})
		}
		if targets[to] {
			events = append(events, GameEvent{
				Type:      "target_reached",
				Message:   fmt.Sprintf("Baggage on target (%d/%d)", state.OnTarget, state.TotalGoals),
				Timestamp: now,
				Position:  to,
			})
		}
	}

	if state.Completed && !wasSolved {
		events = append(events, GameEvent{
			Type:      "solved",
			Message:   state.Message,
			Timestamp: now,
		})
	}

	return step, events, true
}

// touch updates the last accessed time, logging failures
func (s *gameServiceImpl) touch(sessionID string) {
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		log.Debug().Err(err).Str("session", sessionID).Msg("failed to update last access")
	}
}

// persist auto-saves a session after a mutation
func (s *gameServiceImpl) persist(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Str("op", op).Msg("failed to persist session")
	}
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
	}
}

func targetSet(targets []engine.Position) map[engine.Position]bool {
	set := make(map[engine.Position]bool, len(targets))
	for _, t := range targets {
		set[t] = true
	}
	return set
}

func stopCode(b engine.Blocker) string {
	switch b {
	case engine.BlockedWall:
		return StopBlockedWall
	case engine.BlockedBaggage:
		return StopBlockedBaggage
	case engine.BlockedBoundary:
		return StopBlockedBoundary
	default:
		return StopInvalidDirection
	}
}

// attemptInfo describes the obstacle of the last blocked move
func attemptInfo(eng *engine.GameEngine) *AttemptInfo {
	plan := eng.LastPlan()
	if plan.OK() {
		return nil
	}
	info := &AttemptInfo{Row: plan.Obstacle.Row, Col: plan.Obstacle.Col, Blocker: string(plan.Blocked)}
	if plan.Blocked == engine.BlockedBoundary {
		info.TileType = "boundary"
		return info
	}
	kind := eng.Board().At(plan.Obstacle)
	info.TileChar, info.TileType = string(kind.Char()), string(kind)
	return info
}

// buildLocal3x3 returns the rendered cells around the player
func buildLocal3x3(state *engine.GameState) []string {
	if state == nil {
		return nil
	}
	pr, pc := state.PlayerPos.Row, state.PlayerPos.Col
	lines := make([]string, 0, 3)
	for dr := -1; dr <= 1; dr++ {
		var row strings.Builder
		for dc := -1; dc <= 1; dc++ {
			r, c := pr+dr, pc+dc
			// out of bounds reads as wall
			if r < 0 || r >= len(state.View) || c < 0 || c >= len(state.View[r]) {
				row.WriteByte(engine.WallChar)
				continue
			}
			row.WriteByte(state.View[r][c])
		}
		lines = append(lines, row.String())
	}
	return lines
}
