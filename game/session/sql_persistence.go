package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/wricardo/sokoban/game/service"
)

// Dialect names a supported SQL backend
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	config_id TEXT NOT NULL,
	data TEXT NOT NULL,
	updated_at BIGINT NOT NULL
)`

// SQLPersistence implements SessionPersistence on a SQL database. Each session
// is one row holding its JSON encoded PersistedSessionData.
type SQLPersistence struct {
	db            *sql.DB
	dialect       Dialect
	configManager service.ConfigManager
}

// NewSQLitePersistence opens (and creates if missing) a SQLite database file
func NewSQLitePersistence(path string, configManager service.ConfigManager) (*SQLPersistence, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open(string(DialectSQLite), path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	return newSQLPersistence(db, DialectSQLite, configManager)
}

// NewPostgresPersistence connects to a PostgreSQL database
func NewPostgresPersistence(dsn string, configManager service.ConfigManager) (*SQLPersistence, error) {
	db, err := sql.Open(string(DialectPostgres), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newSQLPersistence(db, DialectPostgres, configManager)
}

func newSQLPersistence(db *sql.DB, dialect Dialect, configManager service.ConfigManager) (*SQLPersistence, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(sessionsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLPersistence{db: db, dialect: dialect, configManager: configManager}, nil
}

// Close releases the database handle
func (sp *SQLPersistence) Close() error {
	return sp.db.Close()
}

// Dialect returns the backend in use
func (sp *SQLPersistence) Dialect() Dialect {
	return sp.dialect
}

// rebind rewrites ? placeholders to the dialect's syntax
func (sp *SQLPersistence) rebind(query string) string {
	if sp.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Save upserts a session row
func (sp *SQLPersistence) Save(session *service.Session) error {
	data, err := snapshot(session)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	query := sp.rebind(`
	INSERT INTO sessions (id, config_id, data, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (id)
	DO UPDATE SET config_id = excluded.config_id, data = excluded.data, updated_at = excluded.updated_at`)

	if _, err := sp.db.Exec(query, strings.ToLower(session.ID), session.ConfigID, string(payload), time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load reads and restores a session row
func (sp *SQLPersistence) Load(id string) (*service.Session, error) {
	var payload string
	err := sp.db.QueryRow(sp.rebind(`SELECT data FROM sessions WHERE id = ?`), strings.ToLower(id)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	return restore(&data, sp.configManager)
}

// Delete removes a session row
func (sp *SQLPersistence) Delete(id string) error {
	res, err := sp.db.Exec(sp.rebind(`DELETE FROM sessions WHERE id = ?`), strings.ToLower(id))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs, oldest update first
func (sp *SQLPersistence) ListAll() ([]string, error) {
	rows, err := sp.db.Query(`SELECT id FROM sessions ORDER BY updated_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (sp *SQLPersistence) Exists(id string) bool {
	var one int
	err := sp.db.QueryRow(sp.rebind(`SELECT 1 FROM sessions WHERE id = ?`), strings.ToLower(id)).Scan(&one)
	return err == nil
}
