package promptstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"meetingmind/internal/domain"
)

// SQLitePromptStore implements domain.PromptStore using SQLite.
type SQLitePromptStore struct {
	db *sql.DB
}

// NewSQLitePromptStore opens (or creates) a SQLite database at dbPath
// and runs the schema migration.
func NewSQLitePromptStore(dbPath string) (*SQLitePromptStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open prompt db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate prompt db: %w", err)
	}
	return &SQLitePromptStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS prompt_versions (
			agent_name   TEXT NOT NULL,
			version_name TEXT NOT NULL,
			prompt_text  TEXT NOT NULL,
			timestamp    INTEGER NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (agent_name, version_name)
		)
	`)
	return err
}

// Close closes the underlying database connection.
func (s *SQLitePromptStore) Close() error {
	return s.db.Close()
}

func (s *SQLitePromptStore) Create(_ context.Context, v domain.PromptVersion) error {
	if v.Timestamp == 0 {
		v.Timestamp = time.Now().UnixMilli()
	}
	_, err := s.db.Exec(
		"INSERT INTO prompt_versions (agent_name, version_name, prompt_text, timestamp, description) VALUES (?, ?, ?, ?, ?)",
		v.AgentName, v.VersionName, v.PromptText, v.Timestamp, v.Description,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDomainError("PromptStore.Create", domain.ErrDuplicate,
				v.AgentName+"/"+v.VersionName)
		}
		return err
	}
	return nil
}

func (s *SQLitePromptStore) Delete(_ context.Context, agentName, versionName string) error {
	res, err := s.db.Exec(
		"DELETE FROM prompt_versions WHERE agent_name = ? AND version_name = ?",
		agentName, versionName,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrVersionNotFound
	}
	return nil
}

func (s *SQLitePromptStore) List(_ context.Context, agentName string) ([]domain.PromptVersion, error) {
	rows, err := s.db.Query(
		"SELECT agent_name, version_name, prompt_text, timestamp, description FROM prompt_versions WHERE agent_name = ? ORDER BY timestamp DESC",
		agentName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []domain.PromptVersion
	for rows.Next() {
		var v domain.PromptVersion
		if err := rows.Scan(&v.AgentName, &v.VersionName, &v.PromptText, &v.Timestamp, &v.Description); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *SQLitePromptStore) Latest(_ context.Context, agentName string) (*domain.PromptVersion, error) {
	row := s.db.QueryRow(
		"SELECT agent_name, version_name, prompt_text, timestamp, description FROM prompt_versions WHERE agent_name = ? ORDER BY timestamp DESC LIMIT 1",
		agentName,
	)
	return scanVersion(row)
}

func (s *SQLitePromptStore) Get(_ context.Context, agentName, versionName string) (*domain.PromptVersion, error) {
	row := s.db.QueryRow(
		"SELECT agent_name, version_name, prompt_text, timestamp, description FROM prompt_versions WHERE agent_name = ? AND version_name = ?",
		agentName, versionName,
	)
	return scanVersion(row)
}

func scanVersion(row *sql.Row) (*domain.PromptVersion, error) {
	var v domain.PromptVersion
	if err := row.Scan(&v.AgentName, &v.VersionName, &v.PromptText, &v.Timestamp, &v.Description); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrVersionNotFound
		}
		return nil, err
	}
	return &v, nil
}

// isUniqueViolation detects a primary key conflict from the sqlite
// driver without depending on its error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

var _ domain.PromptStore = (*SQLitePromptStore)(nil)
