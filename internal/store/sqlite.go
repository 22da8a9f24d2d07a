package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/mailscore/internal/model"
)

// MergeRun records one Save of a collection.
type MergeRun struct {
	ID         string
	Collection string
	Total      int
	Added      int
	RanAt      time.Time
}

// SQLiteStore implements CollectionStore using a local SQLite database.
// Each message is kept as its JSON document plus a few indexed columns.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// An in-memory database exists per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Load reads the named collection with its messages in stored order.
func (s *SQLiteStore) Load(ctx context.Context, name string) (*model.Collection, error) {
	var (
		summaryJSON string
		lastUpdated time.Time
	)
	row := s.db.QueryRowxContext(ctx,
		"SELECT summary, last_updated FROM collections WHERE name = ?", name)
	if err := row.Scan(&summaryJSON, &lastUpdated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading collection %s: %w", name, err)
	}

	c := &model.Collection{LastUpdated: lastUpdated}
	if err := json.Unmarshal([]byte(summaryJSON), &c.Summary); err != nil {
		return nil, fmt.Errorf("unmarshaling summary of %s: %w", name, err)
	}

	var payloads []string
	err := s.db.SelectContext(ctx, &payloads,
		"SELECT payload FROM messages WHERE collection = ? ORDER BY position", name)
	if err != nil {
		return nil, fmt.Errorf("loading messages of %s: %w", name, err)
	}

	c.Emails = make([]model.Message, 0, len(payloads))
	for i, p := range payloads {
		var m model.Message
		if err := json.Unmarshal([]byte(p), &m); err != nil {
			return nil, fmt.Errorf("unmarshaling message %d of %s: %w", i, name, err)
		}
		c.Emails = append(c.Emails, m)
	}

	return c, nil
}

// Save replaces the named collection in a single transaction and records
// the run in merge_runs.
func (s *SQLiteStore) Save(ctx context.Context, name string, c *model.Collection) error {
	if err := validName(name); err != nil {
		return fmt.Errorf("saving %q: %w", name, err)
	}

	summaryJSON, err := json.Marshal(c.Summary)
	if err != nil {
		return fmt.Errorf("marshaling summary of %s: %w", name, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var previous int
	if err := tx.GetContext(ctx, &previous,
		"SELECT COUNT(*) FROM messages WHERE collection = ?", name); err != nil {
		return fmt.Errorf("counting messages of %s: %w", name, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO collections (name, summary, last_updated) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET summary = excluded.summary, last_updated = excluded.last_updated`,
		name, string(summaryJSON), c.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting collection %s: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE collection = ?", name); err != nil {
		return fmt.Errorf("clearing messages of %s: %w", name, err)
	}

	const query = `
		INSERT INTO messages (
			collection, position, message_id, subject, sender,
			sent_at, importance_score, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i, m := range c.Emails {
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshaling message %s: %w", m.MessageID, err)
		}

		var sentAt any
		if m.HasDate() {
			sentAt = m.Date.UTC()
		}

		_, err = stmt.ExecContext(ctx,
			name, i, m.MessageID, m.Subject, m.From,
			sentAt, m.ImportanceScore, string(payload),
		)
		if err != nil {
			return fmt.Errorf("inserting message %s: %w", m.MessageID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO merge_runs (id, collection, total, added, ran_at) VALUES (?, ?, ?, ?, ?)",
		uuid.NewString(), name, len(c.Emails), len(c.Emails)-previous, s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording merge run for %s: %w", name, err)
	}

	return tx.Commit()
}

// List returns the names of all saved collections.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, "SELECT name FROM collections ORDER BY name"); err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	return names, nil
}

// History returns the recorded runs of a collection, newest first.
func (s *SQLiteStore) History(ctx context.Context, name string) ([]MergeRun, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, collection, total, added, ran_at FROM merge_runs WHERE collection = ? ORDER BY ran_at DESC, rowid DESC",
		name)
	if err != nil {
		return nil, fmt.Errorf("querying merge runs: %w", err)
	}
	defer rows.Close()

	var runs []MergeRun
	for rows.Next() {
		var r MergeRun
		if err := rows.Scan(&r.ID, &r.Collection, &r.Total, &r.Added, &r.RanAt); err != nil {
			return nil, fmt.Errorf("scanning merge run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
