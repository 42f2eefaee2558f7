// Package store handles persistence of texts, sessions, quiz results and drills.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/flowread/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store is the SQLite Repository.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for record dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string, opts ...Option) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS texts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			word_count INTEGER NOT NULL,
			difficulty REAL NOT NULL,
			hash TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			mode TEXT NOT NULL,
			text_id TEXT NOT NULL,
			words INTEGER NOT NULL,
			wpm_target INTEGER NOT NULL,
			actual_wpm INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			technique TEXT NOT NULL,
			chunk_size INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS comprehension (
			session_id TEXT PRIMARY KEY,
			questions INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			percentage INTEGER NOT NULL,
			date TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS drills (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			type TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			score INTEGER NOT NULL,
			size INTEGER NOT NULL,
			date TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_mode ON sessions(mode);`,
		`CREATE INDEX IF NOT EXISTS idx_texts_created_at ON texts(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_drills_type_date ON drills(type, date);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveText stores content once; a known hash returns the existing record
// whatever the title.
func (s *Store) SaveText(ctx context.Context, title, content string) (model.Text, error) {
	t := NewText(title, content, s.now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO texts (id, title, content, word_count, difficulty, hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(hash) DO NOTHING`,
		t.ID, t.Title, t.Content, t.WordCount, t.Difficulty, t.Hash, t.CreatedAt.Format(TimeLayout))
	if err != nil {
		return model.Text{}, fmt.Errorf("failed to insert text: %w", err)
	}
	row := s.db.QueryRowContext(ctx, textSelect+` WHERE hash = ?`, t.Hash)
	return scanText(row)
}

const textSelect = `SELECT id, title, content, word_count, difficulty, hash, created_at FROM texts`

type scanner interface {
	Scan(dest ...any) error
}

func scanText(row scanner) (model.Text, error) {
	var t model.Text
	var created string
	if err := row.Scan(&t.ID, &t.Title, &t.Content, &t.WordCount, &t.Difficulty, &t.Hash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Text{}, ErrNotFound
		}
		return model.Text{}, fmt.Errorf("failed to scan text: %w", err)
	}
	parsed, err := time.Parse(TimeLayout, created)
	if err != nil {
		return model.Text{}, fmt.Errorf("failed to parse text date: %w", err)
	}
	t.CreatedAt = parsed
	return t, nil
}

// GetText returns the text with id.
func (s *Store) GetText(ctx context.Context, id string) (model.Text, error) {
	return scanText(s.db.QueryRowContext(ctx, textSelect+` WHERE id = ?`, id))
}

// ListTexts returns texts newest first. limit <= 0 means all.
func (s *Store) ListTexts(ctx context.Context, limit int) ([]model.Text, error) {
	rows, err := s.db.QueryContext(ctx, textSelect+` ORDER BY created_at DESC LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query texts: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var texts []model.Text
	for rows.Next() {
		t, err := scanText(rows)
		if err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read texts: %w", err)
	}
	return texts, nil
}

func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// SaveSession appends a session, assigning its id and date.
func (s *Store) SaveSession(ctx context.Context, sess model.Session) (model.Session, error) {
	sess.ID, sess.Date = Stamp(s.now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, date, mode, text_id, words, wpm_target, actual_wpm, duration_ms, technique, chunk_size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.Date.Format(TimeLayout),
		string(sess.Mode),
		sess.TextID,
		sess.Words,
		sess.WPMTarget,
		sess.ActualWPM,
		sess.DurationMs,
		string(sess.Technique),
		sess.ChunkSize,
	)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to insert session: %w", err)
	}
	return sess, nil
}

// RecentSessions returns sessions newest first. limit <= 0 means all.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]model.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, mode, text_id, words, wpm_target, actual_wpm, duration_ms, technique, chunk_size
		 FROM sessions
		 ORDER BY date DESC
		 LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.Session
	for rows.Next() {
		var sess model.Session
		var date, mode, technique string
		if err := rows.Scan(&sess.ID, &date, &mode, &sess.TextID, &sess.Words, &sess.WPMTarget,
			&sess.ActualWPM, &sess.DurationMs, &technique, &sess.ChunkSize); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		parsed, err := time.Parse(TimeLayout, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse session date: %w", err)
		}
		sess.Date = parsed
		sess.Mode = model.Mode(mode)
		sess.Technique = model.Technique(technique)
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	return sessions, nil
}

// DeleteSession removes a session and its quiz result.
func (s *Store) DeleteSession(ctx context.Context, id string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		err = ErrNotFound
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM comprehension WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete comprehension: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// SaveComprehension records the quiz result of a session. A session has at
// most one result; a second one returns ErrDuplicate.
func (s *Store) SaveComprehension(ctx context.Context, sessionID string, questions, correct int) (model.Comprehension, error) {
	c := NewComprehension(sessionID, questions, correct, s.now())
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO comprehension (session_id, questions, correct, percentage, date)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO NOTHING`,
		c.SessionID, c.Questions, c.Correct, c.Percentage, c.Date.Format(TimeLayout))
	if err != nil {
		return model.Comprehension{}, fmt.Errorf("failed to insert comprehension: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Comprehension{}, fmt.Errorf("failed to insert comprehension: %w", err)
	}
	if n == 0 {
		return model.Comprehension{}, ErrDuplicate
	}
	return c, nil
}

// AllComprehension returns every quiz result, oldest first.
func (s *Store) AllComprehension(ctx context.Context) ([]model.Comprehension, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, questions, correct, percentage, date FROM comprehension ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query comprehension: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.Comprehension
	for rows.Next() {
		var c model.Comprehension
		var date string
		if err := rows.Scan(&c.SessionID, &c.Questions, &c.Correct, &c.Percentage, &date); err != nil {
			return nil, fmt.Errorf("failed to scan comprehension: %w", err)
		}
		parsed, err := time.Parse(TimeLayout, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse comprehension date: %w", err)
		}
		c.Date = parsed
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comprehension: %w", err)
	}
	return out, nil
}

// SaveDrill appends a drill result, assigning its id and date.
func (s *Store) SaveDrill(ctx context.Context, d model.Drill) (model.Drill, error) {
	d.ID, d.Date = Stamp(s.now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drills (id, session_id, type, duration_ms, errors, score, size, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.SessionID, string(d.Type), d.DurationMs, d.Errors, d.Score, d.Size, d.Date.Format(TimeLayout))
	if err != nil {
		return model.Drill{}, fmt.Errorf("failed to insert drill: %w", err)
	}
	return d, nil
}

// ListDrills returns drills newest first, optionally of one kind.
func (s *Store) ListDrills(ctx context.Context, kind model.DrillType, limit int) ([]model.Drill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, type, duration_ms, errors, score, size, date
		 FROM drills
		 WHERE (? = '' OR type = ?)
		 ORDER BY date DESC
		 LIMIT ?`, string(kind), string(kind), sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query drills: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.Drill
	for rows.Next() {
		var d model.Drill
		var kindStr, date string
		if err := rows.Scan(&d.ID, &d.SessionID, &kindStr, &d.DurationMs, &d.Errors, &d.Score, &d.Size, &date); err != nil {
			return nil, fmt.Errorf("failed to scan drill: %w", err)
		}
		parsed, err := time.Parse(TimeLayout, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse drill date: %w", err)
		}
		d.Type = model.DrillType(kindStr)
		d.Date = parsed
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read drills: %w", err)
	}
	return out, nil
}

var _ Repository = (*Store)(nil)
