package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ykvlv/etymology-bot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single writer engine: one connection also serializes every Merge.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db, now: time.Now}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Merge upserts the patch in one statement. Untouched columns keep their value
// through COALESCE; last_sent_at only ever moves forward.
func (r *SQLiteRepo) Merge(ctx context.Context, chatID int64, patch domain.Patch) error {
	interests, err := encodeInterests(patch.Interests)
	if err != nil {
		return &domain.StoreError{Op: "merge", Err: err}
	}
	now := r.now().UTC().UnixMilli()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (
			chat_id, language, interests, interval_hours, last_sent_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			language       = COALESCE(excluded.language, users.language),
			interests      = COALESCE(excluded.interests, users.interests),
			interval_hours = COALESCE(excluded.interval_hours, users.interval_hours),
			last_sent_at   = CASE
				WHEN excluded.last_sent_at IS NULL THEN users.last_sent_at
				WHEN users.last_sent_at IS NULL OR excluded.last_sent_at > users.last_sent_at
					THEN excluded.last_sent_at
				ELSE users.last_sent_at
			END,
			updated_at     = excluded.updated_at`,
		chatID, toNullString(patch.Language), interests, toNullInt(patch.IntervalHours),
		toNullMillis(patch.LastSentAt), now, now,
	)
	if err != nil {
		return &domain.StoreError{Op: "merge", Err: err}
	}
	return nil
}

// GetUser returns a profile by chatID or domain.ErrNotFound.
func (r *SQLiteRepo) GetUser(ctx context.Context, chatID int64) (*domain.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM users WHERE chat_id = ?`, chatID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "get", Err: err}
	}
	return p, nil
}

// ListEligible returns profiles that finished onboarding, ordered by chat id.
func (r *SQLiteRepo) ListEligible(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM users
		WHERE language IS NOT NULL
		  AND interests IS NOT NULL
		  AND interval_hours IS NOT NULL
		ORDER BY chat_id ASC`)
	if err != nil {
		return nil, &domain.StoreError{Op: "list eligible", Err: err}
	}
	defer rows.Close()

	var res []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, &domain.StoreError{Op: "list eligible", Err: err}
		}
		// unknown language codes left by older builds are skipped
		if p.Eligible() {
			res = append(res, *p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "list eligible", Err: err}
	}
	return res, nil
}
