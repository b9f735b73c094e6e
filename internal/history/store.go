// Package history keeps a PostgreSQL log of processed documents: one row per
// successful run with its per-platform link counts.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/LinkSort/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDisabled reports that no database is configured.
var ErrDisabled = errors.New("history disabled")

const schema = `
CREATE TABLE IF NOT EXISTS link_reports (
	id         uuid PRIMARY KEY,
	file_name  text        NOT NULL,
	kind       text        NOT NULL,
	twitter    integer     NOT NULL DEFAULT 0,
	youtube    integer     NOT NULL DEFAULT 0,
	instagram  integer     NOT NULL DEFAULT 0,
	facebook   integer     NOT NULL DEFAULT 0,
	total      integer     NOT NULL DEFAULT 0,
	created_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS link_reports_created_at_idx ON link_reports (created_at DESC);
`

const insertReport = `
INSERT INTO link_reports (id, file_name, kind, twitter, youtube, instagram, facebook, total, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO NOTHING`

const selectRecent = `
SELECT id, file_name, kind, twitter, youtube, instagram, facebook, total, created_at
FROM link_reports
ORDER BY created_at DESC
LIMIT $1`

// Config holds connection pool settings.
type Config struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Entry is one recorded run.
type Entry struct {
	ID        string                `json:"id"`
	FileName  string                `json:"file_name"`
	Kind      string                `json:"kind"`
	Counts    map[core.Platform]int `json:"counts"`
	Total     int                   `json:"total"`
	CreatedAt time.Time             `json:"created_at"`
}

// Store records reports in PostgreSQL. It implements core.Recorder.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.Recorder = (*Store)(nil)

// Open connects to the database, verifies the connection and creates the
// schema if needed.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := New(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool. The caller owns the schema.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the link_reports table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Record stores a summary of rep. Recording the same report twice is a no-op.
func (s *Store) Record(ctx context.Context, rep *core.Report) error {
	e, err := entryFromReport(rep)
	if err != nil {
		return err
	}

	id, err := toPgUUID(e.ID)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, insertReport,
		id,
		e.FileName,
		e.Kind,
		e.Counts[core.Twitter],
		e.Counts[core.YouTube],
		e.Counts[core.Instagram],
		e.Counts[core.Facebook],
		e.Total,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, selectRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}
	return entries, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

func scanEntry(row pgx.CollectableRow) (Entry, error) {
	var (
		e                                            Entry
		id                                           pgtype.UUID
		twitter, youtube, instagram, facebook, total int32
	)
	if err := row.Scan(&id, &e.FileName, &e.Kind, &twitter, &youtube, &instagram, &facebook, &total, &e.CreatedAt); err != nil {
		return Entry{}, err
	}

	e.ID = uuidToString(id)
	e.Counts = map[core.Platform]int{
		core.Twitter:   int(twitter),
		core.YouTube:   int(youtube),
		core.Instagram: int(instagram),
		core.Facebook:  int(facebook),
	}
	e.Total = int(total)
	return e, nil
}

// entryFromReport summarises rep for storage.
func entryFromReport(rep *core.Report) (Entry, error) {
	if rep == nil || rep.Result == nil {
		return Entry{}, errors.New("history: report has no result")
	}
	created := rep.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return Entry{
		ID:        rep.ID,
		FileName:  rep.FileName,
		Kind:      rep.Kind.String(),
		Counts:    rep.Result.Counts(),
		Total:     rep.Result.Total(),
		CreatedAt: created.UTC(),
	}, nil
}

func toPgUUID(s string) (pgtype.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("invalid report id %q: %w", s, err)
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
