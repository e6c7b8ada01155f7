// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snapshot persists the last unfiltered ranking. The ranking is
// written verbatim as an indented JSON document, and a SQLite index of
// per-author area paper counts backs the publication distribution lookup.
// Only a ranking computed over every venue and the full year range may be
// written; anything else is refused with ErrFilteredSnapshot.
package snapshot

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

var (
	// ErrFilteredSnapshot reports an attempt to persist a filtered ranking.
	ErrFilteredSnapshot = errors.New("refusing to snapshot a filtered ranking")

	// ErrNotFound reports an unknown institution or author, or a missing
	// snapshot.
	ErrNotFound = errors.New("not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	written_at   TEXT NOT NULL,
	institutions INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS authors (
	institution TEXT NOT NULL,
	author      TEXT NOT NULL,
	PRIMARY KEY (institution, author)
);

CREATE TABLE IF NOT EXISTS author_areas (
	institution    TEXT NOT NULL,
	author         TEXT NOT NULL,
	area           TEXT NOT NULL,
	paper_count    INTEGER NOT NULL,
	adjusted_score REAL NOT NULL,
	PRIMARY KEY (institution, author, area)
);
`

// Run describes one written snapshot.
type Run struct {
	ID           string `db:"id" json:"id"`
	WrittenAt    string `db:"written_at" json:"written_at"`
	Institutions int    `db:"institutions" json:"institutions"`
}

type authorRow struct {
	Institution string `db:"institution"`
	Author      string `db:"author"`
}

type areaRow struct {
	Institution   string  `db:"institution"`
	Author        string  `db:"author"`
	Area          string  `db:"area"`
	PaperCount    int     `db:"paper_count"`
	AdjustedScore float64 `db:"adjusted_score"`
}

// Store writes and queries snapshots.
type Store struct {
	path   string
	db     *sqlx.DB
	areas  []string
	now    func() time.Time
	logger *zap.Logger
}

// Open opens or creates the snapshot index at cfg.IndexPath. areas lists
// every known research area; distributions report all of them.
func Open(cfg types.SnapshotConfig, areas []string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(cfg.IndexPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite3", cfg.IndexPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening snapshot index: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	sorted := append([]string(nil), areas...)
	sort.Strings(sorted)
	return &Store{path: cfg.Path, db: db, areas: sorted, now: time.Now, logger: logger}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Write persists r as the current snapshot. full must report whether r was
// computed over every venue and the whole year range; a filtered ranking
// is refused and nothing is written.
func (s *Store) Write(ctx context.Context, r types.Ranking, full bool) (Run, error) {
	if !full {
		return Run{}, ErrFilteredSnapshot
	}

	run := Run{
		ID:           uuid.NewString(),
		WrittenAt:    s.now().UTC().Format(time.RFC3339),
		Institutions: len(r),
	}
	tmp, err := s.stageFile(r)
	if err != nil {
		return Run{}, err
	}
	if err := s.index(ctx, r, run); err != nil {
		os.Remove(tmp)
		return Run{}, err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return Run{}, fmt.Errorf("placing snapshot: %w", err)
	}
	s.logger.Info("snapshot written",
		zap.String("run_id", run.ID),
		zap.String("path", s.path),
		zap.Int("institutions", run.Institutions))
	return run, nil
}

// stageFile writes r next to the snapshot file and returns the staged path.
// The file is moved into place only after the index commits.
func (s *Store) stageFile(r types.Ranking) (string, error) {
	compact, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "    "); err != nil {
		return "", fmt.Errorf("indenting snapshot: %w", err)
	}
	buf.WriteByte('\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", fmt.Errorf("creating snapshot directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return tmp, nil
}

func (s *Store) index(ctx context.Context, r types.Ranking, run Run) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning index transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM author_areas", "DELETE FROM authors"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing index: %w", err)
		}
	}

	insAuthor, err := tx.PrepareNamedContext(ctx,
		`INSERT OR REPLACE INTO authors (institution, author) VALUES (:institution, :author)`)
	if err != nil {
		return fmt.Errorf("preparing author insert: %w", err)
	}
	defer insAuthor.Close()
	insArea, err := tx.PrepareNamedContext(ctx,
		`INSERT OR REPLACE INTO author_areas (institution, author, area, paper_count, adjusted_score)
		 VALUES (:institution, :author, :area, :paper_count, :adjusted_score)`)
	if err != nil {
		return fmt.Errorf("preparing area insert: %w", err)
	}
	defer insArea.Close()

	for _, inst := range r {
		for _, a := range inst.Authors {
			if _, err := insAuthor.ExecContext(ctx, authorRow{Institution: inst.Name, Author: a.Name}); err != nil {
				return fmt.Errorf("indexing %s/%s: %w", inst.Name, a.Name, err)
			}
			for area, rec := range a.Areas {
				row := areaRow{
					Institution:   inst.Name,
					Author:        a.Name,
					Area:          area,
					PaperCount:    rec.PaperCount,
					AdjustedScore: rec.AdjustedScore,
				}
				if _, err := insArea.ExecContext(ctx, row); err != nil {
					return fmt.Errorf("indexing %s/%s/%s: %w", inst.Name, a.Name, area, err)
				}
			}
		}
	}

	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO runs (id, written_at, institutions) VALUES (:id, :written_at, :institutions)`, run); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return tx.Commit()
}

// Distribution returns the author's paper count in every known area, with
// zero for areas the author has no papers in. Names are the formatted
// display names used in the snapshot.
func (s *Store) Distribution(ctx context.Context, institution, author string) (map[string]int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM authors WHERE institution = ? AND author = ?`, institution, author); err != nil {
		return nil, fmt.Errorf("looking up author: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s at %s", ErrNotFound, author, institution)
	}

	var rows []areaRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT institution, author, area, paper_count, adjusted_score
		 FROM author_areas WHERE institution = ? AND author = ? ORDER BY area`, institution, author); err != nil {
		return nil, fmt.Errorf("reading distribution: %w", err)
	}

	dist := make(map[string]int, len(s.areas))
	for _, area := range s.areas {
		dist[area] = 0
	}
	for _, row := range rows {
		dist[row.Area] = row.PaperCount
	}
	return dist, nil
}

// LastRun returns the most recently written snapshot run.
func (s *Store) LastRun(ctx context.Context) (Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run,
		`SELECT id, written_at, institutions FROM runs ORDER BY written_at DESC, rowid DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("reading last run: %w", err)
	}
	return run, nil
}

// ReadFile returns the snapshot document as written.
func (s *Store) ReadFile() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return data, nil
}
