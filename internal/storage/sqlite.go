// Package storage persists crawl checkpoints so an interrupted crawl can be
// resumed. A checkpoint is a SQLite database holding the visited URLs, the
// unfinished frontier and the run statistics.
package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/adrg/xdg"
	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"
)

// Visited statuses.
const (
	StatusWritten = "written"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

const (
	metaRunID     = "run_id"
	metaStats     = "stats"
	metaUpdatedAt = "updated_at"

	frontierBatchSize = 500
)

// Counters are the persisted crawl statistics.
type Counters struct {
	Discovered      int64 `json:"discovered"`
	Visited         int64 `json:"visited"`
	SkippedByRule   int64 `json:"skipped_by_rule"`
	SkippedByPolicy int64 `json:"skipped_by_policy"`
	Failed          int64 `json:"failed"`
	Written         int64 `json:"written"`
}

// FrontierItem is a discovered URL waiting to be processed.
type FrontierItem struct {
	URL          string
	Depth        int
	DiscoveredAt time.Time
}

// Snapshot is the resumable state of a crawl.
type Snapshot struct {
	RunID     string
	Visited   []string
	Rejected  []string
	Frontier  []FrontierItem
	Stats     Counters
	UpdatedAt time.Time

	// Names maps each skill name written so far to its URL. It is filled by
	// Load from the visited rows.
	Names map[string]string
}

// SQLiteStore is a checkpoint database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the checkpoint location for an output directory:
// $XDG_STATE_HOME/docskills/<hash of the absolute output path>.db.
func DefaultPath(outputDir string) (string, error) {
	abs, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}
	sum := sha256.Sum256([]byte(abs))
	name := hex.EncodeToString(sum[:])[:16] + ".db"

	path, err := xdg.StateFile(filepath.Join("docskills", name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve state directory: %w", err)
	}
	return path, nil
}

// Remove deletes a checkpoint database and its WAL files. A missing
// checkpoint is not an error.
func Remove(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove checkpoint: %w", err)
		}
	}
	return nil
}

// NewSQLiteStore opens or creates the checkpoint at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection prevents lock conflicts
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 30000",
	}

	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Reset empties the checkpoint for a fresh run.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"visited", "rejected", "frontier", "crawl_meta"} {
		if _, err := sq.Delete(table).RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// MarkVisited records that url finished processing.
func (s *SQLiteStore) MarkVisited(ctx context.Context, url, status, name string) error {
	_, err := sq.Insert("visited").
		Columns("url", "status", "name", "updated_at").
		Values(url, status, name, formatTime(time.Now())).
		Suffix("ON CONFLICT(url) DO UPDATE SET status = excluded.status, name = excluded.name, updated_at = excluded.updated_at").
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark %s visited: %w", url, err)
	}
	return nil
}

// SaveSnapshot replaces the stored frontier, run id and statistics and adds
// the rejected URLs. Visited rows are kept; they are written by MarkVisited.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	stats, err := json.Marshal(snap.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := sq.Delete("frontier").RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to clear frontier: %w", err)
	}

	for start := 0; start < len(snap.Frontier); start += frontierBatchSize {
		end := min(start+frontierBatchSize, len(snap.Frontier))
		insert := sq.Insert("frontier").Columns("url", "depth", "discovered_at").
			Suffix("ON CONFLICT(url) DO NOTHING")
		for _, item := range snap.Frontier[start:end] {
			discovered := item.DiscoveredAt
			if discovered.IsZero() {
				discovered = time.Now()
			}
			insert = insert.Values(item.URL, item.Depth, formatTime(discovered))
		}
		if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to save frontier: %w", err)
		}
	}

	for start := 0; start < len(snap.Rejected); start += frontierBatchSize {
		end := min(start+frontierBatchSize, len(snap.Rejected))
		insert := sq.Insert("rejected").Columns("url").Suffix("ON CONFLICT(url) DO NOTHING")
		for _, url := range snap.Rejected[start:end] {
			insert = insert.Values(url)
		}
		if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to save rejected URLs: %w", err)
		}
	}

	meta := map[string]string{
		metaRunID:     snap.RunID,
		metaStats:     string(stats),
		metaUpdatedAt: formatTime(time.Now()),
	}
	for key, value := range meta {
		if err := setMeta(ctx, tx, key, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Load reads the stored snapshot. An empty checkpoint yields an empty snapshot.
func (s *SQLiteStore) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Names: make(map[string]string)}

	rows, err := sq.Select("url", "name").From("visited").OrderBy("updated_at", "url").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load visited: %w", err)
	}
	for rows.Next() {
		var url string
		var name sql.NullString
		if err := rows.Scan(&url, &name); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan visited: %w", err)
		}
		snap.Visited = append(snap.Visited, url)
		if name.String != "" {
			snap.Names[name.String] = url
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = sq.Select("url").From("rejected").OrderBy("url").RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rejected URLs: %w", err)
	}
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan rejected URL: %w", err)
		}
		snap.Rejected = append(snap.Rejected, url)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = sq.Select("url", "depth", "discovered_at").From("frontier").OrderBy("discovered_at", "url").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load frontier: %w", err)
	}
	for rows.Next() {
		var item FrontierItem
		var discovered string
		if err := rows.Scan(&item.URL, &item.Depth, &discovered); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan frontier: %w", err)
		}
		item.DiscoveredAt = parseTime(discovered)
		snap.Frontier = append(snap.Frontier, item)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	if snap.RunID, err = s.GetMeta(ctx, metaRunID); err != nil {
		return nil, err
	}
	updated, err := s.GetMeta(ctx, metaUpdatedAt)
	if err != nil {
		return nil, err
	}
	snap.UpdatedAt = parseTime(updated)

	stats, err := s.GetMeta(ctx, metaStats)
	if err != nil {
		return nil, err
	}
	if stats != "" {
		if err := json.Unmarshal([]byte(stats), &snap.Stats); err != nil {
			return nil, fmt.Errorf("failed to decode stats: %w", err)
		}
	}

	return snap, nil
}

// GetMeta retrieves a metadata value
func (s *SQLiteStore) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := sq.Select("value").From("crawl_meta").Where(sq.Eq{"key": key}).
		RunWith(s.db).QueryRowContext(ctx).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta: %w", err)
	}
	return value, nil
}

// SetMeta stores a metadata value
func (s *SQLiteStore) SetMeta(ctx context.Context, key, value string) error {
	return setMeta(ctx, s.db, key, value)
}

func setMeta(ctx context.Context, runner sq.BaseRunner, key, value string) error {
	_, err := sq.Replace("crawl_meta").Columns("key", "value").Values(key, value).
		RunWith(runner).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to set meta: %w", err)
	}
	return nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("failed to read rows: %w", err)
	}
	return rows.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
