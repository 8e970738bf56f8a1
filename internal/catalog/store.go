// Package catalog stores snapshots of a user's playlists and stations in
// SQLite so they can be browsed and diffed offline.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jfmyers9/tuner/pkg/pandora"
)

// ErrNoSnapshot is returned when the store holds no snapshots.
var ErrNoSnapshot = errors.New("catalog: no snapshots")

// Store manages catalog snapshots using SQLite
type Store struct {
	db *sql.DB
}

// Snapshot is the catalog as fetched in one sync
type Snapshot struct {
	ID         string
	TakenAt    time.Time
	ListenerID int64
	Playlists  []pandora.Playlist
	Stations   []pandora.Station
}

// SnapshotInfo summarizes a stored snapshot
type SnapshotInfo struct {
	ID            string
	TakenAt       time.Time
	ListenerID    int64
	PlaylistCount int
	StationCount  int
}

// Open creates or opens a catalog store backed by SQLite
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps :memory: databases consistent across queries
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			taken_at INTEGER NOT NULL,
			listener_id INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS playlists (
			snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			pandora_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			total_tracks INTEGER NOT NULL DEFAULT 0,
			duration INTEGER NOT NULL DEFAULT 0,
			is_private BOOLEAN DEFAULT 0,
			added_at INTEGER,
			updated_at INTEGER,
			PRIMARY KEY (snapshot_id, pandora_id)
		);

		CREATE TABLE IF NOT EXISTS stations (
			snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			station_id TEXT NOT NULL,
			pandora_id TEXT,
			name TEXT NOT NULL,
			total_play_time INTEGER NOT NULL DEFAULT 0,
			is_thumbprint BOOLEAN DEFAULT 0,
			is_shuffle BOOLEAN DEFAULT 0,
			created_at INTEGER,
			last_played INTEGER,
			PRIMARY KEY (snapshot_id, station_id)
		);

		CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSnapshot stores a snapshot and its items in a single transaction.
// An empty ID is assigned a new UUID; a zero TakenAt is set to now.
func (s *Store) SaveSnapshot(ctx context.Context, snap *Snapshot) (string, error) {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO snapshots (id, taken_at, listener_id) VALUES (?, ?, ?)",
		snap.ID, snap.TakenAt.UnixMilli(), snap.ListenerID,
	); err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}

	playlistStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO playlists (snapshot_id, position, pandora_id, name, description, total_tracks, duration, is_private, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer playlistStmt.Close()

	for i, p := range snap.Playlists {
		if _, err := playlistStmt.ExecContext(ctx,
			snap.ID, i, p.PandoraID, p.Name, p.Description, p.TotalTracks,
			int64(p.Duration.Seconds()), p.IsPrivate, unixMilli(p.AddedTime), unixMilli(p.UpdatedTime),
		); err != nil {
			return "", fmt.Errorf("failed to insert playlist %s: %w", p.PandoraID, err)
		}
	}

	stationStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stations (snapshot_id, position, station_id, pandora_id, name, total_play_time, is_thumbprint, is_shuffle, created_at, last_played)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stationStmt.Close()

	for i, st := range snap.Stations {
		if _, err := stationStmt.ExecContext(ctx,
			snap.ID, i, st.StationID, st.PandoraID, st.Name, int64(st.TotalPlayTime.Seconds()),
			st.IsThumbprint, st.IsShuffle, unixMilli(st.DateCreated), unixMilli(st.LastPlayed),
		); err != nil {
			return "", fmt.Errorf("failed to insert station %s: %w", st.StationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return snap.ID, nil
}

// Snapshots lists stored snapshots, newest first
func (s *Store) Snapshots(ctx context.Context) ([]SnapshotInfo, error) {
	query := `
		SELECT s.id, s.taken_at, s.listener_id,
			(SELECT COUNT(*) FROM playlists p WHERE p.snapshot_id = s.id),
			(SELECT COUNT(*) FROM stations st WHERE st.snapshot_id = s.id)
		FROM snapshots s
		ORDER BY s.taken_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var takenAt int64
		if err := rows.Scan(&info.ID, &takenAt, &info.ListenerID, &info.PlaylistCount, &info.StationCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		info.TakenAt = time.UnixMilli(takenAt)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return infos, nil
}

// Latest returns the newest snapshot, or ErrNoSnapshot
func (s *Store) Latest(ctx context.Context) (*SnapshotInfo, error) {
	infos, err := s.Snapshots(ctx)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, ErrNoSnapshot
	}
	return &infos[0], nil
}

// Playlists returns the playlists of a snapshot in their original order
func (s *Store) Playlists(ctx context.Context, snapshotID string) ([]pandora.Playlist, error) {
	query := `
		SELECT pandora_id, name, COALESCE(description, ''), total_tracks, duration, is_private,
			COALESCE(added_at, 0), COALESCE(updated_at, 0)
		FROM playlists
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []pandora.Playlist
	for rows.Next() {
		var p pandora.Playlist
		var durationSecs, addedAt, updatedAt int64

		if err := rows.Scan(&p.PandoraID, &p.Name, &p.Description, &p.TotalTracks, &durationSecs, &p.IsPrivate, &addedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}

		p.Duration = time.Duration(durationSecs) * time.Second
		p.AddedTime = fromUnixMilli(addedAt)
		p.UpdatedTime = fromUnixMilli(updatedAt)
		playlists = append(playlists, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating playlists: %w", err)
	}

	return playlists, nil
}

// Stations returns the stations of a snapshot in their original order
func (s *Store) Stations(ctx context.Context, snapshotID string) ([]pandora.Station, error) {
	query := `
		SELECT station_id, COALESCE(pandora_id, ''), name, total_play_time, is_thumbprint, is_shuffle,
			COALESCE(created_at, 0), COALESCE(last_played, 0)
		FROM stations
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var stations []pandora.Station
	for rows.Next() {
		var st pandora.Station
		var playSecs, createdAt, lastPlayed int64

		if err := rows.Scan(&st.StationID, &st.PandoraID, &st.Name, &playSecs, &st.IsThumbprint, &st.IsShuffle, &createdAt, &lastPlayed); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}

		st.TotalPlayTime = time.Duration(playSecs) * time.Second
		st.DateCreated = fromUnixMilli(createdAt)
		st.LastPlayed = fromUnixMilli(lastPlayed)
		stations = append(stations, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stations: %w", err)
	}

	return stations, nil
}

// Count returns the number of stored snapshots
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshots").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

// Prune deletes all but the newest keep snapshots and their items
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	query := `
		DELETE FROM snapshots
		WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY taken_at DESC LIMIT ?
		)
	`

	result, err := s.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
