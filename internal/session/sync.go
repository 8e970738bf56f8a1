package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jfmyers9/tuner/internal/catalog"
)

// SyncResult describes one catalog sync
type SyncResult struct {
	SnapshotID string
	Playlists  int
	Stations   int
	First      bool          // No earlier snapshot existed
	Diff       *catalog.Diff // Changes since the previous snapshot
	Pruned     int64
}

// Sync fetches the catalog, stores it as a new snapshot and compares it
// with the previous one. When keep is positive, older snapshots beyond
// the newest keep are pruned.
func (s *Session) Sync(ctx context.Context, store *catalog.Store, keep int) (*SyncResult, error) {
	cat, err := s.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{
		Playlists: len(cat.Playlists),
		Stations:  len(cat.Stations),
	}

	prev, err := store.Latest(ctx)
	switch {
	case errors.Is(err, catalog.ErrNoSnapshot):
		result.First = true
		result.Diff = catalog.Compare(nil, cat.Playlists, nil, cat.Stations)
	case err != nil:
		return nil, fmt.Errorf("failed to read latest snapshot: %w", err)
	default:
		oldPlaylists, err := store.Playlists(ctx, prev.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read previous playlists: %w", err)
		}
		oldStations, err := store.Stations(ctx, prev.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read previous stations: %w", err)
		}
		result.Diff = catalog.Compare(oldPlaylists, cat.Playlists, oldStations, cat.Stations)
	}

	id, err := store.SaveSnapshot(ctx, &catalog.Snapshot{
		TakenAt:    cat.FetchedAt,
		ListenerID: cat.ListenerID,
		Playlists:  cat.Playlists,
		Stations:   cat.Stations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	result.SnapshotID = id

	if keep > 0 {
		pruned, err := store.Prune(ctx, keep)
		if err != nil {
			return nil, fmt.Errorf("failed to prune snapshots: %w", err)
		}
		result.Pruned = pruned
	}

	s.logger.Info().
		Str("snapshot", id).
		Int("playlists", result.Playlists).
		Int("stations", result.Stations).
		Bool("changed", !result.Diff.Empty()).
		Int64("pruned", result.Pruned).
		Msg("Synced catalog")

	return result, nil
}
