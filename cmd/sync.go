package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/tuner/internal/catalog"
)

var (
	syncKeep int
	syncList bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Snapshot your playlists and stations",
	Long: `Fetch your playlists and stations, store them as a snapshot in the
local catalog and print what changed since the previous snapshot.

Snapshots live in catalog.db under the data directory. Use --keep to
bound how many are retained and --list to show the stored snapshots.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().IntVar(&syncKeep, "keep", 30, "Number of snapshots to retain (0 keeps all)")
	syncCmd.Flags().BoolVar(&syncList, "list", false, "List stored snapshots instead of syncing")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if syncList {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return listSnapshots(ctx, store)
	}

	cfg, s, _, err := openSession(ctx)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	result, err := s.Sync(ctx, store, syncKeep)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Snapshot %s: %d playlists, %d stations\n", result.SnapshotID[:8], result.Playlists, result.Stations)
	if result.First {
		fmt.Println("  first snapshot, nothing to compare")
	} else {
		printDiff(result.Diff)
	}
	if result.Pruned > 0 {
		fmt.Printf("  pruned %d old snapshots\n", result.Pruned)
	}
	return nil
}

func printDiff(d *catalog.Diff) {
	if d.Empty() {
		fmt.Println("  no changes")
		return
	}
	for _, p := range d.AddedPlaylists {
		fmt.Printf("  + playlist %s (%d tracks)\n", p.Name, p.TotalTracks)
	}
	for _, p := range d.RemovedPlaylists {
		fmt.Printf("  - playlist %s\n", p.Name)
	}
	for _, c := range d.ChangedPlaylists {
		fmt.Printf("  ~ playlist %s (%d -> %d tracks)\n", c.Name, c.OldTracks, c.NewTracks)
	}
	for _, st := range d.AddedStations {
		fmt.Printf("  + station %s\n", st.Name)
	}
	for _, st := range d.RemovedStations {
		fmt.Printf("  - station %s\n", st.Name)
	}
}

func listSnapshots(ctx context.Context, store *catalog.Store) error {
	infos, err := store.Snapshots(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No snapshots yet. Run 'tuner sync' first.")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  %s  %3d playlists  %3d stations\n",
			info.ID[:8], info.TakenAt.Local().Format("2006-01-02 15:04"), info.PlaylistCount, info.StationCount)
	}
	return nil
}
