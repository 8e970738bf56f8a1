package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/tuner/pkg/pandora"
)

var (
	playlistsJSON   bool
	playlistsRaw    bool
	playlistsLimit  int
	playlistsFormat string
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "List your playlists",
	Long: `List your playlists, most recently modified first.

The output can be customized with a Go template using --format.
Available fields: .Name, .Description, .TotalTracks, .Duration, .IsPrivate,
.PandoraID, .AddedTime, .TimeLastUpdated`,
	RunE: runPlaylists,
}

func init() {
	rootCmd.AddCommand(playlistsCmd)

	playlistsCmd.Flags().BoolVar(&playlistsJSON, "json", false, "Print the processed response as JSON")
	playlistsCmd.Flags().BoolVar(&playlistsRaw, "raw", false, "Print the unprocessed response as JSON")
	playlistsCmd.Flags().IntVar(&playlistsLimit, "limit", 0, "Maximum number of playlists to request (default from the API)")
	playlistsCmd.Flags().StringVarP(&playlistsFormat, "format", "f", "", "Output template for each playlist")
}

func runPlaylists(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg, s, _, err := openSession(ctx)
	if err != nil {
		return err
	}

	req := pandora.DefaultPlaylistsRequest()
	if playlistsLimit > 0 {
		req.Request.Limit = playlistsLimit
	}

	collections := s.Client().Collections()
	if playlistsRaw {
		raw, err := collections.SortedPlaylistsRaw(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(raw)
	}

	playlists, err := collections.SortedPlaylists(ctx, req)
	if err != nil {
		return err
	}
	if playlistsJSON {
		return printJSON(playlists)
	}

	if playlistsFormat != "" {
		for _, p := range playlists.Items {
			line, err := renderTemplate(playlistsFormat, p)
			if err != nil {
				return err
			}
			fmt.Println(line)
		}
		return nil
	}

	rows := make([][]string, 0, len(playlists.Items))
	for _, p := range playlists.Items {
		rows = append(rows, []string{
			p.Name,
			strconv.Itoa(p.TotalTracks),
			formatDuration(p.Duration),
			formatDate(p.TimeLastUpdated),
		})
	}
	for _, line := range formatTable(cfg.OutputWidth, []string{"NAME", "TRACKS", "LENGTH", "UPDATED"}, rows) {
		fmt.Println(line)
	}
	fmt.Printf("\n%d of %d playlists\n", len(playlists.Items), playlists.TotalCount)
	return nil
}
