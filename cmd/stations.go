package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/tuner/pkg/pandora"
)

var (
	stationsJSON     bool
	stationsRaw      bool
	stationsPageSize int
	stationsFormat   string
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List your stations",
	Long: `List your stations.

The output can be customized with a Go template using --format.
Available fields: .Name, .StationID, .PandoraID, .TotalPlayTime,
.IsThumbprint, .IsShuffle, .IsShared, .DateCreated, .LastPlayed`,
	RunE: runStations,
}

func init() {
	rootCmd.AddCommand(stationsCmd)

	stationsCmd.Flags().BoolVar(&stationsJSON, "json", false, "Print the processed response as JSON")
	stationsCmd.Flags().BoolVar(&stationsRaw, "raw", false, "Print the unprocessed response as JSON")
	stationsCmd.Flags().IntVar(&stationsPageSize, "page-size", pandora.DefaultStationsPageSize, "Number of stations to request")
	stationsCmd.Flags().StringVarP(&stationsFormat, "format", "f", "", "Output template for each station")
}

func runStations(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg, s, _, err := openSession(ctx)
	if err != nil {
		return err
	}

	svc := s.Client().Stations()
	if stationsRaw {
		raw, err := svc.ListRaw(ctx, stationsPageSize)
		if err != nil {
			return err
		}
		return printJSON(raw)
	}

	stations, err := svc.List(ctx, stationsPageSize)
	if err != nil {
		return err
	}
	if stationsJSON {
		return printJSON(stations)
	}

	if stationsFormat != "" {
		for _, st := range stations.Stations {
			line, err := renderTemplate(stationsFormat, st)
			if err != nil {
				return err
			}
			fmt.Println(line)
		}
		return nil
	}

	rows := make([][]string, 0, len(stations.Stations))
	for _, st := range stations.Stations {
		name := st.Name
		if st.IsThumbprint {
			name += " (thumbprint)"
		}
		rows = append(rows, []string{
			name,
			formatDuration(st.TotalPlayTime),
			formatDate(st.LastPlayed),
		})
	}
	for _, line := range formatTable(cfg.OutputWidth, []string{"NAME", "PLAYED", "LAST PLAYED"}, rows) {
		fmt.Println(line)
	}
	fmt.Printf("\n%d of %d stations\n", len(stations.Stations), stations.TotalStations)
	return nil
}
