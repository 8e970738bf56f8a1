package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var itemsJSON bool

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List the items in your collection",
	RunE:  runItems,
}

func init() {
	rootCmd.AddCommand(itemsCmd)

	itemsCmd.Flags().BoolVar(&itemsJSON, "json", false, "Print the response as JSON")
}

func runItems(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg, s, _, err := openSession(ctx)
	if err != nil {
		return err
	}

	items, err := s.Client().Collections().Items(ctx)
	if err != nil {
		return err
	}
	if itemsJSON {
		return printJSON(items)
	}

	rows := make([][]string, 0, len(items.Items))
	for _, it := range items.Items {
		var added time.Time
		if it.AddedTime != 0 {
			added = time.UnixMilli(it.AddedTime)
		}
		rows = append(rows, []string{it.PandoraID, it.PandoraType, formatDate(added)})
	}
	for _, line := range formatTable(cfg.OutputWidth, []string{"ID", "TYPE", "ADDED"}, rows) {
		fmt.Println(line)
	}
	return nil
}
