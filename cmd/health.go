package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/tuner/internal/session"
	"github.com/jfmyers9/tuner/pkg/pandora"
)

var healthSailthru bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether Pandora reports itself healthy",
	Long: `Probe the radio health page. No login is needed.

Exit codes:
  0 - Pandora reports OK
  1 - Pandora is unhealthy or unreachable`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().BoolVar(&healthSailthru, "sailthru", false, "Also fetch the web client's sailthru.json")
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	s, err := session.New(cfg, logger, session.Options{})
	if err != nil {
		return err
	}
	client := s.Client()

	start := time.Now()
	_, err = client.CheckHealth(ctx)
	elapsed := time.Since(start).Round(time.Millisecond)
	switch {
	case errors.Is(err, pandora.ErrUnhealthy):
		fmt.Printf("✗ unhealthy (%s): %v\n", elapsed, err)
		os.Exit(1)
	case err != nil:
		fmt.Printf("✗ unreachable: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ healthy (%s)\n", elapsed)

	if healthSailthru {
		st, err := client.Sailthru(ctx, "")
		if err != nil {
			return err
		}
		fmt.Printf("  web version %s\n", st.Version)
	}
	return nil
}
