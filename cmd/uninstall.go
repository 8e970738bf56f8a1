package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/tuner/internal/monitor"
)

// uninstallCmd represents the uninstall command
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the 'tuner watch' background service",
	Long: `Stop the background service installed by 'tuner install' and remove its
definition. Snapshots and logs in the data directory are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		servicePath, err := monitor.ServicePath(runtime.GOOS)
		if err != nil {
			return err
		}

		if _, err := os.Stat(servicePath); os.IsNotExist(err) {
			fmt.Println("Service is not installed")
			return nil
		}

		fmt.Println("Stopping service...")
		if err := unloadService(servicePath); err != nil {
			fmt.Printf("Warning: failed to stop service: %v\n", err)
			fmt.Println("Continuing with removal...")
		} else {
			fmt.Println("✓ Service stopped")
		}

		if err := os.Remove(servicePath); err != nil {
			return fmt.Errorf("failed to remove service file: %w", err)
		}

		fmt.Printf("✓ Removed %s\n", servicePath)
		fmt.Println("\nTo reinstall, run:")
		fmt.Println("  tuner install")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
