package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/tuner/internal/config"
	"github.com/jfmyers9/tuner/internal/monitor"
)

var installSync time.Duration

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install 'tuner watch' as a background service",
	Long: `Install 'tuner watch' as a background service that runs on login.

On macOS this writes a launchd agent to ~/Library/LaunchAgents/ and loads
it with launchctl. On Linux it writes a systemd user unit and enables it
with systemctl --user.

Credentials must be available from the config file, since the service
does not see your shell environment.`,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().DurationVar(&installSync, "sync", 0, "Catalog sync interval passed to watch (0 disables)")
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if installSync > 0 && !cfg.HasCredentials() {
		return fmt.Errorf("Pandora credentials not configured. Run 'tuner login' first")
	}

	// Get the path to the current executable
	binaryPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	binaryPath, err = filepath.EvalSymlinks(binaryPath)
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	logPath := monitor.DefaultLogPath(cfg.DataDir)
	if err := os.MkdirAll(logPath, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	watchArgs := []string{"watch", "--log-level", "info"}
	if installSync > 0 {
		watchArgs = append(watchArgs, "--sync", installSync.String())
	}
	svc := monitor.ServiceConfig{
		BinaryPath:       binaryPath,
		Args:             watchArgs,
		LogPath:          logPath,
		WorkingDirectory: home,
	}

	var content string
	switch runtime.GOOS {
	case "darwin":
		content, err = monitor.GeneratePlist(svc)
	case "linux":
		content, err = monitor.GenerateUnit(svc)
	default:
		return fmt.Errorf("background service not supported on %s", runtime.GOOS)
	}
	if err != nil {
		return fmt.Errorf("failed to generate service definition: %w", err)
	}

	servicePath, err := monitor.ServicePath(runtime.GOOS)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(servicePath), 0755); err != nil {
		return fmt.Errorf("failed to create service directory: %w", err)
	}

	if _, err := os.Stat(servicePath); err == nil {
		fmt.Println("Service is already installed. Reinstalling...")
		if err := unloadService(servicePath); err != nil {
			fmt.Printf("Warning: failed to stop existing service: %v\n", err)
		}
	}

	if err := os.WriteFile(servicePath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write service file: %w", err)
	}
	fmt.Printf("✓ Installed service definition to %s\n", servicePath)

	if err := loadService(servicePath); err != nil {
		return fmt.Errorf("failed to load service: %w", err)
	}

	fmt.Println("✓ Service loaded and started successfully")
	fmt.Printf("✓ Logs will be written to %s\n", logPath)
	fmt.Println("\nTo uninstall, run:")
	fmt.Println("  tuner uninstall")

	return nil
}

// loadService starts the installed service
func loadService(servicePath string) error {
	if runtime.GOOS == "linux" {
		if out, err := exec.Command("systemctl", "--user", "daemon-reload").CombinedOutput(); err != nil {
			return fmt.Errorf("systemctl daemon-reload failed: %s", strings.TrimSpace(string(out)))
		}
		unit := filepath.Base(servicePath)
		if out, err := exec.Command("systemctl", "--user", "enable", "--now", unit).CombinedOutput(); err != nil {
			return fmt.Errorf("systemctl enable failed: %s", strings.TrimSpace(string(out)))
		}
		return nil
	}

	domain, err := launchdDomain()
	if err != nil {
		return err
	}
	out, err := exec.Command("launchctl", "bootstrap", domain, servicePath).CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("launchctl bootstrap failed: %s", strings.TrimSpace(string(out)))
		}
		return fmt.Errorf("failed to run launchctl bootstrap: %w", err)
	}
	return nil
}

// unloadService stops the service. Failing because it is not loaded is
// not an error.
func unloadService(servicePath string) error {
	if runtime.GOOS == "linux" {
		unit := filepath.Base(servicePath)
		if out, err := exec.Command("systemctl", "--user", "disable", "--now", unit).CombinedOutput(); err != nil && len(out) > 0 {
			fmt.Printf("Warning: %s\n", strings.TrimSpace(string(out)))
		}
		return nil
	}

	domain, err := launchdDomain()
	if err != nil {
		return err
	}
	service := fmt.Sprintf("%s/%s", domain, monitor.ServiceLabel)
	if out, err := exec.Command("launchctl", "bootout", service).CombinedOutput(); err != nil && len(out) > 0 {
		fmt.Printf("Warning: %s\n", strings.TrimSpace(string(out)))
	}
	return nil
}

func launchdDomain() (string, error) {
	out, err := exec.Command("id", "-u").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get user ID: %w", err)
	}
	return "gui/" + strings.TrimSpace(string(out)), nil
}
