package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jfmyers9/tuner/internal/config"
	"github.com/jfmyers9/tuner/internal/session"
)

var loginPartner string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Pandora and save the credentials",
	Long: `Log in to Pandora and save the credentials to the config file.

This command will:
1. Prompt for your Pandora email and password
2. Run the full login handshake to check them
3. Save them to ~/.config/tuner/config.yaml

A password typed at the prompt is stored in plain text. Prefer the
TUNER_PANDORA_PASSWORD environment variable or a .env file on shared
machines; a password taken from there is never written to the config file.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVar(&loginPartner, "partner", "", "Partner profile to log in with (default from config)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Pandora Login")
	fmt.Println("=============")
	fmt.Println()

	if cfg.HasCredentials() {
		fmt.Printf("Found existing credentials for %s.\n", cfg.Pandora.Username)
		fmt.Print("Use existing credentials? [Y/n]: ")
		response, err := reader.ReadString('\n')
		if err != nil {
			response = "y"
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "" && response != "y" && response != "yes" {
			cfg.Pandora.Username = ""
			cfg.SetPassword("")
		}
	}

	if cfg.Pandora.Username == "" {
		fmt.Print("Email: ")
		username, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		cfg.Pandora.Username = strings.TrimSpace(username)
	}

	if cfg.Pandora.Password == "" {
		password, err := readPassword(reader)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		cfg.SetPassword(password)
	}

	if !cfg.HasCredentials() {
		return fmt.Errorf("email and password are required")
	}
	if loginPartner != "" {
		cfg.Pandora.Partner = loginPartner
	}

	fmt.Println("\nLogging in...")
	s, err := session.Open(ctx, cfg, logger, session.Options{})
	if err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	user := s.Client().Auth().User()
	fmt.Printf("\n✓ Logged in as %s\n", user.Username)
	fmt.Printf("✓ Credentials saved to %s/config.yaml\n", config.GetConfigDir())
	fmt.Println("\nYou can now use 'tuner playlists' or 'tuner sync'.")

	return nil
}

// readPassword reads without echo when stdin is a terminal
func readPassword(reader *bufio.Reader) (string, error) {
	fmt.Print("Password: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
