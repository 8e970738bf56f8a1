package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Directory for the catalog database
	// Default: ~/.local/share/tuner
	DataDir string

	// Column width for table output (0 = terminal default of 80)
	OutputWidth int

	// Pandora account and client settings
	Pandora PandoraConfig

	// Health monitor settings
	Monitor MonitorConfig

	// Set when the password came from the environment or .env; Save then
	// leaves it out of the config file.
	passwordFromEnv bool
}

// PandoraConfig holds Pandora specific configuration
type PandoraConfig struct {
	Username string
	Password string

	// Partner profile used for the login handshake
	Partner string

	// Optional YAML file replacing the built-in partner profiles
	PartnersFile string

	// HTTP timeout in seconds
	Timeout int
}

// MonitorConfig holds health monitor configuration
type MonitorConfig struct {
	// Poll interval in seconds
	Interval int
}

// Load reads configuration from file, .env and environment
func Load() (*Config, error) {
	// A .env in the working directory fills in anything the environment
	// doesn't already set.
	_ = godotenv.Load()

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("output_width", 80)
	v.SetDefault("pandora.partner", "android")
	v.SetDefault("pandora.timeout", 30)
	v.SetDefault("monitor.interval", 60)

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// Read from environment variables, e.g. TUNER_PANDORA_USERNAME
	v.SetEnvPrefix("TUNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map config to struct
	cfg := &Config{
		DataDir:     v.GetString("data_dir"),
		OutputWidth: v.GetInt("output_width"),
		Pandora: PandoraConfig{
			Username:     v.GetString("pandora.username"),
			Password:     v.GetString("pandora.password"),
			Partner:      v.GetString("pandora.partner"),
			PartnersFile: v.GetString("pandora.partners_file"),
			Timeout:      v.GetInt("pandora.timeout"),
		},
		Monitor: MonitorConfig{
			Interval: v.GetInt("monitor.interval"),
		},
		passwordFromEnv: os.Getenv("TUNER_PANDORA_PASSWORD") != "",
	}

	return cfg, nil
}

// HasCredentials reports whether a username and password are configured
func (c *Config) HasCredentials() bool {
	return c.Pandora.Username != "" && c.Pandora.Password != ""
}

// SetPassword replaces the password with one supplied by the user, so Save
// writes it to the config file.
func (c *Config) SetPassword(password string) {
	c.Pandora.Password = password
	c.passwordFromEnv = false
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "tuner")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".local", "share", "tuner")
}

// Save writes configuration to file. A password taken from the
// environment is not written.
func (c *Config) Save() error {
	v := viper.New()

	// Set config file path
	configDir := getConfigDir()
	configFile := filepath.Join(configDir, "config.yaml")

	// Set values in viper
	v.Set("data_dir", c.DataDir)
	v.Set("output_width", c.OutputWidth)
	v.Set("pandora.username", c.Pandora.Username)
	if !c.passwordFromEnv {
		v.Set("pandora.password", c.Pandora.Password)
	}
	v.Set("pandora.partner", c.Pandora.Partner)
	v.Set("pandora.partners_file", c.Pandora.PartnersFile)
	v.Set("pandora.timeout", c.Pandora.Timeout)
	v.Set("monitor.interval", c.Monitor.Interval)

	// Write to file
	return v.WriteConfigAs(configFile)
}
