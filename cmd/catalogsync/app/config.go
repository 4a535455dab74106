package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the CLI configuration loaded from flags, environment
// variables, .env files, and the optional config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Sync configuration
	LocalDir     string
	CanonicalDir string
	OutputDir    string
	HistoryPath  string
	Concurrent   bool
	SortByID     bool
	Renumber     bool

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.catalogsync.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".catalogsync")
		}
	}

	// Missing config file is fine.
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),

		ConfigFile: viper.ConfigFileUsed(),

		LocalDir:     viper.GetString("local_dir"),
		CanonicalDir: viper.GetString("canonical_dir"),
		OutputDir:    viper.GetString("output_dir"),
		HistoryPath:  viper.GetString("history_path"),
		Concurrent:   viper.GetBool("concurrent"),
		SortByID:     viper.GetBool("sort_by_id"),
		Renumber:     viper.GetBool("renumber_sort_order"),

		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
	}

	if config.HistoryPath == "" {
		config.HistoryPath = defaultHistoryPath()
	}

	return config, nil
}

// UpdateFromFlags applies parsed command flags. Flag values take
// precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// defaultHistoryPath places the run history database under the user's
// home directory, falling back to the working directory.
func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".catalogsync/history.db"
	}
	return home + "/.catalogsync/history.db"
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
