package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that YAML files write the friendly way,
// either as a Go duration string ("60s", "1m30s") or as plain seconds.
type Duration time.Duration

// Duration returns the standard library form
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// Seconds returns the duration as floating point seconds
func (d Duration) Seconds() float64 { return time.Duration(d).Seconds() }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalYAML writes the duration as a string like "30s"
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts "30s" style strings and bare integer seconds
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration value %q", value.Value)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds all configuration options for the clip pipeline
type Config struct {
	// Page scraping settings
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Download tool settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// On-disk store locations (history, account list)
	Stores StoresConfig `yaml:"stores" json:"stores"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ScrapeConfig holds headless browser settings
type ScrapeConfig struct {
	PageLoadTimeout    Duration `yaml:"page_load_timeout" json:"page_load_timeout"`
	ElementWaitTimeout Duration `yaml:"element_wait_timeout" json:"element_wait_timeout"`
	ChromePath         string   `yaml:"chrome_path" json:"chrome_path"`
}

// DownloadConfig holds settings passed through to the download tool
type DownloadConfig struct {
	Tool          string   `yaml:"tool" json:"tool"`
	SocketTimeout Duration `yaml:"socket_timeout" json:"socket_timeout"`
	Retries       int      `yaml:"retries" json:"retries"`
	Format        string   `yaml:"format" json:"format"`
	SkipCertCheck bool     `yaml:"skip_cert_check" json:"skip_cert_check"`
	ForceIPv4     bool     `yaml:"force_ipv4" json:"force_ipv4"`
	MaxDownloads  int      `yaml:"max_downloads" json:"max_downloads"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory  string `yaml:"base_directory" json:"base_directory"`
	AccountFolders bool   `yaml:"account_folders" json:"account_folders"`
}

// StoresConfig holds file paths for the persisted stores.
// Empty values resolve to the per-OS data directory.
type StoresConfig struct {
	HistoryFile  string `yaml:"history_file" json:"history_file"`
	HistoryLimit int    `yaml:"history_limit" json:"history_limit"`
	AccountsFile string `yaml:"accounts_file" json:"accounts_file"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	OnComplete bool `yaml:"on_complete" json:"on_complete"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Scrape: ScrapeConfig{
			PageLoadTimeout:    Duration(60 * time.Second),
			ElementWaitTimeout: Duration(20 * time.Second),
			ChromePath:         "",
		},
		Download: DownloadConfig{
			Tool:          "yt-dlp",
			SocketTimeout: Duration(30 * time.Second),
			Retries:       3,
			Format:        "bestvideo[height<=?1080]+bestaudio/best",
			SkipCertCheck: true,
			ForceIPv4:     true,
			MaxDownloads:  0, // 0 means download everything found
		},
		Output: OutputConfig{
			BaseDirectory:  "./clips",
			AccountFolders: true,
		},
		Stores: StoresConfig{
			HistoryFile:  "",
			HistoryLimit: 50,
			AccountsFile: "",
		},
		Notifications: NotificationConfig{
			Enabled:    true,
			OnComplete: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if tool := os.Getenv("CLIPFETCH_TOOL"); tool != "" {
		c.Download.Tool = tool
	}
	if outputDir := os.Getenv("CLIPFETCH_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if chromePath := os.Getenv("CLIPFETCH_CHROME_PATH"); chromePath != "" {
		c.Scrape.ChromePath = chromePath
	}
	if maxDownloads := os.Getenv("CLIPFETCH_MAX_DOWNLOADS"); maxDownloads != "" {
		var val int
		fmt.Sscanf(maxDownloads, "%d", &val)
		if val >= 0 {
			c.Download.MaxDownloads = val
		}
	}
	if notifEnabled := os.Getenv("CLIPFETCH_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}
	if logLevel := os.Getenv("CLIPFETCH_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".clipfetch.yaml",
		".clipfetch.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "clipfetch", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "clipfetch", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".clipfetch.yaml"),
		filepath.Join(os.Getenv("HOME"), ".clipfetch.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Scrape.PageLoadTimeout <= 0 {
		errs = append(errs, errors.New("page load timeout must be positive"))
	}
	if c.Scrape.ElementWaitTimeout <= 0 {
		errs = append(errs, errors.New("element wait timeout must be positive"))
	}

	if c.Download.Tool == "" {
		errs = append(errs, errors.New("download tool is required"))
	}
	if c.Download.SocketTimeout <= 0 {
		errs = append(errs, errors.New("socket timeout must be positive"))
	}
	if c.Download.Retries < 0 {
		errs = append(errs, errors.New("retries cannot be negative"))
	}
	if c.Download.Format == "" {
		errs = append(errs, errors.New("download format is required"))
	}
	if c.Download.MaxDownloads < 0 {
		errs = append(errs, errors.New("max downloads cannot be negative"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Stores.HistoryLimit <= 0 {
		errs = append(errs, errors.New("history limit must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if tool, ok := flags["tool"].(string); ok && tool != "" {
		c.Download.Tool = tool
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if max, ok := flags["max"].(int); ok && max > 0 {
		c.Download.MaxDownloads = max
	}
	if chromePath, ok := flags["chrome"].(string); ok && chromePath != "" {
		c.Scrape.ChromePath = chromePath
	}
	if notifications, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = notifications
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".clipfetch.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
