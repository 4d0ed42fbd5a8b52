package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"clipfetch/pkg/config"
	"clipfetch/pkg/ui"
	"clipfetch/pkg/ytdlp"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Clip Fetcher configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (CLIPFETCH_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'clipfetch.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - That the download tool is installed
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	// Determine config file path
	configPath := configFile
	if configPath == "" {
		configPath = "clipfetch.yaml"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	// Create example configuration
	exampleConfig := `# Clip Fetcher Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with CLIPFETCH_
# For example: CLIPFETCH_TOOL, CLIPFETCH_OUTPUT_DIR, CLIPFETCH_CHROME_PATH

# Headless browser settings for the clips page
scrape:
  # How long to wait for the clips page to load
  # Durations take either a string like "60s" or plain seconds
  page_load_timeout: "60s"

  # How long to wait for clip markers once the page has loaded
  element_wait_timeout: "20s"

  # Path to the Chrome/Chromium binary
  # Leave empty to use the system default
  chrome_path: ""

# Settings handed through to the download tool
download:
  # The tool to run; it must be on PATH
  tool: "yt-dlp"

  # Socket timeout passed to the tool
  socket_timeout: "30s"

  # How many times the tool retries a failing download
  retries: 3

  # Format selection expression
  format: "bestvideo[height<=?1080]+bestaudio/best"

  # Skip TLS certificate verification
  skip_cert_check: true

  # Force IPv4 connections
  force_ipv4: true

  # Cap downloads per run
  # 0 downloads everything found
  max_downloads: 0

# Where clips land on disk
output:
  # Base directory for downloads
  base_directory: "./clips"

  # Create an <account>/<date> folder per run
  account_folders: true

# Persisted store locations
stores:
  # History of successfully queried accounts
  # Leave empty for the per-OS data directory
  history_file: ""

  # How many history entries to keep
  history_limit: 50

  # Saved account list for batch runs
  accounts_file: ""

# Desktop notifications
notifications:
  # Enable notifications at all
  enabled: true

  # Notify when a fetch or batch run completes
  on_complete: true

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stdout only
  file: ""
`

	// Write configuration file
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file to taste")
	fmt.Println("2. Run 'clipfetch config validate' to check the configuration")
	fmt.Println("3. Start downloading with 'clipfetch fetch <account>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Convert to YAML for display
	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintInfo("Current configuration", "")
	fmt.Println()
	fmt.Print(string(data))

	// Show configuration sources
	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (CLIPFETCH_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (auto-detected, if any)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	// Check if config file is specified
	if configFile == "" {
		// Try to find config file in common locations
		possiblePaths := []string{
			"clipfetch.yaml",
			"clipfetch.yml",
			".clipfetch.yaml",
			".clipfetch.yml",
			filepath.Join(os.Getenv("HOME"), ".clipfetch.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "clipfetch", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	// Try to load and validate configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	// Perform additional validation checks
	warnings := []string{}
	errors := []string{}

	// Check the download tool
	if !ytdlp.CheckAvailable(cfg.Download.Tool) {
		warnings = append(warnings, fmt.Sprintf("download tool %q not found on PATH", cfg.Download.Tool))
	}

	// Check paths
	if cfg.Scrape.ChromePath != "" {
		if _, err := os.Stat(cfg.Scrape.ChromePath); err != nil {
			errors = append(errors, fmt.Sprintf("Chrome binary not found at %s", cfg.Scrape.ChromePath))
		}
	}

	if cfg.Output.BaseDirectory != "" {
		if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create output directory: %v", err))
		}
	}

	// Check logging file path
	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	// Display results
	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	// Show summary
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Download tool: %s\n", cfg.Download.Tool)
	fmt.Printf("  Output directory: %s\n", cfg.Output.BaseDirectory)
	if cfg.Download.MaxDownloads > 0 {
		fmt.Printf("  Max downloads: %d\n", cfg.Download.MaxDownloads)
	} else {
		fmt.Println("  Max downloads: unlimited")
	}
	fmt.Printf("  Page load timeout: %s\n", cfg.Scrape.PageLoadTimeout)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
