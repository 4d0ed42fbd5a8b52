package config

// Example usage of the configuration system:
//
// 1. Load configuration with all sources:
//
//     cfg, err := config.Load("", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 2. Load with a custom config file:
//
//     cfg, err := config.Load("/etc/clipfetch/config.yaml", nil)
//
// 3. Load with command line flag overrides:
//
//     flags := map[string]interface{}{
//         "output":    "/srv/clips",
//         "max":       10,
//         "log-level": "debug",
//     }
//     cfg, err := config.Load("", flags)
//
// 4. Environment variables (override the config file):
//
//     CLIPFETCH_TOOL                   path or name of the download tool
//     CLIPFETCH_OUTPUT_DIR             base output directory
//     CLIPFETCH_CHROME_PATH            explicit Chrome/Chromium binary
//     CLIPFETCH_MAX_DOWNLOADS          default per-run download cap
//     CLIPFETCH_NOTIFICATIONS_ENABLED  "true" or "false"
//     CLIPFETCH_LOG_LEVEL              debug, info, warn, error
//
/// 5. Config file locations searched when no path is given:
//
//     .clipfetch.yaml
//     .clipfetch.yml
//     ~/.config/clipfetch/config.yaml
//     ~/.config/clipfetch/config.yml
//     ~/.clipfetch.yaml
//     ~/.clipfetch.yml
