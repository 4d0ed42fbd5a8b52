// Package logger provides a structured logging interface for the clip pipeline.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - Optional file output
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "clipfetch/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File: "/var/log/clipfetch.log",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Application started")
//	logger.WithField("account", "somechannel").Info("Run started")
//	logger.WithError(err).Error("Failed to download clip")
//
// Advanced Usage:
//
//	// Create a logger instance with fields
//	log := logger.GetLogger().
//	    WithField("component", "downloader").
//	    WithField("run_id", runID)
//
//	// Use structured logging
//	log.InfoWithFields("Download completed", map[string]interface{}{
//	    "clip":     "AwkwardHelplessSalamanderSwiftRage",
//	    "duration": time.Second * 5,
//	})
package logger
