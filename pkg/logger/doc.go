// Package logger provides a structured logging interface for the Patreon scraper.
//
// Derived loggers keep their fields in the zerolog context. Output is colored
// text on stdout or raw JSON, optionally teed into an append-only file.
//
// Command code installs the run logger once:
//
//	err := logger.Initialize(&config.LoggingConfig{
//	    Level: "info",
//	    File:  "/var/log/patreon-scraper.log",
//	})
//
// Components receive a Logger explicitly:
//
//	log := logger.GetLogger().WithField("component", "scraper")
//	log.InfoWithFields("Post saved", map[string]interface{}{
//	    "post_id": "42",
//	    "files":   3,
//	})
//
// Tests use NewTestLogger to capture messages or NewNopLogger to discard them.
package logger
