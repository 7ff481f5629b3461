package logging

import (
	"log/slog"
)

// SetupMCPMode initializes logging for the MCP server.
//
// Stdout carries JSON-RPC exclusively, so logs go only to the file. Without
// debug the level is warn.
func SetupMCPMode(debug bool) (func(), error) {
	cfg := DefaultConfig()
	cfg.Level = "warn"
	if debug {
		cfg.Level = "debug"
	}
	cfg.WriteToStderr = false

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	slog.Debug("mcp_logging_initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level))

	return cleanup, nil
}
