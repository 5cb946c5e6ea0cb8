package gtfsdb

import (
	"log/slog"

	"planner.onebusaway.org/internal/appconf"
)

// Config holds configuration options for the Client
type Config struct {
	DBPath  string // Path to SQLite database file, ":memory:" for an in-memory store
	Env     appconf.Environment
	Verbose bool
	Logger  *slog.Logger
}

func NewConfig(dbPath string, env appconf.Environment, verbose bool) Config {
	return Config{
		DBPath:  dbPath,
		Env:     env,
		Verbose: verbose,
	}
}
