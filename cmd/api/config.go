package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"planner.onebusaway.org/internal/appconf"
	"planner.onebusaway.org/internal/geometry"
)

// envDefaults reads flag defaults from the environment and keeps the first
// malformed value it meets.
type envDefaults struct {
	err error
}

func (e *envDefaults) fail(key, value string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
}

func (e *envDefaults) int(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.fail(key, raw, err)
		return def
	}
	return v
}

func (e *envDefaults) float(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		e.fail(key, raw, err)
		return def
	}
	return v
}

func (e *envDefaults) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.fail(key, raw, err)
		return def
	}
	return v
}

func (e *envDefaults) bool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		e.fail(key, raw, err)
		return def
	}
	return v
}

// parseConfig reads the command line. Every flag defaults to an environment
// variable, which a .env file may provide.
func parseConfig(args []string, output io.Writer) (appconf.Config, error) {
	var (
		cfg                      appconf.Config
		env, apiKeys, exemptKeys string
		defaults                 envDefaults
	)

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.IntVar(&cfg.Port, "port", defaults.int("PORT", 4000), "API server port")
	fs.StringVar(&env, "env", appconf.GetenvDefault("ENV", "development"), "Environment (development|test|production)")
	fs.StringVar(&apiKeys, "api-keys", appconf.GetenvDefault("API_KEYS", "test"), "Comma separated API keys")
	fs.IntVar(&cfg.RateLimit, "rate-limit", defaults.int("RATE_LIMIT", 100), "Requests per second per API key, negative disables limiting")
	fs.StringVar(&exemptKeys, "rate-limit-exempt-keys", appconf.GetenvDefault("RATE_LIMIT_EXEMPT_KEYS", ""), "Comma separated API keys exempt from rate limiting")
	fs.StringVar(&cfg.LogLevel, "log-level", appconf.GetenvDefault("LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")

	fs.StringVar(&cfg.GtfsURL, "gtfs-url", appconf.GetenvDefault("GTFS_URL", "https://www.soundtransit.org/GTFS-rail/40_gtfs.zip"), "URL or path of a static GTFS zip file")
	fs.StringVar(&cfg.GTFSDataPath, "data-path", appconf.GetenvDefault("DATA_PATH", "./gtfs.db"), "SQLite database path")

	fs.StringVar(&cfg.GeometryURL, "geometry-url", appconf.GetenvDefault("GEOMETRY_URL", ""), "OSRM-compatible routing server, empty disables routed walk modes")
	fs.DurationVar(&cfg.GeometryTimeout, "geometry-timeout", defaults.duration("GEOMETRY_TIMEOUT", geometry.DefaultTimeout), "Timeout of one routing request")
	fs.Float64Var(&cfg.GeometryRPS, "geometry-rps", defaults.float("GEOMETRY_RPS", 0), "Routing requests per second, 0 is unlimited")
	fs.StringVar(&cfg.ProfilesPath, "profiles", appconf.GetenvDefault("PROFILES_PATH", ""), "YAML file of movement profiles")

	fs.DurationVar(&cfg.ImportanceInterval, "importance-interval", defaults.duration("IMPORTANCE_INTERVAL", time.Hour), "Refresh interval of stop importance scores")
	fs.BoolVar(&cfg.FailOnMissingGeometry, "fail-on-missing-geometry", defaults.bool("FAIL_ON_MISSING_GEOMETRY", false), "Drop itineraries whose walks have no route")

	if defaults.err != nil {
		return appconf.Config{}, defaults.err
	}
	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, err
	}

	cfg.Env = appconf.EnvFlagToEnvironment(env)
	cfg.ApiKeys = appconf.SplitList(apiKeys)
	cfg.RateLimitExemptKeys = appconf.SplitList(exemptKeys)

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return appconf.Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.GtfsURL == "" {
		return appconf.Config{}, fmt.Errorf("gtfs-url is required")
	}
	return cfg, nil
}
