package appconf

import (
	"os"
	"strings"
	"time"
)

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps the -env flag value to an Environment. Unknown
// values are treated as development.
func EnvFlagToEnvironment(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// Config holds all the configuration settings for the planner API.
type Config struct {
	Port      int
	Env       Environment
	ApiKeys   []string
	RateLimit int // requests per second per API key
	// RateLimitExemptKeys bypass rate limiting, for first-party clients.
	RateLimitExemptKeys []string
	LogLevel            string

	GtfsURL      string // static GTFS zip, URL or local path
	GTFSDataPath string // SQLite database path, ":memory:" allowed

	GeometryURL     string // OSRM-compatible routing server, empty disables routing
	GeometryTimeout time.Duration
	GeometryRPS     float64 // outgoing routing requests per second, 0 is unlimited
	ProfilesPath    string  // optional YAML profile definitions

	ImportanceInterval    time.Duration
	FailOnMissingGeometry bool
}

// GetenvDefault returns the value of the environment variable k, or def when
// it is unset or empty.
func GetenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// SplitList splits a comma separated list and drops empty entries.
func SplitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
