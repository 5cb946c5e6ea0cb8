// Package walkmode implements the cost models used for non-scheduled hops
// (walking, cycling, crow-flight estimates) and the registry that builds them
// from descriptor strings such as "crowsflight&maxDistance=500&speed=1.4".
package walkmode

import (
	"context"
	"errors"
	"math"
	"time"

	"planner.onebusaway.org/internal/models"
)

var (
	// ErrUnknownModelKind is returned when the descriptor's leading token
	// names no registered kind.
	ErrUnknownModelKind = errors.New("unknown walk mode kind")
	// ErrMalformedDescriptor is returned when a descriptor field cannot be
	// parsed or nested descriptors were not escaped.
	ErrMalformedDescriptor = errors.New("malformed walk mode descriptor")
	// ErrNoRouteFound is returned when the geometry provider has no route
	// between two places.
	ErrNoRouteFound = errors.New("no route found")
)

// CostModel decides how long a non-scheduled hop between two places takes.
type CostModel interface {
	TimeBetween(ctx context.Context, from, to models.Place) (time.Duration, error)
	// Range is the search radius in meters.
	Range() float64
	// Identifier is the canonical descriptor of the model.
	Identifier() string
}

// PathFinder is implemented by cost models able to produce the geometry of
// a hop.
type PathFinder interface {
	Path(ctx context.Context, from, to models.Place) ([]models.CoordinatePoint, error)
}

// RouteResult is the answer of a GeometryProvider.
type RouteResult struct {
	Coordinates []models.CoordinatePoint
	Distance    float64
	Duration    time.Duration
}

// IsEmpty reports whether the provider found no usable route.
func (r RouteResult) IsEmpty() bool {
	return len(r.Coordinates) == 0
}

// GeometryProvider computes routes for a named movement profile.
// It is the only blocking call reachable from this package.
type GeometryProvider interface {
	Route(ctx context.Context, from, to models.CoordinatePoint, profile string) (RouteResult, error)
}

// maxSeconds is the longest whole-second span a time.Duration can hold.
const maxSeconds = float64(math.MaxInt64 / int64(time.Second))

// roundSeconds rounds to whole seconds, saturating at maxSeconds.
func roundSeconds(seconds float64) time.Duration {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	rounded := math.Floor(seconds + 0.5)
	if rounded >= maxSeconds {
		return time.Duration(maxSeconds) * time.Second
	}
	return time.Duration(rounded) * time.Second
}
