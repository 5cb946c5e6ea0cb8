package walkmode

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"planner.onebusaway.org/internal/models"
)

// countingModel returns a fixed duration and counts the queries it answers.
type countingModel struct {
	name     string
	duration time.Duration
	rng      float64
	calls    atomic.Int32
}

func (m *countingModel) TimeBetween(_ context.Context, _, _ models.Place) (time.Duration, error) {
	m.calls.Add(1)
	return m.duration, nil
}

func (m *countingModel) Range() float64 {
	return m.rng
}

func (m *countingModel) Identifier() string {
	return m.name
}

// mockGeometry answers every route with a straight two point line.
type mockGeometry struct {
	mu       sync.Mutex
	calls    int
	profiles []string
	empty    bool
	err      error
	duration time.Duration
}

func (g *mockGeometry) Route(_ context.Context, from, to models.CoordinatePoint, profile string) (RouteResult, error) {
	g.mu.Lock()
	g.calls++
	g.profiles = append(g.profiles, profile)
	g.mu.Unlock()

	if g.err != nil {
		return RouteResult{}, g.err
	}
	if g.empty {
		return RouteResult{}, nil
	}
	return RouteResult{
		Coordinates: []models.CoordinatePoint{from, to},
		Distance:    100,
		Duration:    g.duration,
	}, nil
}

func (g *mockGeometry) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

var errProviderDown = errors.New("provider down")

var (
	placeA = models.NewStopPlace("A", "Alpha", 47.6062, -122.3321)
	placeB = models.NewStopPlace("B", "Bravo", 47.6097, -122.3331)
	placeX = models.NewStopPlace("X", "X-ray", 47.6150, -122.3200)
	placeY = models.NewStopPlace("Y", "Yankee", 47.6200, -122.3100)
)
