package walkmode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"planner.onebusaway.org/internal/metrics"
	"planner.onebusaway.org/internal/models"
)

const (
	KindRouted = "routed"

	DefaultProfile = "pedestrian"
)

// RoutedModel delegates hops to a GeometryProvider for one movement profile.
type RoutedModel struct {
	profile     string
	maxDistance float64
	provider    GeometryProvider
	metrics     *metrics.Collector
}

func NewRoutedModel(provider GeometryProvider, profile string, maxDistance float64, collector *metrics.Collector) *RoutedModel {
	return &RoutedModel{
		profile:     profile,
		maxDistance: maxDistance,
		provider:    provider,
		metrics:     collector,
	}
}

func (m *RoutedModel) Profile() string {
	return m.profile
}

func (m *RoutedModel) TimeBetween(ctx context.Context, from, to models.Place) (time.Duration, error) {
	if from.ID == to.ID {
		return 0, nil
	}
	route, err := m.route(ctx, from, to)
	if err != nil {
		return 0, err
	}
	return roundSeconds(route.Duration.Seconds()), nil
}

func (m *RoutedModel) Path(ctx context.Context, from, to models.Place) ([]models.CoordinatePoint, error) {
	route, err := m.route(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return route.Coordinates, nil
}

func (m *RoutedModel) Range() float64 {
	return m.maxDistance
}

func (m *RoutedModel) Identifier() string {
	return encodeDescriptor(KindRouted,
		numberField(keyMaxDistance, m.maxDistance),
		stringField(keyProfile, m.profile))
}

func (m *RoutedModel) route(ctx context.Context, from, to models.Place) (RouteResult, error) {
	if m.provider == nil {
		return RouteResult{}, fmt.Errorf("%w: no geometry provider for profile %s", ErrNoRouteFound, m.profile)
	}

	start := time.Now()
	route, err := m.provider.Route(ctx, from.Point(), to.Point(), m.profile)
	m.metrics.ObserveGeometry(time.Since(start), err != nil || route.IsEmpty())

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return RouteResult{}, fmt.Errorf("routing %s to %s: %w", from.ID, to.ID, ctxErr)
		}
		return RouteResult{}, fmt.Errorf("%w: %s to %s (%s): %v", ErrNoRouteFound, from.ID, to.ID, m.profile, err)
	}
	if route.IsEmpty() {
		return RouteResult{}, fmt.Errorf("%w: %s to %s (%s)", ErrNoRouteFound, from.ID, to.ID, m.profile)
	}
	return route, nil
}

// matchProfile finds name among the configured profiles, ignoring case.
// Unknown names fall back to the first configured profile.
func matchProfile(profiles []string, name string) string {
	for _, p := range profiles {
		if strings.EqualFold(p, name) {
			return p
		}
	}
	return profiles[0]
}

func buildRouted(s *Service, p Params, _, _ []models.Place) (CostModel, error) {
	maxDistance, err := p.Float(keyMaxDistance, defaultMaxDistance)
	if err != nil {
		return nil, err
	}
	name, err := p.String(keyProfile, DefaultProfile)
	if err != nil {
		return nil, err
	}
	profile := matchProfile(s.profiles, name)
	return NewCachedModel(NewRoutedModel(s.geometry, profile, maxDistance, s.metrics), s.metrics), nil
}
