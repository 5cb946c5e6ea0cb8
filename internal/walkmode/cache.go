package walkmode

import (
	"context"
	"sync"
	"time"

	"planner.onebusaway.org/internal/metrics"
	"planner.onebusaway.org/internal/models"
)

// pairKey is directional: forward and reverse hops are cached separately.
type pairKey struct {
	from string
	to   string
}

// CachedModel memoizes the answers of the wrapped model for its lifetime.
// Failed queries are not cached. Concurrent misses for the same pair may
// compute twice; the first stored answer wins.
type CachedModel struct {
	inner   CostModel
	times   sync.Map // pairKey -> time.Duration
	paths   sync.Map // pairKey -> []models.CoordinatePoint
	metrics *metrics.Collector
}

func NewCachedModel(inner CostModel, collector *metrics.Collector) *CachedModel {
	return &CachedModel{inner: inner, metrics: collector}
}

// Unwrap returns the decorated model.
func (c *CachedModel) Unwrap() CostModel {
	return c.inner
}

func (c *CachedModel) TimeBetween(ctx context.Context, from, to models.Place) (time.Duration, error) {
	key := pairKey{from: from.ID, to: to.ID}
	if v, ok := c.times.Load(key); ok {
		c.metrics.CacheHit()
		return v.(time.Duration), nil
	}
	c.metrics.CacheMiss()

	d, err := c.inner.TimeBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}
	v, _ := c.times.LoadOrStore(key, d)
	return v.(time.Duration), nil
}

// Path returns the wrapped model's geometry, or nil when it has none.
func (c *CachedModel) Path(ctx context.Context, from, to models.Place) ([]models.CoordinatePoint, error) {
	finder, ok := c.inner.(PathFinder)
	if !ok {
		return nil, nil
	}

	key := pairKey{from: from.ID, to: to.ID}
	if v, ok := c.paths.Load(key); ok {
		c.metrics.CacheHit()
		return v.([]models.CoordinatePoint), nil
	}
	c.metrics.CacheMiss()

	path, err := finder.Path(ctx, from, to)
	if err != nil {
		return nil, err
	}
	v, _ := c.paths.LoadOrStore(key, path)
	return v.([]models.CoordinatePoint), nil
}

func (c *CachedModel) Range() float64 {
	return c.inner.Range()
}

func (c *CachedModel) Identifier() string {
	return c.inner.Identifier()
}
