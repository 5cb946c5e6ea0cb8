package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the planner's Prometheus instruments. A nil *Collector is
// valid and records nothing.
type Collector struct {
	reg *prometheus.Registry

	ModelsCreated *prometheus.CounterVec // kind label
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter

	GeometryDuration prometheus.Histogram
	GeometryFailures prometheus.Counter

	ItinerariesTranslated prometheus.Counter
	JourneysPruned        prometheus.Counter
	ImportanceStops       prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ModelsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_walkmode_models_created_total",
			Help: "Cost models constructed by the registry.",
		}, []string{"kind"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_walkmode_cache_hits_total",
			Help: "Cost model queries answered from cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_walkmode_cache_misses_total",
			Help: "Cost model queries forwarded to the wrapped model.",
		}),
		GeometryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planner_geometry_duration_seconds",
			Help:    "Duration of geometry provider calls.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		GeometryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_geometry_failures_total",
			Help: "Geometry lookups that found no route.",
		}),
		ItinerariesTranslated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_itineraries_translated_total",
			Help: "Raw journeys translated into itineraries.",
		}),
		JourneysPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_journeys_pruned_total",
			Help: "Raw journeys discarded in favour of a better connected sibling.",
		}),
		ImportanceStops: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "planner_importance_stops",
			Help: "Stops with an importance score in the current snapshot.",
		}),
	}

	reg.MustRegister(
		c.ModelsCreated, c.CacheHits, c.CacheMisses,
		c.GeometryDuration, c.GeometryFailures,
		c.ItinerariesTranslated, c.JourneysPruned, c.ImportanceStops,
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

func (c *Collector) ModelCreated(kind string) {
	if c == nil {
		return
	}
	c.ModelsCreated.WithLabelValues(kind).Inc()
}

func (c *Collector) CacheHit() {
	if c == nil {
		return
	}
	c.CacheHits.Inc()
}

func (c *Collector) CacheMiss() {
	if c == nil {
		return
	}
	c.CacheMisses.Inc()
}

// ObserveGeometry records one geometry provider call.
func (c *Collector) ObserveGeometry(d time.Duration, failed bool) {
	if c == nil {
		return
	}
	c.GeometryDuration.Observe(d.Seconds())
	if failed {
		c.GeometryFailures.Inc()
	}
}

func (c *Collector) Translated(n int) {
	if c == nil {
		return
	}
	c.ItinerariesTranslated.Add(float64(n))
}

func (c *Collector) Pruned(n int) {
	if c == nil {
		return
	}
	c.JourneysPruned.Add(float64(n))
}

func (c *Collector) SetImportanceStops(n int) {
	if c == nil {
		return
	}
	c.ImportanceStops.Set(float64(n))
}
