package pruning

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"planner.onebusaway.org/internal/logging"
	"planner.onebusaway.org/internal/metrics"
)

// EventCounter reports how many scheduled arrivals and departures touch each
// stop.
type EventCounter interface {
	StopEventCounts(ctx context.Context) (map[string]uint32, error)
}

// ImportanceIndex holds the current importance scores. Readers get an
// immutable snapshot; Refresh swaps in a new one.
type ImportanceIndex struct {
	source  EventCounter
	logger  *slog.Logger
	metrics *metrics.Collector

	scores      atomic.Pointer[Scores]
	lastUpdated atomic.Int64
}

func NewImportanceIndex(source EventCounter, logger *slog.Logger, collector *metrics.Collector) *ImportanceIndex {
	if logger == nil {
		logger = slog.Default()
	}
	idx := &ImportanceIndex{
		source:  source,
		logger:  logger.With(slog.String("component", "importance_index")),
		metrics: collector,
	}
	empty := Scores{}
	idx.scores.Store(&empty)
	return idx
}

// Scores returns the current snapshot. Callers must not modify it.
func (i *ImportanceIndex) Scores() Scores {
	return *i.scores.Load()
}

// LastUpdated reports when the snapshot was last replaced, zero before the
// first successful refresh.
func (i *ImportanceIndex) LastUpdated() time.Time {
	ns := i.lastUpdated.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Refresh reloads the scores from the source. The previous snapshot stays in
// place when the source fails.
func (i *ImportanceIndex) Refresh(ctx context.Context) error {
	counts, err := i.source.StopEventCounts(ctx)
	if err != nil {
		return err
	}
	scores := Scores(counts)
	i.scores.Store(&scores)
	i.lastUpdated.Store(time.Now().UnixNano())
	i.metrics.SetImportanceStops(len(scores))

	logging.LogOperation(i.logger, "importance_scores_refreshed",
		slog.Int("stops", len(scores)))
	return nil
}

// Run refreshes the index immediately and then every interval until ctx is
// done. A non-positive interval refreshes once.
func (i *ImportanceIndex) Run(ctx context.Context, interval time.Duration) {
	i.refreshLogged(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			i.refreshLogged(ctx)
		case <-ctx.Done():
			logging.LogOperation(i.logger, "shutting_down_importance_refresh")
			return
		}
	}
}

func (i *ImportanceIndex) refreshLogged(ctx context.Context) {
	if err := i.Refresh(ctx); err != nil {
		logging.LogError(i.logger, "failed to refresh importance scores", err)
	}
}
