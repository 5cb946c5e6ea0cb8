// Package pruning keeps one raw journey per family, preferring journeys whose
// transfers happen at busier stops.
package pruning

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"planner.onebusaway.org/internal/journey"
	"planner.onebusaway.org/internal/logging"
	"planner.onebusaway.org/internal/metrics"
)

// ErrIncomparableFamilies means two journeys that do not share a root were
// compared.
var ErrIncomparableFamilies = errors.New("incomparable journey families")

// Scores maps a stop id to the number of scheduled events touching it.
type Scores map[string]uint32

// Score returns the score of stopID, 0 when unknown.
func (s Scores) Score(stopID string) uint32 {
	return s[stopID]
}

// Compare orders two journeys of the same family. It returns a negative value
// when x is preferred and a positive value when y is. It never returns 0:
// journeys that tie all the way to the root resolve in favor of x.
func Compare(x, y journey.Journey, scores Scores) (int, error) {
	rx, ry := x.Link(x.Root()), y.Link(y.Root())
	if !rx.Time.Equal(ry.Time) || rx.Location != ry.Location {
		return 0, fmt.Errorf("%w: roots %s@%s and %s@%s", ErrIncomparableFamilies,
			rx.Location, rx.Time.Format(time.RFC3339), ry.Location, ry.Time.Format(time.RFC3339))
	}

	cx, cy := x.Tail(), y.Tail()
	for {
		cx, cy = transferPoint(x, cx), transferPoint(y, cy)
		lx, ly := x.Link(cx), y.Link(cy)

		switch {
		case lx.IsRoot() && ly.IsRoot():
			return -1, nil
		case lx.IsRoot() || ly.IsRoot():
			return 0, fmt.Errorf("%w: one journey reached its root before the other", ErrIncomparableFamilies)
		}

		sx, sy := scores.Score(lx.Location), scores.Score(ly.Location)
		if sx > sy {
			return -1, nil
		}
		if sy > sx {
			return 1, nil
		}
		cx, cy = lx.Pred(), ly.Pred()
	}
}

// transferPoint walks back from ref to the nearest special link, or to the
// root when there is none.
func transferPoint(j journey.Journey, ref journey.LinkRef) journey.LinkRef {
	for {
		link := j.Link(ref)
		if link.Special || link.IsRoot() {
			return ref
		}
		ref = link.Pred()
	}
}

type Pruner struct {
	logger  *slog.Logger
	metrics *metrics.Collector
}

func NewPruner(logger *slog.Logger, collector *metrics.Collector) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		logger:  logger.With(slog.String("component", "pruner")),
		metrics: collector,
	}
}

type familyKey struct {
	time     int64
	location string
}

// family collects the journeys kept for one root. best is the current winner,
// kept holds journeys whose comparison faulted.
type family struct {
	best journey.Journey
	kept []journey.Journey
}

// Prune groups journeys by root time and root location and keeps the
// preferred journey of each group. Groups appear in first-seen order. When a
// comparison faults both journeys are kept.
func (p *Pruner) Prune(journeys []journey.Journey, scores Scores) []journey.Journey {
	var order []familyKey
	families := make(map[familyKey]*family)

	for _, j := range journeys {
		root := j.Link(j.Root())
		key := familyKey{time: root.Time.UnixNano(), location: root.Location}

		f, ok := families[key]
		if !ok {
			families[key] = &family{best: j}
			order = append(order, key)
			continue
		}

		c, err := Compare(f.best, j, scores)
		if err != nil {
			logging.LogError(p.logger, "journey comparison failed, keeping both", err,
				slog.String("root", root.Location),
				slog.Time("root_time", root.Time))
			f.kept = append(f.kept, j)
			continue
		}
		if c > 0 {
			f.best = j
		}
	}

	result := make([]journey.Journey, 0, len(order))
	for _, key := range order {
		f := families[key]
		result = append(result, f.best)
		result = append(result, f.kept...)
	}

	p.metrics.Pruned(len(journeys) - len(result))
	return result
}
