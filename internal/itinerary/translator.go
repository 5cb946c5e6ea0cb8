// Package itinerary converts raw journeys produced by the search engine into
// the segment model served by the API.
package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"planner.onebusaway.org/internal/journey"
	"planner.onebusaway.org/internal/metrics"
	"planner.onebusaway.org/internal/walkmode"
)

// ErrUnreachableLinkKind means a link carries a flag combination the search
// engine never produces.
var ErrUnreachableLinkKind = errors.New("unreachable link kind")

type Options struct {
	// FailOnMissingGeometry fails the itinerary when an other-mode hop has
	// no route. Otherwise the hop is kept without a path.
	FailOnMissingGeometry bool
}

type Translator struct {
	lookup  Lookup
	options Options
	logger  *slog.Logger
	metrics *metrics.Collector
}

func NewTranslator(lookup Lookup, options Options, logger *slog.Logger, collector *metrics.Collector) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{
		lookup:  lookup,
		options: options,
		logger:  logger,
		metrics: collector,
	}
}

// translation holds the state of one Translate call.
type translation struct {
	*Translator
	journey journey.Journey
	model   walkmode.CostModel
	chain   []journey.LinkRef
}

// Translate walks the link chain from root to tail and emits one segment per
// vehicle ride and per non-trivial other-mode hop.
func (t *Translator) Translate(ctx context.Context, j journey.Journey, model walkmode.CostModel) (Itinerary, error) {
	tr := &translation{
		Translator: t,
		journey:    j,
		model:      model,
		chain:      j.Chain(),
	}

	var segments []Segment
	for i := 1; i < len(tr.chain); {
		link := j.Link(tr.chain[i])

		switch {
		case !link.Special:
			segment, next, err := tr.vehicleSegment(ctx, i)
			if err != nil {
				return Itinerary{}, err
			}
			segments = append(segments, segment)
			i = next
			continue

		case link.Kind == journey.KindOtherMode:
			pred := j.Link(tr.chain[i-1])
			if pred.Location != link.Location {
				segment, err := tr.otherModeSegment(ctx, i)
				if err != nil {
					return Itinerary{}, err
				}
				segments = append(segments, segment)
			}

		case link.Kind == journey.KindTransfer:
			// The wait shows in the surrounding timestamps.

		default:
			return Itinerary{}, unreachable(tr.chain[i], link)
		}
		i++
	}

	t.metrics.Translated(1)
	return tr.itinerary(segments), nil
}

// vehicleSegment consumes the ride starting at chain index start and every
// following link on the same trip. It returns the index of the first link
// not consumed.
func (tr *translation) vehicleSegment(ctx context.Context, start int) (Segment, int, error) {
	first := tr.journey.Link(tr.chain[start])
	if err := checkScheduled(tr.chain[start], first); err != nil {
		return Segment{}, 0, err
	}

	last := start
	for last+1 < len(tr.chain) {
		next := tr.journey.Link(tr.chain[last+1])
		if next.Special || next.TripID != first.TripID {
			break
		}
		if err := checkScheduled(tr.chain[last+1], next); err != nil {
			return Segment{}, 0, err
		}
		last++
	}

	departure, err := tr.timedLocation(ctx, tr.chain[start-1])
	if err != nil {
		return Segment{}, 0, err
	}
	arrival, err := tr.timedLocation(ctx, tr.chain[last])
	if err != nil {
		return Segment{}, 0, err
	}

	var intermediates []TimedLocation
	for k := start; k < last; k++ {
		stop, err := tr.timedLocation(ctx, tr.chain[k])
		if err != nil {
			return Segment{}, 0, err
		}
		intermediates = append(intermediates, stop)
	}

	trip, err := tr.lookup.Trip(ctx, first.TripID)
	if err != nil {
		return Segment{}, 0, fmt.Errorf("resolving trip %s: %w", first.TripID, err)
	}

	tripID := first.TripID
	return Segment{
		Kind:           VehicleSegment,
		Departure:      departure,
		Arrival:        arrival,
		TripID:         &tripID,
		Headsign:       trip.Headsign,
		RouteID:        trip.RouteID,
		RouteShortName: trip.RouteShortName,
		Intermediates:  intermediates,
	}, last + 1, nil
}

func (tr *translation) otherModeSegment(ctx context.Context, i int) (Segment, error) {
	departure, err := tr.timedLocation(ctx, tr.chain[i-1])
	if err != nil {
		return Segment{}, err
	}
	arrival, err := tr.timedLocation(ctx, tr.chain[i])
	if err != nil {
		return Segment{}, err
	}

	segment := Segment{
		Kind:      OtherModeSegment,
		Departure: departure,
		Arrival:   arrival,
		CostModel: tr.model.Identifier(),
	}

	finder, ok := tr.model.(walkmode.PathFinder)
	if !ok {
		return segment, nil
	}
	path, err := finder.Path(ctx, departure.Place, arrival.Place)
	switch {
	case err == nil:
		segment.Path = path
	case errors.Is(err, walkmode.ErrNoRouteFound) && !tr.options.FailOnMissingGeometry:
		tr.logger.Warn("other mode segment without geometry",
			slog.String("from", departure.Place.ID),
			slog.String("to", arrival.Place.ID),
			slog.String("cost_model", segment.CostModel),
			slog.String("error", err.Error()))
	default:
		return Segment{}, err
	}
	return segment, nil
}

func (tr *translation) timedLocation(ctx context.Context, ref journey.LinkRef) (TimedLocation, error) {
	link := tr.journey.Link(ref)
	place, ok := tr.journey.Arena().Place(link.Location)
	if !ok {
		var err error
		place, err = tr.lookup.Stop(ctx, link.Location)
		if err != nil {
			return TimedLocation{}, fmt.Errorf("resolving stop %s: %w", link.Location, err)
		}
	}
	return TimedLocation{Place: place, Time: link.Time, Delay: link.Delay}, nil
}

// itinerary derives the summary fields from the emitted segments.
func (tr *translation) itinerary(segments []Segment) Itinerary {
	if len(segments) == 0 {
		root := tr.journey.Link(tr.chain[0])
		return Itinerary{Departure: root.Time, Arrival: root.Time, Segments: []Segment{}}
	}

	vehicles := 0
	for _, s := range segments {
		if s.Kind == VehicleSegment {
			vehicles++
		}
	}
	departure := segments[0].Departure.Time
	arrival := segments[len(segments)-1].Arrival.Time
	return Itinerary{
		Departure:     departure,
		Arrival:       arrival,
		Duration:      arrival.Sub(departure),
		VehiclesTaken: vehicles,
		Segments:      segments,
	}
}

func checkScheduled(ref journey.LinkRef, link journey.Link) error {
	if link.Kind != journey.KindNone || link.TripID == "" {
		return unreachable(ref, link)
	}
	return nil
}

func unreachable(ref journey.LinkRef, link journey.Link) error {
	return fmt.Errorf("%w: link %d at %s (special=%t kind=%s trip=%q)",
		ErrUnreachableLinkKind, ref, link.Location, link.Special, link.Kind, link.TripID)
}
