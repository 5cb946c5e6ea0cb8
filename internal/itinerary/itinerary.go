package itinerary

import (
	"context"
	"time"

	"planner.onebusaway.org/internal/models"
)

// TripInfo holds the attributes of a scheduled trip shown to riders.
type TripInfo struct {
	ID             string `json:"id"`
	Headsign       string `json:"headsign"`
	RouteID        string `json:"routeId"`
	RouteShortName string `json:"routeShortName"`
}

// Lookup resolves the ids referenced by raw journey links.
type Lookup interface {
	Stop(ctx context.Context, id string) (models.Place, error)
	Trip(ctx context.Context, id string) (TripInfo, error)
}

// TimedLocation is a place visited at a time. Delay is set for locations
// derived from scheduled data.
type TimedLocation struct {
	Place models.Place  `json:"place"`
	Time  time.Time     `json:"time"`
	Delay time.Duration `json:"delay"`
}

// PlannedTime is the scheduled time, without delay.
func (l TimedLocation) PlannedTime() time.Time {
	return l.Time.Add(-l.Delay)
}

type SegmentKind string

const (
	VehicleSegment   SegmentKind = "vehicle"
	OtherModeSegment SegmentKind = "othermode"
)

// Segment is one leg of an itinerary: a vehicle ride or a non-scheduled hop.
type Segment struct {
	Kind      SegmentKind   `json:"kind"`
	Departure TimedLocation `json:"departure"`
	Arrival   TimedLocation `json:"arrival"`

	// Vehicle segments.
	TripID         *string         `json:"tripId"`
	Headsign       string          `json:"headsign,omitempty"`
	RouteID        string          `json:"routeId,omitempty"`
	RouteShortName string          `json:"routeShortName,omitempty"`
	Intermediates  []TimedLocation `json:"intermediates,omitempty"`

	// Other-mode segments.
	CostModel string                   `json:"costModel,omitempty"`
	Path      []models.CoordinatePoint `json:"path,omitempty"`
}

func (s Segment) Duration() time.Duration {
	return s.Arrival.Time.Sub(s.Departure.Time)
}

// Itinerary is the rider-facing form of a raw journey.
type Itinerary struct {
	Departure     time.Time     `json:"departure"`
	Arrival       time.Time     `json:"arrival"`
	Duration      time.Duration `json:"duration"`
	VehiclesTaken int           `json:"vehiclesTaken"`
	Segments      []Segment     `json:"segments"`
}
