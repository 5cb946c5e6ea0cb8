package restapi

import (
	"time"

	"github.com/twpayne/go-polyline"
	"planner.onebusaway.org/internal/itinerary"
	"planner.onebusaway.org/internal/models"
)

type walkModeView struct {
	Descriptor string  `json:"descriptor"`
	Kind       string  `json:"kind"`
	Range      float64 `json:"range"`
}

type walkModesView struct {
	WalkModes []walkModeView `json:"walkModes"`
	Profiles  []string       `json:"profiles"`
}

type walkTimeView struct {
	Mode      string  `json:"mode"`
	FromID    string  `json:"fromId"`
	ToID      string  `json:"toId"`
	Reachable bool    `json:"reachable"`
	Seconds   int64   `json:"seconds"`
	Range     float64 `json:"range"`
}

type timedPlaceView struct {
	StopID        string  `json:"stopId"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Time          int64   `json:"time"`
	ScheduledTime int64   `json:"scheduledTime"`
	DelaySeconds  int64   `json:"delaySeconds"`
}

type segmentView struct {
	Kind            string           `json:"kind"`
	Departure       timedPlaceView   `json:"departure"`
	Arrival         timedPlaceView   `json:"arrival"`
	DurationSeconds int64            `json:"durationSeconds"`
	TripID          *string          `json:"tripId"`
	Intermediates   []timedPlaceView `json:"intermediates,omitempty"`
	CostModel       string           `json:"costModel,omitempty"`
	// Polyline is the encoded path of an other-mode segment.
	Polyline string `json:"polyline,omitempty"`
}

type itineraryView struct {
	DepartureTime   int64         `json:"departureTime"`
	ArrivalTime     int64         `json:"arrivalTime"`
	DurationSeconds int64         `json:"durationSeconds"`
	VehiclesTaken   int           `json:"vehiclesTaken"`
	Segments        []segmentView `json:"segments"`
}

func newTimedPlaceView(l itinerary.TimedLocation, refs *models.ReferencesModel) timedPlaceView {
	refs.AddStop(l.Place)
	return timedPlaceView{
		StopID:        l.Place.ID,
		Lat:           l.Place.Lat,
		Lon:           l.Place.Lon,
		Time:          l.Time.UnixMilli(),
		ScheduledTime: l.PlannedTime().UnixMilli(),
		DelaySeconds:  int64(l.Delay / time.Second),
	}
}

func newSegmentView(s itinerary.Segment, refs *models.ReferencesModel) segmentView {
	view := segmentView{
		Kind:            string(s.Kind),
		Departure:       newTimedPlaceView(s.Departure, refs),
		Arrival:         newTimedPlaceView(s.Arrival, refs),
		DurationSeconds: int64(s.Duration() / time.Second),
		TripID:          s.TripID,
		CostModel:       s.CostModel,
	}
	for _, stop := range s.Intermediates {
		view.Intermediates = append(view.Intermediates, newTimedPlaceView(stop, refs))
	}
	if s.TripID != nil {
		refs.AddTrip(models.TripReference{
			ID:             *s.TripID,
			RouteID:        s.RouteID,
			RouteShortName: s.RouteShortName,
			Headsign:       s.Headsign,
		})
	}
	if len(s.Path) > 0 {
		view.Polyline = encodePath(s.Path)
	}
	return view
}

func newItineraryView(it itinerary.Itinerary, refs *models.ReferencesModel) itineraryView {
	view := itineraryView{
		DepartureTime:   it.Departure.UnixMilli(),
		ArrivalTime:     it.Arrival.UnixMilli(),
		DurationSeconds: int64(it.Duration / time.Second),
		VehiclesTaken:   it.VehiclesTaken,
		Segments:        make([]segmentView, 0, len(it.Segments)),
	}
	for _, s := range it.Segments {
		view.Segments = append(view.Segments, newSegmentView(s, refs))
	}
	return view
}

func encodePath(path []models.CoordinatePoint) string {
	coords := make([][]float64, len(path))
	for i, p := range path {
		coords[i] = []float64{p.Lat, p.Lon}
	}
	return string(polyline.EncodeCoords(coords))
}
