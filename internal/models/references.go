package models

// TripReference describes a trip ridden by an itinerary segment.
type TripReference struct {
	ID             string `json:"id"`
	RouteID        string `json:"routeId"`
	RouteShortName string `json:"routeShortName,omitempty"`
	Headsign       string `json:"tripHeadsign,omitempty"`
}

// ReferencesModel lists the places and trips mentioned by a response,
// each at most once.
type ReferencesModel struct {
	Stops []Place         `json:"stops"`
	Trips []TripReference `json:"trips"`

	seenStops map[string]bool
	seenTrips map[string]bool
}

// NewEmptyReferences creates a new empty References model with initialized empty slices
func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Stops: []Place{},
		Trips: []TripReference{},
	}
}

// AddStop records a place unless one with the same id is already present.
// Synthetic places are skipped since they carry their coordinates inline.
func (r *ReferencesModel) AddStop(place Place) {
	if place.Synthetic {
		return
	}
	if r.seenStops == nil {
		r.seenStops = make(map[string]bool)
	}
	if r.seenStops[place.ID] {
		return
	}
	r.seenStops[place.ID] = true
	r.Stops = append(r.Stops, place)
}

func (r *ReferencesModel) AddTrip(trip TripReference) {
	if r.seenTrips == nil {
		r.seenTrips = make(map[string]bool)
	}
	if r.seenTrips[trip.ID] {
		return
	}
	r.seenTrips[trip.ID] = true
	r.Trips = append(r.Trips, trip)
}
