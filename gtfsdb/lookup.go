package gtfsdb

import (
	"context"

	"planner.onebusaway.org/internal/itinerary"
	"planner.onebusaway.org/internal/models"
)

// Lookup resolves journey stop and trip ids against the store.
type Lookup struct {
	client *Client
}

func NewLookup(client *Client) *Lookup {
	return &Lookup{client: client}
}

func (l *Lookup) Stop(ctx context.Context, id string) (models.Place, error) {
	stop, err := l.client.GetStop(ctx, id)
	if err != nil {
		return models.Place{}, err
	}
	return models.NewStopPlace(stop.ID, stop.Name.String, stop.Lat, stop.Lon), nil
}

func (l *Lookup) Trip(ctx context.Context, id string) (itinerary.TripInfo, error) {
	trip, err := l.client.GetTrip(ctx, id)
	if err != nil {
		return itinerary.TripInfo{}, err
	}
	return itinerary.TripInfo{
		ID:             trip.ID,
		Headsign:       trip.Headsign.String,
		RouteID:        trip.RouteID,
		RouteShortName: trip.RouteShortName.String,
	}, nil
}
