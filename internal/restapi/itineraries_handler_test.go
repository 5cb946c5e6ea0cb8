package restapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"
	"planner.onebusaway.org/internal/appconf"
	"planner.onebusaway.org/internal/models"
)

const itinerariesURL = "/api/itineraries.json?key=" + testKey

var serviceDay = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func clock(hour, minute int) time.Time {
	return serviceDay.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func stopAt(id string) locationRequest {
	return locationRequest{StopID: id}
}

func pointAt(lat, lon float64) locationRequest {
	return locationRequest{Lat: &lat, Lon: &lon}
}

type itinerariesData struct {
	LimitExceeded bool                   `json:"limitExceeded"`
	List          []itineraryView        `json:"list"`
	References    models.ReferencesModel `json:"references"`
}

// rideWithTransfer rides T1 to s2, waits, then rides T2 to s4.
func rideWithTransfer() journeyRequest {
	return journeyRequest{Links: []linkRequest{
		{Location: stopAt("s1"), Time: clock(8, 0)},
		{Location: stopAt("s2"), Time: clock(8, 5), TripID: "T1"},
		{Location: stopAt("s2"), Time: clock(8, 6), Kind: "transfer"},
		{Location: stopAt("s4"), Time: clock(9, 7), TripID: "T2"},
	}}
}

// rideThenWalk rides T1 to s3 and walks to s4.
func rideThenWalk() journeyRequest {
	return journeyRequest{Links: []linkRequest{
		{Location: stopAt("s1"), Time: clock(8, 0)},
		{Location: stopAt("s3"), Time: clock(8, 12), TripID: "T1"},
		{Location: stopAt("s4"), Time: clock(8, 30), Kind: "othermode"},
	}}
}

func TestItinerariesHandler(t *testing.T) {
	api := createTestApi(t)

	t.Run("translates a ride with a transfer", func(t *testing.T) {
		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:     "crowsflight",
			Journeys: []journeyRequest{rideWithTransfer()},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var data itinerariesData
		model.decodeData(t, &data)
		require.Len(t, data.List, 1)

		it := data.List[0]
		assert.Equal(t, clock(8, 0).UnixMilli(), it.DepartureTime)
		assert.Equal(t, clock(9, 7).UnixMilli(), it.ArrivalTime)
		assert.Equal(t, int64(67*60), it.DurationSeconds)
		assert.Equal(t, 2, it.VehiclesTaken)

		require.Len(t, it.Segments, 2)
		first, second := it.Segments[0], it.Segments[1]
		assert.Equal(t, "vehicle", first.Kind)
		require.NotNil(t, first.TripID)
		assert.Equal(t, "T1", *first.TripID)
		assert.Equal(t, "s1", first.Departure.StopID)
		assert.Equal(t, "s2", first.Arrival.StopID)
		require.NotNil(t, second.TripID)
		assert.Equal(t, "T2", *second.TripID)
		assert.Equal(t, "s2", second.Departure.StopID)
		assert.Equal(t, "s4", second.Arrival.StopID)

		stopIDs := make([]string, 0, len(data.References.Stops))
		for _, s := range data.References.Stops {
			stopIDs = append(stopIDs, s.ID)
		}
		assert.Equal(t, []string{"s1", "s2", "s4"}, stopIDs)
		require.Len(t, data.References.Trips, 2)
		assert.Equal(t, models.TripReference{ID: "T1", RouteID: "R1", RouteShortName: "10", Headsign: "Downtown"},
			data.References.Trips[0])
	})

	t.Run("prunes journeys of the same family", func(t *testing.T) {
		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:     "crowsflight",
			Journeys: []journeyRequest{rideThenWalk(), rideWithTransfer()},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var data itinerariesData
		model.decodeData(t, &data)

		// s2 sees more stop events than s4, so transferring there wins.
		require.Len(t, data.List, 1)
		assert.Equal(t, 2, data.List[0].VehiclesTaken)
	})

	t.Run("keeps journeys of different families", func(t *testing.T) {
		later := rideThenWalk()
		later.Links[0].Time = clock(7, 55)

		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:     "crowsflight",
			Journeys: []journeyRequest{later, rideWithTransfer()},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var data itinerariesData
		model.decodeData(t, &data)
		require.Len(t, data.List, 2)
		assert.Equal(t, 1, data.List[0].VehiclesTaken)
		assert.Equal(t, "othermode", data.List[0].Segments[1].Kind)
		assert.Empty(t, data.List[0].Segments[1].Polyline)
	})

	t.Run("synthetic endpoints", func(t *testing.T) {
		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:    "crowsflight",
			Origins: []locationRequest{pointAt(47.599, -122.33)},
			Journeys: []journeyRequest{{Links: []linkRequest{
				{Location: pointAt(47.599, -122.33), Time: clock(7, 50)},
				{Location: stopAt("s1"), Time: clock(7, 58), Kind: "othermode"},
				{Location: stopAt("s2"), Time: clock(8, 5), TripID: "T1"},
			}}},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var data itinerariesData
		model.decodeData(t, &data)
		require.Len(t, data.List, 1)
		require.Len(t, data.List[0].Segments, 2)

		walk := data.List[0].Segments[0]
		assert.Equal(t, "othermode", walk.Kind)
		assert.Equal(t, "coord:47.599000,-122.330000", walk.Departure.StopID)
		assert.Equal(t, 47.599, walk.Departure.Lat)
		assert.Len(t, data.References.Stops, 2, "only transit stops are referenced")
	})

	t.Run("reports delays", func(t *testing.T) {
		j := rideWithTransfer()
		j.Links[1].DelaySeconds = 120

		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:     "crowsflight",
			Journeys: []journeyRequest{j},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var data itinerariesData
		model.decodeData(t, &data)
		arrival := data.List[0].Segments[0].Arrival
		assert.Equal(t, int64(120), arrival.DelaySeconds)
		assert.Equal(t, clock(8, 3).UnixMilli(), arrival.ScheduledTime)
	})
}

func TestItinerariesHandlerWithRoutingServer(t *testing.T) {
	server := newRoutingServer(t)
	api := createTestApi(t, func(cfg *appconf.Config) {
		cfg.GeometryURL = server.URL
	})

	resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
		Mode:     "routed&profile=pedestrian",
		Journeys: []journeyRequest{rideThenWalk()},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data itinerariesData
	model.decodeData(t, &data)
	require.Len(t, data.List, 1)
	require.Len(t, data.List[0].Segments, 2)

	walk := data.List[0].Segments[1]
	assert.Equal(t, "routed&maxDistance=500&profile=pedestrian", walk.CostModel)
	require.NotEmpty(t, walk.Polyline)

	coords, _, err := polyline.DecodeCoords([]byte(walk.Polyline))
	require.NoError(t, err)
	require.Len(t, coords, 3)
	assert.InDelta(t, 38.5, coords[0][0], 1e-5)
	assert.InDelta(t, -126.453, coords[2][1], 1e-5)
}

func TestItinerariesHandlerMissingGeometry(t *testing.T) {
	t.Run("kept without a path", func(t *testing.T) {
		api := createTestApi(t)

		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:     "routed",
			Journeys: []journeyRequest{rideThenWalk()},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var data itinerariesData
		model.decodeData(t, &data)
		require.Len(t, data.List, 1)
		assert.Empty(t, data.List[0].Segments[1].Polyline)
	})

	t.Run("dropped when geometry is mandatory", func(t *testing.T) {
		api := createTestApi(t, func(cfg *appconf.Config) {
			cfg.FailOnMissingGeometry = true
		})

		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:     "routed",
			Journeys: []journeyRequest{rideThenWalk()},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var data itinerariesData
		model.decodeData(t, &data)
		assert.Empty(t, data.List)
	})
}

func TestItinerariesHandlerValidation(t *testing.T) {
	api := createTestApi(t)

	t.Run("empty body", func(t *testing.T) {
		resp, model := postEndpoint(t, api, itinerariesURL, `{}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, model.FieldErrors, "mode")
		assert.Contains(t, model.FieldErrors, "journeys")
	})

	t.Run("malformed json", func(t *testing.T) {
		resp, model := postEndpoint(t, api, itinerariesURL, `{"mode":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, model.FieldErrors, "body")
	})

	t.Run("unknown field", func(t *testing.T) {
		resp, model := postEndpoint(t, api, itinerariesURL, `{"mode":"crowsflight","extra":1}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, model.FieldErrors, "body")
	})

	t.Run("link without location", func(t *testing.T) {
		j := rideWithTransfer()
		j.Links[1].Location = locationRequest{}

		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:     "crowsflight",
			Journeys: []journeyRequest{j},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, model.FieldErrors, "journeys[0].links[1].location.stopId")
	})

	t.Run("unknown link kind", func(t *testing.T) {
		j := rideWithTransfer()
		j.Links[2].Kind = "teleport"

		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:     "crowsflight",
			Journeys: []journeyRequest{j},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []string{`failed on the "oneof" rule`}, model.FieldErrors["journeys[0].links[2].kind"])
	})

	t.Run("root carrying a trip", func(t *testing.T) {
		j := rideWithTransfer()
		j.Links[0].TripID = "T1"

		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:     "crowsflight",
			Journeys: []journeyRequest{j},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, model.FieldErrors, "journeys[0].links[0]")
	})

	t.Run("link without trip or kind", func(t *testing.T) {
		j := rideWithTransfer()
		j.Links[3].TripID = ""

		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:     "crowsflight",
			Journeys: []journeyRequest{j},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []string{"a link needs a tripId or a kind"}, model.FieldErrors["journeys[0].links[3]"])
	})

	t.Run("unknown mode", func(t *testing.T) {
		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:     "teleport",
			Journeys: []journeyRequest{rideWithTransfer()},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, model.FieldErrors, "mode")
	})

	t.Run("unknown origin stop", func(t *testing.T) {
		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:     "crowsflight",
			Origins:  []locationRequest{stopAt("nowhere")},
			Journeys: []journeyRequest{rideWithTransfer()},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, model.FieldErrors, "origins[0]")
	})

	t.Run("unknown stop in a journey", func(t *testing.T) {
		j := rideWithTransfer()
		j.Links[3].Location = stopAt("nowhere")

		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:     "crowsflight",
			Journeys: []journeyRequest{j},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, model.FieldErrors, "journeys")
	})

	t.Run("latitude out of range", func(t *testing.T) {
		resp, model := postEndpoint(t, api, itinerariesURL, itinerariesRequest{
			Mode:         "crowsflight",
			Destinations: []locationRequest{pointAt(91, 0)},
			Journeys:     []journeyRequest{rideWithTransfer()},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, model.FieldErrors, "destinations[0].lat")
	})
}
