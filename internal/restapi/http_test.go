package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jamespfennell/gtfs"
	"github.com/stretchr/testify/require"
	"planner.onebusaway.org/gtfsdb"
	"planner.onebusaway.org/internal/app"
	"planner.onebusaway.org/internal/appconf"
	"planner.onebusaway.org/internal/logging"
)

const testKey = "TEST"

func float64Ptr(f float64) *float64 {
	return &f
}

// testStatic serves s1 -> s2 -> s3 with trip T1 and s2 -> s4 with trip T2.
func testStatic() *gtfs.Static {
	route := gtfs.Route{Id: "R1", ShortName: "10", LongName: "Crosstown"}
	s1 := gtfs.Stop{Id: "s1", Name: "First Ave", Latitude: float64Ptr(47.600), Longitude: float64Ptr(-122.330)}
	s2 := gtfs.Stop{Id: "s2", Name: "Second Ave", Latitude: float64Ptr(47.605), Longitude: float64Ptr(-122.335)}
	s3 := gtfs.Stop{Id: "s3", Name: "Third Ave", Latitude: float64Ptr(47.610), Longitude: float64Ptr(-122.340)}
	s4 := gtfs.Stop{Id: "s4", Name: "Fourth Ave", Latitude: float64Ptr(47.615), Longitude: float64Ptr(-122.345)}

	return &gtfs.Static{
		Routes: []gtfs.Route{route},
		Stops:  []gtfs.Stop{s1, s2, s3, s4},
		Trips: []gtfs.ScheduledTrip{
			{
				ID:       "T1",
				Route:    &route,
				Headsign: "Downtown",
				StopTimes: []gtfs.ScheduledStopTime{
					{Stop: &s1, StopSequence: 1, ArrivalTime: 8 * time.Hour, DepartureTime: 8 * time.Hour},
					{Stop: &s2, StopSequence: 2, ArrivalTime: 8*time.Hour + 5*time.Minute, DepartureTime: 8*time.Hour + 5*time.Minute},
					{Stop: &s3, StopSequence: 3, ArrivalTime: 8*time.Hour + 12*time.Minute, DepartureTime: 8*time.Hour + 12*time.Minute},
				},
			},
			{
				ID:    "T2",
				Route: &route,
				StopTimes: []gtfs.ScheduledStopTime{
					{Stop: &s2, StopSequence: 1, ArrivalTime: 9 * time.Hour, DepartureTime: 9 * time.Hour},
					{Stop: &s4, StopSequence: 2, ArrivalTime: 9*time.Hour + 7*time.Minute, DepartureTime: 9*time.Hour + 7*time.Minute},
				},
			},
		},
	}
}

// routeGeometry is the polyline of (38.5,-120.2), (40.7,-120.95), (43.252,-126.453).
const routeGeometry = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

// newRoutingServer stands in for an OSRM server that always finds the same
// route.
func newRoutingServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"code":"Ok","routes":[{"geometry":%q,"distance":1200,"duration":900}]}`, routeGeometry)
	}))
	t.Cleanup(server.Close)
	return server
}

// createTestApi builds the API around an in-memory store holding testStatic.
func createTestApi(t *testing.T, configure ...func(*appconf.Config)) *RestAPI {
	t.Helper()
	ctx := context.Background()

	store, err := gtfsdb.NewClient(gtfsdb.NewConfig(":memory:", appconf.Test, false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.ImportStatic(ctx, testStatic()))

	cfg := appconf.Config{
		Env:       appconf.Test,
		ApiKeys:   []string{testKey},
		RateLimit: 100,
	}
	for _, fn := range configure {
		fn(&cfg)
	}

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	application, err := app.New(cfg, appconf.DefaultProfiles(), store, logger)
	require.NoError(t, err)
	require.NoError(t, application.Importance.Refresh(ctx))

	api := NewRestAPI(application)
	t.Cleanup(api.Stop)
	return api
}

// apiResponse mirrors models.ResponseModel with the payload left raw.
type apiResponse struct {
	Code        int                 `json:"code"`
	CurrentTime int64               `json:"currentTime"`
	Text        string              `json:"text"`
	Version     int                 `json:"version"`
	Data        json.RawMessage     `json:"data"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func (r apiResponse) decodeData(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, v))
}

func serveRequest(t *testing.T, api *RestAPI, req *http.Request) (*http.Response, apiResponse) {
	t.Helper()
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	target, err := http.NewRequest(req.Method, server.URL+req.URL.RequestURI(), req.Body)
	require.NoError(t, err)
	target.Header = req.Header

	resp, err := http.DefaultClient.Do(target)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var body apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func getEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, apiResponse) {
	t.Helper()
	return serveRequest(t, api, httptest.NewRequest(http.MethodGet, endpoint, nil))
}

func postEndpoint(t *testing.T, api *RestAPI, endpoint string, payload interface{}) (*http.Response, apiResponse) {
	t.Helper()
	var body []byte
	switch p := payload.(type) {
	case string:
		body = []byte(p)
	default:
		var err error
		body, err = json.Marshal(p)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return serveRequest(t, api, req)
}
