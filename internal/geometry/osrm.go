// Package geometry talks to an OSRM-compatible routing server to obtain the
// street paths walked or cycled between two points.
package geometry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/twpayne/go-polyline"
	"golang.org/x/time/rate"
	"planner.onebusaway.org/internal/logging"
	"planner.onebusaway.org/internal/models"
	"planner.onebusaway.org/internal/walkmode"
)

const DefaultTimeout = 5 * time.Second

type Config struct {
	BaseURL string
	// Profiles maps walk mode profile names to routing server profiles.
	// Names without an entry are sent unchanged.
	Profiles map[string]string
	Timeout  time.Duration
	// RequestsPerSecond throttles outgoing calls, 0 disables throttling.
	RequestsPerSecond float64
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// OSRMProvider implements walkmode.GeometryProvider.
type OSRMProvider struct {
	baseURL  string
	profiles map[string]string
	timeout  time.Duration
	limiter  *rate.Limiter
	client   *http.Client
	logger   *slog.Logger
}

func NewOSRMProvider(config Config) (*OSRMProvider, error) {
	base, err := url.Parse(config.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid routing server url %q", config.BaseURL)
	}

	p := &OSRMProvider{
		baseURL:  strings.TrimRight(config.BaseURL, "/"),
		profiles: config.Profiles,
		timeout:  config.Timeout,
		client:   config.HTTPClient,
		logger:   config.Logger,
	}
	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}
	if p.client == nil {
		p.client = http.DefaultClient
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With(slog.String("component", "osrm_provider"))
	if config.RequestsPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return p, nil
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry string  `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// Route queries the routing server. A server answer of NoRoute or NoSegment
// yields an empty result; other failures are returned as errors.
func (p *OSRMProvider) Route(ctx context.Context, from, to models.CoordinatePoint, profile string) (walkmode.RouteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return walkmode.RouteResult{}, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.routeURL(from, to, profile), nil)
	if err != nil {
		return walkmode.RouteResult{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return walkmode.RouteResult{}, err
	}
	defer logging.SafeCloseWithLogging(resp.Body, p.logger, "osrm_response_body")

	var body routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return walkmode.RouteResult{}, fmt.Errorf("decoding routing response (status %d): %w", resp.StatusCode, err)
	}

	switch body.Code {
	case "Ok":
	case "NoRoute", "NoSegment":
		return walkmode.RouteResult{}, nil
	default:
		return walkmode.RouteResult{}, fmt.Errorf("routing server answered %s: %s", body.Code, body.Message)
	}
	if len(body.Routes) == 0 {
		return walkmode.RouteResult{}, nil
	}

	route := body.Routes[0]
	coords, _, err := polyline.DecodeCoords([]byte(route.Geometry))
	if err != nil {
		return walkmode.RouteResult{}, fmt.Errorf("decoding route geometry: %w", err)
	}

	points := make([]models.CoordinatePoint, len(coords))
	for i, c := range coords {
		points[i] = models.CoordinatePoint{Lat: c[0], Lon: c[1]}
	}
	return walkmode.RouteResult{
		Coordinates: points,
		Distance:    route.Distance,
		Duration:    time.Duration(math.Round(route.Duration*1000)) * time.Millisecond,
	}, nil
}

func (p *OSRMProvider) routeURL(from, to models.CoordinatePoint, profile string) string {
	if upstream, ok := p.profiles[profile]; ok {
		profile = upstream
	}
	return fmt.Sprintf("%s/route/v1/%s/%s;%s?overview=full&geometries=polyline",
		p.baseURL, url.PathEscape(profile), lonLat(from), lonLat(to))
}

func lonLat(p models.CoordinatePoint) string {
	return strconv.FormatFloat(p.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat, 'f', 6, 64)
}
