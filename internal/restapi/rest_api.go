// Package restapi exposes the planner over HTTP: walk mode discovery,
// walk time queries and translation of raw journeys into itineraries.
package restapi

import (
	"net/http"
	"time"

	"planner.onebusaway.org/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, time.Second, app.Config.RateLimitExemptKeys...),
	}
}

// Stop releases the background resources held by the API.
func (api *RestAPI) Stop() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}

// Handler returns the routed API wrapped in its middleware chain.
func (api *RestAPI) Handler() http.Handler {
	router := newRouter()
	api.SetRoutes(router)

	var handler http.Handler = router
	if api.rateLimiter != nil {
		handler = api.rateLimiter.Handler(handler)
	}
	handler = CompressionMiddleware(handler)
	handler = api.WithSecurityHeaders(handler)
	return NewRequestLoggingMiddleware(api.Logger)(handler)
}
