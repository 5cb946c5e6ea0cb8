package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"planner.onebusaway.org/internal/appconf"
	"planner.onebusaway.org/internal/webui"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

func newRouter() *httprouter.Router {
	router := httprouter.New()
	router.HandleMethodNotAllowed = true
	return router
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.NotFound = http.HandlerFunc(api.sendNotFound)

	router.Handler(http.MethodGet, "/api/walk-modes.json", validateAPIKey(api, api.walkModesHandler))
	router.Handler(http.MethodGet, "/api/walk-time.json", validateAPIKey(api, api.walkTimeHandler))
	router.Handler(http.MethodGet, "/api/stop/:id", validateAPIKey(api, api.stopHandler))
	router.Handler(http.MethodPost, "/api/itineraries.json", validateAPIKey(api, api.itinerariesHandler))

	if api.Metrics != nil {
		router.Handler(http.MethodGet, "/metrics", api.Metrics.Handler())
	}
	if api.Config.Env != appconf.Production {
		webui.New(api.Application).SetWebUIRoutes(router)
	}
}
