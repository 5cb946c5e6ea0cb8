// Package webui serves a debug page showing the planner's loaded state. It
// is not mounted in production.
package webui

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"planner.onebusaway.org/internal/app"
)

type WebUI struct {
	*app.Application
}

func New(application *app.Application) *WebUI {
	return &WebUI{Application: application}
}

func (webUI *WebUI) SetWebUIRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/debug/", webUI.debugIndexHandler)
}
