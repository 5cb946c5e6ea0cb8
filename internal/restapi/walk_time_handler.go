package restapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"planner.onebusaway.org/gtfsdb"
	"planner.onebusaway.org/internal/models"
	"planner.onebusaway.org/internal/utils"
	"planner.onebusaway.org/internal/walkmode"
)

// walkTimeHandler answers how long the given walk mode takes between two
// places. Places are stop ids or "lat,lon" pairs.
func (api *RestAPI) walkTimeHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ctx := r.Context()

	fieldErrors := make(map[string][]string)
	mode := query.Get("mode")
	if mode == "" {
		fieldErrors["mode"] = append(fieldErrors["mode"], "mode is required")
	}
	for _, field := range []string{"from", "to"} {
		if query.Get(field) == "" {
			fieldErrors[field] = append(fieldErrors[field], field+" is required")
		}
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	lookup := gtfsdb.NewLookup(api.GtfsDB)
	from, ok := api.resolvePlace(w, r, lookup, "from", query.Get("from"))
	if !ok {
		return
	}
	to, ok := api.resolvePlace(w, r, lookup, "to", query.Get("to"))
	if !ok {
		return
	}

	model, err := api.WalkModes.Create(mode, []models.Place{from}, []models.Place{to})
	if err != nil {
		api.modelErrorResponse(w, r, "mode", err)
		return
	}

	entry := walkTimeView{
		Mode:   model.Identifier(),
		FromID: from.ID,
		ToID:   to.ID,
		Range:  model.Range(),
	}

	d, err := model.TimeBetween(ctx, from, to)
	switch {
	case err == nil:
		entry.Reachable = true
		entry.Seconds = int64(d / time.Second)
	case errors.Is(err, walkmode.ErrNoRouteFound):
	case errors.Is(err, context.Canceled):
		return
	default:
		api.serverErrorResponse(w, r, err)
		return
	}

	refs := models.NewEmptyReferences()
	refs.AddStop(from)
	refs.AddStop(to)
	api.sendResponse(w, r, models.NewEntryResponse(entry, refs))
}

// resolvePlace turns a query value into a place, answering the request with
// a field error when it cannot.
func (api *RestAPI) resolvePlace(w http.ResponseWriter, r *http.Request, lookup *gtfsdb.Lookup, field, value string) (models.Place, bool) {
	lat, lon, isPair, err := utils.ParseLocation(value)
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{field: {err.Error()}})
		return models.Place{}, false
	}
	if isPair {
		return models.NewSyntheticPlace(lat, lon), true
	}

	if err := utils.ValidateID(value); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{field: {err.Error()}})
		return models.Place{}, false
	}
	place, err := lookup.Stop(r.Context(), value)
	if err != nil {
		api.lookupErrorResponse(w, r, field, err)
		return models.Place{}, false
	}
	return place, true
}
