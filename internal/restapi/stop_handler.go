package restapi

import (
	"errors"
	"net/http"

	"planner.onebusaway.org/gtfsdb"
	"planner.onebusaway.org/internal/models"
	"planner.onebusaway.org/internal/utils"
)

func (api *RestAPI) stopHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.ExtractIDFromParams(r, "id")
	if err := utils.ValidateID(id); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return
	}

	place, err := gtfsdb.NewLookup(api.GtfsDB).Stop(r.Context(), id)
	if errors.Is(err, gtfsdb.ErrNotFound) {
		api.sendNotFound(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(place, models.NewEmptyReferences()))
}
