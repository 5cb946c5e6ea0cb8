package restapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"planner.onebusaway.org/gtfsdb"
	"planner.onebusaway.org/internal/logging"
	"planner.onebusaway.org/internal/models"
	"planner.onebusaway.org/internal/walkmode"
)

// invalidAPIKeyResponse sends a 401 Unauthorized response.
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.sendStatus(w, r, http.StatusUnauthorized, "permission denied")
}

// serverErrorResponse logs err and sends a generic 500 body. Error details
// never reach the client.
func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("component", "restapi"))
	api.sendStatus(w, r, http.StatusInternalServerError, "internal server error")
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		FieldErrors: fieldErrors,
	}

	setJSONResponseType(&w)
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(api.Logger, "failed to encode validation error response", err)
	}
}

// modelErrorResponse answers a failed walk mode construction. Descriptor
// problems are the caller's fault and reported against field.
func (api *RestAPI) modelErrorResponse(w http.ResponseWriter, r *http.Request, field string, err error) {
	if errors.Is(err, walkmode.ErrUnknownModelKind) || errors.Is(err, walkmode.ErrMalformedDescriptor) {
		api.validationErrorResponse(w, r, map[string][]string{field: {err.Error()}})
		return
	}
	api.serverErrorResponse(w, r, err)
}

// lookupErrorResponse answers a failed stop resolution.
func (api *RestAPI) lookupErrorResponse(w http.ResponseWriter, r *http.Request, field string, err error) {
	if errors.Is(err, gtfsdb.ErrNotFound) {
		api.validationErrorResponse(w, r, map[string][]string{field: {err.Error()}})
		return
	}
	api.serverErrorResponse(w, r, err)
}

func (api *RestAPI) sendStatus(w http.ResponseWriter, r *http.Request, code int, text string) {
	setJSONResponseType(&w)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(models.NewResponse(code, nil, text)); err != nil {
		logging.LogError(api.Logger, "failed to encode status response", err,
			slog.Int("status", code))
	}
}
