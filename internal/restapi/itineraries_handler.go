package restapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"planner.onebusaway.org/gtfsdb"
	"planner.onebusaway.org/internal/journey"
	"planner.onebusaway.org/internal/logging"
	"planner.onebusaway.org/internal/models"
	"planner.onebusaway.org/internal/walkmode"
)

const maxItinerariesBody = 1 << 20

type locationRequest struct {
	StopID string   `json:"stopId" validate:"required_without_all=Lat Lon,omitempty,max=100"`
	Lat    *float64 `json:"lat" validate:"required_without=StopID,omitempty,gte=-90,lte=90"`
	Lon    *float64 `json:"lon" validate:"required_without=StopID,omitempty,gte=-180,lte=180"`
}

type linkRequest struct {
	Location     locationRequest `json:"location"`
	Time         time.Time       `json:"time" validate:"required"`
	DelaySeconds int64           `json:"delaySeconds"`
	TripID       string          `json:"tripId" validate:"omitempty,max=100"`
	Kind         string          `json:"kind" validate:"omitempty,oneof=transfer othermode"`
}

type journeyRequest struct {
	// Links are listed root first.
	Links []linkRequest `json:"links" validate:"required,min=1,dive"`
}

type itinerariesRequest struct {
	Mode         string            `json:"mode" validate:"required"`
	Origins      []locationRequest `json:"origins" validate:"dive"`
	Destinations []locationRequest `json:"destinations" validate:"dive"`
	Journeys     []journeyRequest  `json:"journeys" validate:"required,min=1,max=200,dive"`
}

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationFieldErrors converts validator failures into the fieldErrors
// map, keyed by the JSON path of the offending field.
func validationFieldErrors(err error) map[string][]string {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return map[string][]string{"body": {err.Error()}}
	}
	fieldErrors := make(map[string][]string)
	for _, fe := range invalid {
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		fieldErrors[path] = append(fieldErrors[path], fmt.Sprintf("failed on the %q rule", fe.Tag()))
	}
	return fieldErrors
}

// checkLinkKinds rejects flag combinations a raw journey cannot hold: the
// root carries no trip or kind, every other link carries one of them.
func (req *itinerariesRequest) checkLinkKinds() map[string][]string {
	fieldErrors := make(map[string][]string)
	for i, j := range req.Journeys {
		for k, link := range j.Links {
			path := fmt.Sprintf("journeys[%d].links[%d]", i, k)
			switch {
			case k == 0 && (link.TripID != "" || link.Kind != ""):
				fieldErrors[path] = append(fieldErrors[path], "the first link must not carry a trip or kind")
			case k > 0 && link.TripID == "" && link.Kind == "":
				fieldErrors[path] = append(fieldErrors[path], "a link needs a tripId or a kind")
			}
		}
	}
	return fieldErrors
}

// placeID returns the id the arena knows the location by, registering
// coordinate-only locations as synthetic places.
func (l locationRequest) placeID(arena *journey.Arena) string {
	if l.StopID != "" {
		return l.StopID
	}
	return arena.AddPlace(models.NewSyntheticPlace(*l.Lat, *l.Lon))
}

func linkKind(kind string) journey.SpecialKind {
	switch kind {
	case "transfer":
		return journey.KindTransfer
	case "othermode":
		return journey.KindOtherMode
	default:
		return journey.KindNone
	}
}

// buildJourneys loads every requested journey into one arena.
func (req *itinerariesRequest) buildJourneys() []journey.Journey {
	arena := journey.NewArena()
	journeys := make([]journey.Journey, 0, len(req.Journeys))
	for _, j := range req.Journeys {
		root := j.Links[0]
		ref := arena.Root(root.Location.placeID(arena), root.Time)
		for _, link := range j.Links[1:] {
			ref = arena.Append(ref, journey.Link{
				Location: link.Location.placeID(arena),
				Time:     link.Time,
				Delay:    time.Duration(link.DelaySeconds) * time.Second,
				TripID:   link.TripID,
				Special:  link.Kind != "",
				Kind:     linkKind(link.Kind),
			})
		}
		journeys = append(journeys, arena.Journey(ref))
	}
	return journeys
}

// itinerariesHandler prunes the posted raw journeys and translates the
// survivors into itineraries, in the order they were posted.
func (api *RestAPI) itinerariesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req itinerariesRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxItinerariesBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"body": {err.Error()}})
		return
	}
	if err := requestValidator.Struct(&req); err != nil {
		api.validationErrorResponse(w, r, validationFieldErrors(err))
		return
	}
	if fieldErrors := req.checkLinkKinds(); len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	lookup := gtfsdb.NewLookup(api.GtfsDB)
	starts, ok := api.resolveEndpoints(w, r, lookup, "origins", req.Origins)
	if !ok {
		return
	}
	ends, ok := api.resolveEndpoints(w, r, lookup, "destinations", req.Destinations)
	if !ok {
		return
	}

	model, err := api.WalkModes.Create(req.Mode, starts, ends)
	if err != nil {
		api.modelErrorResponse(w, r, "mode", err)
		return
	}

	survivors := api.Pruner.Prune(req.buildJourneys(), api.Importance.Scores())

	refs := models.NewEmptyReferences()
	views := make([]itineraryView, 0, len(survivors))
	for _, j := range survivors {
		it, err := api.Translator.Translate(ctx, j, model)
		switch {
		case err == nil:
			views = append(views, newItineraryView(it, &refs))
		case errors.Is(err, walkmode.ErrNoRouteFound):
			logger.Warn("itinerary dropped",
				slog.String("reason", err.Error()),
				slog.String("mode", model.Identifier()))
		case errors.Is(err, gtfsdb.ErrNotFound):
			api.validationErrorResponse(w, r, map[string][]string{"journeys": {err.Error()}})
			return
		default:
			api.serverErrorResponse(w, r, err)
			return
		}
	}

	api.sendResponse(w, r, models.NewListResponse(views, refs))
}

func (api *RestAPI) resolveEndpoints(w http.ResponseWriter, r *http.Request, lookup *gtfsdb.Lookup, field string, locations []locationRequest) ([]models.Place, bool) {
	places := make([]models.Place, 0, len(locations))
	for i, l := range locations {
		if l.StopID == "" {
			places = append(places, models.NewSyntheticPlace(*l.Lat, *l.Lon))
			continue
		}
		place, err := lookup.Stop(r.Context(), l.StopID)
		if err != nil {
			api.lookupErrorResponse(w, r, fmt.Sprintf("%s[%d]", field, i), err)
			return nil, false
		}
		places = append(places, place)
	}
	return places, true
}
