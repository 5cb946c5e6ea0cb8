package restapi

import (
	"net/http"
	"strings"

	"planner.onebusaway.org/internal/models"
)

func (api *RestAPI) walkModesHandler(w http.ResponseWriter, r *http.Request) {
	descriptors := api.WalkModes.SupportedDescriptors()

	modes := make([]walkModeView, 0, len(descriptors))
	for _, descriptor := range descriptors {
		model, err := api.WalkModes.Create(descriptor, nil, nil)
		if err != nil {
			api.serverErrorResponse(w, r, err)
			return
		}
		kind, _, _ := strings.Cut(descriptor, "&")
		modes = append(modes, walkModeView{
			Descriptor: model.Identifier(),
			Kind:       kind,
			Range:      model.Range(),
		})
	}

	entry := walkModesView{
		WalkModes: modes,
		Profiles:  api.WalkModes.Profiles(),
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, models.NewEmptyReferences()))
}
