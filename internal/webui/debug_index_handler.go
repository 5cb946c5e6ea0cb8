package webui

import (
	"embed"
	"html/template"
	"net/http"
	"sort"
	"time"

	"github.com/davecgh/go-spew/spew"
	"planner.onebusaway.org/internal/logging"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

var dataTypes = []string{"tables", "walk_modes", "importance", "config"}

// topScores caps the importance listing.
const topScores = 25

type debugData struct {
	Title     string
	Pre       string
	DataTypes []string
}

type stopScore struct {
	StopID string
	Score  uint32
}

func (webUI *WebUI) writeDebugData(w http.ResponseWriter, r *http.Request, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title:     title,
		Pre:       spew.Sdump(data),
		DataTypes: dataTypes,
	})
	if err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to render debug page", err)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	var (
		data  interface{}
		title string
	)

	switch r.URL.Query().Get("dataType") {
	case "tables":
		counts, err := webUI.GtfsDB.TableCounts(r.Context())
		if err != nil {
			http.Error(w, "failed to count rows", http.StatusInternalServerError)
			return
		}
		data = counts
		title = "Transit store - Row counts"
	case "walk_modes":
		data = map[string][]string{
			"descriptors": webUI.WalkModes.SupportedDescriptors(),
			"profiles":    webUI.WalkModes.Profiles(),
		}
		title = "Walk modes"
	case "importance":
		data = map[string]interface{}{
			"lastUpdated": webUI.Importance.LastUpdated().Format(time.RFC3339),
			"top":         topStops(webUI.Importance.Scores(), topScores),
		}
		title = "Stop importance"
	case "config":
		cfg := webUI.Config
		cfg.ApiKeys = nil
		cfg.RateLimitExemptKeys = nil
		data = cfg
		title = "Configuration (keys redacted)"
	default:
		data = map[string][]string{"choose one of": dataTypes}
		title = "Choose a data type"
	}

	webUI.writeDebugData(w, r, title, data)
}

// topStops returns the n best scored stops, best first, ties by id.
func topStops(scores map[string]uint32, n int) []stopScore {
	all := make([]stopScore, 0, len(scores))
	for id, score := range scores {
		all = append(all, stopScore{StopID: id, Score: score})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].StopID < all[j].StopID
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
