package app

import (
	"log/slog"

	"planner.onebusaway.org/gtfsdb"
	"planner.onebusaway.org/internal/appconf"
	"planner.onebusaway.org/internal/geometry"
	"planner.onebusaway.org/internal/itinerary"
	"planner.onebusaway.org/internal/metrics"
	"planner.onebusaway.org/internal/pruning"
	"planner.onebusaway.org/internal/walkmode"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config     appconf.Config
	Logger     *slog.Logger
	Metrics    *metrics.Collector
	GtfsDB     *gtfsdb.Client
	WalkModes  *walkmode.Service
	Translator *itinerary.Translator
	Pruner     *pruning.Pruner
	Importance *pruning.ImportanceIndex
}

// New wires the planner components around an opened store. Routing is
// disabled when cfg.GeometryURL is empty.
func New(cfg appconf.Config, profiles []appconf.Profile, store *gtfsdb.Client, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	collector := metrics.NewCollector()

	var provider walkmode.GeometryProvider
	if cfg.GeometryURL != "" {
		osrm, err := geometry.NewOSRMProvider(geometry.Config{
			BaseURL:  cfg.GeometryURL,
			Profiles: appconf.UpstreamProfiles(profiles),
			Timeout:  cfg.GeometryTimeout,
			Logger:   logger,

			RequestsPerSecond: cfg.GeometryRPS,
		})
		if err != nil {
			return nil, err
		}
		provider = osrm
	}

	var lookup itinerary.Lookup = gtfsdb.NewLookup(store)

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: collector,
		GtfsDB:  store,
		WalkModes: walkmode.NewService(walkmode.Config{
			Profiles: appconf.ProfileNames(profiles),
			Geometry: provider,
			Logger:   logger,
			Metrics:  collector,
		}),
		Translator: itinerary.NewTranslator(lookup,
			itinerary.Options{FailOnMissingGeometry: cfg.FailOnMissingGeometry},
			logger, collector),
		Pruner:     pruning.NewPruner(logger, collector),
		Importance: pruning.NewImportanceIndex(store, logger, collector),
	}, nil
}
