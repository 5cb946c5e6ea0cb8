package walkmode

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/bluele/gcache"
	"planner.onebusaway.org/internal/logging"
	"planner.onebusaway.org/internal/metrics"
	"planner.onebusaway.org/internal/models"
)

// DefaultEndpointModels bounds how many endpoint-keyed models are kept.
const DefaultEndpointModels = 4096

// FactoryFunc builds a cost model from decoded descriptor fields. starts and
// ends are the journey endpoints the model is created for.
type FactoryFunc func(s *Service, p Params, starts, ends []models.Place) (CostModel, error)

type kind struct {
	name string
	// usesEndpoints marks kinds whose models depend on the endpoint sets.
	usesEndpoints bool
	build         FactoryFunc
}

// Config configures a Service.
type Config struct {
	// Profiles lists the movement profiles known to the geometry provider.
	// The first one is the fallback for unknown names.
	Profiles []string
	Geometry GeometryProvider
	Logger   *slog.Logger
	Metrics  *metrics.Collector
	// EndpointModels caps the LRU of models built for specific endpoint
	// sets. Zero means DefaultEndpointModels.
	EndpointModels int
}

// Service is the walk mode registry. Models are memoized by descriptor for
// the lifetime of the Service and are shared between concurrent requests.
// Models of kinds that depend on the endpoints are kept in a bounded LRU,
// since their keys grow with every origin and destination set.
type Service struct {
	profiles []string
	geometry GeometryProvider
	logger   *slog.Logger
	metrics  *metrics.Collector

	mu    sync.RWMutex
	kinds map[string]kind
	order []string

	models sync.Map // descriptor -> CostModel

	endpointMu     sync.Mutex
	endpointModels gcache.Cache // endpoint key -> CostModel
}

// NewService creates a registry with the built-in kinds registered.
func NewService(config Config) *Service {
	profiles := config.Profiles
	if len(profiles) == 0 {
		profiles = []string{DefaultProfile}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	capacity := config.EndpointModels
	if capacity <= 0 {
		capacity = DefaultEndpointModels
	}

	s := &Service{
		profiles: profiles,
		geometry: config.Geometry,
		logger:   logger,
		metrics:  config.Metrics,
		kinds:    make(map[string]kind),

		endpointModels: gcache.New(capacity).LRU().Build(),
	}

	s.Register(KindCrowsFlight, false, buildCrowsFlight)
	s.Register(KindRouted, false, buildRouted)
	s.Register(KindTransfer, false, buildTransfer)
	s.Register(KindFirstLastMile, true, buildFirstLastMile)

	return s
}

// Register adds a factory under name, replacing any previous one.
func (s *Service) Register(name string, usesEndpoints bool, build FactoryFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.kinds[name]; !exists {
		s.order = append(s.order, name)
	}
	s.kinds[name] = kind{name: name, usesEndpoints: usesEndpoints, build: build}
}

func (s *Service) lookupKind(name string) (kind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.kinds[name]
	return k, ok
}

// Create returns the cost model for descriptor. Identical descriptors yield
// the same instance.
func (s *Service) Create(descriptor string, starts, ends []models.Place) (CostModel, error) {
	name, fields := splitDescriptor(descriptor)
	k, ok := s.lookupKind(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModelKind, name)
	}

	key := descriptor
	if k.usesEndpoints {
		key = endpointKey(descriptor, starts, ends)
	}
	if m, ok := s.cached(key, k.usesEndpoints); ok {
		return m, nil
	}

	params, err := parseParams(fields)
	if err != nil {
		return nil, err
	}
	model, err := k.build(s, params, starts, ends)
	if err != nil {
		return nil, err
	}

	actual, loaded := s.store(key, k.usesEndpoints, model)
	if !loaded {
		s.metrics.ModelCreated(name)
		s.logger.Debug("walk mode created",
			slog.String("descriptor", descriptor),
			slog.String("identifier", model.Identifier()),
			slog.Float64("range", model.Range()))
	}
	return actual, nil
}

func (s *Service) cached(key string, usesEndpoints bool) (CostModel, bool) {
	if usesEndpoints {
		m, err := s.endpointModels.Get(key)
		if err != nil {
			return nil, false
		}
		return m.(CostModel), true
	}
	m, ok := s.models.Load(key)
	if !ok {
		return nil, false
	}
	return m.(CostModel), true
}

// store keeps model under key unless another caller got there first, in
// which case the earlier model is returned and loaded is true.
func (s *Service) store(key string, usesEndpoints bool, model CostModel) (actual CostModel, loaded bool) {
	if !usesEndpoints {
		m, loaded := s.models.LoadOrStore(key, model)
		return m.(CostModel), loaded
	}

	s.endpointMu.Lock()
	defer s.endpointMu.Unlock()
	if m, err := s.endpointModels.Get(key); err == nil {
		return m.(CostModel), true
	}
	if err := s.endpointModels.Set(key, model); err != nil {
		s.logger.Warn("failed to cache walk mode", slog.String("key", key), slog.Any("error", err))
	}
	return model, false
}

// SupportedDescriptors returns the default descriptor of every registered
// kind, in registration order.
func (s *Service) SupportedDescriptors() []string {
	s.mu.RLock()
	names := append([]string(nil), s.order...)
	s.mu.RUnlock()

	descriptors := make([]string, 0, len(names))
	for _, name := range names {
		k, _ := s.lookupKind(name)
		model, err := k.build(s, Params{}, nil, nil)
		if err != nil {
			logging.LogError(s.logger, "failed to build default walk mode", err,
				slog.String("kind", name),
				slog.String("component", "walkmode"))
			continue
		}
		descriptors = append(descriptors, model.Identifier())
	}
	return descriptors
}

// Profiles returns the configured movement profiles.
func (s *Service) Profiles() []string {
	return append([]string(nil), s.profiles...)
}

func (s *Service) defaultRoutedDescriptor() string {
	return encodeDescriptor(KindRouted,
		numberField(keyMaxDistance, defaultMaxDistance),
		stringField(keyProfile, matchProfile(s.profiles, DefaultProfile)))
}

func endpointKey(descriptor string, starts, ends []models.Place) string {
	return descriptor + "|" + joinIDs(starts) + "|" + joinIDs(ends)
}

func joinIDs(places []models.Place) string {
	ids := make([]string, len(places))
	for i, p := range places {
		ids[i] = p.ID
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}
