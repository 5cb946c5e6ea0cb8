package walkmode

import (
	"context"
	"fmt"
	"math"
	"time"

	"planner.onebusaway.org/internal/models"
)

const KindFirstLastMile = "firstlastmile"

// FirstLastMileModel picks a child model per query: the first-mile model when
// the hop leaves a journey origin, the last-mile model when it reaches a
// journey destination, the default model otherwise.
type FirstLastMileModel struct {
	def       CostModel
	firstMile CostModel
	lastMile  CostModel
	starts    map[string]struct{}
	ends      map[string]struct{}
}

func NewFirstLastMileModel(def, firstMile, lastMile CostModel, starts, ends []models.Place) *FirstLastMileModel {
	return &FirstLastMileModel{
		def:       def,
		firstMile: firstMile,
		lastMile:  lastMile,
		starts:    placeSet(starts),
		ends:      placeSet(ends),
	}
}

func placeSet(places []models.Place) map[string]struct{} {
	set := make(map[string]struct{}, len(places))
	for _, p := range places {
		set[p.ID] = struct{}{}
	}
	return set
}

// ModelFor returns the child model answering the hop from -> to.
func (m *FirstLastMileModel) ModelFor(from, to models.Place) CostModel {
	if _, ok := m.starts[from.ID]; ok {
		return m.firstMile
	}
	if _, ok := m.ends[to.ID]; ok {
		return m.lastMile
	}
	return m.def
}

func (m *FirstLastMileModel) TimeBetween(ctx context.Context, from, to models.Place) (time.Duration, error) {
	return m.ModelFor(from, to).TimeBetween(ctx, from, to)
}

// Path delegates to the selected child when it produces geometry.
func (m *FirstLastMileModel) Path(ctx context.Context, from, to models.Place) ([]models.CoordinatePoint, error) {
	finder, ok := m.ModelFor(from, to).(PathFinder)
	if !ok {
		return nil, nil
	}
	return finder.Path(ctx, from, to)
}

// Range is the widest child range.
func (m *FirstLastMileModel) Range() float64 {
	return math.Max(m.def.Range(), math.Max(m.firstMile.Range(), m.lastMile.Range()))
}

func (m *FirstLastMileModel) Identifier() string {
	return encodeDescriptor(KindFirstLastMile,
		stringField(keyDefault, m.def.Identifier()),
		stringField(keyFirstMile, m.firstMile.Identifier()),
		stringField(keyLastMile, m.lastMile.Identifier()))
}

func buildFirstLastMile(s *Service, p Params, starts, ends []models.Place) (CostModel, error) {
	if err := p.onlyKeys(keyDefault, keyFirstMile, keyLastMile); err != nil {
		return nil, err
	}

	fallback := s.defaultRoutedDescriptor()
	children := make([]CostModel, 0, 3)
	for _, key := range []string{keyDefault, keyFirstMile, keyLastMile} {
		descriptor, err := p.String(key, fallback)
		if err != nil {
			return nil, err
		}
		// The composite already owns the endpoints, so a child that uses them
		// too is either an unescaped spill or meaningless.
		name, _ := splitDescriptor(descriptor)
		if k, ok := s.lookupKind(name); ok && k.usesEndpoints {
			return nil, fmt.Errorf("%w: %s cannot be a %s descriptor", ErrMalformedDescriptor, key, name)
		}
		child, err := s.Create(descriptor, starts, ends)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	return NewFirstLastMileModel(children[0], children[1], children[2], starts, ends), nil
}
