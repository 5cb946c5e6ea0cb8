package journey

import (
	"time"

	"planner.onebusaway.org/internal/models"
)

// SpecialKind tells what a special link represents.
type SpecialKind uint8

const (
	KindNone SpecialKind = iota
	// KindTransfer is a time-only wait at the same place.
	KindTransfer
	// KindOtherMode is a movement by a non-scheduled cost model.
	KindOtherMode
)

func (k SpecialKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransfer:
		return "transfer"
	case KindOtherMode:
		return "othermode"
	default:
		return "unknown"
	}
}

// LinkRef addresses a link inside an Arena.
type LinkRef int32

// NoLink is the predecessor of a chain root.
const NoLink LinkRef = -1

// Link is one stop visit of a raw journey.
type Link struct {
	Location string
	Time     time.Time
	Delay    time.Duration
	TripID   string
	Special  bool
	Kind     SpecialKind

	pred LinkRef
}

func (l Link) Pred() LinkRef {
	return l.pred
}

func (l Link) IsRoot() bool {
	return l.pred == NoLink
}

// Arena stores the links of a set of journeys. Journeys of one family share
// their common prefix by pointing at the same predecessor.
// An Arena is not safe for concurrent mutation; it may be read concurrently
// once built.
type Arena struct {
	links  []Link
	places map[string]models.Place
}

func NewArena() *Arena {
	return &Arena{places: make(map[string]models.Place)}
}

// Root starts a new chain at the given location and time.
func (a *Arena) Root(location string, t time.Time) LinkRef {
	return a.push(Link{Location: location, Time: t, pred: NoLink})
}

// Ride appends a scheduled link reached on tripID.
func (a *Arena) Ride(pred LinkRef, location string, t time.Time, tripID string) LinkRef {
	return a.Append(pred, Link{Location: location, Time: t, TripID: tripID})
}

// Transfer appends a wait at the predecessor's location.
func (a *Arena) Transfer(pred LinkRef, t time.Time) LinkRef {
	return a.Append(pred, Link{
		Location: a.links[pred].Location,
		Time:     t,
		Special:  true,
		Kind:     KindTransfer,
	})
}

// OtherMode appends a non-scheduled movement to location.
func (a *Arena) OtherMode(pred LinkRef, location string, t time.Time) LinkRef {
	return a.Append(pred, Link{Location: location, Time: t, Special: true, Kind: KindOtherMode})
}

// Append adds link as the successor of pred. The flags of link are stored
// verbatim, consumers validate them.
func (a *Arena) Append(pred LinkRef, link Link) LinkRef {
	if pred < 0 || int(pred) >= len(a.links) {
		panic("journey: predecessor out of range")
	}
	link.pred = pred
	return a.push(link)
}

func (a *Arena) push(link Link) LinkRef {
	a.links = append(a.links, link)
	return LinkRef(len(a.links) - 1)
}

// Link returns the link stored at ref.
func (a *Arena) Link(ref LinkRef) Link {
	return a.links[ref]
}

// AddPlace registers an off-network place so that its id can be used as a
// link location.
func (a *Arena) AddPlace(place models.Place) string {
	a.places[place.ID] = place
	return place.ID
}

// Place returns a place registered with AddPlace.
func (a *Arena) Place(id string) (models.Place, bool) {
	p, ok := a.places[id]
	return p, ok
}

// Journey returns the journey ending at tail.
func (a *Arena) Journey(tail LinkRef) Journey {
	return Journey{arena: a, tail: tail}
}

// Journey is a raw itinerary, identified by its last link.
type Journey struct {
	arena *Arena
	tail  LinkRef
}

func (j Journey) Arena() *Arena {
	return j.arena
}

func (j Journey) Tail() LinkRef {
	return j.tail
}

func (j Journey) Link(ref LinkRef) Link {
	return j.arena.links[ref]
}

// Root returns the first link of the chain.
func (j Journey) Root() LinkRef {
	ref := j.tail
	for {
		pred := j.arena.links[ref].pred
		if pred == NoLink {
			return ref
		}
		ref = pred
	}
}

// Chain returns the links from root to tail.
func (j Journey) Chain() []LinkRef {
	var refs []LinkRef
	for ref := j.tail; ref != NoLink; ref = j.arena.links[ref].pred {
		refs = append(refs, ref)
	}
	for i, k := 0, len(refs)-1; i < k; i, k = i+1, k-1 {
		refs[i], refs[k] = refs[k], refs[i]
	}
	return refs
}

// SameRoot reports whether both journeys start at the same place and time.
func SameRoot(x, y Journey) bool {
	rx, ry := x.Link(x.Root()), y.Link(y.Root())
	return rx.Location == ry.Location && rx.Time.Equal(ry.Time)
}
