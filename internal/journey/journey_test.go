package journey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"planner.onebusaway.org/internal/models"
)

func TestArenaChain(t *testing.T) {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	arena := NewArena()

	root := arena.Root("stop0", start)
	ride := arena.Ride(root, "stop1", start.Add(5*time.Minute), "T1")
	wait := arena.Transfer(ride, start.Add(8*time.Minute))
	walk := arena.OtherMode(wait, "stop2", start.Add(12*time.Minute))

	j := arena.Journey(walk)

	t.Run("chain is ordered root first", func(t *testing.T) {
		assert.Equal(t, []LinkRef{root, ride, wait, walk}, j.Chain())
	})

	t.Run("root is found from the tail", func(t *testing.T) {
		assert.Equal(t, root, j.Root())
		assert.True(t, j.Link(root).IsRoot())
		assert.False(t, j.Link(walk).IsRoot())
	})

	t.Run("transfer stays at predecessor location", func(t *testing.T) {
		link := j.Link(wait)
		assert.Equal(t, "stop1", link.Location)
		assert.True(t, link.Special)
		assert.Equal(t, KindTransfer, link.Kind)
	})

	t.Run("other mode link is special", func(t *testing.T) {
		link := j.Link(walk)
		assert.True(t, link.Special)
		assert.Equal(t, KindOtherMode, link.Kind)
		assert.Equal(t, wait, link.Pred())
	})
}

func TestSharedPrefix(t *testing.T) {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	arena := NewArena()

	root := arena.Root("stop0", start)
	a := arena.Ride(root, "stop1", start.Add(time.Minute), "T1")
	b := arena.Ride(root, "stop2", start.Add(2*time.Minute), "T2")

	x, y := arena.Journey(a), arena.Journey(b)
	assert.Equal(t, x.Root(), y.Root())
	assert.True(t, SameRoot(x, y))

	other := NewArena()
	z := other.Journey(other.Root("stop0", start.Add(time.Hour)))
	assert.False(t, SameRoot(x, z))
}

func TestArenaPlaces(t *testing.T) {
	arena := NewArena()
	place := models.NewSyntheticPlace(47.6, -122.3)

	id := arena.AddPlace(place)
	got, ok := arena.Place(id)
	require.True(t, ok)
	assert.Equal(t, place, got)

	_, ok = arena.Place("missing")
	assert.False(t, ok)
}

func TestAppendRejectsUnknownPredecessor(t *testing.T) {
	arena := NewArena()
	assert.Panics(t, func() {
		arena.Append(3, Link{Location: "x"})
	})
}

func TestSpecialKindString(t *testing.T) {
	assert.Equal(t, "transfer", KindTransfer.String())
	assert.Equal(t, "othermode", KindOtherMode.String())
	assert.Equal(t, "none", KindNone.String())
	assert.Equal(t, "unknown", SpecialKind(9).String())
}
