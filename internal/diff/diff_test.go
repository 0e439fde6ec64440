package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/diff"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
)

func testOrder() *models.Order {
	o := &models.Order{
		Title:    "Neon sign",
		Client:   "Acme",
		Due:      "2026-09-15",
		Badges:   []models.Badge{models.BadgeOpen},
		Fields:   []models.Field{{Key: "size", Label: "Size", Value: "3x1m"}},
		Progress: map[models.Station]int{models.StationCAD: 40},
	}
	o.Normalize()
	return o
}

func TestCompare(t *testing.T) {
	t.Run("identical snapshots produce no changes", func(t *testing.T) {
		a := diff.Capture(testOrder())
		b := diff.Capture(testOrder())
		assert.Empty(t, diff.Compare(a, b))
	})

	t.Run("scalar change is reported once", func(t *testing.T) {
		a := testOrder()
		b := testOrder()
		b.Title = "Neon sign v2"

		changes := diff.Compare(diff.Capture(a), diff.Capture(b))
		require.Len(t, changes, 1)
		assert.Equal(t, "title", changes[0].Key)
		assert.Equal(t, "Neon sign", changes[0].Before)
		assert.Equal(t, "Neon sign v2", changes[0].After)
	})

	t.Run("map changes do not depend on key order", func(t *testing.T) {
		a := testOrder()
		b := testOrder()
		b.Progress[models.StationCNC] = 10

		changes := diff.Compare(diff.Capture(a), diff.Capture(b))
		require.Len(t, changes, 1)
		assert.Equal(t, "progress", changes[0].Key)
	})

	t.Run("output is sorted by key", func(t *testing.T) {
		a := testOrder()
		b := testOrder()
		b.Title = "Other"
		b.Client = "Bravo"
		b.Badges = []models.Badge{models.BadgeUrgent}

		changes := diff.Compare(diff.Capture(a), diff.Capture(b))
		require.Len(t, changes, 3)
		assert.Equal(t, "badges", changes[0].Key)
		assert.Equal(t, "client", changes[1].Key)
		assert.Equal(t, "title", changes[2].Key)
	})
}

func TestCaptureIsIndependent(t *testing.T) {
	o := testOrder()
	snap := diff.Capture(o)

	o.Title = "Mutated"
	o.Fields[0].Value = "changed"
	o.Progress[models.StationCAD] = 99

	assert.Equal(t, "Neon sign", snap.Title)
	assert.Equal(t, "3x1m", snap.Fields[0].Value)
	assert.Equal(t, 40, snap.Progress[models.StationCAD])
}
