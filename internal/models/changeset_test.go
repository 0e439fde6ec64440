package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
)

func TestChangeSetApply(t *testing.T) {
	t.Run("absent keys leave the order untouched", func(t *testing.T) {
		order := &models.Order{Title: "Sign", Client: "Acme", Badges: []models.Badge{models.BadgeOpen}}
		c := models.ChangeSet{}
		c.Apply(order)

		assert.Equal(t, "Sign", order.Title)
		assert.Equal(t, "Acme", order.Client)
		assert.Equal(t, []models.Badge{models.BadgeOpen}, order.Badges)
	})

	t.Run("scalars replace", func(t *testing.T) {
		order := &models.Order{Title: "Sign", Due: "2026-09-01"}
		c := models.ChangeSet{
			Title: models.StringPtr("Sign v2"),
			Due:   models.StringPtr(""),
			IsRD:  models.BoolPtr(true),
		}
		c.Apply(order)

		assert.Equal(t, "Sign v2", order.Title)
		assert.Equal(t, "", order.Due)
		assert.True(t, order.IsRD)
	})

	t.Run("slices replace wholesale", func(t *testing.T) {
		order := &models.Order{
			Fields: []models.Field{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}},
			Badges: []models.Badge{models.BadgeOpen, models.BadgeUrgent},
		}
		c := models.ChangeSet{
			Fields: []models.Field{{Key: "c", Value: "3"}},
			Badges: []models.Badge{models.BadgeDone},
		}
		c.Apply(order)

		assert.Equal(t, []models.Field{{Key: "c", Value: "3"}}, order.Fields)
		assert.Equal(t, []models.Badge{models.BadgeDone}, order.Badges)
	})

	t.Run("progress and stages merge key by key", func(t *testing.T) {
		order := &models.Order{
			Progress: map[models.Station]int{models.StationCAD: 100, models.StationCNC: 30},
			Stages:   models.StageMap{models.StationCAD: models.StageCompleted, models.StationCNC: models.StageQueued},
		}
		c := models.ChangeSet{
			Progress: map[models.Station]int{models.StationCNC: 80},
			Stages:   map[models.Station]models.StageState{models.StationCNC: models.StageInProgress},
		}
		c.Apply(order)

		assert.Equal(t, 100, order.Progress[models.StationCAD])
		assert.Equal(t, 80, order.Progress[models.StationCNC])
		assert.Equal(t, models.StageCompleted, order.Stages[models.StationCAD])
		assert.Equal(t, models.StageInProgress, order.Stages[models.StationCNC])
	})

	t.Run("merges into nil maps", func(t *testing.T) {
		order := &models.Order{}
		c := models.ChangeSet{
			Progress: map[models.Station]int{models.StationQC: 10},
			Stages:   map[models.Station]models.StageState{models.StationQC: models.StageQueued},
		}
		c.Apply(order)

		assert.Equal(t, 10, order.Progress[models.StationQC])
		assert.Equal(t, models.StageQueued, order.Stages[models.StationQC])
	})

	t.Run("replay is deterministic", func(t *testing.T) {
		changes := []models.ChangeSet{
			{Title: models.StringPtr("v1"), Progress: map[models.Station]int{models.StationCAD: 20}},
			{Fields: []models.Field{{Key: "size", Value: "3x1m"}}},
			{Title: models.StringPtr("v2"), Progress: map[models.Station]int{models.StationCAD: 60, models.StationCNC: 10}},
			{Badges: []models.Badge{models.BadgeUrgent}},
		}

		replay := func() *models.Order {
			o := &models.Order{}
			o.Normalize()
			for i := range changes {
				changes[i].Apply(o)
			}
			return o
		}

		assert.Equal(t, replay(), replay())
	})
}

func TestChangeSetIsEmpty(t *testing.T) {
	assert.True(t, (&models.ChangeSet{}).IsEmpty())
	assert.False(t, (&models.ChangeSet{Title: models.StringPtr("x")}).IsEmpty())
	assert.False(t, (&models.ChangeSet{Stages: map[models.Station]models.StageState{}}).IsEmpty())
}

func TestOrderNormalize(t *testing.T) {
	order := &models.Order{}
	order.Normalize()

	require.NotNil(t, order.Badges)
	require.NotNil(t, order.Fields)
	require.NotNil(t, order.Materials)
	require.NotNil(t, order.Progress)
	require.NotNil(t, order.Cycles)
	require.NotNil(t, order.ChangeRequests)
	require.NotNil(t, order.Revisions)
	require.NotNil(t, order.RedoReasons)
	assert.Equal(t, "main", order.DefaultBranch)
	for _, st := range models.Stations {
		assert.Equal(t, models.StageNotStarted, order.Stages[st])
	}
}

func TestSeedRevision(t *testing.T) {
	order := &models.Order{}
	assert.Nil(t, order.SeedRevision())

	order.Revisions = []models.Revision{{ID: "new"}, {ID: "old"}}
	seed := order.SeedRevision()
	require.NotNil(t, seed)
	assert.Equal(t, "old", seed.ID)
}
