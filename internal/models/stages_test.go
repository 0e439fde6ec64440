package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.StageState
		ok       bool
	}{
		{models.StageNotStarted, models.StageQueued, true},
		{models.StageNotStarted, models.StageInProgress, true},
		{models.StageNotStarted, models.StageBlocked, true},
		{models.StageNotStarted, models.StageCompleted, false},
		{models.StageNotStarted, models.StageRework, false},
		{models.StageQueued, models.StageInProgress, true},
		{models.StageQueued, models.StageCompleted, false},
		{models.StageInProgress, models.StageCompleted, true},
		{models.StageInProgress, models.StageRework, true},
		{models.StageInProgress, models.StageQueued, false},
		{models.StageRework, models.StageInProgress, true},
		{models.StageRework, models.StageCompleted, true},
		{models.StageBlocked, models.StageInProgress, true},
		{models.StageBlocked, models.StageRework, true},
		{models.StageBlocked, models.StageCompleted, false},
		{models.StageCompleted, models.StageInProgress, false},
		{models.StageCompleted, models.StageRework, false},
		{models.StageCompleted, models.StageQueued, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.ok, models.CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestAllowedNext(t *testing.T) {
	assert.Empty(t, models.AllowedNext(models.StageCompleted))
	assert.ElementsMatch(t,
		[]models.StageState{models.StageInProgress, models.StageBlocked},
		models.AllowedNext(models.StageQueued))
}

func TestStageMapNormalize(t *testing.T) {
	t.Run("fills missing stations", func(t *testing.T) {
		m := models.StageMap{models.StationCAD: models.StageCompleted}
		out := m.Normalize()

		assert.Len(t, out, len(models.Stations))
		assert.Equal(t, models.StageCompleted, out[models.StationCAD])
		assert.Equal(t, models.StageNotStarted, out[models.StationQC])
	})

	t.Run("nil map normalizes to all not started", func(t *testing.T) {
		var m models.StageMap
		out := m.Normalize()

		assert.Len(t, out, len(models.Stations))
		for _, st := range models.Stations {
			assert.Equal(t, models.StageNotStarted, out[st])
		}
	})
}

func TestValidStation(t *testing.T) {
	for _, st := range models.Stations {
		assert.True(t, models.ValidStation(st))
	}
	assert.False(t, models.ValidStation("LASERS"))
	assert.False(t, models.ValidStation(""))
}

func TestBlankStages(t *testing.T) {
	m := models.BlankStages()
	assert.Len(t, m, len(models.Stations))
	for _, st := range models.Stations {
		assert.Equal(t, models.StageNotStarted, m[st])
	}
}
