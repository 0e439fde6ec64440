// Package diff computes field-level differences between two order
// snapshots, used by the compare endpoint.
package diff

import (
	"encoding/json"
	"sort"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
)

// FieldChange describes one differing field between two snapshots.
type FieldChange struct {
	Key    string      `json:"key"`
	Before interface{} `json:"before"`
	After  interface{} `json:"after"`
}

// Snapshot is the comparable view of an order's mutable state.
type Snapshot struct {
	Title     string                 `json:"title"`
	Client    string                 `json:"client"`
	Due       string                 `json:"due"`
	Badges    []models.Badge         `json:"badges"`
	Fields    []models.Field         `json:"fields"`
	Materials []models.Field         `json:"materials"`
	Progress  map[models.Station]int `json:"progress"`
	Stages    models.StageMap        `json:"stages"`
	Cycles    []models.StageCycle    `json:"cycles"`
}

// Capture copies the comparable state out of an order.
func Capture(o *models.Order) Snapshot {
	return Snapshot{
		Title:     o.Title,
		Client:    o.Client,
		Due:       o.Due,
		Badges:    append([]models.Badge(nil), o.Badges...),
		Fields:    append([]models.Field(nil), o.Fields...),
		Materials: append([]models.Field(nil), o.Materials...),
		Progress:  copyProgress(o.Progress),
		Stages:    copyStages(o.Stages),
		Cycles:    append([]models.StageCycle(nil), o.Cycles...),
	}
}

// Compare returns the fields whose JSON encoding differs between a and b,
// sorted by key so output is stable.
func Compare(a, b Snapshot) []FieldChange {
	av := toMap(a)
	bv := toMap(b)

	keys := make(map[string]struct{}, len(av)+len(bv))
	for k := range av {
		keys[k] = struct{}{}
	}
	for k := range bv {
		keys[k] = struct{}{}
	}

	var changes []FieldChange
	for k := range keys {
		if !jsonEqual(av[k], bv[k]) {
			changes = append(changes, FieldChange{Key: k, Before: av[k], After: bv[k]})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Key < changes[j].Key })
	return changes
}

func toMap(s Snapshot) map[string]interface{} {
	raw, err := json.Marshal(s)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}

// jsonEqual compares values by their canonical JSON encoding. Maps are
// re-encoded with sorted keys by encoding/json, so key order never
// produces a spurious difference.
func jsonEqual(a, b interface{}) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}

func copyProgress(in map[models.Station]int) map[models.Station]int {
	out := make(map[models.Station]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyStages(in models.StageMap) models.StageMap {
	out := make(models.StageMap, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
