package models

import "time"

// Station is one production stage a purchase order passes through.
// The set is fixed at compile time.
type Station string

const (
	StationCAD      Station = "CAD"
	StationCNC      Station = "CNC"
	StationSanding  Station = "SANDING"
	StationBending  Station = "BENDING"
	StationWelding  Station = "WELDING"
	StationPaint    Station = "PAINT"
	StationAssembly Station = "ASSEMBLY"
	StationQC       Station = "QC"
	StationLogistics Station = "LOGISTICS"
)

// Stations lists every station in floor order.
var Stations = []Station{
	StationCAD,
	StationCNC,
	StationSanding,
	StationBending,
	StationWelding,
	StationPaint,
	StationAssembly,
	StationQC,
	StationLogistics,
}

// ValidStation reports whether s is a member of the fixed station set.
func ValidStation(s Station) bool {
	for _, st := range Stations {
		if st == s {
			return true
		}
	}
	return false
}

// StageState is the per-station progress state of an order.
type StageState string

const (
	StageNotStarted StageState = "NOT_STARTED"
	StageQueued     StageState = "QUEUED"
	StageInProgress StageState = "IN_PROGRESS"
	StageBlocked    StageState = "BLOCKED"
	StageRework     StageState = "REWORK"
	StageCompleted  StageState = "COMPLETED"
)

// StageLabels maps states to display labels.
var StageLabels = map[StageState]string{
	StageNotStarted: "Not started",
	StageQueued:     "Queued",
	StageInProgress: "In progress",
	StageBlocked:    "Blocked",
	StageRework:     "Rework",
	StageCompleted:  "Completed",
}

// StageTransitions is the legal from → to table. COMPLETED is terminal.
var StageTransitions = map[StageState][]StageState{
	StageNotStarted: {StageQueued, StageInProgress, StageBlocked},
	StageQueued:     {StageInProgress, StageBlocked},
	StageInProgress: {StageRework, StageBlocked, StageCompleted},
	StageRework:     {StageInProgress, StageBlocked, StageCompleted},
	StageBlocked:    {StageInProgress, StageRework},
	StageCompleted:  {},
}

// AllowedNext returns the states reachable from the given state.
func AllowedNext(state StageState) []StageState {
	return StageTransitions[state]
}

// CanTransition reports whether from → to is a legal stage hop.
func CanTransition(from, to StageState) bool {
	for _, s := range StageTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StageMap holds exactly one state per station. Missing entries are
// normalized to NOT_STARTED on load.
type StageMap map[Station]StageState

// BlankStages returns a total StageMap, all stations NOT_STARTED.
func BlankStages() StageMap {
	m := make(StageMap, len(Stations))
	for _, st := range Stations {
		m[st] = StageNotStarted
	}
	return m
}

// Normalize fills missing stations with NOT_STARTED, in place on a copy.
func (m StageMap) Normalize() StageMap {
	out := make(StageMap, len(Stations))
	for _, st := range Stations {
		if s, ok := m[st]; ok {
			out[st] = s
		} else {
			out[st] = StageNotStarted
		}
	}
	return out
}

// ReworkReason classifies why a station's output was sent back.
type ReworkReason string

const (
	ReworkRecut      ReworkReason = "RECUT"
	ReworkResand     ReworkReason = "RESAND"
	ReworkRebend     ReworkReason = "REBEND"
	ReworkReweld     ReworkReason = "REWELD"
	ReworkRepaint    ReworkReason = "REPAINT"
	ReworkReassemble ReworkReason = "REASSEMBLE"
	ReworkRecheck    ReworkReason = "RECHECK"
	ReworkCustom     ReworkReason = "CUSTOM"
)

// ReworkLabels maps rework reasons to display labels.
var ReworkLabels = map[ReworkReason]string{
	ReworkRecut:      "Re-cut",
	ReworkResand:     "Re-sand",
	ReworkRebend:     "Re-bend",
	ReworkReweld:     "Re-weld",
	ReworkRepaint:    "Re-paint",
	ReworkReassemble: "Re-assemble",
	ReworkRecheck:    "Re-check",
	ReworkCustom:     "Custom",
}

// StageCycle is one logged rework event. Cycles accumulate and are never
// deleted.
type StageCycle struct {
	Idx     int          `json:"idx"`
	Station Station      `json:"station"`
	Reason  ReworkReason `json:"reason"`
	Note    string       `json:"note,omitempty"`
	At      time.Time    `json:"at"`
	By      string       `json:"by"`
}
