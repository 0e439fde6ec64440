package models

// ChangeSet is the partial patch carried by a commit or proposed by a
// change request. A nil pointer / nil slice / nil map means "key absent,
// leave the snapshot untouched". Progress and Stages shallow-merge;
// every other present key is a full replacement.
type ChangeSet struct {
	Title             *string                `json:"title,omitempty"`
	Client            *string                `json:"client,omitempty"`
	Due               *string                `json:"due,omitempty"`
	Fields            []Field                `json:"fields,omitempty"`
	Materials         []Field                `json:"materials,omitempty"`
	Badges            []Badge                `json:"badges,omitempty"`
	Progress          map[Station]int        `json:"progress,omitempty"`
	DefaultRevisionID *string                `json:"default_revision_id,omitempty"`
	LoadingDate       *string                `json:"loading_date,omitempty"`
	Stages            map[Station]StageState `json:"stages,omitempty"`
	Cycles            []StageCycle           `json:"cycles,omitempty"`
	IsRD              *bool                  `json:"is_rd,omitempty"`
	RDNotes           *string                `json:"rd_notes,omitempty"`
}

// IsEmpty reports whether the change set patches nothing.
func (c *ChangeSet) IsEmpty() bool {
	return c.Title == nil && c.Client == nil && c.Due == nil &&
		c.Fields == nil && c.Materials == nil && c.Badges == nil &&
		c.Progress == nil && c.DefaultRevisionID == nil &&
		c.LoadingDate == nil && c.Stages == nil && c.Cycles == nil &&
		c.IsRD == nil && c.RDNotes == nil
}

// Apply folds the change set into the order's working snapshot. Present
// keys overwrite; Progress and Stages merge key-by-key into the existing
// maps; absent keys are untouched. Apply is a pure value transform: it
// reads no clock and touches nothing outside the order, so replaying the
// same commit list twice yields identical snapshots.
func (c *ChangeSet) Apply(o *Order) {
	if c.Title != nil {
		o.Title = *c.Title
	}
	if c.Client != nil {
		o.Client = *c.Client
	}
	if c.Due != nil {
		o.Due = *c.Due
	}
	if c.Fields != nil {
		o.Fields = append([]Field(nil), c.Fields...)
	}
	if c.Materials != nil {
		o.Materials = append([]Field(nil), c.Materials...)
	}
	if c.Badges != nil {
		o.Badges = append([]Badge(nil), c.Badges...)
	}
	if c.Progress != nil {
		if o.Progress == nil {
			o.Progress = map[Station]int{}
		}
		for st, v := range c.Progress {
			o.Progress[st] = v
		}
	}
	if c.DefaultRevisionID != nil {
		o.DefaultRevisionID = *c.DefaultRevisionID
	}
	if c.LoadingDate != nil {
		o.LoadingDate = *c.LoadingDate
	}
	if c.Stages != nil {
		if o.Stages == nil {
			o.Stages = StageMap{}
		}
		for st, s := range c.Stages {
			o.Stages[st] = s
		}
	}
	if c.Cycles != nil {
		o.Cycles = append([]StageCycle(nil), c.Cycles...)
	}
	if c.IsRD != nil {
		o.IsRD = *c.IsRD
	}
	if c.RDNotes != nil {
		o.RDNotes = *c.RDNotes
	}
}

// Helpers for building change sets in services and tests.

func StringPtr(s string) *string { return &s }
func BoolPtr(b bool) *bool       { return &b }
