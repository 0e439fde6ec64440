package models

import "time"

// Badge is a quick status marker shown on the order card.
type Badge string

const (
	BadgeOpen        Badge = "OPEN"
	BadgeInProgress  Badge = "IN_PROGRESS"
	BadgeBlocked     Badge = "BLOCKED"
	BadgeReadyToShip Badge = "READY_TO_SHIP"
	BadgeDone        Badge = "DONE"
	BadgeUrgent      Badge = "URGENT"
	BadgeLowStock    Badge = "LOW_STOCK"
	BadgeRD          Badge = "R&D"
	BadgeDraft       Badge = "DRAFT"
)

// Field is a {key, label, value} triple used for free-form metadata and
// material lines. No uniqueness is enforced at this layer.
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// FileRef identifies a stored artifact owned by the object-storage layer.
// Immutable once created.
type FileRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Kind string `json:"kind"` // pdf, image, cdr, other
}

// Revision is one uploaded source-document version. Revisions form a
// parent-pointer chain per order; only linear chains are ever produced.
type Revision struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
	Message   string    `json:"message"`
	File      FileRef   `json:"file"`
}

// Commit is an immutable, timestamped partial patch to order metadata.
// Changes carries only the delta, never the full state.
type Commit struct {
	ID      string    `json:"id"`
	TS      time.Time `json:"ts"`
	Author  string    `json:"author"`
	Station Station   `json:"station,omitempty"`
	Message string    `json:"message"`
	Changes ChangeSet `json:"changes"`
}

// Branch holds an ordered, newest-first commit list. Head always equals
// Commits[0].ID after any mutation.
type Branch struct {
	Name      string   `json:"name"`
	Head      string   `json:"head"`
	Commits   []Commit `json:"commits"`
	IsDefault bool     `json:"is_default,omitempty"`
}

// FindCommit returns the index of the commit with the given id, or -1.
func (b *Branch) FindCommit(id string) int {
	for i := range b.Commits {
		if b.Commits[i].ID == id {
			return i
		}
	}
	return -1
}

// Change request status values. A change request transitions exactly once
// out of open; merged and closed are terminal.
const (
	CRStatusOpen   = "open"
	CRStatusMerged = "merged"
	CRStatusClosed = "closed"
)

// ChangeRequest is a proposed, not-yet-applied set of changes awaiting
// admin approval. Stations open them; an admin merges or declines.
type ChangeRequest struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	CreatedAt    time.Time  `json:"created_at"`
	Status       string     `json:"status"`
	TargetBranch string     `json:"target_branch"`
	Message      string     `json:"message,omitempty"`
	Proposed     ChangeSet  `json:"proposed"`
	MergedAt     *time.Time `json:"merged_at,omitempty"`
	MergedBy     string     `json:"merged_by,omitempty"`
}

// Order is the aggregate root: a purchase order represented as a small,
// self-contained version-control repository plus a working snapshot that
// always equals the fold of the default branch's commits.
type Order struct {
	ID             string   `json:"id"` // PO number, globally unique
	Title          string   `json:"title"`
	Client         string   `json:"client"`
	Due            string   `json:"due"`
	LoadingDate    string   `json:"loading_date,omitempty"`
	LoadingEventID string   `json:"loading_event_id,omitempty"`
	Carrier        string   `json:"carrier,omitempty"`
	IsRD           bool     `json:"is_rd,omitempty"`
	RDNotes        string   `json:"rd_notes,omitempty"`
	IsDraft        bool     `json:"is_draft,omitempty"`
	File           *FileRef `json:"file,omitempty"`

	// Working snapshot. Derivable by replaying the default branch
	// oldest-to-newest; kept in sync incrementally.
	Badges    []Badge         `json:"badges"`
	Fields    []Field         `json:"fields"`
	Materials []Field         `json:"materials"`
	Progress  map[Station]int `json:"progress"` // 0..100 per station
	Stages    StageMap        `json:"stages"`
	Cycles    []StageCycle    `json:"cycles"`

	// Redo flags are direct mutations and bypass the commit log.
	Redo          []Station                `json:"redo,omitempty"`
	RedoReasons   map[Station]ReworkReason `json:"redo_reasons,omitempty"`
	RedoSelection []Station                `json:"redo_selection,omitempty"`

	DefaultBranch     string          `json:"default_branch"`
	Branches          []Branch        `json:"branches"`
	ChangeRequests    []ChangeRequest `json:"change_requests"`
	Revisions         []Revision      `json:"revisions"` // newest first
	DefaultRevisionID string          `json:"default_revision_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FindBranch returns the branch with the given name, or nil.
func (o *Order) FindBranch(name string) *Branch {
	for i := range o.Branches {
		if o.Branches[i].Name == name {
			return &o.Branches[i]
		}
	}
	return nil
}

// FindChangeRequest returns the change request with the given id, or nil.
func (o *Order) FindChangeRequest(id string) *ChangeRequest {
	for i := range o.ChangeRequests {
		if o.ChangeRequests[i].ID == id {
			return &o.ChangeRequests[i]
		}
	}
	return nil
}

// FindRevision returns the revision with the given id, or nil.
func (o *Order) FindRevision(id string) *Revision {
	for i := range o.Revisions {
		if o.Revisions[i].ID == id {
			return &o.Revisions[i]
		}
	}
	return nil
}

// HasBadge reports whether the badge is present.
func (o *Order) HasBadge(b Badge) bool {
	for _, x := range o.Badges {
		if x == b {
			return true
		}
	}
	return false
}

// SeedRevision returns the oldest revision (revisions are newest-first),
// or nil when the order has no file history.
func (o *Order) SeedRevision() *Revision {
	if len(o.Revisions) == 0 {
		return nil
	}
	return &o.Revisions[len(o.Revisions)-1]
}

// Normalize fills defaults left behind by older stored documents: a total
// stage map, non-nil snapshot slices and maps. Read accessors apply it
// before returning an order.
func (o *Order) Normalize() {
	o.Stages = o.Stages.Normalize()
	if o.Badges == nil {
		o.Badges = []Badge{}
	}
	if o.Fields == nil {
		o.Fields = []Field{}
	}
	if o.Materials == nil {
		o.Materials = []Field{}
	}
	if o.Progress == nil {
		o.Progress = map[Station]int{}
	}
	if o.Cycles == nil {
		o.Cycles = []StageCycle{}
	}
	if o.ChangeRequests == nil {
		o.ChangeRequests = []ChangeRequest{}
	}
	if o.Revisions == nil {
		o.Revisions = []Revision{}
	}
	if o.RedoReasons == nil {
		o.RedoReasons = map[Station]ReworkReason{}
	}
	if o.DefaultBranch == "" {
		o.DefaultBranch = "main"
	}
}

// CreateOrderRequest is the seed for a new order. Badges, fields,
// materials, stages and progress are optional.
type CreateOrderRequest struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Client    string          `json:"client"`
	Due       string          `json:"due"`
	File      FileRef         `json:"file"`
	Badges    []Badge         `json:"badges,omitempty"`
	Fields    []Field         `json:"fields,omitempty"`
	Materials []Field         `json:"materials,omitempty"`
	Stages    StageMap        `json:"stages,omitempty"`
	Progress  map[Station]int `json:"progress,omitempty"`
	IsRD      bool            `json:"is_rd,omitempty"`
	RDNotes   string          `json:"rd_notes,omitempty"`
	IsDraft   bool            `json:"is_draft,omitempty"`
}

// CommitRequest is the request body for a direct commit on a branch.
type CommitRequest struct {
	Station Station   `json:"station,omitempty"`
	Message string    `json:"message"`
	Changes ChangeSet `json:"changes"`
}

// OpenChangeRequestRequest is the request body for opening a change request.
type OpenChangeRequestRequest struct {
	Title    string    `json:"title"`
	Message  string    `json:"message,omitempty"`
	Proposed ChangeSet `json:"proposed"`
}

// StageActionRequest is the request body for stage apply / rework actions.
type StageActionRequest struct {
	Station Station      `json:"station"`
	Next    StageState   `json:"next,omitempty"`
	Reason  ReworkReason `json:"reason,omitempty"`
	Note    string       `json:"note,omitempty"`
}

// RollbackRequest names the commit a branch is rolled back to.
type RollbackRequest struct {
	CommitID string `json:"commit_id"`
}
