package models

import "time"

// System chat event types broadcast to the workstations channel.
const (
	EventStageCompleted = "stage_completed"
	EventStageRework    = "stage_rework"
	EventRevisionAdded  = "revision_added"
	EventCRMerged       = "cr_merged"
)

// SystemMessage is a fire-and-forget broadcast to the factory floor chat.
type SystemMessage struct {
	Channel    string    `json:"channel"`
	Text       string    `json:"text"`
	Event      string    `json:"event"`
	OrderID    string    `json:"order_id,omitempty"`
	OrderTitle string    `json:"order_title,omitempty"`
	Station    Station   `json:"station,omitempty"`
	At         time.Time `json:"at"`
}
