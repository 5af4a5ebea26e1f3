package model

import "time"

// RunStatus tracks a stored processing run.
type RunStatus string

const (
	RunStatusProcessing RunStatus = "processing"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// Run is the persisted record of one processing run, keyed by the
// correlation id so retried webhook deliveries map to the same row.
type Run struct {
	ID        string             `json:"id"` // correlation id
	Channel   Channel            `json:"channel"`
	Status    RunStatus          `json:"status"`
	Outcome   *ProcessingOutcome `json:"outcome,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
