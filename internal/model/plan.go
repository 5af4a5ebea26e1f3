package model

// Action is the engine's choice of what to do with a lead.
type Action string

const (
	// ActionEnrichThenCreate scrapes the company site before creating the record.
	ActionEnrichThenCreate Action = "enrich_then_create"
	// ActionCreateDirect creates the record immediately from the draft.
	ActionCreateDirect Action = "create_direct"
	// ActionCreateWithManualFlag creates the record flagged for manual review.
	ActionCreateWithManualFlag Action = "create_with_manual_flag"
)

// Priority ranks lead urgency.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// EstimatedValue ranks expected deal size. Kept in lockstep with Priority
// by the decision engine (single source of truth: the quality tier).
type EstimatedValue string

const (
	ValueHigh   EstimatedValue = "High"
	ValueMedium EstimatedValue = "Medium"
	ValueLow    EstimatedValue = "Low"
)

// ActionPlan is the decision engine's output: exactly one per inquiry,
// with priority and estimated value always set.
type ActionPlan struct {
	Action         Action         `json:"action"`
	Priority       Priority       `json:"priority"`
	EstimatedValue EstimatedValue `json:"estimated_value"`
	// TargetURL is set iff Action is ActionEnrichThenCreate.
	TargetURL string    `json:"target_url,omitempty"`
	LeadDraft LeadDraft `json:"lead_draft"`
}
