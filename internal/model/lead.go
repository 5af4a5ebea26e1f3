package model

import (
	"strings"
	"time"
)

// SizeIndicator is a coarse company-size signal from enrichment.
type SizeIndicator string

const (
	SizeUnknown SizeIndicator = "Unknown"
	SizeSmall   SizeIndicator = "Small"
	SizeMedium  SizeIndicator = "Medium"
	SizeLarge   SizeIndicator = "Large"
)

// EnrichmentResult holds best-effort company context gathered before
// persisting. Merged into the lead draft and discarded.
type EnrichmentResult struct {
	Summary        string        `json:"summary"`
	SizeIndicator  SizeIndicator `json:"size_indicator"`
	FetchSucceeded bool          `json:"fetch_succeeded"`

	// EmailUndeliverable is set when verification positively flagged the
	// contact address. Verification errors leave it false.
	EmailUndeliverable bool `json:"email_undeliverable,omitempty"`
}

// LeadDraft is the partially-filled lead assembled by the decision engine
// and finalized by the orchestrator before persisting.
type LeadDraft struct {
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Email          string         `json:"email"`
	AccountName    string         `json:"account_name"`
	Description    string         `json:"description"`
	Priority       Priority       `json:"priority"`
	EstimatedValue EstimatedValue `json:"estimated_value"`
	ManualReview   bool           `json:"manual_review"`
}

// Lead is the persisted entity. ID is the CRM-assigned id on success or
// a locally generated correlation id when persistence fell back.
type Lead struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Email          string         `json:"email"`
	AccountName    string         `json:"account_name"`
	Description    string         `json:"description"`
	Priority       Priority       `json:"priority"`
	EstimatedValue EstimatedValue `json:"estimated_value"`
	CreatedAt      time.Time      `json:"created_at"`
}

// SplitContactName splits a free-form contact name into first/last parts,
// defaulting to placeholders the CRM accepts for required fields.
func SplitContactName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch {
	case len(parts) == 0:
		return "Unknown", "Contact"
	case len(parts) == 1:
		return parts[0], "Contact"
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
