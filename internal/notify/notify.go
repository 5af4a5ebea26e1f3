// Package notify delivers lead alerts over independent transports.
// Each notifier succeeds or fails on its own; the orchestrator fans out
// to all of them in parallel and records per-transport results.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/synapse-labs/lead-intake/internal/model"
)

// Notification carries everything a transport needs to render an alert.
type Notification struct {
	Lead          model.Lead
	Plan          model.ActionPlan
	Analysis      model.LeadAnalysis
	Enrichment    model.EnrichmentResult
	CorrelationID string
	CRMSucceeded  bool
	ReceivedAt    time.Time
}

// Notifier is one delivery transport. Name must match the stage key the
// outcome records results under.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, n Notification) error
}

// Subject renders the alert subject line shared by transports.
func Subject(n Notification) string {
	company := n.Lead.AccountName
	if company == "" {
		company = "Unknown Company"
	}
	return fmt.Sprintf("New Lead: %s [%s priority]", company, n.Plan.Priority)
}

// summaryLines renders the field block shared by the email body and the
// Slack fallback text.
func summaryLines(n Notification) []string {
	lines := []string{
		"Contact: " + n.Lead.FirstName + " " + n.Lead.LastName,
		"Company: " + n.Lead.AccountName,
		"Priority: " + string(n.Plan.Priority),
		"Estimated Value: " + string(n.Plan.EstimatedValue),
	}
	if n.Lead.Email != "" {
		lines = append(lines, "Email: "+n.Lead.Email)
	}
	if n.Analysis.Title != "" {
		lines = append(lines, "Title: "+n.Analysis.Title)
	}
	if n.CRMSucceeded {
		lines = append(lines, "CRM Record: "+n.Lead.ID)
	} else {
		lines = append(lines, "CRM Record: not created (see run log "+n.CorrelationID+")")
	}
	if n.Plan.LeadDraft.ManualReview {
		lines = append(lines, "Flagged for manual review")
	}
	return lines
}

func joinSignals(signals []string) string {
	if len(signals) == 0 {
		return "none detected"
	}
	return strings.Join(signals, "; ")
}
