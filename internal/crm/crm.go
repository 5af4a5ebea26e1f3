// Package crm persists lead drafts to Salesforce. Creation is
// idempotent on the correlation key: a retried attempt that finds an
// existing record with the same key returns it instead of inserting a
// duplicate.
package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/synapse-labs/lead-intake/internal/config"
	"github.com/synapse-labs/lead-intake/internal/model"
	"github.com/synapse-labs/lead-intake/internal/resilience"
	"github.com/synapse-labs/lead-intake/pkg/salesforce"
)

// RecordStore creates lead records keyed by a correlation id.
type RecordStore interface {
	// CreateLead inserts the draft, or returns the already-created lead
	// when a record with the same correlation key exists. Transient
	// failures come back wrapped so the caller's retry loop fires only
	// on them; validation rejections are permanent.
	CreateLead(ctx context.Context, correlationID string, draft model.LeadDraft) (model.Lead, error)
}

const leadObject = "Lead"

type sfStore struct {
	client           salesforce.Client
	correlationField string
}

// New creates a Salesforce-backed RecordStore.
func New(client salesforce.Client, cfg config.SalesforceConfig) RecordStore {
	field := cfg.CorrelationField
	if field == "" {
		field = "Correlation_Key__c"
	}
	return &sfStore{client: client, correlationField: field}
}

// leadRow matches the SOQL projection for the idempotency lookup.
type leadRow struct {
	Id          string `json:"Id"`
	FirstName   string `json:"FirstName"`
	LastName    string `json:"LastName"`
	Email       string `json:"Email"`
	Company     string `json:"Company"`
	Description string `json:"Description"`
	Rating      string `json:"Rating"`
}

func (s *sfStore) CreateLead(ctx context.Context, correlationID string, draft model.LeadDraft) (model.Lead, error) {
	if existing, found, err := s.findByCorrelation(ctx, correlationID); err != nil {
		return model.Lead{}, err
	} else if found {
		zap.L().Info("crm: lead already exists for correlation key",
			zap.String("correlation_id", correlationID),
			zap.String("lead_id", existing.ID),
		)
		return s.refreshDescription(ctx, existing, draft), nil
	}

	record := map[string]any{
		"FirstName":        draft.FirstName,
		"LastName":         draft.LastName,
		"Company":          draft.AccountName,
		"Description":      draft.Description,
		"Rating":           string(draft.Priority),
		"LeadSource":       "Web",
		s.correlationField: correlationID,
	}
	if draft.Email != "" {
		record["Email"] = draft.Email
	}
	if draft.ManualReview {
		record["Status"] = "Open - Not Contacted"
		record["Description"] = draft.Description + "\n[Needs manual review]"
	}

	id, err := s.client.InsertOne(ctx, leadObject, record)
	if err != nil {
		return model.Lead{}, classify(eris.Wrap(err, "crm: create lead"))
	}

	zap.L().Info("crm: lead created",
		zap.String("lead_id", id),
		zap.String("company", draft.AccountName),
		zap.String("priority", string(draft.Priority)),
	)

	return model.Lead{
		ID:             id,
		FirstName:      draft.FirstName,
		LastName:       draft.LastName,
		Email:          draft.Email,
		AccountName:    draft.AccountName,
		Description:    draft.Description,
		Priority:       draft.Priority,
		EstimatedValue: draft.EstimatedValue,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// refreshDescription updates a previously created record when a retried
// delivery carries a richer description, such as enrichment that only
// succeeded on the redelivery. Best effort: an update failure keeps the
// existing record as-is.
func (s *sfStore) refreshDescription(ctx context.Context, existing model.Lead, draft model.LeadDraft) model.Lead {
	if draft.Description == "" || draft.Description == existing.Description {
		return existing
	}
	if err := s.client.UpdateOne(ctx, leadObject, existing.ID, map[string]any{
		"Description": draft.Description,
	}); err != nil {
		zap.L().Warn("crm: description refresh failed",
			zap.String("lead_id", existing.ID),
			zap.Error(err),
		)
		return existing
	}
	existing.Description = draft.Description
	return existing
}

// findByCorrelation looks up a prior insert with the same key. Lookup
// failures are treated as transient so a retried create re-checks.
func (s *sfStore) findByCorrelation(ctx context.Context, correlationID string) (model.Lead, bool, error) {
	soql := fmt.Sprintf(
		"SELECT Id, FirstName, LastName, Email, Company, Description, Rating FROM Lead WHERE %s = '%s' LIMIT 1",
		s.correlationField, soqlEscape(correlationID),
	)

	var rows []leadRow
	if err := s.client.Query(ctx, soql, &rows); err != nil {
		return model.Lead{}, false, classify(eris.Wrap(err, "crm: correlation lookup"))
	}
	if len(rows) == 0 {
		return model.Lead{}, false, nil
	}

	row := rows[0]
	return model.Lead{
		ID:          row.Id,
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		Email:       row.Email,
		AccountName: row.Company,
		Description: row.Description,
		Priority:    model.Priority(row.Rating),
	}, true, nil
}

// classify wraps server-side and connection failures as transient.
// Field validation rejections stay permanent so the retry loop does not
// hammer the API with a record it will never accept.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, p := range []string{"required_field_missing", "invalid_email_address", "malformed_query", "invalid_field", "string_too_long"} {
		if strings.Contains(msg, p) {
			return err
		}
	}
	if resilience.IsTransient(err) {
		return err
	}
	for _, p := range []string{"server_unavailable", "request_limit_exceeded", "unable_to_lock_row", "503", "502", "500"} {
		if strings.Contains(msg, p) {
			return resilience.Transient(err, 0)
		}
	}
	return err
}

// soqlEscape quotes single quotes and backslashes for SOQL literals.
func soqlEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
