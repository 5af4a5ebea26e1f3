// Package engine implements the lead intelligence decision engine: a
// pure, deterministic function from an extracted LeadAnalysis to an
// ActionPlan. No I/O, no randomness, no failure paths — unqualifiable
// input degrades to a manual-review plan instead of an error.
package engine

import (
	"strings"

	"github.com/synapse-labs/lead-intake/internal/model"
)

// QualityTier is the engine's internal lead grading. Priority and
// estimated value are derived from it in lockstep.
type QualityTier int

const (
	TierLow QualityTier = iota
	TierMedium
	TierHigh
)

// Engine scores lead quality against a rule set and selects the next
// action. Safe for concurrent use; the rule set is read-only after
// construction.
type Engine struct {
	rules *RuleSet
}

// New creates an Engine. A nil rule set falls back to the defaults.
func New(rules *RuleSet) *Engine {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	return &Engine{rules: rules}
}

// Decide maps an analysis to exactly one ActionPlan. Total over all
// inputs: sparse or garbled analyses yield a manual-flag plan, never an
// error.
func (e *Engine) Decide(analysis model.LeadAnalysis) model.ActionPlan {
	tier := e.qualityTier(analysis)

	plan := model.ActionPlan{}

	switch {
	case analysis.Domain != "" && (tier == TierHigh || tier == TierMedium) && analysis.ContactEmail != "":
		plan.Action = model.ActionEnrichThenCreate
	case analysis.Domain != "" && analysis.ContactEmail == "":
		// Enrichment doubles as contact recovery when the domain is known.
		plan.Action = model.ActionEnrichThenCreate
	case analysis.HasContact():
		plan.Action = model.ActionCreateDirect
	default:
		// No domain, no contact identifiers: nothing to qualify on.
		plan.Action = model.ActionCreateWithManualFlag
		tier = TierLow
	}

	plan.Priority, plan.EstimatedValue = tierOutputs(tier)

	if plan.Action == model.ActionEnrichThenCreate {
		plan.TargetURL = "https://" + analysis.Domain
	}

	plan.LeadDraft = e.buildDraft(analysis, plan)
	return plan
}

// qualityTier computes the weighted-signal grade per the scoring rules:
// High needs a domain plus an authority or urgency signal; Low is
// personal-mail-only contacts or academic inquiries; Medium is anything
// else with at least a domain or contact email.
func (e *Engine) qualityTier(a model.LeadAnalysis) QualityTier {
	hasUrgency := len(a.UrgencySignals) > 0
	intentText := strings.Join(a.IntentSignals, " ")

	if a.Domain != "" {
		authority := e.rules.MatchesDecisionMakerTitle(a.Title) ||
			hasUrgency ||
			e.rules.HasBudgetPhrase(a.Description, intentText)
		if authority {
			return TierHigh
		}
	}

	if e.rules.HasAcademicIndicator(a.Description, intentText, a.Title) {
		return TierLow
	}

	if a.ContactEmail != "" && e.rules.IsPersonalEmail(a.ContactEmail) {
		businessSignal := a.Domain != "" ||
			e.rules.MatchesDecisionMakerTitle(a.Title) ||
			e.rules.HasBudgetPhrase(a.Description, intentText)
		if !businessSignal {
			return TierLow
		}
	}

	if a.Domain != "" || a.ContactEmail != "" {
		return TierMedium
	}
	return TierLow
}

// tierOutputs keeps priority and estimated value in lockstep with the tier.
func tierOutputs(tier QualityTier) (model.Priority, model.EstimatedValue) {
	switch tier {
	case TierHigh:
		return model.PriorityHigh, model.ValueHigh
	case TierMedium:
		return model.PriorityMedium, model.ValueMedium
	default:
		return model.PriorityLow, model.ValueLow
	}
}

// buildDraft populates the lead draft from whatever fields are present
// and synthesizes a description when extraction yielded none, so every
// persisted lead has a non-empty description.
func (e *Engine) buildDraft(a model.LeadAnalysis, plan model.ActionPlan) model.LeadDraft {
	first, last := model.SplitContactName(a.ContactName)

	account := a.Company
	if account == "" {
		if a.Domain != "" {
			account = a.Domain
		} else {
			account = "Unknown Company"
		}
	}

	return model.LeadDraft{
		FirstName:      first,
		LastName:       last,
		Email:          a.ContactEmail,
		AccountName:    account,
		Description:    SynthesizeDescription(a),
		Priority:       plan.Priority,
		EstimatedValue: plan.EstimatedValue,
		ManualReview:   plan.Action == model.ActionCreateWithManualFlag,
	}
}

// SynthesizeDescription builds a non-empty description from the analysis:
// the extracted description if present, otherwise a concatenation of
// urgency and intent signals, with a fixed fallback for fully sparse
// input. Secondary-contact text surfaced by extraction lands here too.
func SynthesizeDescription(a model.LeadAnalysis) string {
	var parts []string
	if a.Description != "" {
		parts = append(parts, a.Description)
	}
	if len(a.UrgencySignals) > 0 {
		parts = append(parts, "Urgency: "+strings.Join(a.UrgencySignals, ", "))
	}
	if len(a.IntentSignals) > 0 {
		parts = append(parts, "Intent: "+strings.Join(a.IntentSignals, ", "))
	}
	if len(parts) == 0 {
		return "Inbound inquiry with no extractable detail; flagged for review."
	}
	return strings.Join(parts, "\n")
}
