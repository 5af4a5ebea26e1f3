package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-labs/lead-intake/internal/model"
)

func TestDecide_HighTier_EnrichThenCreate(t *testing.T) {
	t.Parallel()
	e := New(nil)

	plan := e.Decide(model.LeadAnalysis{
		Company:      "Acme Corp",
		Domain:       "acme.com",
		ContactName:  "Jane Smith",
		ContactEmail: "jane@acme.com",
		Title:        "CTO",
	})

	assert.Equal(t, model.ActionEnrichThenCreate, plan.Action)
	assert.Equal(t, model.PriorityHigh, plan.Priority)
	assert.Equal(t, model.ValueHigh, plan.EstimatedValue)
	assert.Equal(t, "https://acme.com", plan.TargetURL)
	assert.False(t, plan.LeadDraft.ManualReview)
}

func TestDecide_UrgencyAloneLiftsToHigh(t *testing.T) {
	t.Parallel()
	e := New(nil)

	plan := e.Decide(model.LeadAnalysis{
		Domain:         "acme.com",
		ContactEmail:   "ops@acme.com",
		UrgencySignals: []string{"need this deployed by end of month"},
	})

	assert.Equal(t, model.PriorityHigh, plan.Priority)
	assert.Equal(t, model.ActionEnrichThenCreate, plan.Action)
}

func TestDecide_DomainWithoutEmail_EnrichesForContactRecovery(t *testing.T) {
	t.Parallel()
	e := New(nil)

	plan := e.Decide(model.LeadAnalysis{
		Company: "Acme Corp",
		Domain:  "acme.com",
	})

	assert.Equal(t, model.ActionEnrichThenCreate, plan.Action)
	assert.Equal(t, model.PriorityMedium, plan.Priority)
}

func TestDecide_ContactOnly_CreateDirect(t *testing.T) {
	t.Parallel()
	e := New(nil)

	plan := e.Decide(model.LeadAnalysis{
		ContactName:  "Bob Jones",
		ContactEmail: "bob@smallbiz.io",
	})

	assert.Equal(t, model.ActionCreateDirect, plan.Action)
	assert.Empty(t, plan.TargetURL)
	assert.Equal(t, model.PriorityMedium, plan.Priority)
}

func TestDecide_NothingExtractable_ManualFlag(t *testing.T) {
	t.Parallel()
	e := New(nil)

	plan := e.Decide(model.Degraded())

	assert.Equal(t, model.ActionCreateWithManualFlag, plan.Action)
	assert.Equal(t, model.PriorityLow, plan.Priority)
	assert.Equal(t, model.ValueLow, plan.EstimatedValue)
	assert.True(t, plan.LeadDraft.ManualReview)
	assert.NotEmpty(t, plan.LeadDraft.Description)
}

func TestDecide_AcademicInquiry_LowTier(t *testing.T) {
	t.Parallel()
	e := New(nil)

	plan := e.Decide(model.LeadAnalysis{
		ContactName:  "Sam Lee",
		ContactEmail: "sam@gmail.com",
		Description:  "I'm a student writing my thesis on procurement systems.",
	})

	assert.Equal(t, model.PriorityLow, plan.Priority)
	assert.Equal(t, model.ActionCreateDirect, plan.Action)
}

func TestDecide_PersonalEmailWithoutBusinessSignal_LowTier(t *testing.T) {
	t.Parallel()
	e := New(nil)

	plan := e.Decide(model.LeadAnalysis{
		ContactName:  "Pat Doe",
		ContactEmail: "pat@yahoo.com",
		Description:  "just curious about what you do",
	})

	assert.Equal(t, model.PriorityLow, plan.Priority)
	assert.Equal(t, model.ValueLow, plan.EstimatedValue)
}

func TestDecide_PersonalEmailWithBudgetSignal_NotDemoted(t *testing.T) {
	t.Parallel()
	e := New(nil)

	plan := e.Decide(model.LeadAnalysis{
		ContactName:  "Pat Doe",
		ContactEmail: "pat@gmail.com",
		Description:  "We have budget approved for this quarter and need pricing for 50 seats.",
	})

	assert.Equal(t, model.PriorityMedium, plan.Priority)
}

// Priority and estimated value always move in lockstep, whatever the input.
func TestDecide_PriorityValueLockstep(t *testing.T) {
	t.Parallel()
	e := New(nil)

	inputs := []model.LeadAnalysis{
		{},
		{Domain: "a.com", Title: "CEO", ContactEmail: "x@a.com"},
		{Domain: "b.com"},
		{ContactEmail: "p@gmail.com"},
		{ContactName: "Solo Name"},
		{Description: "student thesis", ContactEmail: "s@gmail.com"},
		model.Degraded(),
	}

	for _, in := range inputs {
		plan := e.Decide(in)
		assert.Equal(t, string(plan.Priority), string(plan.EstimatedValue),
			"priority %q and value %q diverged for %+v", plan.Priority, plan.EstimatedValue, in)
		assert.NotEmpty(t, plan.Action)
		assert.NotEmpty(t, plan.LeadDraft.Description)
	}
}

func TestDecide_TargetURLOnlyForEnrichAction(t *testing.T) {
	t.Parallel()
	e := New(nil)

	direct := e.Decide(model.LeadAnalysis{ContactName: "Bob Jones", ContactEmail: "bob@gmail.com", Title: "CEO"})
	if direct.Action != model.ActionEnrichThenCreate {
		assert.Empty(t, direct.TargetURL)
	}

	enrichPlan := e.Decide(model.LeadAnalysis{Domain: "acme.com"})
	require.Equal(t, model.ActionEnrichThenCreate, enrichPlan.Action)
	assert.Equal(t, "https://acme.com", enrichPlan.TargetURL)
}

func TestBuildDraft_AccountNameFallbacks(t *testing.T) {
	t.Parallel()
	e := New(nil)

	withCompany := e.Decide(model.LeadAnalysis{Company: "Acme Corp", Domain: "acme.com"})
	assert.Equal(t, "Acme Corp", withCompany.LeadDraft.AccountName)

	domainOnly := e.Decide(model.LeadAnalysis{Domain: "acme.com"})
	assert.Equal(t, "acme.com", domainOnly.LeadDraft.AccountName)

	nothing := e.Decide(model.LeadAnalysis{ContactName: "Jane Smith"})
	assert.Equal(t, "Unknown Company", nothing.LeadDraft.AccountName)
}

func TestSynthesizeDescription(t *testing.T) {
	t.Parallel()

	full := SynthesizeDescription(model.LeadAnalysis{
		Description:    "Looking for a vendor.",
		UrgencySignals: []string{"deadline next week"},
		IntentSignals:  []string{"replace current tool"},
	})
	assert.Contains(t, full, "Looking for a vendor.")
	assert.Contains(t, full, "Urgency: deadline next week")
	assert.Contains(t, full, "Intent: replace current tool")

	empty := SynthesizeDescription(model.LeadAnalysis{})
	assert.NotEmpty(t, empty)
}
