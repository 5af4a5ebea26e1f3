package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/synapse-labs/lead-intake/internal/config"
	"github.com/synapse-labs/lead-intake/internal/engine"
	"github.com/synapse-labs/lead-intake/internal/model"
	"github.com/synapse-labs/lead-intake/internal/notify"
	"github.com/synapse-labs/lead-intake/internal/resilience"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testConfig() config.OrchestratorConfig {
	return config.OrchestratorConfig{
		ExtractTimeout:     time.Second,
		EnrichTimeout:      time.Second,
		PersistTimeout:     2 * time.Second,
		NotifyTimeout:      time.Second,
		PersistMaxAttempts: 3,
		PersistBackoff:     time.Millisecond,
		BreakerThreshold:   3,
		BreakerCooldown:    time.Minute,
		DedupWindow:        time.Hour,
	}
}

func richAnalysis() model.LeadAnalysis {
	return model.LeadAnalysis{
		Company:        "Acme Corp",
		Domain:         "acme.com",
		ContactName:    "Jane Smith",
		ContactEmail:   "jane@acme.com",
		Title:          "VP of Engineering",
		UrgencySignals: []string{"needs this by Q3"},
		Description:    "Evaluating vendors for a platform migration.",
		Confidence:     0.9,
	}
}

func testInquiry() model.Inquiry {
	return model.Inquiry{
		Text:       "We need a vendor for our migration. Jane Smith, VP Engineering, jane@acme.com",
		Channel:    model.ChannelEmail,
		ReceivedAt: time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC),
	}
}

func newTestOrchestrator(ex *mockExtractor, en *mockEnricher, rec *mockRecordStore, notifiers []notify.Notifier) *Orchestrator {
	return New(ex, engine.New(nil), en, rec, notifiers, nil, testConfig())
}

func TestProcess_FullFlow(t *testing.T) {
	ctx := context.Background()
	inq := testInquiry()

	ex := &mockExtractor{}
	ex.On("Extract", mock.Anything, inq.Text).Return(richAnalysis(), nil)

	en := &mockEnricher{}
	en.On("Enrich", mock.Anything, "https://acme.com", mock.Anything).Return(model.EnrichmentResult{
		Summary:        "Acme builds industrial platforms.",
		SizeIndicator:  model.SizeMedium,
		FetchSucceeded: true,
	})

	rec := &mockRecordStore{}
	rec.On("CreateLead", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("model.LeadDraft")).
		Return(model.Lead{ID: "00Q123", AccountName: "Acme Corp", Priority: model.PriorityHigh}, nil)

	email := &mockNotifier{name: model.StageEmail}
	email.On("Notify", mock.Anything, mock.AnythingOfType("notify.Notification")).Return(nil)
	slack := &mockNotifier{name: model.StageSlack}
	slack.On("Notify", mock.Anything, mock.AnythingOfType("notify.Notification")).Return(nil)

	orch := newTestOrchestrator(ex, en, rec, []notify.Notifier{email, slack})

	outcome, err := orch.Process(ctx, inq)
	require.NoError(t, err)

	assert.Equal(t, model.StatusSuccess, outcome.Status)
	assert.Equal(t, "00Q123", outcome.LeadID)
	assert.Equal(t, model.StageSucceeded, outcome.ChannelResults[model.StageAIAnalysis])
	assert.Equal(t, model.StageSucceeded, outcome.ChannelResults[model.StageWebScraping])
	assert.Equal(t, model.StageSucceeded, outcome.ChannelResults[model.StageCRMCreation])
	assert.Equal(t, model.StageSucceeded, outcome.ChannelResults[model.StageEmail])
	assert.Equal(t, model.StageSucceeded, outcome.ChannelResults[model.StageSlack])

	// Enrichment content reached the persisted draft.
	draft := rec.Calls[0].Arguments.Get(2).(model.LeadDraft)
	assert.Contains(t, draft.Description, "Acme builds industrial platforms.")

	ex.AssertExpectations(t)
	en.AssertExpectations(t)
	rec.AssertExpectations(t)
	email.AssertExpectations(t)
	slack.AssertExpectations(t)
}

func TestProcess_ExtractionFails_DegradesToManualReview(t *testing.T) {
	ctx := context.Background()
	inq := testInquiry()

	ex := &mockExtractor{}
	ex.On("Extract", mock.Anything, inq.Text).Return(model.Degraded(), eris.New("model unavailable"))

	en := &mockEnricher{} // must not be called

	rec := &mockRecordStore{}
	rec.On("CreateLead", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("model.LeadDraft")).
		Return(model.Lead{ID: "00Q900"}, nil)

	slack := &mockNotifier{name: model.StageSlack}
	slack.On("Notify", mock.Anything, mock.AnythingOfType("notify.Notification")).Return(nil)

	orch := newTestOrchestrator(ex, en, rec, []notify.Notifier{slack})

	outcome, err := orch.Process(ctx, inq)
	require.NoError(t, err)

	// The degraded run still persisted a real record and delivered a
	// notification, which is all a successful run requires.
	assert.Equal(t, model.StatusSuccess, outcome.Status)
	assert.Equal(t, model.StageFailed, outcome.ChannelResults[model.StageAIAnalysis])
	assert.Equal(t, model.StageSkipped, outcome.ChannelResults[model.StageWebScraping])
	assert.Equal(t, model.StageSucceeded, outcome.ChannelResults[model.StageCRMCreation])

	// A degraded analysis produces a manual-review draft with placeholder names.
	draft := rec.Calls[0].Arguments.Get(2).(model.LeadDraft)
	assert.True(t, draft.ManualReview)
	assert.Equal(t, "Unknown", draft.FirstName)
	assert.Equal(t, "Contact", draft.LastName)
	assert.NotEmpty(t, draft.Description)

	en.AssertNotCalled(t, "Enrich", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_EnrichmentFails_StillPersists(t *testing.T) {
	ctx := context.Background()
	inq := testInquiry()

	ex := &mockExtractor{}
	ex.On("Extract", mock.Anything, inq.Text).Return(richAnalysis(), nil)

	en := &mockEnricher{}
	en.On("Enrich", mock.Anything, "https://acme.com", mock.Anything).Return(model.EnrichmentResult{
		SizeIndicator:  model.SizeUnknown,
		FetchSucceeded: false,
	})

	rec := &mockRecordStore{}
	rec.On("CreateLead", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("model.LeadDraft")).
		Return(model.Lead{ID: "00Q200", AccountName: "Acme Corp"}, nil)

	slack := &mockNotifier{name: model.StageSlack}
	slack.On("Notify", mock.Anything, mock.AnythingOfType("notify.Notification")).Return(nil)

	orch := newTestOrchestrator(ex, en, rec, []notify.Notifier{slack})

	outcome, err := orch.Process(ctx, inq)
	require.NoError(t, err)

	assert.Equal(t, model.StatusSuccess, outcome.Status)
	assert.Equal(t, model.StageFailed, outcome.ChannelResults[model.StageWebScraping])
	assert.Equal(t, model.StageSucceeded, outcome.ChannelResults[model.StageCRMCreation])
	assert.Equal(t, "00Q200", outcome.LeadID)
}

func TestProcess_PersistRetriesTransientThenSucceeds(t *testing.T) {
	ctx := context.Background()
	inq := testInquiry()

	ex := &mockExtractor{}
	ex.On("Extract", mock.Anything, inq.Text).Return(richAnalysis(), nil)

	en := &mockEnricher{}
	en.On("Enrich", mock.Anything, mock.Anything, mock.Anything).Return(model.EnrichmentResult{FetchSucceeded: true, SizeIndicator: model.SizeUnknown})

	rec := &mockRecordStore{}
	transient := resilience.Transient(eris.New("crm: 503"), 503)
	rec.On("CreateLead", mock.Anything, mock.Anything, mock.Anything).Return(model.Lead{}, transient).Twice()
	rec.On("CreateLead", mock.Anything, mock.Anything, mock.Anything).Return(model.Lead{ID: "00Q300"}, nil).Once()

	slack := &mockNotifier{name: model.StageSlack}
	slack.On("Notify", mock.Anything, mock.Anything).Return(nil)

	orch := newTestOrchestrator(ex, en, rec, []notify.Notifier{slack})

	outcome, err := orch.Process(ctx, inq)
	require.NoError(t, err)

	assert.Equal(t, model.StatusSuccess, outcome.Status)
	assert.Equal(t, "00Q300", outcome.LeadID)
	rec.AssertNumberOfCalls(t, "CreateLead", 3)

	// Every attempt used the same correlation key.
	first := rec.Calls[0].Arguments.String(1)
	for _, call := range rec.Calls[1:] {
		assert.Equal(t, first, call.Arguments.String(1))
	}
}

func TestProcess_PersistPermanentError_NoRetry(t *testing.T) {
	ctx := context.Background()
	inq := testInquiry()

	ex := &mockExtractor{}
	ex.On("Extract", mock.Anything, inq.Text).Return(richAnalysis(), nil)

	en := &mockEnricher{}
	en.On("Enrich", mock.Anything, mock.Anything, mock.Anything).Return(model.EnrichmentResult{FetchSucceeded: true, SizeIndicator: model.SizeUnknown})

	rec := &mockRecordStore{}
	rec.On("CreateLead", mock.Anything, mock.Anything, mock.Anything).
		Return(model.Lead{}, eris.New("REQUIRED_FIELD_MISSING: LastName"))

	slack := &mockNotifier{name: model.StageSlack}
	slack.On("Notify", mock.Anything, mock.Anything).Return(nil)

	orch := newTestOrchestrator(ex, en, rec, []notify.Notifier{slack})

	outcome, err := orch.Process(ctx, inq)
	require.NoError(t, err)

	// A fallback-id run is partial, never a hard failure: the inquiry was
	// recorded and notifications still reference the correlation id.
	assert.Equal(t, model.StatusPartialSuccess, outcome.Status)
	assert.Equal(t, model.StageFailed, outcome.ChannelResults[model.StageCRMCreation])
	rec.AssertNumberOfCalls(t, "CreateLead", 1)

	assert.Equal(t, model.StageSucceeded, outcome.ChannelResults[model.StageSlack])
	assert.NotEmpty(t, outcome.LeadID)
}

func TestProcess_PersistTransientExhaustion_FallbackID(t *testing.T) {
	ctx := context.Background()
	inq := testInquiry()

	ex := &mockExtractor{}
	ex.On("Extract", mock.Anything, inq.Text).Return(richAnalysis(), nil)

	en := &mockEnricher{}
	en.On("Enrich", mock.Anything, mock.Anything, mock.Anything).Return(model.EnrichmentResult{FetchSucceeded: true, SizeIndicator: model.SizeUnknown})

	rec := &mockRecordStore{}
	rec.On("CreateLead", mock.Anything, mock.Anything, mock.Anything).
		Return(model.Lead{}, resilience.Transient(eris.New("crm: 503"), 503))

	slack := &mockNotifier{name: model.StageSlack}
	slack.On("Notify", mock.Anything, mock.Anything).Return(nil)

	orch := newTestOrchestrator(ex, en, rec, []notify.Notifier{slack})

	outcome, err := orch.Process(ctx, inq)
	require.NoError(t, err)

	// Exhausting every attempt falls back to the correlation id so the
	// notification still references something findable.
	rec.AssertNumberOfCalls(t, "CreateLead", 3)
	assert.Equal(t, CorrelationID(inq, testConfig().DedupWindow), outcome.LeadID)
	assert.Equal(t, model.StageFailed, outcome.ChannelResults[model.StageCRMCreation])
	assert.Equal(t, model.StageSucceeded, outcome.ChannelResults[model.StageSlack])
	assert.Equal(t, model.StatusPartialSuccess, outcome.Status)
	slack.AssertExpectations(t)
}

func TestProcess_NotifiersFailIndependently(t *testing.T) {
	ctx := context.Background()
	inq := testInquiry()

	ex := &mockExtractor{}
	ex.On("Extract", mock.Anything, inq.Text).Return(richAnalysis(), nil)

	en := &mockEnricher{}
	en.On("Enrich", mock.Anything, mock.Anything, mock.Anything).Return(model.EnrichmentResult{FetchSucceeded: true, SizeIndicator: model.SizeUnknown})

	rec := &mockRecordStore{}
	rec.On("CreateLead", mock.Anything, mock.Anything, mock.Anything).Return(model.Lead{ID: "00Q400"}, nil)

	email := &mockNotifier{name: model.StageEmail}
	email.On("Notify", mock.Anything, mock.Anything).Return(eris.New("ses throttled"))
	slack := &mockNotifier{name: model.StageSlack}
	slack.On("Notify", mock.Anything, mock.Anything).Return(nil)

	orch := newTestOrchestrator(ex, en, rec, []notify.Notifier{email, slack})

	outcome, err := orch.Process(ctx, inq)
	require.NoError(t, err)

	// One delivered transport is enough: the record exists and somebody
	// was told about it.
	assert.Equal(t, model.StatusSuccess, outcome.Status)
	assert.Equal(t, "00Q400", outcome.LeadID)
	assert.Equal(t, model.StageFailed, outcome.ChannelResults[model.StageEmail])
	assert.Equal(t, model.StageSucceeded, outcome.ChannelResults[model.StageSlack])
	assert.True(t, outcome.NotificationSucceeded())
	slack.AssertExpectations(t)
}

func TestProcess_InvalidInquiryRejected(t *testing.T) {
	orch := newTestOrchestrator(&mockExtractor{}, &mockEnricher{}, &mockRecordStore{}, nil)

	_, err := orch.Process(context.Background(), model.Inquiry{Text: "", Channel: model.ChannelEmail})
	assert.Error(t, err)

	_, err = orch.Process(context.Background(), model.Inquiry{Text: "hello", Channel: "pigeon"})
	assert.Error(t, err)
}

func TestProcess_DuplicateReturnsRecordedOutcome(t *testing.T) {
	ctx := context.Background()
	inq := testInquiry()
	corrID := CorrelationID(inq, time.Hour)

	prior := model.NewOutcome()
	prior.Status = model.StatusSuccess
	prior.LeadID = "00Q777"

	runs := &mockRunStore{}
	runs.On("Seen", mock.Anything, corrID).Return(true, nil)
	runs.On("GetRun", mock.Anything, corrID).Return(&model.Run{
		ID:      corrID,
		Status:  model.RunStatusComplete,
		Outcome: prior,
	}, nil)

	ex := &mockExtractor{} // pipeline must not run
	rec := &mockRecordStore{}

	orch := New(ex, engine.New(nil), &mockEnricher{}, rec, nil, runs, testConfig())

	outcome, err := orch.Process(ctx, inq)
	require.NoError(t, err)
	assert.Equal(t, "00Q777", outcome.LeadID)

	ex.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	rec.AssertNotCalled(t, "CreateLead", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_RunStoreFailuresDoNotAffectOutcome(t *testing.T) {
	ctx := context.Background()
	inq := testInquiry()

	runs := &mockRunStore{}
	runs.On("Seen", mock.Anything, mock.Anything).Return(false, eris.New("db down"))
	runs.On("SaveRun", mock.Anything, mock.Anything).Return(eris.New("db down"))

	ex := &mockExtractor{}
	ex.On("Extract", mock.Anything, inq.Text).Return(richAnalysis(), nil)

	en := &mockEnricher{}
	en.On("Enrich", mock.Anything, mock.Anything, mock.Anything).Return(model.EnrichmentResult{FetchSucceeded: true, SizeIndicator: model.SizeUnknown})

	rec := &mockRecordStore{}
	rec.On("CreateLead", mock.Anything, mock.Anything, mock.Anything).Return(model.Lead{ID: "00Q500"}, nil)

	slack := &mockNotifier{name: model.StageSlack}
	slack.On("Notify", mock.Anything, mock.Anything).Return(nil)

	orch := New(ex, engine.New(nil), en, rec, []notify.Notifier{slack}, runs, testConfig())

	outcome, err := orch.Process(ctx, inq)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, outcome.Status)
}

func TestProcess_AllNotificationsFail_PartialSuccess(t *testing.T) {
	ctx := context.Background()
	inq := testInquiry()

	ex := &mockExtractor{}
	ex.On("Extract", mock.Anything, inq.Text).Return(richAnalysis(), nil)

	en := &mockEnricher{}
	en.On("Enrich", mock.Anything, mock.Anything, mock.Anything).Return(model.EnrichmentResult{FetchSucceeded: true, SizeIndicator: model.SizeUnknown})

	rec := &mockRecordStore{}
	rec.On("CreateLead", mock.Anything, mock.Anything, mock.Anything).Return(model.Lead{ID: "00Q450"}, nil)

	email := &mockNotifier{name: model.StageEmail}
	email.On("Notify", mock.Anything, mock.Anything).Return(eris.New("ses down"))
	slack := &mockNotifier{name: model.StageSlack}
	slack.On("Notify", mock.Anything, mock.Anything).Return(eris.New("webhook gone"))

	orch := newTestOrchestrator(ex, en, rec, []notify.Notifier{email, slack})

	outcome, err := orch.Process(ctx, inq)
	require.NoError(t, err)

	// The lead exists but nobody heard about it.
	assert.Equal(t, model.StatusPartialSuccess, outcome.Status)
	assert.Equal(t, "00Q450", outcome.LeadID)
	assert.False(t, outcome.NotificationSucceeded())
}

func TestProcess_CancelledBeforePersist_Failure(t *testing.T) {
	inq := testInquiry()

	ctx, cancel := context.WithCancel(context.Background())

	ex := &mockExtractor{}
	ex.On("Extract", mock.Anything, inq.Text).
		Run(func(mock.Arguments) { cancel() }).
		Return(richAnalysis(), nil)

	en := &mockEnricher{}
	en.On("Enrich", mock.Anything, mock.Anything, mock.Anything).Return(model.EnrichmentResult{FetchSucceeded: false, SizeIndicator: model.SizeUnknown})

	rec := &mockRecordStore{} // must never be reached

	orch := newTestOrchestrator(ex, en, rec, nil)

	outcome, err := orch.Process(ctx, inq)
	require.NoError(t, err)

	assert.Equal(t, model.StatusFailure, outcome.Status)
	assert.Empty(t, outcome.LeadID)
	assert.Equal(t, model.StageSkipped, outcome.ChannelResults[model.StageCRMCreation])
	rec.AssertNotCalled(t, "CreateLead", mock.Anything, mock.Anything, mock.Anything)
}

func TestMergeEnrichment_AnnotatesDraft(t *testing.T) {
	t.Parallel()

	draft := model.LeadDraft{Description: "Inbound inquiry."}
	merged := mergeEnrichment(draft, model.EnrichmentResult{
		Summary:            "Acme builds platforms.",
		SizeIndicator:      model.SizeMedium,
		EmailUndeliverable: true,
	})

	assert.Contains(t, merged.Description, "Acme builds platforms.")
	assert.Contains(t, merged.Description, "Company size: Medium")
	assert.Contains(t, merged.Description, "flagged undeliverable")
}

func TestCorrelationID_Deterministic(t *testing.T) {
	a := testInquiry()
	b := testInquiry()
	assert.Equal(t, CorrelationID(a, time.Hour), CorrelationID(b, time.Hour))
}

func TestCorrelationID_VariesByChannelTextAndWindow(t *testing.T) {
	base := testInquiry()

	chat := base
	chat.Channel = model.ChannelChat
	assert.NotEqual(t, CorrelationID(base, time.Hour), CorrelationID(chat, time.Hour))

	other := base
	other.Text = "different inquiry"
	assert.NotEqual(t, CorrelationID(base, time.Hour), CorrelationID(other, time.Hour))

	later := base
	later.ReceivedAt = base.ReceivedAt.Add(2 * time.Hour)
	assert.NotEqual(t, CorrelationID(base, time.Hour), CorrelationID(later, time.Hour))
}

func TestCorrelationID_SameWindowBucket(t *testing.T) {
	a := testInquiry()
	a.ReceivedAt = time.Date(2026, 8, 25, 10, 5, 0, 0, time.UTC)
	b := testInquiry()
	b.ReceivedAt = time.Date(2026, 8, 25, 10, 55, 0, 0, time.UTC)
	assert.Equal(t, CorrelationID(a, time.Hour), CorrelationID(b, time.Hour))
}

func TestProcess_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()

	ex := &mockExtractor{}
	ex.On("Extract", mock.Anything, mock.Anything).Return(model.Degraded(), eris.New("timeout"))

	rec := &mockRecordStore{}
	rec.On("CreateLead", mock.Anything, mock.Anything, mock.Anything).Return(model.Lead{ID: "00Q600"}, nil)

	orch := newTestOrchestrator(ex, &mockEnricher{}, rec, nil)

	// Distinct inquiries so dedup never kicks in; threshold is 3.
	for i := 0; i < 5; i++ {
		inq := testInquiry()
		inq.Text = inq.Text + string(rune('a'+i))
		_, err := orch.Process(ctx, inq)
		require.NoError(t, err)
	}

	// After the breaker opened, extraction calls stop at the threshold.
	ex.AssertNumberOfCalls(t, "Extract", 3)
}
