package orchestrator

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/synapse-labs/lead-intake/internal/crm"
	"github.com/synapse-labs/lead-intake/internal/enrich"
	"github.com/synapse-labs/lead-intake/internal/extract"
	"github.com/synapse-labs/lead-intake/internal/model"
	"github.com/synapse-labs/lead-intake/internal/notify"
	"github.com/synapse-labs/lead-intake/internal/store"
)

// --- Extractor Mock ---

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, text string) (model.LeadAnalysis, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(model.LeadAnalysis), args.Error(1)
}

// --- Enricher Mock ---

type mockEnricher struct {
	mock.Mock
}

func (m *mockEnricher) Enrich(ctx context.Context, targetURL string, analysis model.LeadAnalysis) model.EnrichmentResult {
	args := m.Called(ctx, targetURL, analysis)
	return args.Get(0).(model.EnrichmentResult)
}

// --- Record Store Mock ---

type mockRecordStore struct {
	mock.Mock
}

func (m *mockRecordStore) CreateLead(ctx context.Context, correlationID string, draft model.LeadDraft) (model.Lead, error) {
	args := m.Called(ctx, correlationID, draft)
	return args.Get(0).(model.Lead), args.Error(1)
}

// --- Notifier Mock ---

type mockNotifier struct {
	mock.Mock
	name string
}

func (m *mockNotifier) Name() string { return m.name }

func (m *mockNotifier) Notify(ctx context.Context, n notify.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// --- Run Store Mock ---

type mockRunStore struct {
	mock.Mock
}

func (m *mockRunStore) SaveRun(ctx context.Context, run *model.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *mockRunStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockRunStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Run), args.Error(1)
}

func (m *mockRunStore) Seen(ctx context.Context, runID string) (bool, error) {
	args := m.Called(ctx, runID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRunStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Ensure interface compliance ---
var (
	_ extract.Extractor = (*mockExtractor)(nil)
	_ enrich.Enricher   = (*mockEnricher)(nil)
	_ crm.RecordStore   = (*mockRecordStore)(nil)
	_ notify.Notifier   = (*mockNotifier)(nil)
	_ store.Store       = (*mockRunStore)(nil)
)
