// Package orchestrator drives a single inquiry through the pipeline:
// extract, decide, optionally enrich, persist, notify. Stages run in a
// fixed forward order; a stage failure degrades the run instead of
// aborting it, and the outcome records how every stage fared.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/synapse-labs/lead-intake/internal/config"
	"github.com/synapse-labs/lead-intake/internal/crm"
	"github.com/synapse-labs/lead-intake/internal/engine"
	"github.com/synapse-labs/lead-intake/internal/enrich"
	"github.com/synapse-labs/lead-intake/internal/extract"
	"github.com/synapse-labs/lead-intake/internal/model"
	"github.com/synapse-labs/lead-intake/internal/notify"
	"github.com/synapse-labs/lead-intake/internal/resilience"
	"github.com/synapse-labs/lead-intake/internal/store"
)

// Orchestrator processes inquiries end to end.
type Orchestrator struct {
	extractor extract.Extractor
	engine    *engine.Engine
	enricher  enrich.Enricher
	records   crm.RecordStore
	notifiers []notify.Notifier
	runs      store.Store // optional run log; nil disables persistence and dedup

	breaker *resilience.Breaker
	cfg     config.OrchestratorConfig
}

// New wires an Orchestrator. The run store may be nil for one-shot CLI
// use; every other dependency is required.
func New(
	extractor extract.Extractor,
	eng *engine.Engine,
	enricher enrich.Enricher,
	records crm.RecordStore,
	notifiers []notify.Notifier,
	runs store.Store,
	cfg config.OrchestratorConfig,
) *Orchestrator {
	return &Orchestrator{
		extractor: extractor,
		engine:    eng,
		enricher:  enricher,
		records:   records,
		notifiers: notifiers,
		runs:      runs,
		breaker:   resilience.NewBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
		cfg:       cfg,
	}
}

// Process runs one inquiry through the pipeline. The returned outcome is
// non-nil for every well-formed inquiry; the error is non-nil only when
// the inquiry fails validation and no run is started.
func (o *Orchestrator) Process(ctx context.Context, inq model.Inquiry) (*model.ProcessingOutcome, error) {
	if err := inq.Validate(); err != nil {
		return nil, eris.Wrap(err, "orchestrator: invalid inquiry")
	}
	if inq.ReceivedAt.IsZero() {
		inq.ReceivedAt = time.Now().UTC()
	}

	// The correlation id is shared by retried deliveries of the same
	// inquiry; the trace id is unique to this delivery, so log lines from
	// concurrent redeliveries stay distinguishable.
	corrID := CorrelationID(inq, o.cfg.DedupWindow)
	log := zap.L().With(
		zap.String("correlation_id", corrID),
		zap.String("trace_id", uuid.NewString()),
		zap.String("channel", string(inq.Channel)),
	)

	// Redelivery of the same inquiry inside the dedup window returns the
	// recorded outcome instead of running the pipeline again.
	if prior, ok := o.priorOutcome(ctx, corrID); ok {
		log.Info("orchestrator: duplicate inquiry, returning recorded outcome")
		return prior, nil
	}

	o.saveRun(ctx, &model.Run{
		ID:        corrID,
		Channel:   inq.Channel,
		Status:    model.RunStatusProcessing,
		CreatedAt: time.Now().UTC(),
	})

	outcome := model.NewOutcome()

	// Stage 1: extraction, behind the circuit breaker.
	analysis := o.runExtract(ctx, inq, outcome, log)

	// Stage 2: decision. Pure and total, so it always produces a plan.
	plan := o.engine.Decide(analysis)
	log.Info("orchestrator: action planned",
		zap.String("action", string(plan.Action)),
		zap.String("priority", string(plan.Priority)),
	)

	// Stage 3: enrichment, only when the plan calls for it.
	enrichment := o.runEnrich(ctx, plan, analysis, outcome, log)
	draft := mergeEnrichment(plan.LeadDraft, enrichment)

	// Cancellation before persisting aborts the run: no record exists yet,
	// so there is nothing to notify about.
	if ctx.Err() != nil {
		log.Warn("orchestrator: cancelled before persistence, aborting run")
		outcome.Status = model.StatusFailure
		outcome.Summary = "run cancelled before lead persistence"
		o.saveRun(context.WithoutCancel(ctx), &model.Run{
			ID:      corrID,
			Channel: inq.Channel,
			Status:  model.RunStatusFailed,
			Outcome: outcome,
		})
		return outcome, nil
	}

	// Stage 4: persist with retries. A fallback lead carries the
	// correlation id so notifications still reference something findable.
	lead, crmOK := o.runPersist(ctx, corrID, draft, outcome, log)

	// Stage 5: notification fan-out. Detached from the request context:
	// once the lead is persisted, caller cancellation must not suppress
	// the alerts.
	o.runNotify(context.WithoutCancel(ctx), notify.Notification{
		Lead:          lead,
		Plan:          plan,
		Analysis:      analysis,
		Enrichment:    enrichment,
		CorrelationID: corrID,
		CRMSucceeded:  crmOK,
		ReceivedAt:    inq.ReceivedAt,
	}, outcome, log)

	outcome.Status = overallStatus(outcome, crmOK)
	outcome.LeadID = lead.ID
	outcome.Summary = summarize(lead, plan, crmOK)

	runStatus := model.RunStatusComplete
	if outcome.Status == model.StatusFailure {
		runStatus = model.RunStatusFailed
	}
	o.saveRun(context.WithoutCancel(ctx), &model.Run{
		ID:      corrID,
		Channel: inq.Channel,
		Status:  runStatus,
		Outcome: outcome,
	})

	log.Info("orchestrator: run finished",
		zap.String("status", string(outcome.Status)),
		zap.String("lead_id", outcome.LeadID),
	)
	return outcome, nil
}

func (o *Orchestrator) runExtract(ctx context.Context, inq model.Inquiry, outcome *model.ProcessingOutcome, log *zap.Logger) model.LeadAnalysis {
	if err := o.breaker.Allow(); err != nil {
		log.Warn("orchestrator: extraction breaker open, degrading")
		outcome.ChannelResults[model.StageAIAnalysis] = model.StageFailed
		return model.Degraded()
	}

	exCtx, cancel := context.WithTimeout(ctx, o.cfg.ExtractTimeout)
	defer cancel()

	analysis, err := o.extractor.Extract(exCtx, inq.Text)
	o.breaker.Record(err)
	if err != nil {
		log.Warn("orchestrator: extraction failed, degrading", zap.Error(err))
		outcome.ChannelResults[model.StageAIAnalysis] = model.StageFailed
		return model.Degraded()
	}

	outcome.ChannelResults[model.StageAIAnalysis] = model.StageSucceeded
	return analysis
}

func (o *Orchestrator) runEnrich(ctx context.Context, plan model.ActionPlan, analysis model.LeadAnalysis, outcome *model.ProcessingOutcome, log *zap.Logger) model.EnrichmentResult {
	if plan.Action != model.ActionEnrichThenCreate {
		return model.EnrichmentResult{SizeIndicator: model.SizeUnknown}
	}

	enCtx, cancel := context.WithTimeout(ctx, o.cfg.EnrichTimeout)
	defer cancel()

	result := o.enricher.Enrich(enCtx, plan.TargetURL, analysis)
	if result.FetchSucceeded {
		outcome.ChannelResults[model.StageWebScraping] = model.StageSucceeded
	} else {
		log.Warn("orchestrator: enrichment fetch failed", zap.String("url", plan.TargetURL))
		outcome.ChannelResults[model.StageWebScraping] = model.StageFailed
	}
	return result
}

func (o *Orchestrator) runPersist(ctx context.Context, corrID string, draft model.LeadDraft, outcome *model.ProcessingOutcome, log *zap.Logger) (model.Lead, bool) {
	pCtx, cancel := context.WithTimeout(ctx, o.cfg.PersistTimeout)
	defer cancel()

	policy := resilience.Policy{
		MaxAttempts: o.cfg.PersistMaxAttempts,
		BaseBackoff: o.cfg.PersistBackoff,
	}
	lead, err := resilience.Retry(pCtx, policy, "crm create lead", func(ctx context.Context) (model.Lead, error) {
		return o.records.CreateLead(ctx, corrID, draft)
	})
	if err != nil {
		log.Error("orchestrator: lead persistence failed", zap.Error(err))
		outcome.ChannelResults[model.StageCRMCreation] = model.StageFailed
		return fallbackLead(corrID, draft), false
	}

	outcome.ChannelResults[model.StageCRMCreation] = model.StageSucceeded
	return lead, true
}

func (o *Orchestrator) runNotify(ctx context.Context, n notify.Notification, outcome *model.ProcessingOutcome, log *zap.Logger) {
	nCtx, cancel := context.WithTimeout(ctx, o.cfg.NotifyTimeout)
	defer cancel()

	type delivery struct {
		name string
		err  error
	}
	results := make([]delivery, len(o.notifiers))

	g, gCtx := errgroup.WithContext(nCtx)
	g.SetLimit(2)
	for i, notifier := range o.notifiers {
		g.Go(func() error {
			results[i] = delivery{name: notifier.Name(), err: notifier.Notify(gCtx, n)}
			return nil // transports fail independently
		})
	}
	g.Wait() //nolint:errcheck

	for _, d := range results {
		if d.err != nil {
			log.Warn("orchestrator: notification failed",
				zap.String("transport", d.name),
				zap.Error(d.err),
			)
			outcome.ChannelResults[d.name] = model.StageFailed
		} else {
			outcome.ChannelResults[d.name] = model.StageSucceeded
		}
	}
}

// priorOutcome checks the run log for a completed run with the same
// correlation id. Store errors are ignored; dedup is best effort.
func (o *Orchestrator) priorOutcome(ctx context.Context, corrID string) (*model.ProcessingOutcome, bool) {
	if o.runs == nil {
		return nil, false
	}
	seen, err := o.runs.Seen(ctx, corrID)
	if err != nil || !seen {
		return nil, false
	}
	run, err := o.runs.GetRun(ctx, corrID)
	if err != nil || run.Outcome == nil {
		return nil, false
	}
	return run.Outcome, true
}

// saveRun writes the run log entry, logging failures instead of
// propagating them: the pipeline result never depends on the run log.
func (o *Orchestrator) saveRun(ctx context.Context, run *model.Run) {
	if o.runs == nil {
		return
	}
	if err := o.runs.SaveRun(ctx, run); err != nil {
		zap.L().Warn("orchestrator: run log write failed",
			zap.String("run_id", run.ID),
			zap.Error(err),
		)
	}
}

// mergeEnrichment folds the enrichment summary into the draft before
// persisting so the CRM record carries company context.
func mergeEnrichment(draft model.LeadDraft, enrichment model.EnrichmentResult) model.LeadDraft {
	if enrichment.Summary != "" {
		draft.Description += "\n\nCompany overview:\n" + enrichment.Summary
	}
	if enrichment.SizeIndicator != model.SizeUnknown && enrichment.SizeIndicator != "" {
		draft.Description += fmt.Sprintf("\nCompany size: %s", enrichment.SizeIndicator)
	}
	if enrichment.EmailUndeliverable {
		draft.Description += "\nContact email flagged undeliverable; confirm before outreach."
	}
	return draft
}

// fallbackLead represents an unpersisted lead. Its ID is the correlation
// id, which also keys the run log entry holding the full outcome.
func fallbackLead(corrID string, draft model.LeadDraft) model.Lead {
	return model.Lead{
		ID:             corrID,
		FirstName:      draft.FirstName,
		LastName:       draft.LastName,
		Email:          draft.Email,
		AccountName:    draft.AccountName,
		Description:    draft.Description,
		Priority:       draft.Priority,
		EstimatedValue: draft.EstimatedValue,
		CreatedAt:      time.Now().UTC(),
	}
}

// overallStatus derives the run status. Success needs a real CRM id and
// at least one delivered notification; upstream stage failures show in
// ChannelResults without demoting the run. Everything else that reached
// persistence is partial. Failure is reserved for runs that never got
// that far (invalid input, cancellation before persisting).
func overallStatus(outcome *model.ProcessingOutcome, crmOK bool) model.Status {
	if crmOK && outcome.NotificationSucceeded() {
		return model.StatusSuccess
	}
	return model.StatusPartialSuccess
}

func summarize(lead model.Lead, plan model.ActionPlan, crmOK bool) string {
	verb := "created"
	if !crmOK {
		verb = "not created"
	}
	return fmt.Sprintf("%s priority lead for %s (%s, CRM record %s)",
		plan.Priority, lead.AccountName, plan.Action, verb)
}
