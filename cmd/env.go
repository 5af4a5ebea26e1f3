package main

import (
	"context"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/synapse-labs/lead-intake/internal/crm"
	"github.com/synapse-labs/lead-intake/internal/engine"
	"github.com/synapse-labs/lead-intake/internal/enrich"
	"github.com/synapse-labs/lead-intake/internal/extract"
	"github.com/synapse-labs/lead-intake/internal/notify"
	"github.com/synapse-labs/lead-intake/internal/orchestrator"
	"github.com/synapse-labs/lead-intake/internal/store"
	"github.com/synapse-labs/lead-intake/pkg/anthropic"
	"github.com/synapse-labs/lead-intake/pkg/firecrawl"
	"github.com/synapse-labs/lead-intake/pkg/hunter"
	"github.com/synapse-labs/lead-intake/pkg/jina"
	sfpkg "github.com/synapse-labs/lead-intake/pkg/salesforce"
	slackpkg "github.com/synapse-labs/lead-intake/pkg/slack"
)

// pipelineEnv bundles the wired pipeline and its owned resources.
type pipelineEnv struct {
	Orchestrator *orchestrator.Orchestrator
	Store        store.Store
}

func (e *pipelineEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close run store", zap.Error(err))
		}
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "lead-intake.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

func initSalesforce() (sfpkg.Client, error) {
	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf, sfpkg.WithRateLimit(cfg.Salesforce.RateRPS)), nil
}

// initNotifiers wires every transport with credentials configured.
func initNotifiers(ctx context.Context) ([]notify.Notifier, error) {
	var notifiers []notify.Notifier

	if cfg.Email.From != "" && cfg.Email.To != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Email.Region))
		if err != nil {
			return nil, eris.Wrap(err, "load aws config")
		}
		notifiers = append(notifiers, notify.NewEmailNotifier(ses.NewFromConfig(awsCfg), cfg.Email))
	}

	if cfg.Slack.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(slackpkg.NewClient(cfg.Slack.WebhookURL)))
	}

	if len(notifiers) == 0 {
		zap.L().Warn("no notification transports configured")
	}
	return notifiers, nil
}

// initPipeline wires the full orchestrator from config. The run store is
// opened, migrated, and owned by the returned env.
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	sfClient, err := initSalesforce()
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	notifiers, err := initNotifiers(ctx)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	rules := engine.DefaultRuleSet()
	if cfg.Engine.RulesPath != "" {
		rules, err = engine.LoadRuleSet(cfg.Engine.RulesPath)
		if err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
	}

	var fc firecrawl.Client
	if cfg.Firecrawl.Key != "" {
		fc = firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
	}
	var hc hunter.Client
	if cfg.Hunter.Key != "" {
		hc = hunter.NewClient(cfg.Hunter.Key, hunter.WithBaseURL(cfg.Hunter.BaseURL))
	}

	orch := orchestrator.New(
		extract.New(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic),
		engine.New(rules),
		enrich.New(jina.NewClient(cfg.Jina.Key, jina.WithBaseURL(cfg.Jina.BaseURL)), fc, hc),
		crm.New(sfClient, cfg.Salesforce),
		notifiers,
		st,
		cfg.Orchestrator,
	)

	return &pipelineEnv{Orchestrator: orch, Store: st}, nil
}
