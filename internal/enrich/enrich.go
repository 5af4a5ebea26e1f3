// Package enrich gathers best-effort company context for a lead before
// it is persisted: a homepage summary via the Jina reader (Firecrawl as
// fallback) plus organization signals and contact-email verification
// from Hunter.io.
package enrich

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/synapse-labs/lead-intake/internal/model"
	"github.com/synapse-labs/lead-intake/pkg/firecrawl"
	"github.com/synapse-labs/lead-intake/pkg/hunter"
	"github.com/synapse-labs/lead-intake/pkg/jina"
)

// summaryLimit caps the scraped-content excerpt carried into the lead
// description so CRM text fields stay readable.
const summaryLimit = 800

// Enricher fetches company context for a target URL. It never fails the
// pipeline: errors are logged and reflected in FetchSucceeded.
type Enricher interface {
	Enrich(ctx context.Context, targetURL string, analysis model.LeadAnalysis) model.EnrichmentResult
}

type webEnricher struct {
	jina      jina.Client
	firecrawl firecrawl.Client
	hunter    hunter.Client
}

// New creates an Enricher. The firecrawl and hunter clients may be nil,
// in which case the corresponding steps are skipped.
func New(jc jina.Client, fc firecrawl.Client, hc hunter.Client) Enricher {
	return &webEnricher{jina: jc, firecrawl: fc, hunter: hc}
}

func (e *webEnricher) Enrich(ctx context.Context, targetURL string, analysis model.LeadAnalysis) model.EnrichmentResult {
	result := model.EnrichmentResult{SizeIndicator: model.SizeUnknown}

	content, fetched := e.fetchPage(ctx, targetURL)
	if fetched {
		result.FetchSucceeded = true
		result.Summary = Summarize(content)
		result.SizeIndicator = sizeFromContent(content)
	}

	if e.hunter != nil && analysis.Domain != "" {
		if search, err := e.hunter.DomainSearch(ctx, analysis.Domain); err != nil {
			zap.L().Warn("enrich: hunter domain search failed",
				zap.String("domain", analysis.Domain),
				zap.Error(err),
			)
		} else {
			result.SizeIndicator = mergeSize(result.SizeIndicator, sizeFromContacts(len(search.Emails)))
			if result.Summary == "" && search.Organization != "" {
				result.Summary = "Organization: " + search.Organization
			}
		}
	}

	if e.hunter != nil && analysis.ContactEmail != "" {
		if verify, err := e.hunter.VerifyEmail(ctx, analysis.ContactEmail); err != nil {
			zap.L().Warn("enrich: email verification failed",
				zap.String("email", analysis.ContactEmail),
				zap.Error(err),
			)
		} else if !verify.Deliverable() {
			result.EmailUndeliverable = true
		}
	}

	return result
}

// fetchPage tries the Jina reader first, then Firecrawl. Returns the
// page text and whether any fetch produced content.
func (e *webEnricher) fetchPage(ctx context.Context, targetURL string) (string, bool) {
	if targetURL == "" {
		return "", false
	}

	if e.jina != nil {
		resp, err := e.jina.Read(ctx, targetURL)
		if err == nil && resp.Data.Content != "" {
			return resp.Data.Content, true
		}
		zap.L().Warn("enrich: jina read failed, trying fallback",
			zap.String("url", targetURL),
			zap.Error(err),
		)
	}

	if e.firecrawl != nil {
		resp, err := e.firecrawl.Scrape(ctx, firecrawl.ScrapeRequest{
			URL:     targetURL,
			Formats: []string{"markdown"},
		})
		if err == nil && resp.Success && resp.Data.Markdown != "" {
			return resp.Data.Markdown, true
		}
		zap.L().Warn("enrich: firecrawl scrape failed",
			zap.String("url", targetURL),
			zap.Error(err),
		)
	}

	return "", false
}

// Summarize collapses whitespace and truncates page content to the
// summary limit on a word boundary where possible.
func Summarize(content string) string {
	text := strings.Join(strings.Fields(content), " ")
	if len(text) <= summaryLimit {
		return text
	}
	cut := text[:summaryLimit]
	if idx := strings.LastIndex(cut, " "); idx > summaryLimit/2 {
		cut = cut[:idx]
	}
	return cut + "..."
}

var (
	largeMarkers = []string{"enterprise", "fortune 500", "global offices", "worldwide", "thousands of employees", "publicly traded"}
	smallMarkers = []string{"startup", "small team", "founded by", "boutique", "family-owned"}
)

// sizeFromContent applies a keyword heuristic to scraped page text.
func sizeFromContent(content string) model.SizeIndicator {
	lower := strings.ToLower(content)
	for _, m := range largeMarkers {
		if strings.Contains(lower, m) {
			return model.SizeLarge
		}
	}
	for _, m := range smallMarkers {
		if strings.Contains(lower, m) {
			return model.SizeSmall
		}
	}
	return model.SizeUnknown
}

// sizeFromContacts infers size from the breadth of published contacts.
func sizeFromContacts(contacts int) model.SizeIndicator {
	switch {
	case contacts >= 5:
		return model.SizeLarge
	case contacts >= 2:
		return model.SizeMedium
	case contacts == 1:
		return model.SizeSmall
	default:
		return model.SizeUnknown
	}
}

// mergeSize keeps the stronger of two signals, preferring page content
// over contact counts when both resolved.
func mergeSize(page, contacts model.SizeIndicator) model.SizeIndicator {
	if page != model.SizeUnknown {
		return page
	}
	return contacts
}
