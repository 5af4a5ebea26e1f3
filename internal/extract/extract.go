// Package extract implements the extractor adapter: it turns raw inquiry
// text into a structured LeadAnalysis via a single model call.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/synapse-labs/lead-intake/internal/config"
	"github.com/synapse-labs/lead-intake/internal/model"
	"github.com/synapse-labs/lead-intake/pkg/anthropic"
)

// Extractor converts inquiry text into a LeadAnalysis. Any error,
// timeout, or malformed model response surfaces as an error; the
// orchestrator maps all of them to the degraded-analysis path.
type Extractor interface {
	Extract(ctx context.Context, text string) (model.LeadAnalysis, error)
}

const systemPrompt = `You are a sales lead analyst. Extract structured data from inbound business inquiries. Respond with a single valid JSON object and nothing else. Use null for fields you cannot determine. If the text mentions more than one contact, pick the primary one and note the others in the description.`

const userPrompt = `Analyze this inquiry and extract structured lead data:

%s

Return JSON with these keys:
{"company": <string|null>, "domain": <bare domain without protocol|null>, "contact_name": <string|null>, "contact_email": <string|null>, "contact_phone": <string|null>, "title": <job title|null>, "urgency_signals": [<string>], "intent_signals": [<string>], "description": <string>, "confidence": <0.0-1.0>, "reasoning": <string>}`

// llmExtractor implements Extractor over the Anthropic client.
type llmExtractor struct {
	client anthropic.Client
	cfg    config.AnthropicConfig
}

// New creates an Extractor backed by the configured Anthropic model.
func New(client anthropic.Client, cfg config.AnthropicConfig) Extractor {
	return &llmExtractor{client: client, cfg: cfg}
}

func (e *llmExtractor) Extract(ctx context.Context, text string) (model.LeadAnalysis, error) {
	temp := 0.0
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		System:      systemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: fmt.Sprintf(userPrompt, text)}},
		Temperature: &temp,
	})
	if err != nil {
		return model.Degraded(), eris.Wrap(err, "extract: model call")
	}

	resp.Usage.LogCost(e.cfg.Model, "extract")

	analysis, err := ParseAnalysis(resp.Text)
	if err != nil {
		zap.L().Warn("extract: unparseable model response",
			zap.String("stop_reason", resp.StopReason),
			zap.Error(err),
		)
		return model.Degraded(), err
	}
	return analysis, nil
}

// ParseAnalysis locates the first JSON object in the model output and
// decodes it. Models occasionally wrap the object in prose or fences, so
// the scan is by brace position rather than strict decoding.
func ParseAnalysis(text string) (model.LeadAnalysis, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return model.Degraded(), eris.New("extract: no JSON object in response")
	}

	var analysis model.LeadAnalysis
	if err := json.Unmarshal([]byte(text[start:end+1]), &analysis); err != nil {
		return model.Degraded(), eris.Wrap(err, "extract: decode analysis")
	}

	// Normalize: strip any protocol prefix the model slipped into domain.
	analysis.Domain = strings.TrimPrefix(strings.TrimPrefix(analysis.Domain, "https://"), "http://")
	analysis.Domain = strings.TrimSuffix(analysis.Domain, "/")

	if analysis.Confidence < 0 {
		analysis.Confidence = 0
	}
	if analysis.Confidence > 1 {
		analysis.Confidence = 1
	}

	return analysis, nil
}
