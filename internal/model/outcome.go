package model

// Status summarizes a processing run.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialSuccess Status = "partial_success"
	StatusFailure        Status = "failure"
)

// StageStatus records how a single stage or transport fared.
type StageStatus string

const (
	StageSucceeded StageStatus = "succeeded"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// Stage keys in ProcessingOutcome.ChannelResults.
const (
	StageAIAnalysis  = "ai_analysis"
	StageWebScraping = "web_scraping"
	StageCRMCreation = "crm_creation"
	StageEmail       = "email"
	StageSlack       = "slack"
)

// ProcessingOutcome is the contract returned to the caller for every
// well-formed inquiry. Never persisted as-is (the run store keeps its own
// serialized copy).
type ProcessingOutcome struct {
	Status         Status                 `json:"status"`
	LeadID         string                 `json:"lead_id"`
	Summary        string                 `json:"summary"`
	ChannelResults map[string]StageStatus `json:"channel_results"`
}

// NewOutcome returns an outcome with every stage marked skipped.
func NewOutcome() *ProcessingOutcome {
	return &ProcessingOutcome{
		ChannelResults: map[string]StageStatus{
			StageAIAnalysis:  StageSkipped,
			StageWebScraping: StageSkipped,
			StageCRMCreation: StageSkipped,
			StageEmail:       StageSkipped,
			StageSlack:       StageSkipped,
		},
	}
}

// NotificationSucceeded reports whether at least one notification
// transport delivered.
func (o *ProcessingOutcome) NotificationSucceeded() bool {
	return o.ChannelResults[StageEmail] == StageSucceeded ||
		o.ChannelResults[StageSlack] == StageSucceeded
}
