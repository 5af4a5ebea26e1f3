package notify

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/synapse-labs/lead-intake/internal/model"
	"github.com/synapse-labs/lead-intake/pkg/slack"
)

// SlackNotifier posts lead alerts to the sales channel webhook.
type SlackNotifier struct {
	client slack.Client
}

// NewSlackNotifier creates a Slack notifier over a webhook client.
func NewSlackNotifier(client slack.Client) *SlackNotifier {
	return &SlackNotifier{client: client}
}

func (s *SlackNotifier) Name() string { return model.StageSlack }

func (s *SlackNotifier) Notify(ctx context.Context, n Notification) error {
	msg := slack.Message{
		Text: Subject(n),
		Attachments: []slack.Attachment{{
			Color:  priorityColor(n.Plan.Priority),
			Fields: s.fields(n),
			Footer: "lead-intake",
			TS:     n.ReceivedAt.Unix(),
		}},
	}

	if err := s.client.Post(ctx, msg); err != nil {
		return eris.Wrap(err, "notify: slack post")
	}

	zap.L().Info("notify: slack message sent",
		zap.String("priority", string(n.Plan.Priority)),
	)
	return nil
}

func (s *SlackNotifier) fields(n Notification) []slack.Field {
	contact := n.Lead.FirstName + " " + n.Lead.LastName
	fields := []slack.Field{
		{Title: "Contact", Value: contact, Short: true},
		{Title: "Company", Value: n.Lead.AccountName, Short: true},
		{Title: "Priority", Value: string(n.Plan.Priority), Short: true},
		{Title: "Est. Value", Value: string(n.Plan.EstimatedValue), Short: true},
	}
	if n.Lead.Email != "" {
		fields = append(fields, slack.Field{Title: "Email", Value: n.Lead.Email, Short: true})
	}
	if n.CRMSucceeded {
		fields = append(fields, slack.Field{Title: "CRM Record", Value: n.Lead.ID, Short: true})
	} else {
		fields = append(fields, slack.Field{Title: "CRM Record", Value: "not created", Short: true})
	}
	if sig := joinSignals(n.Analysis.UrgencySignals); sig != "none detected" {
		fields = append(fields, slack.Field{Title: "Urgency", Value: sig, Short: false})
	}
	if n.Plan.LeadDraft.ManualReview {
		fields = append(fields, slack.Field{Title: "Review", Value: "Flagged for manual review", Short: false})
	}
	return fields
}

// priorityColor maps lead priority to the classic attachment palette.
func priorityColor(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "good"
	case model.PriorityMedium:
		return "warning"
	default:
		return "#cccccc"
	}
}
