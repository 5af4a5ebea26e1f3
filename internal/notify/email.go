package notify

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/synapse-labs/lead-intake/internal/config"
	"github.com/synapse-labs/lead-intake/internal/model"
)

// sesAPI is the slice of the SES client the email notifier uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailNotifier delivers lead alerts to the sales inbox via SES.
type EmailNotifier struct {
	ses  sesAPI
	from string
	to   []string
}

// NewEmailNotifier creates an email notifier. The to address may hold
// several recipients separated by commas.
func NewEmailNotifier(client sesAPI, cfg config.EmailConfig) *EmailNotifier {
	var to []string
	for _, addr := range strings.Split(cfg.To, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	return &EmailNotifier{ses: client, from: cfg.From, to: to}
}

func (e *EmailNotifier) Name() string { return model.StageEmail }

func (e *EmailNotifier) Notify(ctx context.Context, n Notification) error {
	if len(e.to) == 0 {
		return eris.New("notify: no email recipients configured")
	}

	body := e.renderBody(n)
	out, err := e.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(e.from),
		Destination: &types.Destination{ToAddresses: e.to},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(Subject(n)), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return eris.Wrap(err, "notify: send email")
	}

	zap.L().Info("notify: email sent",
		zap.String("message_id", aws.ToString(out.MessageId)),
		zap.Strings("to", e.to),
	)
	return nil
}

func (e *EmailNotifier) renderBody(n Notification) string {
	var b strings.Builder
	b.WriteString("A new lead has been processed.\n\n")
	for _, line := range summaryLines(n) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\nUrgency signals: " + joinSignals(n.Analysis.UrgencySignals) + "\n")
	b.WriteString("Intent signals: " + joinSignals(n.Analysis.IntentSignals) + "\n")
	if n.Enrichment.Summary != "" {
		b.WriteString("\nCompany overview:\n" + n.Enrichment.Summary + "\n")
	}
	b.WriteString("\nReceived: " + n.ReceivedAt.UTC().Format("2006-01-02 15:04:05 UTC") + "\n")
	return b.String()
}
