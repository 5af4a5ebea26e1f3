// Package intake normalizes channel-specific webhook payloads into the
// pipeline's single Inquiry shape. Each channel has its own envelope;
// everything downstream sees only the flattened text.
package intake

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/synapse-labs/lead-intake/internal/model"
)

// emailPayload is the inbound-email webhook envelope.
type emailPayload struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ParseEmail flattens an email webhook into an Inquiry, keeping sender
// and subject visible to extraction.
func ParseEmail(body []byte) (model.Inquiry, error) {
	var p emailPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return model.Inquiry{}, eris.Wrap(err, "intake: decode email payload")
	}
	if p.Body == "" && p.Subject == "" {
		return model.Inquiry{}, eris.New("intake: email payload has no content")
	}

	var b strings.Builder
	if p.From != "" {
		b.WriteString("From: " + p.From + "\n")
	}
	if p.Subject != "" {
		b.WriteString("Subject: " + p.Subject + "\n")
	}
	if p.Body != "" {
		b.WriteString("\n" + p.Body)
	}

	return model.Inquiry{
		Text:       strings.TrimSpace(b.String()),
		Channel:    model.ChannelEmail,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

// chatPayload matches the Slack event envelope, with a top-level text
// fallback for plain webhook relays.
type chatPayload struct {
	Text  string `json:"text"`
	Event struct {
		Text string `json:"text"`
		User string `json:"user"`
	} `json:"event"`
}

// ParseChat flattens a chat webhook into an Inquiry.
func ParseChat(body []byte) (model.Inquiry, error) {
	var p chatPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return model.Inquiry{}, eris.Wrap(err, "intake: decode chat payload")
	}

	text := p.Event.Text
	if text == "" {
		text = p.Text
	}
	if text == "" {
		return model.Inquiry{}, eris.New("intake: chat payload has no text")
	}
	if p.Event.User != "" {
		text = "Chat message from " + p.Event.User + ":\n" + text
	}

	return model.Inquiry{
		Text:       strings.TrimSpace(text),
		Channel:    model.ChannelChat,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

// formFields are the web-form inputs carried into the flattened text,
// in render order.
var formFields = []struct {
	key   string
	label string
}{
	{"name", "Name"},
	{"email", "Email"},
	{"company", "Company"},
	{"phone", "Phone"},
	{"website", "Website"},
	{"message", "Message"},
}

// ParseForm flattens a contact-form submission. Accepts JSON or
// URL-encoded bodies depending on the content type.
func ParseForm(body []byte, contentType string) (model.Inquiry, error) {
	fields, err := formValues(body, contentType)
	if err != nil {
		return model.Inquiry{}, err
	}

	var b strings.Builder
	for _, f := range formFields {
		if v := strings.TrimSpace(fields[f.key]); v != "" {
			b.WriteString(f.label + ": " + v + "\n")
		}
	}
	if b.Len() == 0 {
		return model.Inquiry{}, eris.New("intake: form payload has no recognized fields")
	}

	return model.Inquiry{
		Text:       strings.TrimSpace(b.String()),
		Channel:    model.ChannelForm,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

func formValues(body []byte, contentType string) (map[string]string, error) {
	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, eris.Wrap(err, "intake: parse form body")
		}
		fields := make(map[string]string, len(values))
		for k := range values {
			fields[strings.ToLower(k)] = values.Get(k)
		}
		return fields, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrap(err, "intake: decode form payload")
	}
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			fields[strings.ToLower(k)] = s
		}
	}
	return fields, nil
}
