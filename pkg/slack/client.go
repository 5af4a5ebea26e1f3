// Package slack posts messages to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client posts messages to a single configured webhook URL.
type Client interface {
	Post(ctx context.Context, msg Message) error
}

// Message is a Slack webhook payload with optional attachments.
type Message struct {
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a color-coded block of fields.
type Attachment struct {
	Color  string  `json:"color,omitempty"`
	Fields []Field `json:"fields,omitempty"`
	Footer string  `json:"footer,omitempty"`
	TS     int64   `json:"ts,omitempty"`
}

// Field is a single title/value pair within an attachment.
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Option configures the webhook client.
type Option func(*webhookClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *webhookClient) {
		c.http = hc
	}
}

type webhookClient struct {
	webhookURL string
	http       *http.Client
}

// NewClient creates a webhook client for the given URL.
func NewClient(webhookURL string, opts ...Option) Client {
	c := &webhookClient{
		webhookURL: webhookURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *webhookClient) Post(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return eris.Wrap(err, "slack: marshal message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "slack: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "slack: post webhook")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return eris.Errorf("slack: webhook returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
