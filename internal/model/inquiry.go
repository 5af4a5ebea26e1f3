// Package model defines the core types flowing through the lead intake
// pipeline: inbound inquiries, extracted analyses, action plans, leads,
// and processing outcomes.
package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// Channel identifies the transport an inquiry arrived on.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelChat  Channel = "chat"
	ChannelForm  Channel = "form"
)

// ParseChannel validates a raw channel tag.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelEmail, ChannelChat, ChannelForm:
		return Channel(s), nil
	default:
		return "", eris.Errorf("model: unknown channel %q", s)
	}
}

// Inquiry is one raw inbound business message. Immutable after creation;
// owned by the orchestrator for the duration of a single processing run.
type Inquiry struct {
	Text       string    `json:"text"`
	Channel    Channel   `json:"channel"`
	ReceivedAt time.Time `json:"received_at"`
}

// Validate checks the inbound contract: non-empty text and a recognized
// channel tag.
func (i Inquiry) Validate() error {
	if i.Text == "" {
		return eris.New("model: inquiry text is empty")
	}
	if _, err := ParseChannel(string(i.Channel)); err != nil {
		return err
	}
	return nil
}
