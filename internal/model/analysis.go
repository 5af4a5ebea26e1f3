package model

// LeadAnalysis holds the structured fields extracted from an inquiry's
// text. Every field except Confidence is optional; extraction must
// degrade gracefully on sparse input. Produced once per inquiry and
// read-only afterward.
type LeadAnalysis struct {
	Company        string   `json:"company,omitempty"`
	Domain         string   `json:"domain,omitempty"` // bare domain, no protocol prefix
	ContactName    string   `json:"contact_name,omitempty"`
	ContactEmail   string   `json:"contact_email,omitempty"`
	ContactPhone   string   `json:"contact_phone,omitempty"`
	Title          string   `json:"title,omitempty"`
	UrgencySignals []string `json:"urgency_signals,omitempty"`
	IntentSignals  []string `json:"intent_signals,omitempty"`
	Description    string   `json:"description,omitempty"`
	Confidence     float64  `json:"confidence"`

	// Reasoning is the model's free-form explanation. Diagnostic only —
	// routing decisions never consult it.
	Reasoning string `json:"reasoning,omitempty"`
}

// Degraded returns the analysis used when extraction fails or times out:
// all optional fields empty, confidence zero.
func Degraded() LeadAnalysis {
	return LeadAnalysis{Confidence: 0}
}

// HasContact reports whether the analysis carries any contact identifier.
func (a LeadAnalysis) HasContact() bool {
	return a.ContactEmail != "" || a.ContactName != ""
}
