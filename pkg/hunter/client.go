// Package hunter provides a client for the Hunter.io domain-search and
// email-verifier APIs, used to supplement enrichment with company size
// signals and recovered contacts.
package hunter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the Hunter.io operations used by enrichment.
type Client interface {
	// DomainSearch looks up an organization and its known email contacts.
	DomainSearch(ctx context.Context, domain string) (*DomainSearchResult, error)
	// VerifyEmail checks deliverability of a single address.
	VerifyEmail(ctx context.Context, email string) (*VerifyResult, error)
}

// DomainSearchResult holds the organization-level data from a domain search.
type DomainSearchResult struct {
	Organization string         `json:"organization"`
	Emails       []EmailContact `json:"emails"`
}

// EmailContact is a single contact found for the domain.
type EmailContact struct {
	Value     string `json:"value"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
}

// VerifyResult holds the outcome of an email verification.
type VerifyResult struct {
	Result string `json:"result"` // "deliverable", "undeliverable", "risky", "unknown"
	Score  int    `json:"score"`
}

// Deliverable reports whether the address is worth contacting.
func (v *VerifyResult) Deliverable() bool {
	return v.Result == "deliverable" || v.Result == "risky"
}

// envelope matches Hunter's {"data": ...} response wrapper.
type envelope[T any] struct {
	Data T `json:"data"`
}

// Option configures the Hunter client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Hunter.io client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.hunter.io/v2",
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) DomainSearch(ctx context.Context, domain string) (*DomainSearchResult, error) {
	params := url.Values{
		"domain":  {domain},
		"api_key": {c.apiKey},
		"limit":   {"5"},
	}

	var env envelope[DomainSearchResult]
	if err := c.get(ctx, "/domain-search", params, &env); err != nil {
		return nil, eris.Wrap(err, "hunter: domain search")
	}
	return &env.Data, nil
}

func (c *httpClient) VerifyEmail(ctx context.Context, email string) (*VerifyResult, error) {
	params := url.Values{
		"email":   {email},
		"api_key": {c.apiKey},
	}

	var env envelope[VerifyResult]
	if err := c.get(ctx, "/email-verifier", params, &env); err != nil {
		return nil, eris.Wrap(err, "hunter: verify email")
	}
	return &env.Data, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}
