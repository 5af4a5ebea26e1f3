package hunter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainSearch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/domain-search", r.URL.Path)
		assert.Equal(t, "acme.com", r.URL.Query().Get("domain"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"organization": "Acme Corporation",
				"emails": [
					{"value": "jane@acme.com", "first_name": "Jane", "last_name": "Smith", "position": "CTO"},
					{"value": "info@acme.com"}
				]
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.DomainSearch(context.Background(), "acme.com")

	require.NoError(t, err)
	assert.Equal(t, "Acme Corporation", got.Organization)
	require.Len(t, got.Emails, 2)
	assert.Equal(t, "jane@acme.com", got.Emails[0].Value)
	assert.Equal(t, "CTO", got.Emails[0].Position)
}

func TestDomainSearch_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"errors":[{"details":"rate limit"}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.DomainSearch(context.Background(), "acme.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestVerifyEmail_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/email-verifier", r.URL.Path)
		assert.Equal(t, "jane@acme.com", r.URL.Query().Get("email"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"result": "deliverable", "score": 92}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.VerifyEmail(context.Background(), "jane@acme.com")

	require.NoError(t, err)
	assert.Equal(t, "deliverable", got.Result)
	assert.Equal(t, 92, got.Score)
	assert.True(t, got.Deliverable())
}

func TestVerifyEmail_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.VerifyEmail(context.Background(), "jane@acme.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestDeliverable(t *testing.T) {
	t.Parallel()

	assert.True(t, (&VerifyResult{Result: "deliverable"}).Deliverable())
	assert.True(t, (&VerifyResult{Result: "risky"}).Deliverable())
	assert.False(t, (&VerifyResult{Result: "undeliverable"}).Deliverable())
	assert.False(t, (&VerifyResult{Result: "unknown"}).Deliverable())
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()
	c := NewClient("my-key")
	hc := c.(*httpClient)
	assert.Equal(t, "my-key", hc.apiKey)
	assert.Equal(t, "https://api.hunter.io/v2", hc.baseURL)
	assert.NotNil(t, hc.http)
}
