package responder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"chatrelay-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a client pointed at url, making sure the environment
// override is not in play.
func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	t.Setenv(config.EnvWebhookURL, "")
	os.Unsetenv(config.EnvWebhookURL)
	return NewClient(&config.Config{WebhookURL: url})
}

func TestRelaySuccess(t *testing.T) {
	var gotReq relayRequest
	var gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotReq))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"output":"Hello"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	reply, err := client.Relay(context.Background(), "sess-1", "user-1", "Hi")
	require.NoError(t, err)

	assert.Equal(t, "Hello", reply)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, relayRequest{SessionID: "sess-1", UserID: "user-1", Message: "Hi"}, gotReq)
}

func TestRelayBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"message":"workflow not active"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Relay(context.Background(), "s", "u", "m")
	require.Error(t, err)

	var respErr *Error
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, KindBadStatus, respErr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, respErr.StatusCode)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "workflow not active")
}

func TestRelayBadStatusWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Relay(context.Background(), "s", "u", "m")

	var respErr *Error
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, KindBadStatus, respErr.Kind)
	// The status line stands in for the missing body.
	assert.NotEmpty(t, respErr.Detail)
	assert.Contains(t, err.Error(), "502")
}

func TestRelayMissingOutputField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"reply":"Hello"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Relay(context.Background(), "s", "u", "m")

	var respErr *Error
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, KindBadPayload, respErr.Kind)
	assert.Contains(t, err.Error(), "invalid response format")
}

func TestRelayMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json at all`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Relay(context.Background(), "s", "u", "m")

	var respErr *Error
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, KindBadPayload, respErr.Kind)
}

func TestRelayNoResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(t, url)
	_, err := client.Relay(context.Background(), "s", "u", "m")

	var respErr *Error
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, KindNoResponse, respErr.Kind)
	assert.Contains(t, err.Error(), "no response received")
}

func TestRelayNoEndpoint(t *testing.T) {
	client := newTestClient(t, "")
	_, err := client.Relay(context.Background(), "s", "u", "m")

	var respErr *Error
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, KindNoEndpoint, respErr.Kind)
	assert.Contains(t, err.Error(), "not configured")
}

func TestRelayEndpointReadFromEnvironment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"output":"late config works"}`)
	}))
	defer server.Close()

	// URL configured after the client was constructed.
	client := NewClient(&config.Config{})
	t.Setenv(config.EnvWebhookURL, server.URL)

	reply, err := client.Relay(context.Background(), "s", "u", "m")
	require.NoError(t, err)
	assert.Equal(t, "late config works", reply)
}
