package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"chatrelay-backend/internal/config"
)

// relayTimeout bounds a single webhook call end to end.
const relayTimeout = 30 * time.Second

// maxDetailBytes caps how much of an upstream body ends up in error messages.
const maxDetailBytes = 512

// ErrorKind identifies which failure axis a webhook call died on.
type ErrorKind int

const (
	// KindNoEndpoint means no webhook URL is configured.
	KindNoEndpoint ErrorKind = iota
	// KindNoResponse means the call never produced an HTTP response
	// (connection refused, DNS failure, timeout).
	KindNoResponse
	// KindBadStatus means the webhook answered with a non-200 status.
	KindBadStatus
	// KindBadPayload means the webhook answered 200 but the body carried no
	// usable output field.
	KindBadPayload
)

// Error is the normalized failure of a single webhook call.
type Error struct {
	Kind       ErrorKind
	StatusCode int // set for KindBadStatus
	Detail     string
	cause      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNoEndpoint:
		return "responder webhook URL is not configured"
	case KindNoResponse:
		return fmt.Sprintf("no response received from responder webhook: %s", e.Detail)
	case KindBadStatus:
		return fmt.Sprintf("responder webhook error (%d): %s", e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("invalid response format from responder webhook: %s", e.Detail)
	}
}

func (e *Error) Unwrap() error {
	return e.cause
}

// relayRequest and relayResponse are the webhook wire contract.
type relayRequest struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Message   string `json:"message"`
}

type relayResponse struct {
	Output *string `json:"output"`
}

// Client calls the external responder webhook. It is safe for concurrent use.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: relayTimeout},
	}
}

// endpoint re-reads the webhook URL on every call so a URL configured after
// process start is picked up without a restart.
func (c *Client) endpoint() string {
	if url := os.Getenv(config.EnvWebhookURL); url != "" {
		return url
	}
	return c.cfg.WebhookURL
}

// Relay posts one message to the webhook and returns the AI reply.
// Exactly one attempt is made; every failure is normalized into *Error.
func (c *Client) Relay(ctx context.Context, sessionID, userID, message string) (string, error) {
	url := c.endpoint()
	if url == "" {
		return "", &Error{Kind: KindNoEndpoint}
	}

	payload, err := json.Marshal(relayRequest{
		SessionID: sessionID,
		UserID:    userID,
		Message:   message,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal relay payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("[Responder] Calling webhook for session %s", sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{
			Kind:   KindNoResponse,
			Detail: fmt.Sprintf("check if the URL is correct: %s", url),
			cause:  err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindNoResponse, Detail: "failed reading response body", cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		// A body-less upstream error still needs a usable diagnostic.
		detail := truncate(strings.TrimSpace(string(body)))
		if detail == "" {
			detail = resp.Status
		}
		return "", &Error{Kind: KindBadStatus, StatusCode: resp.StatusCode, Detail: detail}
	}

	var parsed relayResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{
			Kind:   KindBadPayload,
			Detail: fmt.Sprintf("received: %s", truncate(string(body))),
			cause:  err,
		}
	}
	if parsed.Output == nil {
		return "", &Error{
			Kind:   KindBadPayload,
			Detail: fmt.Sprintf("received: %s", truncate(string(body))),
		}
	}

	log.Printf("[Responder] Webhook responded for session %s (%d bytes)", sessionID, len(*parsed.Output))
	return *parsed.Output, nil
}

func truncate(s string) string {
	if len(s) <= maxDetailBytes {
		return s
	}
	return s[:maxDetailBytes] + "..."
}
