// Package webhook delivers shop events to a configured HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"quiz-match/internal/config"
	"quiz-match/internal/domain"
)

const (
	HeaderEvent     = "X-QuizMatch-Event"
	HeaderSignature = "X-QuizMatch-Signature"
)

// NewNotifier returns a no-op notifier when no URL is configured.
func NewNotifier(cfg config.WebhookConfig, httpClient *http.Client) domain.Notifier {
	if cfg.URL == "" {
		return NoopNotifier{}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPNotifier{url: cfg.URL, secret: []byte(cfg.Secret), client: httpClient, now: time.Now}
}

// NoopNotifier drops every event.
type NoopNotifier struct{}

func (NoopNotifier) Deliver(context.Context, string, string, map[string]interface{}) error {
	return nil
}

// HTTPNotifier POSTs one JSON envelope per event. Bodies are signed with
// HMAC-SHA256 when a secret is set.
type HTTPNotifier struct {
	url    string
	secret []byte
	client *http.Client
	now    func() time.Time
}

type envelope struct {
	Event   string                 `json:"event"`
	ShopID  string                 `json:"shopId"`
	SentAt  time.Time              `json:"sentAt"`
	Payload map[string]interface{} `json:"payload"`
}

func (n *HTTPNotifier) Deliver(ctx context.Context, shopID, event string, payload map[string]interface{}) error {
	body, err := json.Marshal(envelope{Event: event, ShopID: shopID, SentAt: n.now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to encode webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, event)
	if len(n.secret) > 0 {
		req.Header.Set(HeaderSignature, Sign(n.secret, body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
