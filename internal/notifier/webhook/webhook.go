// Package webhook implements an HTTP webhook notifier.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/tradewind/internal/core"
)

// Webhook posts signal payloads to a configured URL.
type Webhook struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// New creates a webhook notifier.
func New(url string, headers map[string]string) *Webhook {
	return &Webhook{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (w *Webhook) Name() string { return "webhook" }

// Send posts the signal as JSON.
func (w *Webhook) Send(ctx context.Context, signal core.Signal) error {
	payload := map[string]any{
		"type":        "signal",
		"strategy":    signal.Strategy,
		"symbol":      signal.Symbol,
		"action":      signal.Action,
		"price":       signal.Price,
		"confidence":  signal.Confidence,
		"fingerprint": signal.Fingerprint,
		"time":        signal.GeneratedAt.Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: sending: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}
