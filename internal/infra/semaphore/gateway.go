// Package semaphore sends SMS through the Semaphore messaging API.
//
// Requests are form-encoded POSTs authenticated with an API key in the body.
// A token bucket keeps the client under the provider's request limit.
package semaphore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultAPIURL = "https://api.semaphore.co/api/v4/messages"

var (
	ErrNotConfigured = errors.New("SEMAPHORE_API_KEY not configured")
	ErrRejected      = errors.New("semaphore rejected message")
)

// Config holds the gateway settings.
type Config struct {
	APIURL            string
	APIKey            string
	SenderName        string
	RequestsPerMinute int
	Timeout           time.Duration
}

// Gateway implements sms.Gateway against Semaphore.
type Gateway struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	senderName string
	limiter    *rate.Limiter
}

func NewGateway(cfg Config) *Gateway {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}
	return &Gateway{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		senderName: cfg.SenderName,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// message is one entry of Semaphore's success payload.
type message struct {
	MessageID int    `json:"message_id"`
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
}

// Send posts one SMS. Transport errors, non-2xx answers and error payloads all fail.
func (g *Gateway) Send(ctx context.Context, to, body string) error {
	if g.apiKey == "" {
		return ErrNotConfigured
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	form := url.Values{}
	form.Set("apikey", g.apiKey)
	form.Set("number", to)
	form.Set("message", body)
	if g.senderName != "" {
		form.Set("sendername", g.senderName)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("semaphore request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, truncate(payload, 200))
	}
	return checkPayload(payload)
}

// checkPayload accepts only a non-empty array of messages, none failed.
// Validation errors come back as a JSON object even with a 2xx status.
func checkPayload(payload []byte) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return fmt.Errorf("%w: %s", ErrRejected, truncate(trimmed, 200))
	}

	var messages []message
	if err := json.Unmarshal(trimmed, &messages); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(messages) == 0 {
		return fmt.Errorf("%w: empty response", ErrRejected)
	}
	for _, m := range messages {
		switch strings.ToLower(m.Status) {
		case "failed", "refunded":
			return fmt.Errorf("%w: message %d status %s", ErrRejected, m.MessageID, m.Status)
		}
	}
	return nil
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
