package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Notifier attempts delivery of one text payload. The bool result is the
// delivery outcome reported by the destination; a transport-level failure is
// returned as an error. Both mean "not delivered" to the caller.
type Notifier interface {
	Send(ctx context.Context, text string) (bool, error)
}

type message struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Telegram delivers alerts through the Bot API sendMessage method. Each
// attempt is bounded by its own timeout so a stalled delivery cannot freeze
// the polling loop, and a limiter keeps attempts under the bot message rate.
type Telegram struct {
	client  *http.Client
	limiter *rate.Limiter
	url     string
	chatID  string
	timeout time.Duration
}

func NewTelegram(botToken, chatID string, timeout time.Duration) *Telegram {
	return &Telegram{
		client:  &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(1), 5),
		url:     "https://api.telegram.org/bot" + botToken + "/sendMessage",
		chatID:  chatID,
		timeout: timeout,
	}
}

func (t *Telegram) Send(ctx context.Context, text string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(message{ChatID: t.chatID, Text: text})
	if err != nil {
		return false, fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}

	if !api.OK {
		desc := api.Description
		if desc == "" {
			desc = "unknown error"
		}
		zap.S().Errorf("telegram rejected message: %s", desc)
		return false, nil
	}
	return true, nil
}
