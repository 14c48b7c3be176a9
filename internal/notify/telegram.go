// Package notify sends best-effort failure notifications to operators.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notifier delivers a short message to an external channel.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Telegram posts messages through the Telegram Bot API.
type Telegram struct {
	token   string
	chatID  string
	http    *http.Client
	baseURL string
}

func NewTelegram(token, chatID string, timeout time.Duration) *Telegram {
	return &Telegram{
		token:   token,
		chatID:  chatID,
		http:    &http.Client{Timeout: timeout},
		baseURL: "https://api.telegram.org",
	}
}

func (t *Telegram) Notify(ctx context.Context, message string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    message,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notification rejected with status %d", resp.StatusCode)
	}
	return nil
}
