package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNotify_SendsMessage(t *testing.T) {
	var path string
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram("bot-token", "12345", time.Second)
	tg.baseURL = srv.URL

	if err := tg.Notify(context.Background(), "Scenario: wb17, LPID: 42"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if path != "/botbot-token/sendMessage" {
		t.Errorf("path = %q", path)
	}
	if payload["chat_id"] != "12345" {
		t.Errorf("chat_id = %q", payload["chat_id"])
	}
	if payload["text"] != "Scenario: wb17, LPID: 42" {
		t.Errorf("text = %q", payload["text"])
	}
}

func TestNotify_RejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	tg := NewTelegram("bad", "12345", time.Second)
	tg.baseURL = srv.URL

	if err := tg.Notify(context.Background(), "hello"); err == nil {
		t.Fatal("Notify() expected error for non-200 response")
	}
}
