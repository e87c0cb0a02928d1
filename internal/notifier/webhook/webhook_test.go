package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newthinker/tradewind/internal/core"
)

func TestWebhook_Send(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer token" {
			t.Errorf("auth header = %s", auth)
		}
		json.NewDecoder(r.Body).Decode(&received)
	}))
	defer server.Close()

	w := New(server.URL, map[string]string{"Authorization": "Bearer token"})
	err := w.Send(context.Background(), core.Signal{
		Strategy:    "momentum",
		Symbol:      "AAPL",
		Action:      core.ActionBuy,
		Price:       187.5,
		Confidence:  0.8,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if received["symbol"] != "AAPL" || received["action"] != "buy" {
		t.Errorf("unexpected payload: %+v", received)
	}
}

func TestWebhook_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	w := New(server.URL, nil)
	if err := w.Send(context.Background(), core.Signal{Symbol: "AAPL"}); err == nil {
		t.Error("expected error on 500 response")
	}
}
