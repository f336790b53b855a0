package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPublishCommandPostsMessage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/messages" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "m1"})
	}))
	defer srv.Close()

	cmd := newChatPublishCommand(func() string { return srv.URL })
	cmd.SetArgs([]string{"--channel", "demo", "--author-name", "Alice", "--text", "hi"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got["channel_key"] != "demo" || got["text"] != "hi" || got["author_name"] != "Alice" {
		t.Fatalf("posted body: %+v", got)
	}
}

func TestPublishCommandSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "message text is required"})
	}))
	defer srv.Close()

	cmd := newChatPublishCommand(func() string { return srv.URL })
	cmd.SetArgs([]string{"--text", "x"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error from 400 response")
	}
}

func TestGenerateCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/messages/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["count"] != float64(3) {
			t.Errorf("count: %v", body["count"])
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"messages": []any{}})
	}))
	defer srv.Close()

	cmd := newChatGenerateCommand(func() string { return srv.URL })
	cmd.SetArgs([]string{"--channel", "demo", "--count", "3"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
}
