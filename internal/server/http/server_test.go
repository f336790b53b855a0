package httpserver

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ternhq/tern/internal/auth"
	"github.com/ternhq/tern/internal/chatlog"
	"github.com/ternhq/tern/internal/stream"
	logpkg "github.com/ternhq/tern/pkg/log"
)

func newTestServer(t *testing.T, gate auth.Gate) (*Server, *chatlog.Store, *auth.TokenStore) {
	t.Helper()
	store := chatlog.NewStore()
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Format: "text"})
	engine := stream.NewEngine(store, logger, stream.Options{PollInterval: 20 * time.Millisecond})
	tokens := auth.NewTokenStore()
	if gate == nil {
		gate = auth.AllowAll{}
	}
	return New(store, engine, gate, tokens, logger), store, tokens
}

func TestHealthHandler(t *testing.T) {
	s, _, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestPublishHandler(t *testing.T) {
	s, store, _ := newTestServer(t, nil)
	body := `{"channel_key":"demo","author_id":"u1","author_name":"User One","text":"hello"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status: %d body: %s", w.Code, w.Body.String())
	}
	var msg chatlog.Message
	if err := json.Unmarshal(w.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("expected server-minted message id")
	}
	if store.Len("demo") != 1 {
		t.Fatalf("store len: %d", store.Len("demo"))
	}
}

func TestPublishRejectsMissingFields(t *testing.T) {
	s, _, _ := newTestServer(t, nil)
	for _, body := range []string{
		`{"text":"no channel"}`,
		`{"channel_key":"demo"}`,
		`not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/v1/chat/messages", strings.NewReader(body))
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status %d, want 400", body, w.Code)
		}
	}
}

func TestGenerateHandler(t *testing.T) {
	s, store, _ := newTestServer(t, nil)
	body := `{"channel_key":"demo","count":3}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/messages/generate", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status: %d", w.Code)
	}
	if store.Len("demo") != 3 {
		t.Fatalf("store len: %d, want 3", store.Len("demo"))
	}
}

func TestChannelsHandler(t *testing.T) {
	s, store, _ := newTestServer(t, nil)
	chatlog.Seed(store)
	req := httptest.NewRequest(http.MethodGet, "/v1/channels", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("status: %d", w.Code)
	}
	var resp struct {
		Channels []struct {
			Key      string `json:"key"`
			Messages int    `json:"messages"`
		} `json:"channels"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Channels) != 1 || resp.Channels[0].Key != chatlog.SeedChannel {
		t.Fatalf("channels: %+v", resp.Channels)
	}
	if resp.Channels[0].Messages != 5 {
		t.Fatalf("messages: %d, want 5", resp.Channels[0].Messages)
	}
}

// readSSEEvent reads one "data: ..." frame from an SSE body.
func readSSEEvent(t *testing.T, r *bufio.Reader) deliveryEvent {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read sse line: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev deliveryEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("decode sse event: %v", err)
		}
		return ev
	}
}

func TestStreamSSEDeliversBacklog(t *testing.T) {
	s, store, _ := newTestServer(t, nil)
	chatlog.Seed(store)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/chat/stream?channel=demo")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: %q", ct)
	}
	r := bufio.NewReader(resp.Body)
	for i := 0; i < 5; i++ {
		ev := readSSEEvent(t, r)
		if ev.Message == nil {
			t.Fatalf("event %d: unexpected heartbeat", i)
		}
		if want := fmt.Sprintf("msg-id-%d", i); ev.Message.ID != want {
			t.Fatalf("event %d: id %q, want %q", i, ev.Message.ID, want)
		}
		if ev.NextPageToken == "" {
			t.Fatalf("event %d: empty next_page_token", i)
		}
	}
}

func TestStreamSSEResumesFromToken(t *testing.T) {
	s, store, _ := newTestServer(t, nil)
	chatlog.Seed(store)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	tok := stream.EncodeCursor(3)
	resp, err := http.Get(ts.URL + "/v1/chat/stream?channel=demo&page_token=" + url.QueryEscape(tok))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	ev := readSSEEvent(t, bufio.NewReader(resp.Body))
	if ev.Message == nil || ev.Message.ID != "msg-id-3" {
		t.Fatalf("first resumed event: %+v", ev)
	}
}

func TestStreamSSEHeartbeatOnEmptyChannel(t *testing.T) {
	s, _, _ := newTestServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/chat/stream?channel=empty")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	ev := readSSEEvent(t, bufio.NewReader(resp.Body))
	if ev.Message != nil {
		t.Fatalf("expected heartbeat, got %+v", ev)
	}
	if ev.NextPageToken != stream.EncodeCursor(0) {
		t.Fatalf("heartbeat token: %q", ev.NextPageToken)
	}
}

func TestStreamSSEValidation(t *testing.T) {
	s, _, _ := newTestServer(t, nil)
	cases := []struct {
		name, query string
	}{
		{"missing channel", ""},
		{"bad token", "channel=demo&page_token=%21%21"},
		{"bad filter", "channel=demo&filter=" + url.QueryEscape("not a (valid expr")},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/v1/chat/stream?"+tc.query, nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d, want 400", tc.name, w.Code)
		}
	}
}

func TestStreamRequiresCredentialWhenGated(t *testing.T) {
	s, store, _ := newTestServer(t, auth.PresenceGate{})
	chatlog.Seed(store)

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/stream?channel=demo", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no credential: status %d, want 401", w.Code)
	}

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	// Any non-empty key passes a presence gate.
	resp, err := http.Get(ts.URL + "/v1/chat/stream?channel=demo&key=anything")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("with key: status %d", resp.StatusCode)
	}

	// Bearer header form works too.
	hr, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/chat/stream?channel=demo", nil)
	hr.Header.Set("Authorization", "Bearer whatever")
	resp2, err := http.DefaultClient.Do(hr)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != 200 {
		t.Fatalf("with bearer: status %d", resp2.StatusCode)
	}
}

func TestTokenEndpointIssueAndRefresh(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	form := url.Values{"grant_type": {"authorization_code"}}
	req := httptest.NewRequest(http.MethodPost, "/v1/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("issue status: %d body: %s", w.Code, w.Body.String())
	}
	var grant auth.Grant
	if err := json.Unmarshal(w.Body.Bytes(), &grant); err != nil {
		t.Fatalf("decode grant: %v", err)
	}
	if grant.AccessToken == "" || grant.RefreshToken == "" {
		t.Fatalf("incomplete grant: %+v", grant)
	}
	if grant.Scope != auth.DefaultScope {
		t.Fatalf("scope: %q", grant.Scope)
	}

	form = url.Values{"grant_type": {"refresh_token"}, "refresh_token": {grant.RefreshToken}}
	req = httptest.NewRequest(http.MethodPost, "/v1/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("refresh status: %d body: %s", w.Code, w.Body.String())
	}
	var refreshed auth.Grant
	if err := json.Unmarshal(w.Body.Bytes(), &refreshed); err != nil {
		t.Fatalf("decode refreshed grant: %v", err)
	}
	if refreshed.AccessToken == grant.AccessToken {
		t.Fatal("refresh should mint a new access token")
	}
	if refreshed.RefreshToken != "" {
		t.Fatal("refresh grant should not carry a new refresh token")
	}
}

func TestTokenEndpointErrors(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	form := url.Values{"grant_type": {"password"}}
	req := httptest.NewRequest(http.MethodPost, "/v1/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "unsupported_grant_type") {
		t.Fatalf("unsupported grant: %d %s", w.Code, w.Body.String())
	}

	form = url.Values{"grant_type": {"refresh_token"}, "refresh_token": {"rt-unknown"}}
	req = httptest.NewRequest(http.MethodPost, "/v1/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "invalid_grant") {
		t.Fatalf("unknown refresh: %d %s", w.Code, w.Body.String())
	}
}

func TestExpiredBearerRejectedByVerifyGate(t *testing.T) {
	store := chatlog.NewStore()
	chatlog.Seed(store)
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Format: "text"})
	engine := stream.NewEngine(store, logger, stream.Options{PollInterval: 20 * time.Millisecond})
	tokens := auth.NewTokenStore()
	s := New(store, engine, auth.ExpiryGate{Tokens: tokens}, tokens, logger)

	grant := tokens.Issue(auth.DefaultScope, -time.Second)
	req := httptest.NewRequest(http.MethodGet, "/v1/chat/stream?channel=demo", nil)
	req.Header.Set("Authorization", "Bearer "+grant.AccessToken)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expired bearer: status %d, want 401", w.Code)
	}
}
