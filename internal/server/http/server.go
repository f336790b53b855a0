package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ternhq/tern/internal/auth"
	"github.com/ternhq/tern/internal/chatlog"
	"github.com/ternhq/tern/internal/stream"
	"github.com/ternhq/tern/pkg/id"
	logpkg "github.com/ternhq/tern/pkg/log"
)

type Server struct {
	store  *chatlog.Store
	engine *stream.Engine
	gate   auth.Gate
	tokens *auth.TokenStore
	ids    *id.Generator
	logger logpkg.Logger
	srv    *http.Server
	lis    net.Listener
}

func New(store *chatlog.Store, engine *stream.Engine, gate auth.Gate, tokens *auth.TokenStore, logger logpkg.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		store:  store,
		engine: engine,
		gate:   gate,
		tokens: tokens,
		ids:    id.NewGenerator(),
		logger: logger.WithComponent("http"),
	}
	s.srv = &http.Server{Handler: cors(s.accessLog(mux))}
	mux.HandleFunc("/v1/healthz", s.handleHealth)
	mux.HandleFunc("/v1/chat/stream", s.handleStreamSSE)
	mux.HandleFunc("/v1/chat/ws", s.handleStreamWS)
	mux.HandleFunc("/v1/chat/messages", s.handlePublish)
	mux.HandleFunc("/v1/chat/messages/generate", s.handleGenerate)
	mux.HandleFunc("/v1/channels", s.handleChannels)
	mux.HandleFunc("/v1/oauth/token", s.handleToken)
	return s
}

// Handler returns the root handler, wrapped with middleware. Tests drive it
// through httptest.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("http server listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Api-Key")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			logpkg.Str("method", r.Method),
			logpkg.Str("path", r.URL.Path),
			logpkg.Dur("took", time.Since(start)))
	})
}

// credentialsFrom extracts the two credential forms a request may carry: an
// API key (query param or X-Api-Key header) and a bearer token.
func credentialsFrom(r *http.Request) auth.Credentials {
	c := auth.Credentials{APIKey: r.URL.Query().Get("key")}
	if c.APIKey == "" {
		c.APIKey = r.Header.Get("X-Api-Key")
	}
	if h := r.Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
		c.Bearer = h[7:]
	}
	return c
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// deliveryEvent is the wire shape of one stream frame. A heartbeat carries a
// null message and the unchanged token.
type deliveryEvent struct {
	Message       *chatlog.Message `json:"message"`
	NextPageToken string           `json:"next_page_token"`
}

func (s *Server) handleStreamSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.gate.Authorized(credentialsFrom(r)) {
		writeError(w, http.StatusUnauthorized, auth.ErrUnauthenticated.Error())
		return
	}
	q := r.URL.Query()
	req := stream.AttachRequest{
		ChannelKey: q.Get("channel"),
		PageToken:  q.Get("page_token"),
		Filter:     q.Get("filter"),
	}
	events, err := s.engine.Attach(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)
	for ev := range events {
		b, err := json.Marshal(deliveryEvent{Message: ev.Message, NextPageToken: ev.Cursor})
		if err != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

type publishReq struct {
	ChannelKey string `json:"channel_key"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Text       string `json:"text"`
	Verified   bool   `json:"verified"`
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req publishReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.ChannelKey == "" {
		writeError(w, http.StatusBadRequest, stream.ErrMissingChannel.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "message text is required")
		return
	}
	msg := chatlog.Message{
		ID:          s.ids.Next().String(),
		ChannelKey:  req.ChannelKey,
		AuthorID:    req.AuthorID,
		AuthorName:  req.AuthorName,
		Text:        req.Text,
		PublishedAt: time.Now().UTC(),
		Verified:    req.Verified,
	}
	s.store.Append(req.ChannelKey, msg)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, msg)
}

type generateReq struct {
	ChannelKey string `json:"channel_key"`
	Count      int    `json:"count"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.ChannelKey == "" {
		req.ChannelKey = chatlog.SeedChannel
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > 100 {
		req.Count = 100
	}
	msgs := make([]chatlog.Message, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		n := s.store.Len(req.ChannelKey) + 1
		msg := chatlog.Message{
			ID:          s.ids.Next().String(),
			ChannelKey:  req.ChannelKey,
			AuthorID:    fmt.Sprintf("generated-author-%d", n),
			AuthorName:  fmt.Sprintf("Generated Author %d", n),
			Text:        fmt.Sprintf("Generated message %d", n),
			PublishedAt: time.Now().UTC(),
		}
		s.store.Append(req.ChannelKey, msg)
		msgs = append(msgs, msg)
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]any{"messages": msgs})
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	keys := s.store.Channels()
	type channelInfo struct {
		Key      string `json:"key"`
		Messages int    `json:"messages"`
	}
	out := make([]channelInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, channelInfo{Key: k, Messages: s.store.Len(k)})
	}
	writeJSON(w, map[string]any{"channels": out})
}

// handleToken implements a form-encoded OAuth-shaped token endpoint. It mints
// and refreshes entries in the token table the expiry gate consults. A
// negative ttl_secs mints an already-expired token, which is useful for
// exercising the gate.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	ttl := auth.DefaultTTL
	if v := r.PostForm.Get("ttl_secs"); v != "" {
		var secs int64
		if _, err := fmt.Sscanf(v, "%d", &secs); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		ttl = time.Duration(secs) * time.Second
	}
	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		scope := r.PostForm.Get("scope")
		if scope == "" {
			scope = auth.DefaultScope
		}
		writeJSON(w, s.tokens.Issue(scope, ttl))
	case "refresh_token":
		grant, err := s.tokens.Refresh(r.PostForm.Get("refresh_token"), ttl)
		if err != nil {
			if errors.Is(err, auth.ErrUnknownRefreshToken) {
				writeError(w, http.StatusBadRequest, "invalid_grant")
				return
			}
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		writeJSON(w, grant)
	default:
		writeError(w, http.StatusBadRequest, "unsupported_grant_type")
	}
}
