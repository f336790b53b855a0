package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL applies when a token request does not override expiry.
const DefaultTTL = time.Hour

// DefaultScope applies when a token request does not name one.
const DefaultScope = "chat.readonly"

var (
	// ErrTokenExpired is returned by Validate for a tracked, expired token.
	ErrTokenExpired = errors.New("token has expired")
	// ErrUnknownRefreshToken is returned by Refresh for a token this store
	// never issued.
	ErrUnknownRefreshToken = errors.New("unknown refresh token")
)

// tokenMeta tracks issuance and scope for one access token.
type tokenMeta struct {
	issuedAt time.Time
	ttl      time.Duration
	scope    string
}

// expired is the pure predicate: now >= issuedAt + ttl.
func (m tokenMeta) expired(now time.Time) bool {
	return !now.Before(m.issuedAt.Add(m.ttl))
}

// Grant is the result of an Issue or Refresh call.
type Grant struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
}

// TokenStore is the credential-expiry table: access token -> {issued_at, ttl,
// scope}. It is independent of the streaming core and consulted only through
// the gate and the token endpoint.
type TokenStore struct {
	mu      sync.RWMutex
	tokens  map[string]tokenMeta
	refresh map[string]string // refresh token -> scope
	now     func() time.Time
}

// NewTokenStore returns an empty table using the wall clock.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens:  make(map[string]tokenMeta),
		refresh: make(map[string]string),
		now:     time.Now,
	}
}

// Issue mints an access/refresh token pair for the authorization-code grant.
// ttl may be negative to mint already-expired tokens for testing; zero means
// DefaultTTL.
func (ts *TokenStore) Issue(scope string, ttl time.Duration) Grant {
	if scope == "" {
		scope = DefaultScope
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	access := "at-" + uuid.NewString()
	refreshTok := "rt-" + uuid.NewString()
	ts.mu.Lock()
	ts.tokens[access] = tokenMeta{issuedAt: ts.now(), ttl: ttl, scope: scope}
	ts.refresh[refreshTok] = scope
	ts.mu.Unlock()
	return Grant{
		AccessToken:  access,
		RefreshToken: refreshTok,
		TokenType:    "Bearer",
		ExpiresIn:    int64(ttl / time.Second),
		Scope:        scope,
	}
}

// Refresh mints a fresh access token for a previously issued refresh token.
// The response carries no new refresh token, matching the OAuth refresh grant.
func (ts *TokenStore) Refresh(refreshToken string, ttl time.Duration) (Grant, error) {
	ts.mu.RLock()
	scope, ok := ts.refresh[refreshToken]
	ts.mu.RUnlock()
	if !ok {
		return Grant{}, ErrUnknownRefreshToken
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	access := "at-" + uuid.NewString()
	ts.mu.Lock()
	ts.tokens[access] = tokenMeta{issuedAt: ts.now(), ttl: ttl, scope: scope}
	ts.mu.Unlock()
	return Grant{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl / time.Second),
		Scope:       scope,
	}, nil
}

// Validate reports whether token is usable. Unknown tokens pass: possession is
// what the gate enforces, and tokens may predate this table.
func (ts *TokenStore) Validate(token string) error {
	ts.mu.RLock()
	meta, ok := ts.tokens[token]
	ts.mu.RUnlock()
	if !ok {
		return nil
	}
	if meta.expired(ts.now()) {
		return ErrTokenExpired
	}
	return nil
}

// Scope returns the scope bound to a tracked access token.
func (ts *TokenStore) Scope(token string) (string, bool) {
	ts.mu.RLock()
	meta, ok := ts.tokens[token]
	ts.mu.RUnlock()
	if !ok {
		return "", false
	}
	return meta.scope, true
}
