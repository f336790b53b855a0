package auth

import "errors"

// ErrUnauthenticated is surfaced by transports when the gate denies an attach.
var ErrUnauthenticated = errors.New("request is missing required authentication credential; expected an access token or API key")

// Credentials are the two forms an attach request may present: an
// API-key-shaped parameter or a bearer-token-shaped header.
type Credentials struct {
	APIKey string
	Bearer string
}

// Gate is the yes/no predicate consulted once per attach, before any session
// is created. The decision is neither retried nor cached. Implementations must
// be safe for concurrent use.
type Gate interface {
	Authorized(c Credentials) bool
}

// AllowAll is used when auth enforcement is disabled.
type AllowAll struct{}

func (AllowAll) Authorized(Credentials) bool { return true }

// PresenceGate authorizes any request that carries either credential form.
// Possession is checked, validity is not.
type PresenceGate struct{}

func (PresenceGate) Authorized(c Credentials) bool {
	return c.APIKey != "" || c.Bearer != ""
}

// ExpiryGate accepts API keys on presence and bearer tokens only while the
// token table considers them unexpired.
type ExpiryGate struct {
	Tokens *TokenStore
}

func (g ExpiryGate) Authorized(c Credentials) bool {
	if c.APIKey != "" {
		return true
	}
	if c.Bearer == "" {
		return false
	}
	return g.Tokens.Validate(c.Bearer) == nil
}
