// Package session owns the console's authentication session: login and
// logout, proactive token refresh, expiry-warning scheduling, and the
// stack-based account switch used for administrative impersonation.
package session

import (
	"context"
	"time"

	"pkt.systems/proxyman/internal/jwtexp"
	"pkt.systems/proxyman/internal/perm"
)

// AuthAPI is the backend surface the manager needs: credential exchange,
// token refresh, and identity lookup. The root package provides the REST
// implementation.
type AuthAPI interface {
	RequestToken(ctx context.Context, identity, secret string) (string, error)
	RefreshToken(ctx context.Context, token string) (string, error)
	CurrentUser(ctx context.Context, token string) (perm.Identity, error)
}

// Session is one authenticated context: the bearer token, the identity it
// was issued for, and the token's locally decoded expiry. ExpiresAt is zero
// when the token carries no decodable expiry; it is an unverified estimate
// used only for scheduling.
type Session struct {
	Token     string
	Identity  perm.Identity
	ExpiresAt time.Time
}

// FromToken builds a Session from a token and identity, decoding the
// token's embedded expiry.
func FromToken(token string, id perm.Identity) Session {
	s := Session{Token: token, Identity: id}
	if exp, ok := jwtexp.Expiry(token); ok {
		s.ExpiresAt = exp
	}
	return s
}

// State describes where the manager is in its lifecycle.
type State int

// Manager states. Refreshing and Switching are transient sub-states of an
// authenticated session.
const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateRefreshing
	StateSwitching
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateSwitching:
		return "switching"
	default:
		return "anonymous"
	}
}
