package proxyman

import (
	"pkt.systems/proxyman/internal/perm"
	"pkt.systems/proxyman/internal/session"
	"pkt.systems/proxyman/internal/sessionstore"
)

// SessionManager is the session and authorization core.
type SessionManager = session.Manager

// SessionOptions configures a SessionManager.
type SessionOptions = session.Options

// Session is one authenticated context.
type Session = session.Session

// SessionState is the manager lifecycle state.
type SessionState = session.State

// SessionStore persists session state across runs.
type SessionStore = sessionstore.Store

// Identity is one account as the backend reports it.
type Identity = perm.Identity

// Resource is a manageable entity kind.
type Resource = perm.Resource

// Level is an ordered capability tier.
type Level = perm.Level

// Session manager states.
const (
	StateAnonymous      = session.StateAnonymous
	StateAuthenticating = session.StateAuthenticating
	StateAuthenticated  = session.StateAuthenticated
	StateRefreshing     = session.StateRefreshing
	StateSwitching      = session.StateSwitching
)

// Error kinds surfaced by the core.
var (
	ErrInvalidCredentials = session.ErrInvalidCredentials
	ErrNetwork            = session.ErrNetwork
	ErrRefreshFailed      = session.ErrRefreshFailed
	ErrIdentityLoad       = session.ErrIdentityLoad
	ErrLoginRequired      = session.ErrLoginRequired
	ErrForbidden          = session.ErrForbidden
	ErrStackEmpty         = session.ErrStackEmpty
)

// NewSessionManager builds a SessionManager.
func NewSessionManager(opts SessionOptions) *SessionManager {
	return session.NewManager(opts)
}

// NewSessionStore returns a SessionStore rooted at dir.
func NewSessionStore(dir string) *SessionStore {
	return sessionstore.New(dir)
}
