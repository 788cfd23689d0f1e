package session

import (
	"time"

	"pkt.systems/proxyman/internal/perm"
)

// IsAuthenticated reports whether an active session exists.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// State returns the manager's current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Token returns the active bearer token. This is the token every outbound
// request must carry next; it always matches what the store persists.
func (m *Manager) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return "", false
	}
	return m.current.Token, true
}

// Identity returns the active identity.
func (m *Manager) Identity() (perm.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return perm.Identity{}, false
	}
	return m.current.Identity, true
}

// Current returns a copy of the active session.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// UnverifiedExpiry returns the locally decoded token expiry. It is a UX
// scheduling estimate only, never a security decision.
func (m *Manager) UnverifiedExpiry() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.ExpiresAt.IsZero() {
		return time.Time{}, false
	}
	return m.current.ExpiresAt, true
}

// ExpiryImminent reports whether the active session is inside the warning
// window. Sessions without a decodable expiry are never imminent.
func (m *Manager) ExpiryImminent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.ExpiresAt.IsZero() {
		return false
	}
	return !m.now().Before(m.current.ExpiresAt.Add(-m.warningWindow))
}

// StackDepth returns the number of suspended sessions.
func (m *Manager) StackDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stack)
}
