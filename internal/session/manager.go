package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"pkt.systems/proxyman/internal/perm"
	"pkt.systems/proxyman/internal/sessionstore"
	"pkt.systems/pslog"
)

const (
	// DefaultWarningWindow is how long before expiry the warning fires.
	DefaultWarningWindow = 5 * time.Minute
	// DefaultRefreshSkew is how long before expiry the proactive refresh runs.
	DefaultRefreshSkew = time.Minute
	// DefaultRefreshRetry is the delay before retrying a failed proactive refresh.
	DefaultRefreshRetry = time.Minute
)

// Options configures a Manager.
type Options struct {
	API   AuthAPI
	Store *sessionstore.Store
	// WarningWindow and RefreshSkew default to the package constants when zero.
	WarningWindow time.Duration
	RefreshSkew   time.Duration
	// OnExpiryWarning is called once per session generation when expiry is
	// imminent. It runs on a timer goroutine and must not call back into the
	// Manager synchronously.
	OnExpiryWarning func(expiresAt time.Time)
	Logger          pslog.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Manager is the session and authorization core. It owns the active
// session, the suspended-session stack, both timers, and all writes to the
// persistent store. All methods are safe for concurrent use.
type Manager struct {
	api    AuthAPI
	store  *sessionstore.Store
	logger pslog.Logger
	now    func() time.Time

	warningWindow time.Duration
	refreshSkew   time.Duration
	refreshRetry  time.Duration
	onWarn        func(time.Time)

	flight singleflight.Group

	mu      sync.Mutex
	state   State
	current *Session
	stack   []Session
	// gen increments on every session transition. Timer callbacks and
	// refresh results carry the generation they were armed for and are
	// discarded when it no longer matches.
	gen          uint64
	refreshTimer *time.Timer
	warnTimer    *time.Timer
}

// NewManager builds a Manager and restores any persisted session. When a
// token is found the manager enters Authenticated optimistically, pending
// confirmation via LoadUser.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	m := &Manager{
		api:           opts.API,
		store:         opts.Store,
		logger:        logger.With("component", "session"),
		now:           opts.Now,
		warningWindow: opts.WarningWindow,
		refreshSkew:   opts.RefreshSkew,
		refreshRetry:  DefaultRefreshRetry,
		onWarn:        opts.OnExpiryWarning,
		state:         StateAnonymous,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.warningWindow <= 0 {
		m.warningWindow = DefaultWarningWindow
	}
	if m.refreshSkew <= 0 {
		m.refreshSkew = DefaultRefreshSkew
	}

	if token := m.store.Token(); token != "" {
		identity, _ := m.store.Identity()
		restored := FromToken(token, identity)
		m.mu.Lock()
		m.current = &restored
		m.state = StateAuthenticated
		for _, snap := range m.store.Stack() {
			m.stack = append(m.stack, FromToken(snap.Token, snap.Identity))
		}
		m.armTimersLocked()
		m.mu.Unlock()
	}
	return m
}

// Login exchanges credentials for a session, persists it, and starts the
// refresh and expiry-warning timers. Nothing is persisted on failure. The
// identity is returned for caller-side post-login logic.
func (m *Manager) Login(ctx context.Context, identity, secret string) (perm.Identity, error) {
	m.mu.Lock()
	prev := m.state
	m.state = StateAuthenticating
	m.mu.Unlock()

	token, err := m.api.RequestToken(ctx, identity, secret)
	if err != nil {
		m.restoreState(prev)
		return perm.Identity{}, err
	}
	user, err := m.api.CurrentUser(ctx, token)
	if err != nil {
		m.restoreState(prev)
		return perm.Identity{}, fmt.Errorf("identity after login: %w", err)
	}

	m.mu.Lock()
	err = m.activateLocked(FromToken(token, user))
	m.mu.Unlock()
	if err != nil {
		return perm.Identity{}, err
	}
	m.logger.Info("logged in", "user", user.Email)
	return user, nil
}

// Logout cancels all timers, clears the store including the session stack,
// and returns to Anonymous. Safe to call from any state, including while a
// refresh is in flight; the in-flight result is discarded.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimersLocked()
	m.gen++
	m.current = nil
	m.stack = nil
	m.state = StateAnonymous
	return m.store.Clear()
}

// LoadUser confirms the optimistically restored identity with the server.
// On failure it fails closed with a full logout: a possibly stale identity
// must never stay active.
func (m *Manager) LoadUser(ctx context.Context) (perm.Identity, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return perm.Identity{}, ErrLoginRequired
	}
	token := m.current.Token
	gen := m.gen
	m.mu.Unlock()

	user, err := m.api.CurrentUser(ctx, token)
	if err != nil {
		m.logger.Error("identity confirmation failed, logging out", "err", err)
		if lerr := m.Logout(); lerr != nil {
			m.logger.Error("logout after failed identity load", "err", lerr)
		}
		return perm.Identity{}, fmt.Errorf("%w: %v", ErrIdentityLoad, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen || m.current == nil {
		return user, nil
	}
	m.current.Identity = user
	return user, m.store.SaveIdentity(user)
}

// Refresh obtains a fresh token for the active session. Concurrent callers
// collapse into a single outbound call and observe the same outcome. On
// failure the existing token is left untouched; refresh failure is not
// fatal by itself.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return ErrLoginRequired
	}
	token := m.current.Token
	gen := m.gen
	m.state = StateRefreshing
	m.mu.Unlock()

	_, err, _ := m.flight.Do("refresh", func() (any, error) {
		fresh, err := m.api.RefreshToken(ctx, token)
		if err != nil {
			return nil, err
		}
		return nil, m.applyRefresh(gen, fresh)
	})

	m.mu.Lock()
	if m.state == StateRefreshing {
		if m.current != nil {
			m.state = StateAuthenticated
		} else {
			m.state = StateAnonymous
		}
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("token refresh failed", "err", err)
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	return nil
}

// applyRefresh installs a refreshed token, unless the session it was
// requested for is no longer the active one.
func (m *Manager) applyRefresh(gen uint64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen || m.current == nil {
		m.logger.Info("discarding refresh result for a superseded session")
		return nil
	}
	m.stopTimersLocked()
	m.gen++
	refreshed := FromToken(token, m.current.Identity)
	m.current = &refreshed
	if err := m.store.SaveToken(token); err != nil {
		return err
	}
	m.armTimersLocked()
	return nil
}

// PushCurrentToStack suspends the active session onto the stack. The
// suspended entry is restorable byte for byte via PopFromStack.
func (m *Manager) PushCurrentToStack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ErrLoginRequired
	}
	m.stopTimersLocked()
	m.gen++
	m.stack = append(m.stack, *m.current)
	m.current = nil
	m.state = StateSwitching
	if err := m.persistStackLocked(); err != nil {
		return err
	}
	if err := m.store.SaveToken(""); err != nil {
		return err
	}
	return m.store.ClearIdentity()
}

// PopFromStack switches to the most recently suspended session and removes
// it from the stack.
func (m *Manager) PopFromStack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.stack) == 0 {
		return ErrStackEmpty
	}
	top := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	if err := m.persistStackLocked(); err != nil {
		return err
	}
	return m.activateLocked(top)
}

// SwitchAccount makes the given session active: stop timers, persist the
// new session, start timers, strictly in that order so no timer ever
// observes two different identities.
func (m *Manager) SwitchAccount(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateSwitching
	return m.activateLocked(s)
}

// Impersonate suspends the current session and signs in as the user the
// given token was minted for.
func (m *Manager) Impersonate(ctx context.Context, token string) (perm.Identity, error) {
	user, err := m.api.CurrentUser(ctx, token)
	if err != nil {
		return perm.Identity{}, fmt.Errorf("%w: %v", ErrIdentityLoad, err)
	}
	if err := m.PushCurrentToStack(); err != nil {
		return perm.Identity{}, err
	}
	if err := m.SwitchAccount(FromToken(token, user)); err != nil {
		return perm.Identity{}, err
	}
	m.logger.Info("switched account", "user", user.Email)
	return user, nil
}

// activateLocked is the single transition into an active session. Timer
// stop, persistence, and timer start happen in that order.
func (m *Manager) activateLocked(s Session) error {
	m.stopTimersLocked()
	m.gen++
	m.current = &s
	m.state = StateAuthenticated
	if err := m.store.SaveToken(s.Token); err != nil {
		return err
	}
	if err := m.store.SaveIdentity(s.Identity); err != nil {
		return err
	}
	m.armTimersLocked()
	return nil
}

// armTimersLocked schedules the proactive refresh and the expiry warning
// for the active session. A session without a decodable expiry gets no
// timers. A warning moment already in the past fires immediately instead
// of being scheduled into the past.
func (m *Manager) armTimersLocked() {
	s := m.current
	if s == nil || s.ExpiresAt.IsZero() {
		return
	}
	now := m.now()
	gen := m.gen

	warnIn := s.ExpiresAt.Add(-m.warningWindow).Sub(now)
	if warnIn < 0 {
		warnIn = 0
	}
	m.warnTimer = time.AfterFunc(warnIn, func() { m.fireWarning(gen) })

	refreshIn := s.ExpiresAt.Add(-m.refreshSkew).Sub(now)
	if refreshIn < 0 {
		refreshIn = 0
	}
	m.refreshTimer = time.AfterFunc(refreshIn, func() { m.fireRefresh(gen) })
}

func (m *Manager) stopTimersLocked() {
	if m.warnTimer != nil {
		m.warnTimer.Stop()
		m.warnTimer = nil
	}
	if m.refreshTimer != nil {
		m.refreshTimer.Stop()
		m.refreshTimer = nil
	}
}

func (m *Manager) fireWarning(gen uint64) {
	m.mu.Lock()
	if m.gen != gen || m.current == nil {
		m.mu.Unlock()
		return
	}
	expires := m.current.ExpiresAt
	m.warnTimer = nil
	cb := m.onWarn
	m.mu.Unlock()

	m.logger.Info("session expiry imminent", "expires_at", expires)
	if cb != nil {
		cb(expires)
	}
}

func (m *Manager) fireRefresh(gen uint64) {
	m.mu.Lock()
	if m.gen != gen || m.current == nil {
		m.mu.Unlock()
		return
	}
	m.refreshTimer = nil
	m.mu.Unlock()

	if err := m.Refresh(context.Background()); err == nil {
		return
	}
	// Token unchanged; try again later unless the session moved on.
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen || m.current == nil {
		return
	}
	m.refreshTimer = time.AfterFunc(m.refreshRetry, func() { m.fireRefresh(gen) })
}

func (m *Manager) persistStackLocked() error {
	snaps := make([]sessionstore.Snapshot, 0, len(m.stack))
	for _, s := range m.stack {
		snaps = append(snaps, sessionstore.Snapshot{Token: s.Token, Identity: s.Identity})
	}
	return m.store.SaveStack(snaps)
}

func (m *Manager) restoreState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
