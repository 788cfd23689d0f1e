package proxyman

import (
	"fmt"

	"pkt.systems/proxyman/internal/perm"
	"pkt.systems/proxyman/internal/session"
)

// Guard gates protected operations on the session manager's state. The two
// checks compose: RequireAuth alone for views that only need a session,
// plus RequirePermission for views gated on a resource level. Errors carry
// the originally requested target so navigation can resume after login.
type Guard struct {
	Manager *session.Manager
}

// RequireAuth returns ErrLoginRequired when no active session exists.
func (g Guard) RequireAuth(target string) error {
	if g.Manager.IsAuthenticated() {
		return nil
	}
	return fmt.Errorf("%w (to access %q)", ErrLoginRequired, target)
}

// RequirePermission returns ErrLoginRequired without a session and
// ErrForbidden when the active identity does not meet the required level.
func (g Guard) RequirePermission(target string, r perm.Resource, required perm.Level) error {
	if err := g.RequireAuth(target); err != nil {
		return err
	}
	identity, _ := g.Manager.Identity()
	if identity.Disabled {
		return fmt.Errorf("%w: account is disabled", ErrForbidden)
	}
	if !perm.Has(identity, r, required) {
		return fmt.Errorf("%w: %q requires %s access to %s", ErrForbidden, target, required, r)
	}
	return nil
}
