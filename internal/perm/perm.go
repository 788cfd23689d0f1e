// Package perm evaluates per-resource permissions for an identity.
//
// Evaluation is pure: results depend only on the Identity passed in, never
// on ambient state, so switching the active account changes visible
// capabilities strictly through the Identity argument.
package perm

import "slices"

// RoleAdmin overrides every per-resource permission check.
const RoleAdmin = "admin"

// Visibility values for non-admin accounts.
const (
	VisibilityAll = "all"
	VisibilityOwn = "user"
)

// Resource is a manageable entity kind in the proxy backend.
type Resource string

// All manageable resources.
const (
	ResourceProxyHosts       Resource = "proxy_hosts"
	ResourceRedirectionHosts Resource = "redirection_hosts"
	ResourceDeadHosts        Resource = "dead_hosts"
	ResourceStreams          Resource = "streams"
	ResourceAccessLists      Resource = "access_lists"
	ResourceCertificates     Resource = "certificates"
	ResourceUsers            Resource = "users"
)

// Resources lists every known resource in a stable order.
func Resources() []Resource {
	return []Resource{
		ResourceProxyHosts,
		ResourceRedirectionHosts,
		ResourceDeadHosts,
		ResourceStreams,
		ResourceAccessLists,
		ResourceCertificates,
		ResourceUsers,
	}
}

// Action is a console operation against a resource.
type Action string

// Actions a console screen can perform.
const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Identity is one account as the backend reports it.
type Identity struct {
	ID          int                `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Disabled    bool               `json:"disabled"`
	Roles       []string           `json:"roles"`
	Visibility  string             `json:"visibility"`
	Permissions map[Resource]Level `json:"permissions"`
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool {
	return slices.Contains(id.Roles, RoleAdmin)
}

// LevelFor returns the configured level for a resource, defaulting to
// hidden when no entry exists.
func (id Identity) LevelFor(r Resource) Level {
	if level, ok := id.Permissions[r]; ok {
		return level
	}
	return LevelHidden
}

// Has reports whether the identity meets the required level for a resource.
// The admin role satisfies every check regardless of the permission map.
func Has(id Identity, r Resource, required Level) bool {
	if id.IsAdmin() {
		return true
	}
	return id.LevelFor(r) >= required
}

// CanAccess reports whether the identity may perform an action on a
// resource. View requires view; create, edit, and delete require manage.
func CanAccess(id Identity, r Resource, action Action) bool {
	required := LevelManage
	if action == ActionView {
		required = LevelView
	}
	return Has(id, r, required)
}

// FilterOwnRecords reports whether listings for this identity must be
// restricted to records it owns. Admins always see everything.
func FilterOwnRecords(id Identity) bool {
	if id.IsAdmin() {
		return false
	}
	return id.Visibility == VisibilityOwn
}
