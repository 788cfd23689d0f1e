package session

import "errors"

var (
	// ErrInvalidCredentials is returned when the backend rejects a login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNetwork is returned when the backend could not be reached.
	ErrNetwork = errors.New("network failure")
	// ErrRefreshFailed is returned when a token refresh fails. It is not
	// fatal on its own; the gateway's retry path is the eventual corrector.
	ErrRefreshFailed = errors.New("token refresh failed")
	// ErrIdentityLoad is returned when the server identity confirmation
	// fails. It is fatal: the manager fails closed with a full logout.
	ErrIdentityLoad = errors.New("identity load failed")
	// ErrLoginRequired is returned when an operation needs an active session.
	ErrLoginRequired = errors.New("login required")
	// ErrForbidden is returned when the identity lacks permission.
	ErrForbidden = errors.New("forbidden")
	// ErrStackEmpty is returned when there is no suspended session to restore.
	ErrStackEmpty = errors.New("session stack is empty")
)
