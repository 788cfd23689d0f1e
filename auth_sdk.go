package proxyman

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pkt.systems/proxyman/internal/perm"
	"pkt.systems/proxyman/internal/session"
)

// TokenResult is the backend's answer to a token request: the bearer token
// and the server-reported expiry. Scheduling uses the expiry embedded in
// the token itself; the reported value is informational.
type TokenResult struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type tokenRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

// RequestToken exchanges credentials for a token. A rejected login returns
// ErrInvalidCredentials; an unreachable backend returns ErrNetwork.
func RequestToken(ctx context.Context, endpoint, identity, secret string) (TokenResult, error) {
	if strings.TrimSpace(identity) == "" || secret == "" {
		return TokenResult{}, ErrInvalidCredentials
	}
	httpURL, err := normalizeHTTPURL(endpoint)
	if err != nil {
		return TokenResult{}, err
	}
	payload, err := json.Marshal(tokenRequest{Identity: identity, Secret: secret})
	if err != nil {
		return TokenResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, httpURL+"/tokens", bytes.NewReader(payload))
	if err != nil {
		return TokenResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := newHTTPClient().Do(req)
	if err != nil {
		return TokenResult{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return TokenResult{}, ErrInvalidCredentials
	default:
		return TokenResult{}, fmt.Errorf("login failed: %s", resp.Status)
	}
	var out TokenResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return TokenResult{}, err
	}
	return out, nil
}

// RefreshToken trades the current token for a fresh one.
func RefreshToken(ctx context.Context, endpoint, token string) (TokenResult, error) {
	if token == "" {
		return TokenResult{}, ErrLoginRequired
	}
	httpURL, err := normalizeHTTPURL(endpoint)
	if err != nil {
		return TokenResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, httpURL+"/tokens", nil)
	if err != nil {
		return TokenResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := newHTTPClient().Do(req)
	if err != nil {
		return TokenResult{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return TokenResult{}, fmt.Errorf("refresh failed: %s", resp.Status)
	}
	var out TokenResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return TokenResult{}, err
	}
	return out, nil
}

// identityPayload is the wire shape of the identity endpoint.
type identityPayload struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Disabled    bool              `json:"is_disabled"`
	Roles       []string          `json:"roles"`
	Permissions map[string]string `json:"permissions"`
}

func (p identityPayload) toIdentity() perm.Identity {
	id := perm.Identity{
		ID:          p.ID,
		Name:        p.Name,
		Email:       p.Email,
		Disabled:    p.Disabled,
		Roles:       p.Roles,
		Visibility:  p.Permissions["visibility"],
		Permissions: make(map[perm.Resource]perm.Level),
	}
	for _, r := range perm.Resources() {
		if v, ok := p.Permissions[string(r)]; ok {
			id.Permissions[r] = perm.ParseLevel(v)
		}
	}
	return id
}

// CurrentUser fetches the identity the token belongs to, expanded with its
// permission map.
func CurrentUser(ctx context.Context, endpoint, token string) (perm.Identity, error) {
	httpURL, err := normalizeHTTPURL(endpoint)
	if err != nil {
		return perm.Identity{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, httpURL+"/users/me?expand=permissions", nil)
	if err != nil {
		return perm.Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := newHTTPClient().Do(req)
	if err != nil {
		return perm.Identity{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return perm.Identity{}, fmt.Errorf("identity fetch failed: %s", resp.Status)
	}
	var payload identityPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return perm.Identity{}, err
	}
	return payload.toIdentity(), nil
}

// AuthClient adapts the auth endpoints to the session manager's AuthAPI.
type AuthClient struct {
	Endpoint string
}

// RequestToken implements session.AuthAPI.
func (c AuthClient) RequestToken(ctx context.Context, identity, secret string) (string, error) {
	res, err := RequestToken(ctx, c.Endpoint, identity, secret)
	return res.Token, err
}

// RefreshToken implements session.AuthAPI.
func (c AuthClient) RefreshToken(ctx context.Context, token string) (string, error) {
	res, err := RefreshToken(ctx, c.Endpoint, token)
	return res.Token, err
}

// CurrentUser implements session.AuthAPI.
func (c AuthClient) CurrentUser(ctx context.Context, token string) (perm.Identity, error) {
	return CurrentUser(ctx, c.Endpoint, token)
}

var _ session.AuthAPI = AuthClient{}
