package proxyman

import (
	"context"
	"fmt"
	"time"

	"pkt.systems/proxyman/internal/perm"
)

// UserSummary is the account info returned by list operations.
type UserSummary struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Disabled  bool      `json:"is_disabled"`
	Roles     []string  `json:"roles"`
	CreatedOn time.Time `json:"created_on"`
}

// ListUsers lists user accounts. Requires manage access to users.
func (c *Client) ListUsers(ctx context.Context) ([]UserSummary, error) {
	var out []UserSummary
	if err := c.getJSON(ctx, "/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser fetches one account, expanded with its permission map.
func (c *Client) GetUser(ctx context.Context, id int) (perm.Identity, error) {
	var payload identityPayload
	if err := c.getJSON(ctx, fmt.Sprintf("/users/%d?expand=permissions", id), &payload); err != nil {
		return perm.Identity{}, err
	}
	return payload.toIdentity(), nil
}

// UserLoginToken asks the backend to mint a sign-in token for another
// user. Admin only; this is the grant behind account switching.
func (c *Client) UserLoginToken(ctx context.Context, id int) (TokenResult, error) {
	var out TokenResult
	if err := c.postJSON(ctx, fmt.Sprintf("/users/%d/login", id), nil, &out); err != nil {
		return TokenResult{}, err
	}
	return out, nil
}

// ChangePassword updates the secret for an account.
func (c *Client) ChangePassword(ctx context.Context, id int, current, next string) error {
	payload := map[string]string{
		"type":    "password",
		"current": current,
		"secret":  next,
	}
	return c.postJSON(ctx, fmt.Sprintf("/users/%d/auth", id), payload, nil)
}
