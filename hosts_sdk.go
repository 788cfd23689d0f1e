package proxyman

import (
	"context"
	"fmt"
	"time"
)

// ProxyHost is one reverse-proxy host as the backend reports it.
type ProxyHost struct {
	ID            int       `json:"id"`
	DomainNames   []string  `json:"domain_names"`
	ForwardScheme string    `json:"forward_scheme"`
	ForwardHost   string    `json:"forward_host"`
	ForwardPort   int       `json:"forward_port"`
	CertificateID int       `json:"certificate_id"`
	Enabled       bool      `json:"enabled"`
	OwnerUserID   int       `json:"owner_user_id"`
	CreatedOn     time.Time `json:"created_on"`
	ModifiedOn    time.Time `json:"modified_on"`
}

// ListProxyHosts lists proxy hosts visible to the active identity. The
// backend applies own-records filtering for restricted accounts.
func (c *Client) ListProxyHosts(ctx context.Context) ([]ProxyHost, error) {
	var out []ProxyHost
	if err := c.getJSON(ctx, "/nginx/proxy-hosts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProxyHost fetches one proxy host by id.
func (c *Client) GetProxyHost(ctx context.Context, id int) (ProxyHost, error) {
	var out ProxyHost
	if err := c.getJSON(ctx, fmt.Sprintf("/nginx/proxy-hosts/%d", id), &out); err != nil {
		return ProxyHost{}, err
	}
	return out, nil
}

// SetProxyHostEnabled enables or disables a proxy host.
func (c *Client) SetProxyHostEnabled(ctx context.Context, id int, enabled bool) error {
	action := "disable"
	if enabled {
		action = "enable"
	}
	return c.postJSON(ctx, fmt.Sprintf("/nginx/proxy-hosts/%d/%s", id, action), nil, nil)
}
