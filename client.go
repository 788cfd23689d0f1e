package proxyman

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"pkt.systems/proxyman/internal/session"
	"pkt.systems/pslog"
)

// Client calls the proxy backend's resource endpoints through the Gateway,
// so every request carries the active token and benefits from the one-shot
// refresh-and-retry on 401.
type Client struct {
	endpoint string
	httpc    *http.Client
}

// NewClient builds a Client for the given endpoint, routed through a
// Gateway bound to the session manager.
func NewClient(endpoint string, manager *session.Manager, logger pslog.Logger) (*Client, error) {
	httpURL, err := normalizeHTTPURL(endpoint)
	if err != nil {
		return nil, err
	}
	return &Client{
		endpoint: httpURL,
		httpc: &http.Client{
			Transport: NewGateway(manager, nil, logger),
			Timeout:   defaultHTTPTimeout,
		},
	}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s %s", ErrForbidden, req.Method, req.URL.Path)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s %s", ErrLoginRequired, req.Method, req.URL.Path)
	default:
		return fmt.Errorf("%s %s failed: %s", req.Method, req.URL.Path, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
