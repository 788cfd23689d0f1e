package proxyman

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"pkt.systems/proxyman/internal/session"
	"pkt.systems/pslog"
)

// Gateway is the outbound request pipeline: it stamps every request with
// the active bearer token just before dispatch and performs a bounded
// one-shot refresh-and-retry when the backend answers 401.
//
// The token endpoints themselves are never retried, and a request whose
// body cannot be replayed is propagated unmodified. If the refresh fails,
// the gateway clears the session; the caller lands at the login boundary
// via ErrLoginRequired.
type Gateway struct {
	manager *session.Manager
	base    http.RoundTripper
	logger  pslog.Logger
}

// NewGateway wraps base (http.DefaultTransport when nil) with token
// stamping and 401 handling driven by the session manager.
func NewGateway(manager *session.Manager, base http.RoundTripper, logger pslog.Logger) *Gateway {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	return &Gateway{
		manager: manager,
		base:    base,
		logger:  logger.With("component", "gateway"),
	}
}

// RoundTrip implements http.RoundTripper.
func (g *Gateway) RoundTrip(req *http.Request) (*http.Response, error) {
	token, authed := g.manager.Token()
	resp, err := g.base.RoundTrip(stampToken(req, token, authed))
	if err != nil {
		return resp, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	// Never retry the token endpoints, unauthenticated requests, or
	// requests whose body cannot be re-issued.
	if !authed || isTokenPath(req.URL.Path) {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}
	discard(resp)

	if rerr := g.manager.Refresh(req.Context()); rerr != nil {
		g.logger.Error("refresh after 401 failed, clearing session", "err", rerr)
		if lerr := g.manager.Logout(); lerr != nil {
			g.logger.Error("logout after failed refresh", "err", lerr)
		}
		return nil, fmt.Errorf("%w: %v", ErrLoginRequired, rerr)
	}
	fresh, ok := g.manager.Token()
	if !ok {
		return nil, ErrLoginRequired
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, berr := req.GetBody()
		if berr != nil {
			return nil, berr
		}
		retry.Body = body
	}
	g.logger.Info("retrying request with refreshed token", "path", req.URL.Path)
	return g.base.RoundTrip(stampToken(retry, fresh, true))
}

func stampToken(req *http.Request, token string, authed bool) *http.Request {
	out := req.Clone(req.Context())
	if authed {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	return out
}

func isTokenPath(path string) bool {
	return strings.HasSuffix(path, "/tokens")
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
