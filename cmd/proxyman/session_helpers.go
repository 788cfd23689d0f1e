package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"pkt.systems/proxyman"
	"pkt.systems/pslog"
)

func buildManager(cfg proxyman.Config, logger pslog.Logger) *proxyman.SessionManager {
	return proxyman.NewSessionManager(proxyman.SessionOptions{
		API:           proxyman.AuthClient{Endpoint: cfg.Client.Endpoint},
		Store:         proxyman.NewSessionStore(cfg.Session.Dir),
		WarningWindow: cfg.Session.WarningWindow,
		RefreshSkew:   cfg.Session.RefreshSkew,
		OnExpiryWarning: func(expires time.Time) {
			fmt.Fprintf(os.Stderr, "session expires at %s; run `proxyman refresh` to extend it\n",
				expires.Format(time.RFC3339))
		},
		Logger: logger,
	})
}

// resolveSession restores the persisted session and confirms the identity
// with the server before any guarded command runs.
func resolveSession(ctx context.Context, cfg proxyman.Config, logger pslog.Logger) (*proxyman.SessionManager, proxyman.Identity, error) {
	mgr := buildManager(cfg, logger)
	if !mgr.IsAuthenticated() {
		return nil, proxyman.Identity{}, fmt.Errorf("not logged in; run `proxyman login -e %s`", cfg.Client.Endpoint)
	}
	user, err := mgr.LoadUser(ctx)
	if err != nil {
		return nil, proxyman.Identity{}, fmt.Errorf("%s; run `proxyman login -e %s`", err.Error(), cfg.Client.Endpoint)
	}
	return mgr, user, nil
}
