package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/proxyman"
)

// NewLogoutCommand builds the logout command.
func NewLogoutCommand(loader *proxyman.Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session and suspended sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loader.Load()
			if err != nil {
				return err
			}
			logger, closer, err := openClientLogger(cfg.Client.LogFile)
			if err != nil {
				return err
			}
			defer func() {
				_ = closer.Close()
			}()
			mgr := buildManager(cfg, logger)
			if err := mgr.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

// NewRefreshCommand builds the manual refresh command, the counterpart of
// the expiry-imminent warning.
func NewRefreshCommand(loader *proxyman.Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Manually refresh the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loader.Load()
			if err != nil {
				return err
			}
			logger, closer, err := openClientLogger(cfg.Client.LogFile)
			if err != nil {
				return err
			}
			defer func() {
				_ = closer.Close()
			}()
			mgr := buildManager(cfg, logger)
			if !mgr.IsAuthenticated() {
				return fmt.Errorf("not logged in; run `proxyman login -e %s`", cfg.Client.Endpoint)
			}
			if err := mgr.Refresh(cmd.Context()); err != nil {
				return err
			}
			if expires, ok := mgr.UnverifiedExpiry(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Session extended until %s\n", expires.Local())
			}
			return nil
		},
	}
}
