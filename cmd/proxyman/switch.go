package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pkt.systems/proxyman"
	"pkt.systems/proxyman/internal/perm"
)

// NewSwitchCommand builds the account-switch (impersonation) command.
func NewSwitchCommand(loader *proxyman.Loader) *cobra.Command {
	var back bool

	cmd := &cobra.Command{
		Use:   "switch [user-id]",
		Short: "Switch into another account, or back with --back",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			mgr, user, err := resolveSession(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			if back {
				if err := mgr.PopFromStack(); err != nil {
					return err
				}
				restored, _ := mgr.Identity()
				fmt.Fprintf(cmd.OutOrStdout(), "Switched back to %s\n", restored.Email)
				return nil
			}

			if len(args) != 1 {
				return fmt.Errorf("user id is required (or --back)")
			}
			targetID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			guard := proxyman.Guard{Manager: mgr}
			if err := guard.RequirePermission("switch", perm.ResourceUsers, perm.LevelManage); err != nil {
				return err
			}
			if !user.IsAdmin() {
				return fmt.Errorf("%w: account switching is admin only", proxyman.ErrForbidden)
			}

			client, err := proxyman.NewClient(cfg.Client.Endpoint, mgr, logger)
			if err != nil {
				return err
			}
			grant, err := client.UserLoginToken(cmd.Context(), targetID)
			if err != nil {
				return err
			}
			switched, err := mgr.Impersonate(cmd.Context(), grant.Token)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Now acting as %s (switch --back to return)\n", switched.Email)
			return nil
		},
	}

	cmd.Flags().BoolVar(&back, "back", false, "restore the previously suspended session")

	return cmd
}
