package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/proxyman"
	"pkt.systems/proxyman/internal/perm"
	"pkt.systems/prettyx"
)

type whoamiOutput struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Roles       []string          `json:"roles"`
	Visibility  string            `json:"visibility,omitempty"`
	Permissions map[string]string `json:"permissions"`
	Suspended   int               `json:"suspended_sessions,omitempty"`
}

// NewWhoamiCommand builds the whoami command.
func NewWhoamiCommand(loader *proxyman.Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active identity and its effective permissions",
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
			mgr, user, err := resolveSession(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			out := whoamiOutput{
				ID:          user.ID,
				Name:        user.Name,
				Email:       user.Email,
				Roles:       user.Roles,
				Visibility:  user.Visibility,
				Permissions: make(map[string]string, len(perm.Resources())),
				Suspended:   mgr.StackDepth(),
			}
			// Effective levels, admin override included.
			for _, r := range perm.Resources() {
				level := user.LevelFor(r)
				if user.IsAdmin() {
					level = perm.LevelManage
				}
				out.Permissions[string(r)] = level.String()
			}
			data, err := json.Marshal(out)
			if err != nil {
				return err
			}
			if err := prettyx.PrettyTo(cmd.OutOrStdout(), data, prettyx.DefaultOptions); err != nil {
				return err
			}
			if mgr.ExpiryImminent() {
				fmt.Fprintln(cmd.OutOrStdout(), "Session expiry is imminent; run `proxyman refresh`.")
			}
			return nil
		},
	}
}
