package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pkt.systems/proxyman"
	"pkt.systems/proxyman/internal/perm"
	"pkt.systems/prettyx"
)

// NewHostsCommand builds the proxy-hosts management command.
func NewHostsCommand(loader *proxyman.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hosts",
		Short: "Manage proxy hosts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List proxy hosts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := guardedClient(cmd, loader, perm.ResourceProxyHosts, perm.LevelView)
			if err != nil {
				return err
			}
			hosts, err := client.ListProxyHosts(cmd.Context())
			if err != nil {
				return err
			}
			data, err := json.Marshal(hosts)
			if err != nil {
				return err
			}
			return prettyx.PrettyTo(cmd.OutOrStdout(), data, prettyx.DefaultOptions)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one proxy host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid host id %q", args[0])
			}
			client, _, err := guardedClient(cmd, loader, perm.ResourceProxyHosts, perm.LevelView)
			if err != nil {
				return err
			}
			host, err := client.GetProxyHost(cmd.Context(), id)
			if err != nil {
				return err
			}
			data, err := json.Marshal(host)
			if err != nil {
				return err
			}
			return prettyx.PrettyTo(cmd.OutOrStdout(), data, prettyx.DefaultOptions)
		},
	}

	enableCmd := &cobra.Command{
		Use:   "enable <id>",
		Short: "Enable a proxy host",
		Args:  cobra.ExactArgs(1),
		RunE:  setHostEnabled(loader, true),
	}
	disableCmd := &cobra.Command{
		Use:   "disable <id>",
		Short: "Disable a proxy host",
		Args:  cobra.ExactArgs(1),
		RunE:  setHostEnabled(loader, false),
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(showCmd)
	cmd.AddCommand(enableCmd)
	cmd.AddCommand(disableCmd)

	return cmd
}

func setHostEnabled(loader *proxyman.Loader, enabled bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid host id %q", args[0])
		}
		client, _, err := guardedClient(cmd, loader, perm.ResourceProxyHosts, perm.LevelManage)
		if err != nil {
			return err
		}
		if err := client.SetProxyHostEnabled(cmd.Context(), id, enabled); err != nil {
			return err
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Proxy host %d %s\n", id, state)
		return nil
	}
}

// guardedClient resolves the session, applies the permission guard for the
// invoked command, and returns a gateway-backed client.
func guardedClient(cmd *cobra.Command, loader *proxyman.Loader, r perm.Resource, level perm.Level) (*proxyman.Client, proxyman.Identity, error) {
	cfg, err := loader.Load()
	if err != nil {
		return nil, proxyman.Identity{}, err
	}
	logger, closer, err := openClientLogger(cfg.Client.LogFile)
	if err != nil {
		return nil, proxyman.Identity{}, err
	}
	cobra.OnFinalize(func() {
		_ = closer.Close()
	})
	mgr, user, err := resolveSession(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, proxyman.Identity{}, err
	}
	guard := proxyman.Guard{Manager: mgr}
	if err := guard.RequirePermission(cmd.CommandPath(), r, level); err != nil {
		return nil, proxyman.Identity{}, err
	}
	client, err := proxyman.NewClient(cfg.Client.Endpoint, mgr, logger)
	if err != nil {
		return nil, proxyman.Identity{}, err
	}
	return client, user, nil
}
