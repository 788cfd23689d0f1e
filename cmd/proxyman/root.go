package main

import (
	"github.com/spf13/cobra"

	"pkt.systems/proxyman"
)

// NewRootCommand builds the root CLI command.
func NewRootCommand(loader *proxyman.Loader) *cobra.Command {
	var configFile string

	v := loader.Viper()
	v.SetDefault("client.endpoint", proxyman.DefaultClientEndpoint)
	v.SetDefault("client.log_file", proxyman.DefaultLogPath())
	v.SetDefault("session.dir", proxyman.DefaultSessionDir())
	v.SetDefault("session.warning_window", proxyman.DefaultWarningWindow)
	v.SetDefault("session.refresh_skew", proxyman.DefaultRefreshSkew)

	cmd := &cobra.Command{
		Use:   "proxyman",
		Short: "Administrative console for the proxy management backend",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if configFile != "" {
				loader.SetConfigFile(configFile)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewLoginCommand(loader))
	cmd.AddCommand(NewLogoutCommand(loader))
	cmd.AddCommand(NewRefreshCommand(loader))
	cmd.AddCommand(NewWhoamiCommand(loader))
	cmd.AddCommand(NewSwitchCommand(loader))
	cmd.AddCommand(NewHostsCommand(loader))
	cmd.AddCommand(NewUsersCommand(loader))
	cmd.AddCommand(NewConfigCommand(loader))

	return cmd
}
