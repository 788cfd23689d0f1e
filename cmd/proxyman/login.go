package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/proxyman"
	"pkt.systems/pslog"
)

// defaultAdminEmail is the backend's factory account; logging in with it
// warrants a password-change reminder.
const defaultAdminEmail = "admin@example.com"

// NewLoginCommand builds the login command.
func NewLoginCommand(loader *proxyman.Loader) *cobra.Command {
	var endpoint string

	v := loader.Viper()
	v.SetDefault("client.endpoint", proxyman.DefaultClientEndpoint)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session locally",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loader.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("endpoint") {
				cfg.Client.Endpoint = endpoint
			}
			if cfg.Client.Endpoint == "" {
				return fmt.Errorf("endpoint is required")
			}
			logger, closer, err := openClientLogger(cfg.Client.LogFile)
			if err != nil {
				return err
			}
			defer func() {
				_ = closer.Close()
			}()
			ctx := pslog.ContextWithLogger(cmd.Context(), logger.With("component", "login"))

			reader := bufio.NewReader(os.Stdin)
			fmt.Fprint(os.Stdout, "Email: ")
			identity, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			identity = strings.TrimSpace(identity)
			if identity == "" {
				return fmt.Errorf("email is required")
			}

			fmt.Fprint(os.Stdout, "Password: ")
			secretBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stdout)
			if err != nil {
				return err
			}

			mgr := buildManager(cfg, logger)
			user, err := mgr.Login(ctx, identity, string(secretBytes))
			if err != nil {
				return err
			}
			pslog.Ctx(ctx).Info("login succeeded", "user", user.Email)
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Email)
			if user.Email == defaultAdminEmail {
				fmt.Fprintln(cmd.OutOrStdout(), "You are using the default administrator account; change its password with `proxyman users passwd`.")
			}
			if expires, ok := mgr.UnverifiedExpiry(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Session valid until %s\n", expires.Local())
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&endpoint, "endpoint", "e", proxyman.DefaultClientEndpoint, "backend API endpoint")

	return cmd
}
