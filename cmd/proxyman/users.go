package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/proxyman"
	"pkt.systems/proxyman/internal/perm"
	"pkt.systems/prettyx"
)

// NewUsersCommand builds the users management command.
func NewUsersCommand(loader *proxyman.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := guardedClient(cmd, loader, perm.ResourceUsers, perm.LevelManage)
			if err != nil {
				return err
			}
			users, err := client.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			data, err := json.Marshal(users)
			if err != nil {
				return err
			}
			return prettyx.PrettyTo(cmd.OutOrStdout(), data, prettyx.DefaultOptions)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one account with its permission map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			client, _, err := guardedClient(cmd, loader, perm.ResourceUsers, perm.LevelManage)
			if err != nil {
				return err
			}
			user, err := client.GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			data, err := json.Marshal(user)
			if err != nil {
				return err
			}
			return prettyx.PrettyTo(cmd.OutOrStdout(), data, prettyx.DefaultOptions)
		},
	}

	passwdCmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the active account's password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, user, err := guardedClient(cmd, loader, perm.ResourceUsers, perm.LevelView)
			if err != nil {
				return err
			}
			current, err := promptPassword("Current password: ")
			if err != nil {
				return err
			}
			next, err := promptPassword("New password: ")
			if err != nil {
				return err
			}
			if next == "" {
				return fmt.Errorf("new password is required")
			}
			if err := client.ChangePassword(cmd.Context(), user.ID, current, next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
			return nil
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(showCmd)
	cmd.AddCommand(passwdCmd)

	return cmd
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stdout, prompt)
	value, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stdout)
	if err != nil {
		return "", err
	}
	return string(value), nil
}
