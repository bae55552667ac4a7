package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
)

// NewWhoamiCommand creates the whoami command
func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if !e.client.Session().SignedIn() {
				return fmt.Errorf("not signed in, run 'board login' first")
			}
			me, err := e.client.Me(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading profile: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", me.Username, me.Role)
			if me.Email != "" {
				fmt.Fprintf(out, "email: %s\n", me.Email)
			}
			if me.Phone != "" {
				fmt.Fprintf(out, "phone: %s\n", me.Phone)
			}
			fmt.Fprintf(out, "server: %s\n", e.cfg.Server)
			return nil
		},
	}
}

// NewPasswdCommand creates the passwd command
func NewPasswdCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		Long: `Change your password. Both passwords are read from the terminal, or one
per line from stdin when it is not a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			in := bufio.NewReader(cmd.InOrStdin())
			current, err := readPassword(cmd, in, "Current password: ")
			if err != nil {
				return err
			}
			next, err := readPassword(cmd, in, "New password: ")
			if err != nil {
				return err
			}

			if err := e.client.ChangePassword(cmd.Context(), current, next); err != nil {
				return fmt.Errorf("changing password: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
			return nil
		},
	}
}
