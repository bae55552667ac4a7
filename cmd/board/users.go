package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewUsersCommand creates the users command
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List accounts (admin)",
		Long: `List accounts on the board. Requires an admin account.

Examples:
  board users
  board users rm 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			users, err := e.client.ListUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing users: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tEMAIL\tPHONE")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, u.Email, u.Phone)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an account (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.client.DeleteUser(cmd.Context(), id); err != nil {
				return fmt.Errorf("deleting user %d: %w", id, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %d\n", id)
			return nil
		},
	})

	return cmd
}
