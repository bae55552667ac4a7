package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/erazemk/najdeno/internal/client"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Long: `Sign in and store the session token in the config file.

The password is read from the terminal, or from stdin when it is not a terminal.

Examples:
  board login -u alice
  echo "$PASSWORD" | board login -u alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			in := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				username, err = prompt(cmd, in, "Username: ")
				if err != nil {
					return err
				}
			}
			password, err := readPassword(cmd, in, "Password: ")
			if err != nil {
				return err
			}

			s, err := e.client.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := e.saveSession(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", s.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")

	return cmd
}

// NewRegisterCommand creates the register command
func NewRegisterCommand() *cobra.Command {
	var reg client.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Long: `Create an account and sign in as it.

Examples:
  board register -u alice --email alice@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			in := bufio.NewReader(cmd.InOrStdin())
			if reg.Username == "" {
				reg.Username, err = prompt(cmd, in, "Username: ")
				if err != nil {
					return err
				}
			}
			reg.Password, err = readPassword(cmd, in, "Password: ")
			if err != nil {
				return err
			}

			s, err := e.client.Register(cmd.Context(), reg)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			if err := e.saveSession(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s\n", s.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "account username")
	cmd.Flags().StringVar(&reg.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&reg.Phone, "phone", "", "contact phone")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if !e.client.Session().SignedIn() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			if err := e.client.Logout(cmd.Context()); err != nil {
				// The token is dropped locally either way.
				e.log.Warn("server logout failed", "error", err)
			}
			e.cfg.SetSession("", 0, "", "")
			if err := e.cfg.Save(e.path); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(strings.TrimSuffix(label, ": ")))
	}
	return line, nil
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), label)
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		if len(pw) == 0 {
			return "", fmt.Errorf("password is required")
		}
		return string(pw), nil
	}
	return prompt(cmd, in, label)
}
