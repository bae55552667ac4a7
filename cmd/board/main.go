// Command board is the terminal client for the lost-and-found board.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/client"
	"github.com/erazemk/najdeno/internal/config"
)

var configPath string

// env is what every command needs: the loaded config and a client bound to
// the stored session.
type env struct {
	cfg    *config.Config
	path   string
	client *client.Client
	log    *slog.Logger
	close  func()
}

var rootCmd = &cobra.Command{
	Use:   "board",
	Short: "Browse and post to the lost-and-found board",
	Long: `Board is a terminal client for a community lost-and-found board.

Run without a subcommand to open the interactive browser.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd, false)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/najdeno/config.yaml)")

	rootCmd.AddCommand(NewBrowseCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewRegisterCommand())
	rootCmd.AddCommand(NewLogoutCommand())
	rootCmd.AddCommand(NewWhoamiCommand())
	rootCmd.AddCommand(NewPasswdCommand())
	rootCmd.AddCommand(NewSearchCommand())
	rootCmd.AddCommand(NewPostCommand())
	rootCmd.AddCommand(NewEditCommand())
	rootCmd.AddCommand(NewModerateCommand())
	rootCmd.AddCommand(NewDeleteCommand())
	rootCmd.AddCommand(NewUsersCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadEnv reads the config and builds a client from it.
func loadEnv() (*env, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := setupLogger(cfg.LogFile)
	if err != nil {
		return nil, err
	}

	c, err := client.New(cfg.Server, &client.Session{
		Token:    cfg.Token,
		UserID:   cfg.UserID,
		Username: cfg.Username,
		Role:     cfg.Role,
	}, client.WithLogger(logger))
	if err != nil {
		closeLog()
		return nil, err
	}

	return &env{cfg: cfg, path: path, client: c, log: logger, close: closeLog}, nil
}

// setupLogger logs to path when set. The terminal belongs to the UI, so
// without a log file everything is discarded.
func setupLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

// saveSession writes the client's current session back to the config file.
func (e *env) saveSession() error {
	s := e.client.Session()
	e.cfg.SetSession(s.Token, s.UserID, s.Username, s.Role)
	return e.cfg.Save(e.path)
}

func runProgram(m tea.Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
