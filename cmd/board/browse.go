package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/board"
	"github.com/erazemk/najdeno/internal/client"
	"github.com/erazemk/najdeno/internal/tui"
)

// NewBrowseCommand creates the browse command
func NewBrowseCommand() *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive board browser",
		Long: `Open the interactive board browser.

Examples:
  # Browse every post
  board browse

  # Browse only your own posts
  board browse --mine`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, mine)
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "show only your own posts")

	return cmd
}

func runBrowse(cmd *cobra.Command, mine bool) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if !e.client.Session().SignedIn() {
		return fmt.Errorf("not signed in, run 'board login' first")
	}

	opts := e.cfg.BoardOptions()
	opts.Logger = e.log
	coord := board.NewCoordinator(opts)

	app := tui.NewApp(tui.AppParams{
		Coordinator:   coord,
		Fetch:         fetcher(e.client, mine),
		Delete:        e.client.DeletePost,
		Update:        updater(e.client),
		UserID:        e.cfg.UserID,
		LoadMoreDelay: e.cfg.LoadMoreDelay,
		ImageURL:      e.client.ImageURL,
		Context:       cmd.Context(),
	})

	return runProgram(app)
}

func fetcher(c *client.Client, mine bool) tui.FetchFunc {
	if mine {
		return c.MyPosts
	}
	return c.ListPosts
}

func updater(c *client.Client) tui.UpdateFunc {
	return func(ctx context.Context, it board.Item) error {
		_, err := c.UpdatePost(ctx, it.ID, draftFrom(it))
		return err
	}
}
