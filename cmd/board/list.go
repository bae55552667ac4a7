package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/board"
)

type listOptions struct {
	filter string
	query  string
	status string
	limit  int
	all    bool
	mine   bool
	asJSON bool
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print posts from the board",
		Long: `Print posts from the board, newest first.

Without --all only the first page is printed.

Examples:
  # First page of everything
  board list

  # Lost wallets
  board list --filter lost --query wallet

  # Every found post as JSON
  board list --filter found --all --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := board.ParseFilter(opts.filter)
			if err != nil {
				return err
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			bopts := e.cfg.BoardOptions()
			bopts.Logger = e.log
			if opts.limit > 0 {
				bopts.PageSize = opts.limit
			}
			coord := board.NewCoordinator(bopts)

			fetch := fetcher(e.client, opts.mine)
			t := coord.BeginFetch(true)
			items, err := fetch(cmd.Context())
			coord.Deliver(t, items, err)
			if err != nil {
				return err
			}

			coord.OnQueryChanged(opts.query)
			coord.OnFilterChanged(filter)
			coord.OnStatusChanged(opts.status)
			snap := loadAll(coord, opts.all)

			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap.Items)
			}
			return printItems(cmd.OutOrStdout(), snap, time.Now())
		},
	}

	cmd.Flags().StringVarP(&opts.filter, "filter", "f", "all", "category: all, lost or found")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "search title, description and contact")
	cmd.Flags().StringVar(&opts.status, "status", "", "only posts with this moderation status")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "page size (default from config)")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "print every page")
	cmd.Flags().BoolVar(&opts.mine, "mine", false, "only your own posts")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON")

	return cmd
}

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	var (
		filter string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search posts on the server",
		Long: `Search posts on the server by title, description and contact.

Unlike list --query, the matching runs on the server.

Examples:
  board search wallet
  board search keys --filter found`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := board.ParseFilter(filter)
			if err != nil {
				return err
			}
			var isLost *bool
			if f != board.FilterAll {
				lost := f == board.FilterLost
				isLost = &lost
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			coord := board.NewCoordinator(board.Options{PageSize: e.cfg.PageSize, Lookahead: e.cfg.Lookahead, Logger: e.log})
			t := coord.BeginFetch(true)
			items, err := e.client.SearchPosts(cmd.Context(), args[0], isLost)
			coord.Deliver(t, items, err)
			if err != nil {
				return err
			}
			snap := loadAll(coord, true)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap.Items)
			}
			return printItems(cmd.OutOrStdout(), snap, time.Now())
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "category: all, lost or found")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

// loadAll pages through the coordinator until nothing is left when all is
// set, and returns the final snapshot.
func loadAll(coord *board.Coordinator, all bool) board.Snapshot {
	snap := coord.Snapshot()
	for all && snap.HasMore {
		coord.OnScrollNearEnd()
		coord.OnLoadMoreSettled()
		snap = coord.Snapshot()
	}
	return snap
}

func printItems(w io.Writer, snap board.Snapshot, now time.Time) error {
	if snap.IsEmpty {
		_, err := fmt.Fprintln(w, "No posts found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tTITLE\tCONTACT\tPOSTED")
	for _, it := range snap.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.ID, kind(it), it.Title, it.Contact, posted(it, now))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if snap.HasMore {
		_, err := fmt.Fprintf(w, "\nShowing first %d posts, use --all for more\n", len(snap.Items))
		return err
	}
	return nil
}

func kind(it board.Item) string {
	switch {
	case it.Lost():
		return "lost"
	case it.Found():
		return "found"
	default:
		return "?"
	}
}

func posted(it board.Item, now time.Time) string {
	t, ok := it.Created()
	if !ok {
		return "unknown"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
