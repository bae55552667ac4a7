package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/board"
	"github.com/erazemk/najdeno/internal/client"
	"github.com/erazemk/najdeno/internal/imaging"
)

// NewPostCommand creates the post command
func NewPostCommand() *cobra.Command {
	var (
		draft client.PostDraft
		found bool
		image string
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish a lost or found post",
		Long: `Publish a lost or found post. Posts are "lost" unless --found is given.

Images are shrunk and re-encoded as JPEG before upload.

Examples:
  board post --title "Blue wallet" --contact alice@example.com
  board post --found --title "Keys" --image keys.png`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(draft.Title) == "" {
				return fmt.Errorf("--title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			draft.IsLost = !found
			if image != "" {
				photo, err := loadImage(image)
				if err != nil {
					return err
				}
				e.log.Debug("image normalized", "path", image, "width", photo.Width, "height", photo.Height, "bytes", len(photo.Data))
				draft.Image = bytes.NewReader(photo.Data)
				draft.ImageName = strings.TrimSuffix(filepath.Base(image), filepath.Ext(image)) + ".jpg"
			}

			it, err := e.client.CreatePost(cmd.Context(), draft)
			if err != nil {
				return fmt.Errorf("creating post: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Posted %s #%s: %s\n", kind(*it), it.ID, it.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&draft.Title, "title", "t", "", "post title (required)")
	cmd.Flags().StringVarP(&draft.Description, "description", "d", "", "longer description")
	cmd.Flags().StringVarP(&draft.Contact, "contact", "c", "", "how to reach you")
	cmd.Flags().BoolVar(&found, "found", false, "report a found item instead of a lost one")
	cmd.Flags().StringVarP(&image, "image", "i", "", "photo to attach")

	return cmd
}

func loadImage(path string) (*imaging.Photo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	photo, err := imaging.Normalize(f, imaging.Options{})
	if err != nil {
		return nil, fmt.Errorf("processing image %s: %w", path, err)
	}
	return photo, nil
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your posts",
		Long: `Delete one of your posts. Administrators may delete any post.

Examples:
  board delete 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.client.DeletePost(cmd.Context(), id); err != nil {
				return fmt.Errorf("deleting post %s: %w", id, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted post %s\n", id)
			return nil
		},
	}
}

// draftFrom copies the editable fields of an existing post.
func draftFrom(it board.Item) client.PostDraft {
	return client.PostDraft{
		Title:       it.Title,
		Description: it.Description,
		IsLost:      it.Lost(),
		Contact:     it.Contact,
	}
}

// parseID accepts the numeric post ids the server assigns.
func parseID(arg string) (board.ItemID, error) {
	id := board.ItemID(strings.TrimSpace(arg))
	if _, ok := id.Int64(); !ok {
		return "", fmt.Errorf("invalid post id %q", arg)
	}
	return id, nil
}

// NewEditCommand creates the edit command
func NewEditCommand() *cobra.Command {
	var (
		draft client.PostDraft
		lost  bool
		found bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change one of your posts",
		Long: `Change one of your posts. Only the fields given as flags are changed.

Examples:
  # The wallet turned up
  board edit 42 --found

  board edit 42 --title "Blue leather wallet" --contact 555-0100`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if lost && found {
				return fmt.Errorf("--lost and --found are mutually exclusive")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			current, err := e.client.GetPost(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("loading post %s: %w", id, err)
			}

			next := draftFrom(*current)
			flags := cmd.Flags()
			if flags.Changed("title") {
				next.Title = draft.Title
			}
			if flags.Changed("description") {
				next.Description = draft.Description
			}
			if flags.Changed("contact") {
				next.Contact = draft.Contact
			}
			switch {
			case lost:
				next.IsLost = true
			case found:
				next.IsLost = false
			}
			if strings.TrimSpace(next.Title) == "" {
				return fmt.Errorf("title must not be empty")
			}

			it, err := e.client.UpdatePost(cmd.Context(), id, next)
			if err != nil {
				return fmt.Errorf("updating post %s: %w", id, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s #%s: %s\n", kind(*it), it.ID, it.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&draft.Title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&draft.Description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&draft.Contact, "contact", "c", "", "new contact")
	cmd.Flags().BoolVar(&lost, "lost", false, "mark as lost")
	cmd.Flags().BoolVar(&found, "found", false, "mark as found")

	return cmd
}

// NewModerateCommand creates the moderate command
func NewModerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "moderate <id> <status>",
		Short: "Set a post's moderation status (admin)",
		Long: `Set a post's moderation status. Requires an admin account.

Statuses: active, reported, resolved

Examples:
  board moderate 42 reported
  board list --status reported`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"active", "reported", "resolved"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status := strings.ToLower(strings.TrimSpace(args[1]))

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.client.SetPostStatus(cmd.Context(), id, status); err != nil {
				return fmt.Errorf("setting status of post %s: %w", id, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Post %s is now %s\n", id, status)
			return nil
		},
	}
}
