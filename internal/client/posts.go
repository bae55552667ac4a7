package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/najdeno/internal/board"
)

// PostDraft holds the fields of a post to create or update.
// Image is optional and only used by CreatePost.
type PostDraft struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsLost      bool   `json:"isLost"`
	Contact     string `json:"contact,omitempty"`

	Image     io.Reader `json:"-"`
	ImageName string    `json:"-"`
}

func (c *Client) list(ctx context.Context, path string, query url.Values) ([]board.Item, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var items []board.Item
	if err := c.do(ctx, http.MethodGet, path, query, "", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListPosts fetches every post on the board.
func (c *Client) ListPosts(ctx context.Context) ([]board.Item, error) {
	return c.list(ctx, "/api/posts", nil)
}

// ListPostsByStatus fetches posts with the given moderation status.
func (c *Client) ListPostsByStatus(ctx context.Context, status string) ([]board.Item, error) {
	return c.list(ctx, "/api/posts", url.Values{"status": {status}})
}

// SearchPosts runs a server-side search. A nil isLost searches both kinds.
func (c *Client) SearchPosts(ctx context.Context, q string, isLost *bool) ([]board.Item, error) {
	query := url.Values{"q": {q}}
	if isLost != nil {
		query.Set("isLost", strconv.FormatBool(*isLost))
	}
	return c.list(ctx, "/api/posts/search", query)
}

// MyPosts fetches the signed-in user's posts.
func (c *Client) MyPosts(ctx context.Context) ([]board.Item, error) {
	return c.list(ctx, "/api/posts/user/me", nil)
}

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, id board.ItemID) (*board.Item, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var it board.Item
	if err := c.doJSON(ctx, http.MethodGet, postPath(id), nil, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// CreatePost publishes a new post. Drafts with an image are sent as
// multipart/form-data, others as JSON.
func (c *Client) CreatePost(ctx context.Context, d PostDraft) (*board.Item, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	var it board.Item
	if d.Image == nil {
		if err := c.doJSON(ctx, http.MethodPost, "/api/posts", d, &it); err != nil {
			return nil, err
		}
		return &it, nil
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := []struct{ k, v string }{
		{"title", d.Title},
		{"description", d.Description},
		{"isLost", strconv.FormatBool(d.IsLost)},
		{"contact", d.Contact},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.k, f.v); err != nil {
			return nil, fmt.Errorf("writing %s field: %w", f.k, err)
		}
	}
	name := d.ImageName
	if name == "" {
		name = "image.jpg"
	}
	part, err := mw.CreateFormFile("image", name)
	if err != nil {
		return nil, fmt.Errorf("creating image part: %w", err)
	}
	if _, err := io.Copy(part, d.Image); err != nil {
		return nil, fmt.Errorf("copying image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	if err := c.do(ctx, http.MethodPost, "/api/posts", nil, mw.FormDataContentType(), &body, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdatePost replaces a post's text fields.
func (c *Client) UpdatePost(ctx context.Context, id board.ItemID, d PostDraft) (*board.Item, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var it board.Item
	if err := c.doJSON(ctx, http.MethodPut, postPath(id), d, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id board.ItemID) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, postPath(id), nil, nil)
}

// SetPostStatus changes a post's moderation status. Admin only.
func (c *Client) SetPostStatus(ctx context.Context, id board.ItemID, status string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPut, postPath(id)+"/status", map[string]string{"status": status}, nil)
}

func postPath(id board.ItemID) string {
	return "/api/posts/" + url.PathEscape(string(id))
}
