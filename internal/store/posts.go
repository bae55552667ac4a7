package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/najdeno/internal/model"
)

// PostInput holds the editable fields of a post.
type PostInput struct {
	Title       string
	Description string
	Contact     string
	IsLost      bool
}

// PostFilter narrows ListPosts. Zero values mean "any".
type PostFilter struct {
	Query  string
	IsLost *bool
	UserID int64
	Status string
}

const postColumns = `id, title, COALESCE(description, ''), is_lost, COALESCE(contact, ''),
	image_mime IS NOT NULL, status, user_id, created_at, updated_at, deleted_at`

func scanPost(row interface{ Scan(...any) error }, p *model.Post) error {
	var hasImage bool
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.IsLost, &p.Contact,
		&hasImage, &p.Status, &p.UserID, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
		return err
	}
	if hasImage {
		p.ImagePath = ImagePath(p.ID)
	}
	return nil
}

// ImagePath is the API path serving a post's image.
func ImagePath(id int64) string {
	return fmt.Sprintf("/api/posts/%d/image", id)
}

// CreatePost creates a new active post owned by userID.
func CreatePost(ctx context.Context, db *sql.DB, userID int64, in PostInput) (*model.Post, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO posts (title, description, is_lost, contact, user_id) VALUES (?, ?, ?, ?, ?)`,
		in.Title, in.Description, in.IsLost, in.Contact, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting post id: %w", err)
	}

	return GetPost(ctx, db, id)
}

// GetPost returns a non-deleted post by ID, or nil if there is none.
func GetPost(ctx context.Context, db *sql.DB, id int64) (*model.Post, error) {
	p := &model.Post{}
	err := scanPost(db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ? AND deleted_at IS NULL`, id,
	), p)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting post: %w", err)
	}
	return p, nil
}

// ListPosts returns non-deleted posts matching f, newest first.
func ListPosts(ctx context.Context, db *sql.DB, f PostFilter) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE deleted_at IS NULL`
	var args []any

	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		query += ` AND (LOWER(title) LIKE ? ESCAPE '\'
			OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\'
			OR LOWER(COALESCE(contact, '')) LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern, pattern)
	}
	if f.IsLost != nil {
		query += ` AND is_lost = ?`
		args = append(args, *f.IsLost)
	}
	if f.UserID != 0 {
		query += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// UpdatePost replaces a post's editable fields.
func UpdatePost(ctx context.Context, db *sql.DB, id int64, in PostInput) error {
	_, err := db.ExecContext(ctx,
		`UPDATE posts SET title = ?, description = ?, is_lost = ?, contact = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		in.Title, in.Description, in.IsLost, in.Contact, id,
	)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	return nil
}

// SetPostStatus changes a post's moderation status.
func SetPostStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	if !model.ValidPostStatus(status) {
		return fmt.Errorf("invalid post status %q", status)
	}
	_, err := db.ExecContext(ctx,
		`UPDATE posts SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting post status: %w", err)
	}
	return nil
}

// DeletePost soft-deletes a post.
func DeletePost(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE posts SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return nil
}

// SetPostImage stores image data and its MIME type for a post.
func SetPostImage(ctx context.Context, db *sql.DB, id int64, data []byte, mimeType string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE posts SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		data, mimeType, id,
	)
	if err != nil {
		return fmt.Errorf("setting post image: %w", err)
	}
	return nil
}

// GetPostImage returns a post's image data and MIME type.
func GetPostImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var data []byte
	var mimeType sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM posts WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&data, &mimeType)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting post image: %w", err)
	}
	return data, mimeType.String, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
