package model

import (
	"encoding/json"
	"time"
)

// Post is a lost or found report.
type Post struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	IsLost      bool       `json:"isLost"`
	ImagePath   string     `json:"imagePath,omitempty"`
	Contact     string     `json:"contact,omitempty"`
	Status      string     `json:"status"`
	UserID      int64      `json:"userId"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
	DeletedAt   *time.Time `json:"-"`
}

// Post statuses.
const (
	PostStatusActive   = "active"
	PostStatusReported = "reported"
	PostStatusResolved = "resolved"
)

// TimestampLayout is the wire layout for post timestamps.
const TimestampLayout = "2006-01-02T15:04:05"

// ValidPostStatus reports whether status is a known post status.
func ValidPostStatus(status string) bool {
	switch status {
	case PostStatusActive, PostStatusReported, PostStatusResolved:
		return true
	}
	return false
}

// MarshalJSON emits createdAt in the wire layout.
func (p Post) MarshalJSON() ([]byte, error) {
	type plain Post
	return json.Marshal(struct {
		plain
		CreatedAt string `json:"createdAt"`
	}{
		plain:     plain(p),
		CreatedAt: p.CreatedAt.UTC().Format(TimestampLayout),
	})
}
