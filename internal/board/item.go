package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Wire timestamp layouts accepted for createdAt. time.Parse also accepts a
// fractional second field directly after the seconds, so the first layout
// covers "2006-01-02T15:04:05.000" as well.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// TimestampLayout is the layout the board API emits for createdAt.
const TimestampLayout = "2006-01-02T15:04:05"

// ItemID is a server-assigned identifier. The API may send it as a JSON
// number or a JSON string; both decode to the same textual form.
type ItemID string

// UnmarshalJSON accepts numbers and strings.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding item id: %w", err)
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// MarshalJSON emits identifiers in canonical integer form as numbers and
// everything else, including "007" or "+5", as strings.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Int64 returns the identifier as an integer, if it is one.
func (id ItemID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

// Item is a single lost or found report as delivered by the fetch
// collaborator. Items are treated as immutable once fetched.
type Item struct {
	ID          ItemID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsLost      *bool  `json:"isLost"`
	ImagePath   string `json:"imagePath,omitempty"`
	Contact     string `json:"contact,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	OwnerID     *int64 `json:"userId,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Created parses CreatedAt. ok is false when the timestamp is absent or
// malformed; such items sort last and display a placeholder date.
func (it Item) Created() (t time.Time, ok bool) {
	return ParseTimestamp(it.CreatedAt)
}

// Lost reports whether the item is a lost report. Items without a flag are
// neither lost nor found.
func (it Item) Lost() bool {
	return it.IsLost != nil && *it.IsLost
}

// Found reports whether the item is a found report.
func (it Item) Found() bool {
	return it.IsLost != nil && !*it.IsLost
}

// OwnedBy reports whether the item was posted by the given user.
func (it Item) OwnedBy(userID int64) bool {
	return it.OwnerID != nil && *it.OwnerID == userID
}

// ParseTimestamp parses a createdAt value in one of the wire layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
