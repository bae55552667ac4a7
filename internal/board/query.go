package board

import (
	"fmt"
	"strings"
)

// Filter is the tri-state category selector.
type Filter int

// Category filters.
const (
	FilterAll Filter = iota
	FilterLost
	FilterFound
)

func (f Filter) String() string {
	switch f {
	case FilterLost:
		return "lost"
	case FilterFound:
		return "found"
	default:
		return "all"
	}
}

// Next cycles all → lost → found → all.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterLost
	case FilterLost:
		return FilterFound
	default:
		return FilterAll
	}
}

// ParseFilter parses "all", "lost" or "found". Empty text is FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "lost":
		return FilterLost, nil
	case "found":
		return FilterFound, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q (want all, lost or found)", s)
}

// ResolveFilter turns a chip selection into a filter. An empty selection
// resolves to FilterAll so the selector can never end up unselectable.
func ResolveFilter(selected []Filter) Filter {
	if len(selected) == 0 {
		return FilterAll
	}
	switch f := selected[0]; f {
	case FilterLost, FilterFound:
		return f
	default:
		return FilterAll
	}
}

func (f Filter) match(it Item) bool {
	switch f {
	case FilterLost:
		return it.Lost()
	case FilterFound:
		return it.Found()
	default:
		return true
	}
}

// Query describes one projection of the item collection.
type Query struct {
	// Text is matched case-insensitively against title, description and
	// contact. It is trimmed; blank text means no search.
	Text   string
	Filter Filter
	// Status, when set, keeps only items with that moderation status.
	Status string
	// Limit caps the result length. Zero or less means no cap.
	Limit int
}

// Apply derives the visible items from items, which must already be in board
// order. It has no side effects and does not retain items.
func Apply(items []Item, q Query) []Item {
	needle := strings.ToLower(strings.TrimSpace(q.Text))

	result := make([]Item, 0, min(len(items), capHint(q.Limit)))
	for _, it := range items {
		if q.Limit > 0 && len(result) >= q.Limit {
			break
		}
		if !q.Filter.match(it) {
			continue
		}
		if q.Status != "" && !strings.EqualFold(it.Status, q.Status) {
			continue
		}
		if needle != "" && !matchText(it, needle) {
			continue
		}
		result = append(result, it)
	}
	return result
}

// matchText reports whether any searchable field contains needle, which
// must already be lower-cased.
func matchText(it Item, needle string) bool {
	return strings.Contains(strings.ToLower(it.Title), needle) ||
		strings.Contains(strings.ToLower(it.Description), needle) ||
		strings.Contains(strings.ToLower(it.Contact), needle)
}

func capHint(limit int) int {
	if limit <= 0 {
		return 64
	}
	return limit
}
