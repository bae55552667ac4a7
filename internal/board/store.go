package board

import (
	"slices"
	"time"
)

// ItemStore holds the authoritative item collection, newest first.
//
// Ordering: items with a parseable createdAt sort strictly descending by it;
// items without one follow, keeping their fetch order. Ties keep fetch order.
type ItemStore struct {
	items []Item
}

// NewItemStore returns an empty store.
func NewItemStore() *ItemStore {
	return &ItemStore{}
}

// Replace discards the current contents and stores items in board order.
// A nil or empty slice empties the store.
func (s *ItemStore) Replace(items []Item) {
	s.items = sortNewestFirst(slices.Clone(items))
}

// Append merges items into the current contents and re-sorts. Identifiers
// are not deduplicated.
func (s *ItemStore) Append(items []Item) {
	merged := make([]Item, 0, len(s.items)+len(items))
	merged = append(merged, s.items...)
	merged = append(merged, items...)
	s.items = sortNewestFirst(merged)
}

// Size returns the number of stored items.
func (s *ItemStore) Size() int {
	return len(s.items)
}

// All returns a copy of the stored items in board order.
func (s *ItemStore) All() []Item {
	return slices.Clone(s.items)
}

// Malformed counts items whose createdAt is missing or unparseable.
func (s *ItemStore) Malformed() int {
	n := 0
	for _, it := range s.items {
		if _, ok := it.Created(); !ok {
			n++
		}
	}
	return n
}

type sortKey struct {
	item Item
	at   time.Time
	ok   bool
}

func sortNewestFirst(items []Item) []Item {
	keys := make([]sortKey, len(items))
	for i, it := range items {
		at, ok := it.Created()
		keys[i] = sortKey{item: it, at: at, ok: ok}
	}

	slices.SortStableFunc(keys, func(a, b sortKey) int {
		switch {
		case a.ok && !b.ok:
			return -1
		case !a.ok && b.ok:
			return 1
		case !a.ok && !b.ok:
			return 0
		}
		return b.at.Compare(a.at)
	})

	for i := range keys {
		items[i] = keys[i].item
	}
	return items
}
