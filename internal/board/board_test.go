package board

import (
	"fmt"
	"time"
)

var testBase = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }

// makeItems returns n items with distinct timestamps, oldest first, so that
// board order is the reverse of the returned order.
func makeItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{
			ID:        ItemID(fmt.Sprint(i + 1)),
			Title:     fmt.Sprintf("Item %d", i+1),
			IsLost:    boolPtr(i%2 == 0),
			CreatedAt: testBase.Add(time.Duration(i) * time.Minute).Format(TimestampLayout),
		}
	}
	return items
}

func ids(items []Item) []ItemID {
	out := make([]ItemID, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
