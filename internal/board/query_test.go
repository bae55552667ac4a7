package board

import (
	"slices"
	"testing"
)

func boardOrder(items []Item) []Item {
	s := NewItemStore()
	s.Replace(items)
	return s.All()
}

func TestApplyEmptyQueryAllIsPrefix(t *testing.T) {
	all := boardOrder(makeItems(40))

	for _, limit := range []int{1, 15, 30, 40, 100} {
		got := Apply(all, Query{Limit: limit})
		want := all[:min(limit, len(all))]
		if !slices.Equal(ids(got), ids(want)) {
			t.Errorf("limit %d: expected first %d items in order", limit, len(want))
		}
	}
}

func TestApplyCategoryFilter(t *testing.T) {
	all := boardOrder(makeItems(12))

	lost := Apply(all, Query{Filter: FilterLost})
	found := Apply(all, Query{Filter: FilterFound})

	if len(lost)+len(found) != len(all) {
		t.Fatalf("expected lost+found to cover all items, got %d+%d", len(lost), len(found))
	}
	for _, it := range lost {
		if !it.Lost() {
			t.Errorf("non-lost item %s in lost filter", it.ID)
		}
	}
	for _, it := range found {
		if !it.Found() {
			t.Errorf("non-found item %s in found filter", it.ID)
		}
	}

	var wantLost []ItemID
	for _, it := range all {
		if it.Lost() {
			wantLost = append(wantLost, it.ID)
		}
	}
	if !slices.Equal(ids(lost), wantLost) {
		t.Errorf("expected lost order %v, got %v", wantLost, ids(lost))
	}
}

func TestApplyUnflaggedOnlyUnderAll(t *testing.T) {
	all := []Item{{ID: "1", Title: "Mystery"}}

	if len(Apply(all, Query{Filter: FilterAll})) != 1 {
		t.Error("expected unflagged item under all")
	}
	if len(Apply(all, Query{Filter: FilterLost})) != 0 {
		t.Error("unflagged item must not appear under lost")
	}
	if len(Apply(all, Query{Filter: FilterFound})) != 0 {
		t.Error("unflagged item must not appear under found")
	}
}

func TestApplyWalletSearch(t *testing.T) {
	all := boardOrder([]Item{
		{ID: "1", Title: "Blue Wallet", IsLost: boolPtr(true), CreatedAt: "2025-01-02T10:00:00"},
		{ID: "2", Title: "Black Wallet", IsLost: boolPtr(false), CreatedAt: "2025-01-01T10:00:00"},
		{ID: "3", Title: "Umbrella", IsLost: boolPtr(true), CreatedAt: "2025-01-03T10:00:00"},
	})

	got := Apply(all, Query{Text: "wallet", Filter: FilterAll, Limit: 15})
	if !slices.Equal(ids(got), []ItemID{"1", "2"}) {
		t.Errorf("expected both wallets, got %v", ids(got))
	}

	got = Apply(all, Query{Text: "wallet", Filter: FilterLost, Limit: 15})
	if len(got) != 1 || got[0].Title != "Blue Wallet" {
		t.Errorf("expected only Blue Wallet, got %v", got)
	}
}

func TestApplySearchFields(t *testing.T) {
	all := []Item{
		{ID: "title", Title: "Red KEYS"},
		{ID: "desc", Title: "Bag", Description: "has keys inside"},
		{ID: "contact", Title: "Phone", Contact: "keys@example.com"},
		{ID: "none", Title: "Scarf", Status: "keys"},
	}

	got := Apply(all, Query{Text: "Keys"})
	if !slices.Equal(ids(got), []ItemID{"title", "desc", "contact"}) {
		t.Errorf("unexpected matches %v", ids(got))
	}
}

func TestApplyBlankQueryIsNoQuery(t *testing.T) {
	all := boardOrder(makeItems(5))

	got := Apply(all, Query{Text: "   ", Limit: 3})
	if !slices.Equal(ids(got), ids(all[:3])) {
		t.Errorf("expected blank query to behave like no query, got %v", ids(got))
	}

	got = Apply(all, Query{Text: "  item 3  "})
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("expected trimmed query to match item 3, got %v", ids(got))
	}
}

func TestApplyTruncatesSearchResults(t *testing.T) {
	all := boardOrder(makeItems(30))

	got := Apply(all, Query{Text: "item", Limit: 15})
	if len(got) != 15 {
		t.Errorf("expected 15 results, got %d", len(got))
	}
}

func TestApplyEmptyInput(t *testing.T) {
	if got := Apply(nil, Query{Text: "x", Limit: 15}); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestApplyStatus(t *testing.T) {
	all := []Item{
		{ID: "1", Status: "active"},
		{ID: "2", Status: "Reported"},
		{ID: "3"},
	}
	got := Apply(all, Query{Status: "reported"})
	if !slices.Equal(ids(got), []ItemID{"2"}) {
		t.Errorf("expected reported item only, got %v", ids(got))
	}
}

func TestApplyIsPure(t *testing.T) {
	all := boardOrder(makeItems(20))
	before := slices.Clone(all)

	q := Query{Text: "item", Filter: FilterFound, Limit: 5}
	first := Apply(all, q)
	second := Apply(all, q)

	if !slices.Equal(ids(first), ids(second)) {
		t.Error("Apply is not idempotent")
	}
	if !slices.Equal(ids(all), ids(before)) {
		t.Error("Apply modified its input")
	}
}

func TestResolveFilter(t *testing.T) {
	tests := []struct {
		selected []Filter
		want     Filter
	}{
		{nil, FilterAll},
		{[]Filter{}, FilterAll},
		{[]Filter{FilterLost}, FilterLost},
		{[]Filter{FilterFound, FilterLost}, FilterFound},
		{[]Filter{Filter(42)}, FilterAll},
	}

	for _, tt := range tests {
		if got := ResolveFilter(tt.selected); got != tt.want {
			t.Errorf("ResolveFilter(%v) = %v, want %v", tt.selected, got, tt.want)
		}
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		input   string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"LOST", FilterLost, false},
		{" found ", FilterFound, false},
		{"missing", FilterAll, true},
	}

	for _, tt := range tests {
		got, err := ParseFilter(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFilterNextCycles(t *testing.T) {
	f := FilterAll
	seen := []Filter{f}
	for range 3 {
		f = f.Next()
		seen = append(seen, f)
	}
	want := []Filter{FilterAll, FilterLost, FilterFound, FilterAll}
	if !slices.Equal(seen, want) {
		t.Errorf("expected cycle %v, got %v", want, seen)
	}
}
