package board

import (
	"io"
	"log/slog"
	"strings"
)

// NoticeKind classifies side-channel notifications on a snapshot.
type NoticeKind int

// Notice kinds.
const (
	NoticeNone NoticeKind = iota
	NoticeFetchFailed
)

// Notice is a transient message for the presentation layer. It is attached
// only to the snapshot published right after the event that caused it.
type Notice struct {
	Kind NoticeKind
	Err  error
}

// Snapshot is the render-ready view published after every recomputation.
type Snapshot struct {
	Items         []Item
	IsEmpty       bool
	HasMore       bool
	IsLoadingMore bool
	IsRefreshing  bool
	// ScrollToTop is set only when the recomputation came from a full
	// refresh on the first page.
	ScrollToTop bool
	Query       string
	Filter      Filter
	Status      string
	Total       int
	Notice      *Notice
}

// Ticket identifies one outstanding fetch.
type Ticket struct {
	seq     uint64
	refresh bool
}

// Refresh reports whether the fetch replaces the collection.
func (t Ticket) Refresh() bool { return t.refresh }

// Seq returns the issue order of the fetch.
func (t Ticket) Seq() uint64 { return t.seq }

// Options configures a Coordinator.
type Options struct {
	PageSize  int
	Lookahead int
	Logger    *slog.Logger
}

type cause int

const (
	causeRefresh cause = iota
	causeAppend
	causeQuery
	causeFilter
	causeLoadMore
	causeFailure
	causeSettle
)

// Coordinator owns the list state and is the only entry point for events
// that change it. It is not safe for concurrent use; callers feed it from a
// single event loop.
type Coordinator struct {
	store     *ItemStore
	pages     *Pagination
	query     string
	filter    Filter
	status    string
	lookahead int
	log       *slog.Logger

	refreshing     bool
	issued         uint64
	latestRefresh  uint64
	appliedRefresh uint64

	last        Snapshot
	subscribers []func(Snapshot)
}

// NewCoordinator returns a coordinator with an empty collection and the
// default filter.
func NewCoordinator(opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	lookahead := opts.Lookahead
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	c := &Coordinator{
		store:     NewItemStore(),
		pages:     NewPagination(opts.PageSize),
		lookahead: lookahead,
		log:       logger,
	}
	c.pages.Recompute(0)
	c.last = c.build(causeQuery, nil)
	return c
}

// Subscribe registers fn to receive every published snapshot.
func (c *Coordinator) Subscribe(fn func(Snapshot)) {
	c.subscribers = append(c.subscribers, fn)
}

// Snapshot returns the most recently published snapshot.
func (c *Coordinator) Snapshot() Snapshot {
	return c.last
}

// Store exposes the item store for read access.
func (c *Coordinator) Store() *ItemStore { return c.store }

// Pagination exposes the page controller for read access.
func (c *Coordinator) Pagination() *Pagination { return c.pages }

// Query returns the active trimmed search text.
func (c *Coordinator) Query() string { return c.query }

// Filter returns the active category filter.
func (c *Coordinator) Filter() Filter { return c.filter }

// BeginFetch issues a ticket for a fetch about to start. Refresh fetches
// mark the state as refreshing and publish.
func (c *Coordinator) BeginFetch(refresh bool) Ticket {
	c.issued++
	t := Ticket{seq: c.issued, refresh: refresh}
	if refresh {
		c.latestRefresh = t.seq
		c.refreshing = true
		c.publish(causeQuery, nil)
	}
	return t
}

// Deliver applies the outcome of a ticketed fetch. Responses issued before
// the last applied refresh are dropped, so a slow stale refresh cannot
// overwrite a newer one.
func (c *Coordinator) Deliver(t Ticket, items []Item, err error) {
	if t.seq <= c.appliedRefresh {
		c.log.Warn("dropping stale fetch result", "seq", t.seq, "applied", c.appliedRefresh, "refresh", t.refresh)
		return
	}
	if t.refresh && t.seq >= c.latestRefresh {
		c.refreshing = false
	}
	if err != nil {
		c.fail(err)
		return
	}
	if t.refresh {
		c.appliedRefresh = t.seq
	}
	c.apply(items, t.refresh)
}

// OnItemsFetched applies a fetch result in arrival order. A refresh
// replaces the collection and resets paging; otherwise items are merged.
func (c *Coordinator) OnItemsFetched(items []Item, isRefresh bool) {
	if isRefresh {
		c.refreshing = false
	}
	c.apply(items, isRefresh)
}

func (c *Coordinator) apply(items []Item, refresh bool) {
	if refresh {
		c.store.Replace(items)
		c.pages.Reset()
		if n := c.store.Malformed(); n > 0 {
			c.log.Debug("items without usable timestamp", "count", n)
		}
		c.publish(causeRefresh, nil)
		return
	}
	c.store.Append(items)
	c.publish(causeAppend, nil)
}

// OnFetchFailed clears loading flags, keeps the previously applied items
// and publishes a snapshot carrying a fetch-failure notice.
func (c *Coordinator) OnFetchFailed(err error) {
	c.refreshing = false
	c.fail(err)
}

func (c *Coordinator) fail(err error) {
	c.pages.Settle()
	c.log.Warn("fetch failed", "error", err, "kept", c.store.Size())
	c.publish(causeFailure, &Notice{Kind: NoticeFetchFailed, Err: err})
}

// OnQueryChanged sets the search text. Paging is left untouched.
func (c *Coordinator) OnQueryChanged(text string) {
	c.query = strings.TrimSpace(text)
	c.publish(causeQuery, nil)
}

// OnFilterChanged sets the category filter from a chip selection. An empty
// selection falls back to FilterAll.
func (c *Coordinator) OnFilterChanged(selected ...Filter) {
	c.filter = ResolveFilter(selected)
	c.publish(causeFilter, nil)
}

// OnStatusChanged restricts the list to a moderation status; empty clears.
func (c *Coordinator) OnStatusChanged(status string) {
	c.status = strings.TrimSpace(status)
	c.publish(causeFilter, nil)
}

// OnScrolled reports the index of the last visible row. It triggers a
// load-more when that row is within the lookahead of the end.
func (c *Coordinator) OnScrolled(lastVisible int) {
	if NearEnd(lastVisible, len(c.last.Items), c.lookahead) {
		c.OnScrollNearEnd()
	}
}

// OnScrollNearEnd exposes the next page if there is one. The published
// snapshot reports IsLoadingMore; the logical state settles immediately.
func (c *Coordinator) OnScrollNearEnd() {
	if !c.pages.LoadMore(c.store.Size()) {
		return
	}
	c.publish(causeLoadMore, nil)
	c.pages.Settle()
}

// OnLoadMoreSettled is called by the presentation layer once its load-more
// indicator has been shown long enough. It republishes only if the last
// snapshot still reports loading.
func (c *Coordinator) OnLoadMoreSettled() {
	if !c.last.IsLoadingMore {
		return
	}
	c.pages.Settle()
	c.publish(causeSettle, nil)
}

// OnMutationCompleted starts a full refresh after a post was created,
// edited or deleted. The caller performs the fetch and delivers it.
func (c *Coordinator) OnMutationCompleted() Ticket {
	c.log.Debug("mutation completed, refreshing")
	return c.BeginFetch(true)
}

func (c *Coordinator) publish(why cause, notice *Notice) {
	c.pages.Recompute(c.store.Size())
	snap := c.build(why, notice)
	c.last = snap
	c.log.Debug("visible list recomputed",
		"visible", len(snap.Items),
		"total", snap.Total,
		"page", c.pages.PageIndex(),
		"query", c.query,
		"filter", c.filter.String(),
		"has_more", snap.HasMore,
	)
	for _, fn := range c.subscribers {
		fn(snap)
	}
}

func (c *Coordinator) build(why cause, notice *Notice) Snapshot {
	items := Apply(c.store.items, Query{
		Text:   c.query,
		Filter: c.filter,
		Status: c.status,
		Limit:  c.pages.Limit(),
	})
	return Snapshot{
		Items:         items,
		IsEmpty:       len(items) == 0,
		HasMore:       c.pages.HasMore(),
		IsLoadingMore: c.pages.State() == PageLoadingMore,
		IsRefreshing:  c.refreshing,
		ScrollToTop:   why == causeRefresh && c.pages.PageIndex() == 0 && len(items) > 0,
		Query:         c.query,
		Filter:        c.filter,
		Status:        c.status,
		Total:         c.store.Size(),
		Notice:        notice,
	}
}
