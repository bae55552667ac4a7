package board

// Default paging parameters.
const (
	DefaultPageSize  = 15
	DefaultLookahead = 5
)

// PageState is the load-more state.
type PageState int

// Pagination states.
const (
	PageIdle PageState = iota
	PageLoadingMore
)

func (s PageState) String() string {
	if s == PageLoadingMore {
		return "loading-more"
	}
	return "idle"
}

// Pagination simulates paging over already-fetched data: each page only
// raises the truncation ceiling of the visible list.
type Pagination struct {
	pageSize  int
	pageIndex int
	hasMore   bool
	state     PageState
}

// NewPagination returns an idle controller on the first page. A page size
// below one falls back to DefaultPageSize.
func NewPagination(pageSize int) *Pagination {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Pagination{pageSize: pageSize, hasMore: true}
}

// PageSize returns the fixed page size.
func (p *Pagination) PageSize() int { return p.pageSize }

// PageIndex returns how many pages beyond the first are exposed.
func (p *Pagination) PageIndex() int { return p.pageIndex }

// HasMore reports whether raising the ceiling would expose more items.
func (p *Pagination) HasMore() bool { return p.hasMore }

// State returns the current state.
func (p *Pagination) State() PageState { return p.state }

// Limit returns the current maximum visible count.
func (p *Pagination) Limit() int {
	return (p.pageIndex + 1) * p.pageSize
}

// Recompute updates HasMore against the total number of stored items.
func (p *Pagination) Recompute(total int) {
	p.hasMore = p.Limit() < total
}

// Reset returns to the first page. HasMore stays true until the next
// Recompute.
func (p *Pagination) Reset() {
	p.pageIndex = 0
	p.hasMore = true
	p.state = PageIdle
}

// LoadMore moves Idle → LoadingMore and exposes one more page. It is a
// no-op, returning false, while loading or when there is nothing more.
func (p *Pagination) LoadMore(total int) bool {
	if p.state != PageIdle || !p.hasMore {
		return false
	}
	p.state = PageLoadingMore
	p.pageIndex++
	p.Recompute(total)
	return true
}

// Settle moves LoadingMore → Idle.
func (p *Pagination) Settle() {
	p.state = PageIdle
}

// NearEnd reports whether the last visible row is within lookahead rows of
// the end of a list of the given length.
func NearEnd(lastVisible, length, lookahead int) bool {
	if length == 0 {
		return false
	}
	return lastVisible+1 >= length-lookahead
}
