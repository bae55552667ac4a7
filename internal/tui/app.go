// Package tui renders the board's list state in the terminal.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/erazemk/najdeno/internal/board"
)

// FetchFunc loads the full collection from the server.
type FetchFunc func(ctx context.Context) ([]board.Item, error)

// DeleteFunc deletes a post owned by the signed-in user.
type DeleteFunc func(ctx context.Context, id board.ItemID) error

// UpdateFunc saves an edited post owned by the signed-in user.
type UpdateFunc func(ctx context.Context, it board.Item) error

type mode int

const (
	modeList mode = iota
	modeSearch
	modeDetail
)

// chrome is the number of rows taken by header, search bar and footer.
const chrome = 7

// AppParams configures an App.
type AppParams struct {
	Coordinator   *board.Coordinator
	Fetch         FetchFunc
	Delete        DeleteFunc
	Update        UpdateFunc
	UserID        int64
	LoadMoreDelay time.Duration
	ImageURL      func(path string) string
	Copy          func(text string) error
	Now           func() time.Time
	Context       context.Context
}

// App is the bubbletea model for the board browser. It owns the single
// event loop from which every coordinator event is fed.
type App struct {
	coord  *board.Coordinator
	fetch  FetchFunc
	delete DeleteFunc
	update UpdateFunc
	userID int64
	delay  time.Duration

	imageURL func(string) string
	copy     func(string) error
	now      func() time.Time
	ctx      context.Context

	keys    keyMap
	help    help.Model
	search  textinput.Model
	spinner spinner.Model

	snap        board.Snapshot
	mode        mode
	cursor      int
	offset      int
	width       int
	height      int
	status      string
	spinning    bool
	loadingMore bool
	settlePend  bool
	detail      board.Item
}

type fetchedMsg struct {
	ticket board.Ticket
	items  []board.Item
	err    error
}

type deletedMsg struct {
	id  board.ItemID
	err error
}

type updatedMsg struct {
	id  board.ItemID
	err error
}

type loadMoreSettledMsg struct{}

// NewApp returns an App subscribed to p.Coordinator.
func NewApp(p AppParams) *App {
	ti := textinput.New()
	ti.Placeholder = "Search title, description, contact..."
	ti.Prompt = "/ "
	ti.CharLimit = 100

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	a := &App{
		coord:    p.Coordinator,
		fetch:    p.Fetch,
		delete:   p.Delete,
		update:   p.Update,
		userID:   p.UserID,
		delay:    p.LoadMoreDelay,
		imageURL: p.ImageURL,
		copy:     p.Copy,
		now:      p.Now,
		ctx:      p.Context,
		keys:     newKeyMap(),
		help:     help.New(),
		search:   ti,
		spinner:  s,
	}
	if a.copy == nil {
		a.copy = clipboard.WriteAll
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.ctx == nil {
		a.ctx = context.Background()
	}
	if a.imageURL == nil {
		a.imageURL = func(path string) string { return path }
	}

	a.snap = a.coord.Snapshot()
	a.coord.Subscribe(a.onSnapshot)
	return a
}

// Init starts the first refresh.
func (a *App) Init() tea.Cmd {
	return a.refresh()
}

func (a *App) onSnapshot(s board.Snapshot) {
	a.snap = s
	if s.ScrollToTop {
		a.cursor = 0
		a.offset = 0
	}
	a.clampCursor()

	// The indicator stays up until the settle tick, even if later
	// snapshots already report the page as loaded.
	if s.IsLoadingMore && !a.loadingMore {
		a.loadingMore = true
		a.settlePend = true
	}
	if s.Notice != nil && s.Notice.Kind == board.NoticeFetchFailed {
		a.status = fmt.Sprintf("Failed to load posts: %v", s.Notice.Err)
	}
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.search.Width = max(10, msg.Width-6)
		a.help.Width = msg.Width
		a.clampCursor()

	case fetchedMsg:
		a.coord.Deliver(msg.ticket, msg.items, msg.err)
		if msg.err == nil && msg.ticket.Refresh() {
			a.status = ""
		}

	case deletedMsg:
		if msg.err != nil {
			a.status = fmt.Sprintf("Delete failed: %v", msg.err)
			break
		}
		a.status = "Post deleted"
		if a.mode == modeDetail && a.detail.ID == msg.id {
			a.mode = modeList
		}
		cmds = append(cmds, a.fetchCmd(a.coord.OnMutationCompleted()), a.startSpinner())

	case updatedMsg:
		if msg.err != nil {
			a.status = fmt.Sprintf("Update failed: %v", msg.err)
			break
		}
		a.status = "Post updated"
		if a.mode == modeDetail && a.detail.ID == msg.id {
			a.mode = modeList
		}
		cmds = append(cmds, a.fetchCmd(a.coord.OnMutationCompleted()), a.startSpinner())

	case loadMoreSettledMsg:
		a.loadingMore = false
		a.coord.OnLoadMoreSettled()

	case spinner.TickMsg:
		if !a.busy() {
			a.spinning = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		cmds = append(cmds, a.handleKey(msg))
	}

	if a.settlePend {
		a.settlePend = false
		cmds = append(cmds, tea.Tick(a.delay, func(time.Time) tea.Msg {
			return loadMoreSettledMsg{}
		}), a.startSpinner())
	}

	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeDetail:
		switch {
		case key.Matches(msg, a.keys.back), key.Matches(msg, a.keys.open):
			a.mode = modeList
		case key.Matches(msg, a.keys.quit):
			a.mode = modeList
		case key.Matches(msg, a.keys.copy):
			a.copyContact(a.detail)
		case key.Matches(msg, a.keys.delete):
			return a.deleteItem(a.detail)
		case key.Matches(msg, a.keys.flip):
			return a.flipItem(a.detail)
		}
		return nil
	}

	switch {
	case key.Matches(msg, a.keys.quit):
		return tea.Quit
	case key.Matches(msg, a.keys.down):
		a.move(1)
	case key.Matches(msg, a.keys.up):
		a.move(-1)
	case key.Matches(msg, a.keys.search):
		a.mode = modeSearch
		return a.search.Focus()
	case key.Matches(msg, a.keys.filter):
		a.coord.OnFilterChanged(a.snap.Filter.Next())
	case key.Matches(msg, a.keys.refresh):
		return a.refresh()
	case key.Matches(msg, a.keys.open):
		if it, ok := a.Selected(); ok {
			a.detail = it
			a.mode = modeDetail
		}
	case key.Matches(msg, a.keys.copy):
		if it, ok := a.Selected(); ok {
			a.copyContact(it)
		}
	case key.Matches(msg, a.keys.delete):
		if it, ok := a.Selected(); ok {
			return a.deleteItem(it)
		}
	case key.Matches(msg, a.keys.flip):
		if it, ok := a.Selected(); ok {
			return a.flipItem(it)
		}
	}
	return nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		a.mode = modeList
		a.search.Blur()
		return nil
	}

	var cmd tea.Cmd
	before := a.search.Value()
	a.search, cmd = a.search.Update(msg)
	if a.search.Value() != before {
		a.coord.OnQueryChanged(a.search.Value())
	}
	return cmd
}

func (a *App) move(delta int) {
	n := len(a.snap.Items)
	if n == 0 {
		return
	}
	a.cursor = min(max(a.cursor+delta, 0), n-1)

	rows := a.rows()
	if a.cursor < a.offset {
		a.offset = a.cursor
	}
	if a.cursor >= a.offset+rows {
		a.offset = a.cursor - rows + 1
	}

	if !a.loadingMore {
		a.coord.OnScrolled(a.lastVisible())
	}
}

func (a *App) lastVisible() int {
	return min(a.offset+a.rows(), len(a.snap.Items)) - 1
}

func (a *App) rows() int {
	if a.height <= chrome {
		return 10
	}
	return a.height - chrome
}

func (a *App) clampCursor() {
	n := len(a.snap.Items)
	if n == 0 {
		a.cursor, a.offset = 0, 0
		return
	}
	a.cursor = min(a.cursor, n-1)
	a.offset = min(a.offset, a.cursor)
	if a.cursor >= a.offset+a.rows() {
		a.offset = a.cursor - a.rows() + 1
	}
}

func (a *App) refresh() tea.Cmd {
	return tea.Batch(a.fetchCmd(a.coord.BeginFetch(true)), a.startSpinner())
}

func (a *App) fetchCmd(t board.Ticket) tea.Cmd {
	fetch, ctx := a.fetch, a.ctx
	return func() tea.Msg {
		items, err := fetch(ctx)
		return fetchedMsg{ticket: t, items: items, err: err}
	}
}

func (a *App) deleteItem(it board.Item) tea.Cmd {
	if a.delete == nil || !it.OwnedBy(a.userID) {
		a.status = "You can only delete your own posts"
		return nil
	}
	del, ctx := a.delete, a.ctx
	a.status = "Deleting..."
	return func() tea.Msg {
		return deletedMsg{id: it.ID, err: del(ctx, it.ID)}
	}
}

// flipItem switches an own post between lost and found, for example once
// the owner has got the item back.
func (a *App) flipItem(it board.Item) tea.Cmd {
	if a.update == nil || !it.OwnedBy(a.userID) {
		a.status = "You can only edit your own posts"
		return nil
	}
	lost := !it.Lost()
	it.IsLost = &lost
	upd, ctx := a.update, a.ctx
	a.status = "Saving..."
	return func() tea.Msg {
		return updatedMsg{id: it.ID, err: upd(ctx, it)}
	}
}

func (a *App) copyContact(it board.Item) {
	if it.Contact == "" {
		a.status = "No contact on this post"
		return
	}
	if err := a.copy(it.Contact); err != nil {
		a.status = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	a.status = it.Contact + " → clipboard"
}

func (a *App) busy() bool {
	return a.snap.IsRefreshing || a.loadingMore
}

func (a *App) startSpinner() tea.Cmd {
	if a.spinning {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}

// Selected returns the item under the cursor.
func (a *App) Selected() (board.Item, bool) {
	if a.cursor < 0 || a.cursor >= len(a.snap.Items) {
		return board.Item{}, false
	}
	return a.snap.Items[a.cursor], true
}

// Cursor returns the index of the highlighted row.
func (a *App) Cursor() int { return a.cursor }

// Snapshot returns the last snapshot the App rendered from.
func (a *App) Snapshot() board.Snapshot { return a.snap }

// Status returns the current status line.
func (a *App) Status() string { return a.status }

// Searching reports whether the search box has focus.
func (a *App) Searching() bool { return a.mode == modeSearch }

// ShowingDetail reports whether the detail pane is open.
func (a *App) ShowingDetail() bool { return a.mode == modeDetail }

// LoadingMore reports whether the load-more indicator is shown.
func (a *App) LoadingMore() bool { return a.loadingMore }
