package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/erazemk/najdeno/internal/board"
)

// unknownDate is shown for posts without a usable timestamp.
const unknownDate = "Unknown"

// View renders the current snapshot.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Najdeno · Lost & Found"))
	b.WriteString("  ")
	b.WriteString(a.renderChips())
	b.WriteString("\n")
	if a.mode == modeSearch || a.search.Value() != "" {
		b.WriteString(a.search.View())
	}
	b.WriteString("\n\n")

	if a.mode == modeDetail {
		b.WriteString(a.renderDetail())
	} else {
		b.WriteString(a.renderList())
	}

	b.WriteString("\n")
	b.WriteString(a.renderFooter())
	return b.String()
}

func (a *App) renderChips() string {
	filters := []board.Filter{board.FilterAll, board.FilterLost, board.FilterFound}
	chips := make([]string, 0, len(filters))
	for _, f := range filters {
		label := strings.ToUpper(f.String()[:1]) + f.String()[1:]
		if f == a.snap.Filter {
			chips = append(chips, activeChipStyle.Render(label))
		} else {
			chips = append(chips, chipStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (a *App) renderList() string {
	if a.snap.IsEmpty {
		if a.snap.IsRefreshing {
			return dimStyle.Render(a.spinner.View() + " Loading posts...")
		}
		return dimStyle.Render("No posts found")
	}

	end := min(a.offset+a.rows(), len(a.snap.Items))
	lines := make([]string, 0, end-a.offset)
	for i := a.offset; i < end; i++ {
		line := a.renderRow(a.snap.Items[i])
		if i == a.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderRow(it board.Item) string {
	return fmt.Sprintf("%s %s  %s", kindBadge(it), it.Title, dimStyle.Render(a.relative(it)))
}

func kindBadge(it board.Item) string {
	switch {
	case it.Lost():
		return lostStyle.Render("LOST ")
	case it.Found():
		return foundStyle.Render("FOUND")
	}
	return dimStyle.Render("  ?  ")
}

func (a *App) relative(it board.Item) string {
	t, ok := it.Created()
	if !ok {
		return unknownDate
	}
	return humanize.RelTime(t, a.now(), "ago", "from now")
}

func (a *App) renderDetail() string {
	it := a.detail
	width := max(20, a.width-6)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", kindBadge(it), titleStyle.Render(it.Title))
	if it.Status != "" {
		fmt.Fprintf(&b, "%s\n", dimStyle.Render("Status: "+it.Status))
	}
	b.WriteString("\n")
	if it.Description != "" {
		b.WriteString(wordwrap.String(it.Description, width))
		b.WriteString("\n\n")
	}
	if it.Contact != "" {
		fmt.Fprintf(&b, "Contact: %s\n", it.Contact)
	}
	posted := unknownDate
	if t, ok := it.Created(); ok {
		posted = t.Local().Format(time.DateTime) + " (" + a.relative(it) + ")"
	}
	fmt.Fprintf(&b, "Posted:  %s\n", posted)
	if it.ImagePath != "" {
		fmt.Fprintf(&b, "Image:   %s\n", a.imageURL(it.ImagePath))
	}
	if it.OwnedBy(a.userID) {
		b.WriteString(dimStyle.Render("\nThis is your post. Press m to flip lost/found or d to delete it."))
	}
	return detailStyle.Width(width + 2).Render(b.String())
}

func (a *App) renderFooter() string {
	var parts []string

	count := fmt.Sprintf("%d of %d", len(a.snap.Items), a.snap.Total)
	if a.snap.HasMore {
		count += "+"
	}
	parts = append(parts, dimStyle.Render(count))

	switch {
	case a.snap.IsRefreshing && !a.snap.IsEmpty:
		parts = append(parts, a.spinner.View()+" Refreshing")
	case a.loadingMore:
		parts = append(parts, a.spinner.View()+" Loading more")
	}

	if a.status != "" {
		style := statusStyle
		if a.snap.Notice != nil {
			style = errorStyle
		}
		parts = append(parts, style.Render(a.status))
	}

	return strings.Join(parts, "  ") + "\n" + a.help.View(a.keys)
}
