package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailview/internal/theme"
)

// Chrome heights for the single-column frame.
const (
	headerHeight    = 1
	statusBarHeight = 1
)

// Layout tracks the terminal dimensions and slices them into a header
// row, a content area, and a status bar.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a Layout for the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentWidth returns the width available to the active view.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available to the active view.
func (l Layout) ContentHeight() int {
	h := l.Height - headerHeight - statusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the top bar: title on the left, sync state on
// the right, padded to the full terminal width.
func (l Layout) RenderHeader(title string, syncStatus string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Render(syncStatus)

	pad := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		// Not enough room for both; the title wins.
		return theme.HeaderStyle.Width(l.Width).Render(title)
	}

	mid := theme.HeaderStyle.Width(pad).Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, mid, right)
}

// RenderStatusBar renders the bottom bar with key hints or a status
// message, padded to the full terminal width.
func (l Layout) RenderStatusBar(hints string) string {
	return theme.StatusBarStyle.Width(l.Width).Render(hints)
}

// RenderWithFrame stacks the header, content area, and status bar into
// the final frame.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
