package host

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/keyhold/internal/controller"
	"github.com/llehouerou/keyhold/internal/keymap"
	"github.com/llehouerou/keyhold/internal/press"
)

// chromeRows is the number of rows around the document body: header,
// player bar, status line and footer.
const chromeRows = 4

func renderHeader(s PageState, width int) string {
	title := s.Title
	if title == "" {
		title = "no document"
	}
	var right []string
	if s.Liked {
		right = append(right, likedStyle().Render(likeSymbol))
	}
	nav := "‹ ›"
	switch {
	case s.CanBack && s.CanForward:
		nav = activeStyle().Render("‹ ›")
	case s.CanBack:
		nav = activeStyle().Render("‹") + subtleStyle().Render(" ›")
	case s.CanForward:
		nav = subtleStyle().Render("‹ ") + activeStyle().Render("›")
	default:
		nav = subtleStyle().Render(nav)
	}
	right = append(right, nav)
	if n := len(s.Lines); n > 0 {
		right = append(right, mutedStyle().Render(fmt.Sprintf("%d/%d", int(s.Offset)+1, n)))
	}

	tail := strings.Join(right, "  ")
	avail := max(width-lipgloss.Width(tail)-2, 1)
	head := boldGradient(ansi.Truncate(sanitize(title), avail, "…"), colorPrimary, colorSecondary)
	gap := max(width-lipgloss.Width(head)-lipgloss.Width(tail), 1)
	return head + strings.Repeat(" ", gap) + tail
}

// renderContent renders every document line, cut to the horizontal window.
func renderContent(s PageState, width int) string {
	rows := make([]string, len(s.Lines))
	for n, line := range s.Lines {
		line = sanitize(line)
		line = ansi.Cut(line, s.Column, s.Column+width)
		if n == s.Selected {
			line = selectedStyle().Width(width).Render(line)
		}
		rows[n] = line
	}
	return strings.Join(rows, "\n")
}

func renderPlayerBar(s PlayerState, attached bool, width int) string {
	if !attached {
		return subtleStyle().Render("no media on this page")
	}
	status := pauseSymbol
	if s.Playing {
		status = playSymbol
	}
	rate := ""
	if s.Rate != 1 {
		rate = activeStyle().Render(fmt.Sprintf(" %g×", s.Rate))
	}
	timeStr := fmt.Sprintf("%s / %s", formatDuration(s.Position), formatDuration(s.Length))
	title := mutedStyle().Render(ansi.Truncate(s.Title, max(width/3, 8), "…"))

	fixed := lipgloss.Width(title) + lipgloss.Width(status) + lipgloss.Width(rate) + lipgloss.Width(timeStr) + 8
	barWidth := max(width-fixed, 5)
	var ratio float64
	if s.Length > 0 {
		ratio = float64(s.Position) / float64(s.Length)
	}
	filled := min(int(float64(barWidth)*ratio), barWidth)
	bar := progressBarFilled().Render(strings.Repeat("━", filled)) +
		progressBarEmpty().Render(strings.Repeat("─", barWidth-filled))

	return title + "   " + status + rate + "  " + bar + "   " + timeStr
}

func renderStatus(st controller.Status, lastKey string) string {
	var parts []string
	if len(st.Held) > 0 {
		keys := make([]string, len(st.Held))
		for i, k := range st.Held {
			keys[i] = keymap.FormatKey(k)
		}
		parts = append(parts, "held "+activeStyle().Render(strings.Join(keys, " ")))
	}
	if st.ScrollingUp {
		parts = append(parts, activeStyle().Render("↑"))
	}
	if st.ScrollingDown {
		parts = append(parts, activeStyle().Render("↓"))
	}
	if st.Primary != press.Idle {
		parts = append(parts, "seek "+st.Primary.String())
	}
	if st.Navigate != press.Idle {
		parts = append(parts, "nav "+st.Navigate.String())
	}
	if st.Boosted {
		parts = append(parts, boldGradient("fast-forward", colorPrimary, colorSecondary))
	}
	if lastKey != "" {
		parts = append(parts, subtleStyle().Render(lastKey))
	}
	if len(parts) == 0 {
		return subtleStyle().Render("idle")
	}
	return strings.Join(parts, mutedStyle().Render(" · "))
}

// renderBindings lists the effective binding of every action.
func renderBindings(s keymap.Settings, width, height int) string {
	res := keymap.NewResolver(s)
	rows := []string{titleStyle().Render("Key bindings"), ""}
	for _, action := range keymap.Actions {
		key, ok := res.Resolve(action)
		name := keymap.FormatKey("")
		if ok {
			name = keymap.FormatKey(key)
		}
		row := "  " + pad(name, 12) + " " + action.Description()
		rows = append(rows, ansi.Truncate(row, width, "…"))
	}
	set := res.Settings()
	rows = append(rows, "",
		mutedStyle().Render(fmt.Sprintf("  scroll speed %d, arrow keys scroll %t, ArrowRight seeks %t",
			set.ScrollSpeed, set.ArrowKeysScroll, set.ArrowKeysAsSeek)))
	for len(rows) < height {
		rows = append(rows, "")
	}
	return strings.Join(rows[:max(height, 0)], "\n")
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
