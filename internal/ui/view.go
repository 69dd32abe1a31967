package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fediscope/fediscope/internal/present"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader shows the logo, the page kind and title, where it came from
// and the poller's unread count.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	sep := "  "
	parts := []string{styles.Logo.Render("fediscope")}

	if res := m.snapshot.Result; res != nil {
		parts = append(parts, styles.KindStyle(res.Kind).Render(string(res.Kind)))
		title := res.Title
		if title == "" {
			title = m.snapshot.Path
		}
		parts = append(parts, styles.Text.Bold(true).Render(truncate(title, 48)))
		if res.Instance != "" {
			parts = append(parts, styles.InfoText.Render(res.Instance))
		}
		if res.Source != "" && res.Source != "direct" {
			parts = append(parts, styles.WarningText.Render("via "+res.Source))
		}
	}
	if m.loading {
		parts = append(parts, styles.WarningText.Render("loading…"))
	}
	if n := m.snapshot.Unread; n > 0 {
		parts = append(parts, styles.SuccessText.Render(fmt.Sprintf("● %d new", n)))
	}
	if m.snapshot.IsOffline() {
		parts = append(parts, styles.DangerText.Render("home offline"))
	}
	if m.home != "" {
		parts = append(parts, styles.MutedText.Render(m.home))
	}

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(parts, sep))
}

func (m Model) renderBody() string {
	styles := m.theme.Styles()
	list := styles.FocusPane.
		Width(m.listWidth).
		Height(m.listHeight).
		Render(m.renderList())
	detail := styles.Pane.
		Width(m.detailWidth).
		Height(m.detailHeight).
		Render(m.detail.View())
	if m.width >= LayoutCompactWidth {
		return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
	}
	return lipgloss.JoinVertical(lipgloss.Left, list, detail)
}

// renderList renders the visible window of rows around the selection.
func (m Model) renderList() string {
	styles := m.theme.Styles()
	if len(m.visible) == 0 {
		switch {
		case m.loading:
			return styles.MutedText.Render("Loading…")
		case m.filter != "":
			return styles.MutedText.Render("no match for " + m.filter)
		}
		return styles.MutedText.Render("nothing here")
	}

	start := 0
	if m.selected >= m.listHeight {
		start = m.selected - m.listHeight + 1
	}
	end := minInt(len(m.visible), start+m.listHeight)

	now := time.Now()
	showAge := m.listWidth >= LayoutAgeWidth
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		it := m.items[m.visible[i]]
		row := m.formatRow(it, now, showAge)
		if i == m.selected {
			row = styles.Selected.Render(padRight(row, m.listWidth))
		} else if it.Focus {
			row = styles.AccentText.Render(row)
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

func (m Model) formatRow(it present.Item, now time.Time, showAge bool) string {
	prefix := indent(it.Depth)
	if it.Note != "" {
		prefix += "⟳ "
	}
	age := ""
	width := m.listWidth
	if showAge {
		age = present.Age(it.When, now)
		width -= 5
	}
	author := truncate(singleLine(it.Author), 20)
	text := prefix + author + "  " + singleLine(it.Headline())
	text = padRight(truncate(text, width), width)
	if age == "" {
		return text
	}
	return text + fmt.Sprintf("%5s", age)
}

// renderFooter shows the prompt when one is open, otherwise the latest
// message and the key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.mode != modeList {
		return styles.Footer.Width(m.width).MaxHeight(1).Render(m.input.View())
	}

	var left string
	switch {
	case m.flash != "" && time.Since(m.flashAt) < flashDuration:
		if m.flashErr {
			left = styles.DangerText.Render(m.flash)
		} else {
			left = styles.InfoText.Render(m.flash)
		}
	case m.snapshot.LastError != nil:
		left = styles.DangerText.Render(m.snapshot.LastError.Error())
	default:
		left = "? help  g go  / filter  enter open  esc back  q quit"
	}

	right := ""
	if n := len(m.visible); n > 0 {
		right = fmt.Sprintf("%d/%d", m.selected+1, n)
		if m.filter != "" {
			right = "/" + m.filter + "  " + right
		}
	}
	gap := maxInt(1, m.width-2-lipgloss.Width(left)-lipgloss.Width(right))
	return styles.Footer.Width(m.width).MaxHeight(1).Render(left + strings.Repeat(" ", gap) + right)
}
