package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/theme"
	"github.com/atinyakov/NoteKeeper/internal/view"
)

var (
	faintStyle = lipgloss.NewStyle().Faint(true)

	severityStyles = map[models.Severity]lipgloss.Style{
		models.SeveritySuccess: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E7D32")),
		models.SeverityInfo:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0288D1")),
		models.SeverityError:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D32F2F")),
	}

	severityIcons = map[models.Severity]string{
		models.SeveritySuccess: "✔",
		models.SeverityInfo:    "ℹ",
		models.SeverityError:   "✖",
	}
)

func cardStyle(p theme.Palette) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(p.Color)).
		Padding(0, 1)
}

func titleStyle(p theme.Palette) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Color))
}

// RenderNote draws one note card in the palette colour.
func RenderNote(n models.Note, p theme.Palette) string {
	title := n.Title
	if title == "" {
		title = "(untitled)"
	}
	body := titleStyle(p).Render(title) + "\n" + n.Desc + "\n" + faintStyle.Render("id: "+n.ID)
	return cardStyle(p).Render(body)
}

// RenderState draws the note list, or the loading indicator while a change
// is pending.
func RenderState(st view.State) string {
	if st.Loading {
		return RenderLoading(st.Theme)
	}
	if len(st.Notes) == 0 {
		if st.Query != "" {
			return faintStyle.Render(fmt.Sprintf("No notes match %q.", st.Query))
		}
		return faintStyle.Render("No notes yet. Type 'add' to create one.")
	}

	cards := make([]string, 0, len(st.Notes))
	for _, n := range st.Notes {
		cards = append(cards, RenderNote(n, st.Theme))
	}
	footer := fmt.Sprintf("%d of %d notes", len(st.Notes), st.Total)
	return lipgloss.JoinVertical(lipgloss.Left, append(cards, faintStyle.Render(footer))...)
}

// RenderLoading is the spinner shown while a change is pending.
func RenderLoading(p theme.Palette) string {
	return titleStyle(p).Render("⏳ Loading...")
}

// RenderNotification draws a toast styled by severity.
func RenderNotification(n models.Notification) string {
	style, ok := severityStyles[n.Severity]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return style.Render(severityIcons[n.Severity] + " " + n.Message)
}

// RenderPalettes lists the palettes and marks the current one.
func RenderPalettes(list []theme.Palette, current theme.Palette) string {
	var b strings.Builder
	for _, p := range list {
		marker := " "
		if p.ID == current.ID {
			marker = "*"
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("■")
		fmt.Fprintf(&b, "%s %d %s %s\n", marker, p.ID, swatch, p.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}
