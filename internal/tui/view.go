package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/starcatch/internal/model"
)

const (
	defaultFieldWidth  = 48
	defaultFieldHeight = 12
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5C542"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	fieldStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#3A3A5A"))
	boardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#C89A3A")).Padding(0, 1)
	starStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F5C542"))
	heartStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6FA5"))
	sparkleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FD8FF"))
	bombStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.engine.Phase() {
	case model.PhasePlaying:
		body = m.viewPlaying()
	case model.PhaseOver:
		body = m.viewOver()
	default:
		body = m.viewIdle()
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) fieldSize() (int, int) {
	w, h := defaultFieldWidth, defaultFieldHeight
	if m.width > 0 {
		w = max(10, int(float64(m.width)*0.70))
	}
	if m.height > 0 {
		h = max(3, m.height-6)
	}
	return w, h
}

func (m *Model) viewIdle() string {
	lines := []string{
		titleStyle.Render("Star Catcher"),
		"",
		"Type the letter next to a falling item to catch it.",
		"Stars, hearts and sparkles score; bombs cost a life.",
		"",
		footerStyle.Render("enter: play  q: quit"),
	}
	if m.status != "" {
		lines = append(lines, noticeStyle.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		strings.Join(lines, "\n"),
		"",
		renderBoard(m.board, ""),
	)
}

func (m *Model) viewPlaying() string {
	snap := m.engine.Snapshot()
	w, h := m.fieldSize()
	field := fieldStyle.Render(renderPlayfield(snap.Items, w, h, true))
	return lipgloss.JoinVertical(lipgloss.Left,
		statusStyle.Render(renderStatus(snap)),
		field,
		footerStyle.Render("type letters to catch  esc: quit round"),
	)
}

func (m *Model) viewOver() string {
	heading := "Time's up!"
	if m.last.EndReason == model.EndNoLives {
		heading = "Out of lives!"
	}
	lines := []string{
		titleStyle.Render(heading),
		fmt.Sprintf("Final score: %d", m.last.Score),
	}
	if m.last.Mode == model.ModeCatch {
		lines = append(lines, fmt.Sprintf("Caught %d  Missed %d  Best combo x%d", m.last.Hits, m.last.Misses, m.last.BestCombo))
	}
	lines = append(lines, "")
	if m.submitted {
		lines = append(lines, footerStyle.Render("enter: play again  esc: menu"))
	} else {
		lines = append(lines, m.name.View(), footerStyle.Render("enter: save score  esc: skip"))
	}
	if m.status != "" {
		lines = append(lines, noticeStyle.Render(m.status))
	}
	highlight := ""
	if m.submitted {
		highlight = m.name.Value()
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		strings.Join(lines, "\n"),
		"",
		renderBoard(m.board, highlight),
	)
}

func renderStatus(snap model.Snapshot) string {
	segments := []string{
		fmt.Sprintf("Score %d", snap.Score),
		fmt.Sprintf("Time %ds", snap.TimeRemaining),
	}
	if snap.LivesEnabled {
		segments = append(segments, "Lives "+strings.Repeat("♥", snap.Lives))
	}
	if snap.Mode == model.ModeCatch {
		segments = append(segments, fmt.Sprintf("Combo x%d", max(snap.Combo, 1)))
	}
	return strings.Join(segments, "  ")
}

func renderBoard(entries []model.Entry, highlight string) string {
	lines := []string{titleStyle.Render("Leaderboard")}
	if len(entries) == 0 {
		lines = append(lines, footerStyle.Render("No scores yet."))
	}
	nameWidth := 4
	for _, e := range entries {
		nameWidth = max(nameWidth, lipgloss.Width(e.Name))
	}
	for i, e := range entries {
		line := fmt.Sprintf("%d. %s %5d", i+1, e.Name+strings.Repeat(" ", nameWidth-lipgloss.Width(e.Name)), e.Score)
		if highlight != "" && e.Name == strings.TrimSpace(highlight) {
			line = noticeStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return boardStyle.Render(strings.Join(lines, "\n"))
}
