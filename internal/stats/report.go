package stats

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/starcatch/internal/model"
)

const terminalWidthBackup = 80

// RoundLister loads round history.
type RoundLister interface {
	ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.Round, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Rounds  []model.Round
	Summary Summary
}

// BuildReport loads rounds and summarizes them.
func BuildReport(ctx context.Context, st RoundLister, cfg model.StatsConfig) (Report, error) {
	rounds, err := st.ListRounds(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load rounds: %w", err)
	}
	return Report{Rounds: rounds, Summary: Summarize(rounds)}, nil
}

// Render prints the summary, trend line and recent rounds.
func (r Report) Render(w io.Writer, window, recent int) error {
	if err := RenderSummary(w, r.Rounds); err != nil {
		return err
	}
	if err := RenderTrend(w, r.Rounds, window, TerminalWidth(w)-2); err != nil {
		return err
	}
	return RenderRounds(w, r.Rounds, recent)
}

// RenderLeaderboard prints ranked entries. The header is bold when w is a
// terminal.
func RenderLeaderboard(w io.Writer, entries []model.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No scores yet.")
		return err
	}
	headers := []string{"#", "Name", "Score", "Date"}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		date := ""
		if !e.CreatedAt.IsZero() {
			date = e.CreatedAt.Local().Format("2006-01-02")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			e.Name,
			fmt.Sprintf("%d", e.Score),
			date,
		})
	}
	lines := formatTable(headers, rows, map[int]bool{0: true, 2: true})
	if isTerminal(w) {
		lines[0] = lipgloss.NewStyle().Bold(true).Render(lines[0])
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// TerminalWidth returns the width of w when it is a terminal, or a default.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
