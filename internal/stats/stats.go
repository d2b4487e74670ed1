// Package stats contains round statistics and text reports.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/starcatch/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a list of rounds.
type Summary struct {
	Rounds     int
	BestScore  int
	AvgScore   float64
	BestCombo  int
	Hits       int
	Misses     int
	HazardHits int
	NoLives    int
}

// Accuracy is hits over hits plus misses and hazard hits.
func (s Summary) Accuracy() float64 {
	den := s.Hits + s.Misses + s.HazardHits
	if den == 0 {
		return 0
	}
	return float64(s.Hits) / float64(den)
}

// Summarize computes totals over rounds.
func Summarize(rounds []model.Round) Summary {
	var sum Summary
	if len(rounds) == 0 {
		return sum
	}
	total := 0
	for _, r := range rounds {
		sum.Rounds++
		total += r.Score
		if r.Score > sum.BestScore {
			sum.BestScore = r.Score
		}
		if r.BestCombo > sum.BestCombo {
			sum.BestCombo = r.BestCombo
		}
		sum.Hits += r.Hits
		sum.Misses += r.Misses
		sum.HazardHits += r.HazardHits
		if r.EndReason == model.EndNoLives {
			sum.NoLives++
		}
	}
	sum.AvgScore = float64(total) / float64(sum.Rounds)
	return sum
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Resample shrinks values to at most width points by averaging buckets.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// RenderSummary prints the summary block for rounds.
func RenderSummary(w io.Writer, rounds []model.Round) error {
	if len(rounds) == 0 {
		_, err := fmt.Fprintln(w, "No rounds found.")
		return err
	}
	sum := Summarize(rounds)
	lines := []string{
		"Summary",
		fmt.Sprintf("Rounds: %d", sum.Rounds),
		fmt.Sprintf("Best score: %d", sum.BestScore),
		fmt.Sprintf("Avg score: %.2f", sum.AvgScore),
		fmt.Sprintf("Best combo: x%d", sum.BestCombo),
		fmt.Sprintf("Accuracy: %.2f%%", sum.Accuracy()*100),
		fmt.Sprintf("Out of lives: %d", sum.NoLives),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrend prints a score sparkline smoothed over window rounds.
func RenderTrend(w io.Writer, rounds []model.Round, window, width int) error {
	if len(rounds) == 0 {
		return nil
	}
	scores := make([]float64, len(rounds))
	for i, r := range rounds {
		scores[i] = float64(r.Score)
	}
	scores = Resample(MovingAverage(scores, window), width)
	if _, err := fmt.Fprintf(w, "Score trend (avg of %d)\n", max(window, 1)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "[%s]\n\n", Sparkline(scores)); err != nil {
		return err
	}
	return nil
}

// RenderRounds prints the most recent rounds as a table, newest first.
func RenderRounds(w io.Writer, rounds []model.Round, limit int) error {
	if len(rounds) == 0 {
		return nil
	}
	if limit > 0 && len(rounds) > limit {
		rounds = rounds[len(rounds)-limit:]
	}
	if _, err := fmt.Fprintln(w, "Recent Rounds"); err != nil {
		return err
	}
	headers := []string{"Ended", "Mode", "Score", "Hits", "Misses", "Combo", "End"}
	rows := make([][]string, 0, len(rounds))
	for i := len(rounds) - 1; i >= 0; i-- {
		r := rounds[i]
		rows = append(rows, []string{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			string(r.Mode),
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("%d", r.Hits),
			fmt.Sprintf("%d", r.Misses+r.HazardHits),
			fmt.Sprintf("x%d", r.BestCombo),
			string(r.EndReason),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
