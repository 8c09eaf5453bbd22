package scoring

import (
	"fmt"
	"io"
	"strings"
)

// PlotRankingTerminal writes a horizontal bar chart of the ranked scores, best first.
func PlotRankingTerminal(w io.Writer, ranked *RankedTable, title string) {
	if ranked == nil || len(ranked.Entries) == 0 {
		fmt.Fprintf(w, "\n%s: nothing to plot\n", title)
		return
	}

	// Entries are sorted descending, so the extremes sit at both ends
	maxScore := ranked.Entries[0].Score
	minScore := ranked.Entries[len(ranked.Entries)-1].Score

	keyWidth := len(ranked.KeyColumn)
	for _, e := range ranked.Entries {
		keyWidth = max(keyWidth, len(e.Record.Key))
	}

	fmt.Fprintf(w, "\n%s (Terminal Plot - Descending Order):\n", title)
	fmt.Fprintf(w, "%4s | %-*s | %-10s | Bar Chart\n", "#", keyWidth, ranked.KeyColumn, "Score")
	fmt.Fprintln(w, strings.Repeat("-", 4)+"-|-"+strings.Repeat("-", keyWidth)+"-|-"+strings.Repeat("-", 10)+"-|"+strings.Repeat("-", 50))

	maxBarWidth := 50
	for _, e := range ranked.Entries {
		var barWidth int
		if maxScore != minScore {
			barWidth = int((e.Score - minScore) / (maxScore - minScore) * float64(maxBarWidth))
		} else {
			barWidth = maxBarWidth / 2
		}

		bar := strings.Repeat("█", barWidth)
		if barWidth == 0 {
			bar = "▏"
		}

		fmt.Fprintf(w, "%4d | %-*s | %10.4f | %s\n", e.Position, keyWidth, e.Record.Key, e.Score, bar)
	}

	fmt.Fprintf(w, "\nScale: Min=%.6f, Max=%.6f\n", minScore, maxScore)
	fmt.Fprintf(w, "Bar width represents relative net score (0 to %d chars)\n", maxBarWidth)
}
