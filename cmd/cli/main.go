package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tensorplex-labs/territory-ranker/internal/client"
	"github.com/tensorplex-labs/territory-ranker/internal/evaluator"
	"github.com/tensorplex-labs/territory-ranker/internal/scoring"
	"github.com/tensorplex-labs/territory-ranker/internal/territory"
	"github.com/tensorplex-labs/territory-ranker/internal/utils/logger"
)

type model struct {
	choices       []territory.LevelSpec
	cursor        int
	selectedIndex int // single selection index; -1 until chosen
}

func initialModel(levels []territory.LevelSpec) *model {
	return &model{
		choices:       levels,
		cursor:        0,
		selectedIndex: -1,
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint
	switch msg := msg.(type) { //nolint
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}

		case "enter":
			m.selectedIndex = m.cursor
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m *model) View() string {
	s := "Select a territorial level to rank:\n\n"

	for i, choice := range m.choices {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		s += fmt.Sprintf("%s %-13s (%s: %s)\n", cursor, choice.Level, choice.KeyColumn, strings.Join(choice.Criteria, ", "))
	}

	s += "\nPress enter to rank, q to quit.\n"
	return s
}

func (m *model) Init() tea.Cmd {
	return nil
}

// asRankedTable reshapes an API level result for the terminal plot.
func asRankedTable(res *evaluator.LevelResult) *scoring.RankedTable {
	ranked := &scoring.RankedTable{KeyColumn: res.KeyColumn, Criteria: res.Criteria}
	for _, r := range res.Ranking {
		values := make([]float64, len(res.Criteria))
		for i, c := range res.Criteria {
			values[i] = r.Criteria[c]
		}
		ranked.Entries = append(ranked.Entries, scoring.RankedEntry{
			Record:   scoring.Record{Key: r.Name, Values: values},
			Score:    r.Score,
			Position: r.Position,
		})
	}
	return ranked
}

func selectionFor(level territory.Level, names []string) *evaluator.Request {
	req := &evaluator.Request{Levels: []string{string(level)}}
	switch level {
	case territory.Communes:
		req.SelectedCommunes = names
	case territory.Departements:
		req.SelectedDepartements = names
	case territory.Regions:
		req.SelectedRegions = names
	}
	return req
}

func main() {
	logger.Init()
	ctx := context.Background()

	cfg, err := client.LoadClientConfig(ctx)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	var rc client.RankerClientInterface
	rc, err = client.NewRankerClient(cfg)
	if err != nil {
		fmt.Printf("Error initializing ranker client: %v\n", err)
		os.Exit(1)
	}

	levels, err := rc.Levels(ctx)
	if err != nil {
		fmt.Printf("Error fetching levels: %v\n", err)
		os.Exit(1)
	}

	m := initialModel(levels)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
	if m.selectedIndex < 0 {
		return
	}

	level := m.choices[m.selectedIndex].Level
	rankCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	// remaining arguments name the territories to compare
	resp, err := rc.Rank(rankCtx, selectionFor(level, flag.Args()))
	if err != nil {
		fmt.Printf("Error ranking %s: %v\n", level, err)
		os.Exit(1)
	}

	var res *evaluator.LevelResult
	switch level {
	case territory.Communes:
		res = resp.Communes
	case territory.Departements:
		res = resp.Departements
	case territory.Regions:
		res = resp.Regions
	}
	if res == nil {
		fmt.Printf("No ranking returned for %s\n", level)
		return
	}
	if len(res.Report.Unmatched) > 0 {
		fmt.Printf("Not found: %s\n", strings.Join(res.Report.Unmatched, ", "))
	}
	scoring.PlotRankingTerminal(os.Stdout, asRankedTable(res), fmt.Sprintf("Ranking of %s", level))
}
