// Terminal browser for recorded optimization runs: pick a run, inspect its
// ranked parameter combinations.
//
// Keys: up/down select, enter open, esc back, q quit.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tradelab/internal/config"
	"tradelab/internal/optimize"
	"tradelab/internal/store"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("236"))
	rankStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	scoreStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	paramsStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

type resultsLoadedMsg struct {
	runID   int64
	results []optimize.Result
	err     error
}

type model struct {
	rs   *store.ResultStore
	runs []store.Run

	// Run list state.
	cursor int

	// Detail state.
	showing  bool
	run      store.Run
	viewport viewport.Model
	loadErr  error

	ready         bool
	width, height int
}

func initialModel(rs *store.ResultStore, runs []store.Run) model {
	return model{rs: rs, runs: runs}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) loadResults(runID int64) tea.Cmd {
	rs := m.rs
	return func() tea.Msg {
		results, err := rs.GetResults(context.Background(), runID)
		return resultsLoadedMsg{runID: runID, results: results, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.showing {
				m.showing = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if !m.showing && m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if !m.showing && m.cursor < len(m.runs)-1 {
				m.cursor++
			}
		case "enter":
			if !m.showing && len(m.runs) > 0 {
				m.run = m.runs[m.cursor]
				m.showing = true
				m.loadErr = nil
				m.viewport.SetContent(dimStyle.Render("loading..."))
				return m, m.loadResults(m.run.ID)
			}
		}
		if m.showing {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case resultsLoadedMsg:
		if !m.showing || msg.runID != m.run.ID {
			return m, nil
		}
		if msg.err != nil {
			m.loadErr = msg.err
			m.viewport.SetContent("")
			return m, nil
		}
		m.viewport.SetContent(renderResults(msg.results))
		m.viewport.GotoTop()
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		headerHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight
		}
	}
	return m, nil
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}
	if m.showing {
		return m.detailView()
	}
	return m.listView()
}

func (m model) listView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Optimization runs"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-5s %-20s %-22s %-10s %-7s %-6s", "ID", "Strategy", "Started", "Objective", "Folds", "OOS")))
	b.WriteString("\n")

	if len(m.runs) == 0 {
		b.WriteString(dimStyle.Render("no runs recorded yet"))
		b.WriteString("\n")
		return b.String()
	}

	for i, r := range m.runs {
		line := fmt.Sprintf("%-5d %-20s %-22s %-10s %-7d %-6.2f",
			r.ID, trim(r.Strategy, 20), r.StartedAt.Format("2006-01-02 15:04"),
			r.Objective, r.Folds, r.OOSFrac)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: open   q: quit"))
	return b.String()
}

func (m model) detailView() string {
	title := titleStyle.Render(fmt.Sprintf("Run %d", m.run.ID)) +
		dimStyle.Render(fmt.Sprintf("  %s  %s  ranges %s", m.run.Strategy, m.run.Objective, trim(m.run.Ranges, 48)))
	if m.loadErr != nil {
		return title + "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(m.loadErr.Error())
	}
	footer := dimStyle.Render("esc: back   q: quit")
	return title + "\n" + m.viewport.View() + "\n" + footer
}

func renderResults(results []optimize.Result) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-5s %-9s %-9s %-8s %-8s %-7s %-7s %s",
		"Rank", "Score", "Sharpe", "CAGR%", "MaxDD%", "Win%", "Trades", "Params")))
	b.WriteString("\n")
	for _, r := range results {
		b.WriteString(fmt.Sprintf("%s %s %-9.4f %-8.2f %-8.2f %-7.2f %-7d %s",
			rankStyle.Render(fmt.Sprintf("%-5d", r.Rank)),
			scoreStyle.Render(fmt.Sprintf("%-9.4f", r.Score)),
			r.Sharpe, r.CAGRPct, r.MaxDDPct, r.WinRatePct, r.Trades,
			paramsStyle.Render(r.Params)))
		b.WriteString("\n")
	}
	if len(results) == 0 {
		b.WriteString(dimStyle.Render("no results for this run"))
		b.WriteString("\n")
	}
	return b.String()
}

func trim(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func main() {
	cfgPath := flag.String("config", defaultConfigPath(), "config file path")
	dbPath := flag.String("db", "", "SQLite results database (defaults to storage.sqlite_path)")
	flag.Parse()

	cfg := loadConfig(*cfgPath)
	path := *dbPath
	if path == "" {
		path = cfg.Storage.SQLitePath
	}

	rs, err := store.NewResultStore(path)
	if err != nil {
		log.Fatalf("opening %s: %v", path, err)
	}
	defer rs.Close()

	runs, err := rs.ListRuns(context.Background())
	if err != nil {
		log.Fatalf("listing runs: %v", err)
	}

	p := tea.NewProgram(initialModel(rs, runs), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("tui error: %v", err)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("TRADELAB_CONFIG"); p != "" {
		return p
	}
	return "config/tradelab.yaml"
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Default()
		}
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
