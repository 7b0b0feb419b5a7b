// Package statsui provides the Bubble Tea ledger browser.
package statsui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typeledger/internal/model"
	"github.com/verte-zerg/typeledger/internal/stats"
)

const (
	tabOverview = iota
	tabResults
	tabPersonalBests
)

var windows = []int{5, 10, 20, 50, 100}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Source provides the snapshot being browsed.
type Source interface {
	Get() *model.Snapshot
	TestActivity(year string) ([]int, bool)
}

// Model implements the Bubble Tea ledger browser.
type Model struct {
	source Source
	window int
	year   string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	results   table.Model

	width  int
	height int
}

// NewModel constructs a ledger browser showing moving averages over window
// results and the activity of year.
func NewModel(source Source, window int, year string) *Model {
	if window <= 0 {
		window = windows[1]
	}
	m := &Model{
		source: source,
		window: window,
		year:   year,
		tabs:   []string{"Overview", "Results", "Personal Bests"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.results = table.New(table.WithColumns(resultColumns()), table.WithFocused(true))
	m.results.SetStyles(resultTableStyles())
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.window = stepWindow(m.window, 1)
			m.refresh()
			return m, nil
		case "-":
			m.window = stepWindow(m.window, -1)
			m.refresh()
			return m, nil
		case "g", "home":
			if m.activeTab == tabResults {
				m.results.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabResults {
				m.results.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabResults {
			m.results, cmd = m.results.Update(msg)
			return m, cmd
		}
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	var body string
	if m.activeTab == tabResults {
		body = tableMutedStyle.Render(m.results.View())
		if len(m.results.Rows()) == 0 {
			body = "No results yet."
		}
	} else {
		body = m.viewports[m.activeTab].View()
	}
	footer := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Quit: q")
	return strings.Join([]string{header, fitLines(body, m.width, bodyHeight), fitLines(footer, m.width, 1)}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight int) {
	headerHeight = max(lipgloss.Height(activeNavStyle.Render("X")), 1) + 1
	bodyHeight = max(m.height-headerHeight-1, 1)
	return headerHeight, bodyHeight
}

func (m *Model) updateLayout() {
	_, bodyHeight := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.results.SetWidth(m.width)
	m.results.SetHeight(max(bodyHeight-1, 1))
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
}

func stepWindow(current, delta int) int {
	idx := 0
	for i, w := range windows {
		if w <= current {
			idx = i
		}
	}
	idx = min(max(idx+delta, 0), len(windows)-1)
	return windows[idx]
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	settings := headerStyle.Render(fmt.Sprintf("Settings: window=%d  activity=%s", m.window, m.year))
	return tabs + "\n" + settings
}

func (m *Model) refresh() {
	snap := m.source.Get()
	width := m.width
	if width <= 0 {
		width = 80
	}
	if snap == nil {
		for i := range m.viewports {
			m.viewports[i].SetContent("No snapshot loaded.")
		}
		m.results.SetRows(nil)
		return
	}
	m.viewports[tabOverview].SetContent(m.renderOverview(snap, width))
	m.viewports[tabPersonalBests].SetContent(renderTo(func(buf *bytes.Buffer) error {
		return stats.RenderPersonalBests(buf, snap.PersonalBests)
	}))
	m.results.SetRows(resultRows(snap))
}

func (m *Model) renderOverview(snap *model.Snapshot, width int) string {
	if len(snap.Results) == 0 {
		return "No results yet."
	}
	s := stats.Summarize(snap, m.window)
	cards := []string{
		metricCard("Tests", fmt.Sprintf("%d", s.Results)),
		metricCard(fmt.Sprintf("Avg WPM (%d)", m.window), fmt.Sprintf("%.1f", s.AvgWPM)),
		metricCard("Best WPM", fmt.Sprintf("%.1f", s.BestWPM)),
		metricCard(fmt.Sprintf("Avg Acc (%d)", m.window), fmt.Sprintf("%.1f%%", s.AvgAcc)),
		metricCard("XP", fmt.Sprintf("%d", s.XP)),
		metricCard("Streak", fmt.Sprintf("%d / %d", s.Streak, s.MaxStreak)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...)
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...)
		summary = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	history := renderTo(func(buf *bytes.Buffer) error {
		if err := stats.RenderHistory(buf, snap.Results, m.window, width); err != nil {
			return err
		}
		days, ok := m.source.TestActivity(m.year)
		if !ok {
			return nil
		}
		return stats.RenderActivity(buf, days, width)
	})
	return strings.TrimRight(summary+"\n\n"+history, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderTo(render func(buf *bytes.Buffer) error) string {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Sprintf("Failed to render: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func resultColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Test", Width: 10},
		{Title: "WPM", Width: 7},
		{Title: "Acc", Width: 7},
		{Title: "Raw", Width: 7},
		{Title: "Cons", Width: 5},
		{Title: "Variant", Width: 16},
		{Title: "Tags", Width: 20},
	}
}

func resultRows(snap *model.Snapshot) []table.Row {
	names := make(map[string]string, len(snap.Tags))
	for _, t := range snap.Tags {
		names[t.ID] = t.Name
	}
	rows := make([]table.Row, 0, len(snap.Results))
	for _, r := range snap.Results {
		tags := make([]string, 0, len(r.Tags))
		for _, id := range r.Tags {
			if name, ok := names[id]; ok {
				tags = append(tags, name)
			}
		}
		test := fmt.Sprintf("%s %s", r.Mode, r.Mode2)
		if r.IsPB {
			test += " *"
		}
		v := r.Variant()
		rows = append(rows, table.Row{
			r.Time().Local().Format("2006-01-02 15:04"),
			test,
			fmt.Sprintf("%.2f", r.WPM),
			fmt.Sprintf("%.2f%%", r.Acc),
			fmt.Sprintf("%.2f", r.RawWPM),
			fmt.Sprintf("%.0f%%", r.Consistency),
			stats.VariantLabel(v.Punctuation, v.Numbers, v.Difficulty, v.LazyMode),
			strings.Join(tags, ","),
		})
	}
	return rows
}

func resultTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

