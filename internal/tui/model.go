// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/typeledger/internal/generator"
	"github.com/verte-zerg/typeledger/internal/model"
	"github.com/verte-zerg/typeledger/internal/practice"
	statsPkg "github.com/verte-zerg/typeledger/internal/stats"
)

// Settings selects the test to practice. Only time and words modes are
// typed interactively.
type Settings struct {
	Mode        model.Mode
	Seconds     int
	Words       int
	Language    string
	Punctuation bool
	Numbers     bool
	Difficulty  model.Difficulty
	LazyMode    bool
	Funbox      []string
}

// Mode2 returns the mode2 of the configured test.
func (s Settings) Mode2() model.Mode2 {
	if s.Mode == model.ModeTime {
		return model.Mode2For(s.Mode, s.Seconds)
	}
	return model.Mode2For(s.Mode, s.Words)
}

// Key returns the variant key of the configured test.
func (s Settings) Key() model.VariantKey {
	return model.VariantKey{
		Punctuation: s.Punctuation,
		Numbers:     s.Numbers,
		Difficulty:  s.Difficulty,
		Language:    s.Language,
		LazyMode:    s.LazyMode,
	}
}

// Recorder stores completed tests.
type Recorder interface {
	Complete(ctx context.Context, ev model.CompletedEvent) (practice.Outcome, error)
}

// Ledger answers the footer's questions about past results.
type Ledger interface {
	Get() *model.Snapshot
	LocalPB(mode model.Mode, mode2 model.Mode2, key model.VariantKey, funboxNames []string) (model.PersonalBest, bool)
	AverageOf10(mode model.Mode, mode2 model.Mode2, key model.VariantKey) (float64, float64)
}

const (
	timeModeBatch  = 60
	timeModeRefill = 40
)

// Model implements the Bubble Tea typing UI.
type Model struct {
	settings Settings
	recorder Recorder
	ledger   Ledger
	gen      *generator.Generator
	words    []string
	logger   *zap.Logger
	now      func() time.Time

	width  int
	height int

	targetRunes []rune
	inputRunes  []rune

	started   bool
	startedAt time.Time
	timer     timer.Model

	correctKeys   int
	incorrectKeys int
	// perSecond counts keystrokes in each elapsed second.
	perSecond []int

	restarts   int
	incomplete []model.IncompleteTest

	last    *practice.Outcome
	lastErr string

	pbWPM  float64
	hasPB  bool
	avgWPM float64
	avgAcc float64
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	pbStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// NewModel constructs a typing TUI model.
func NewModel(settings Settings, recorder Recorder, ledger Ledger, gen *generator.Generator, words []string, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{
		settings: settings,
		recorder: recorder,
		ledger:   ledger,
		gen:      gen,
		words:    words,
		logger:   logger,
		now:      time.Now,
	}
	m.resetSession()
	m.loadFooterStats()
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
		return m, nil
	case timer.TickMsg, timer.StartStopMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd
	case timer.TimeoutMsg:
		if msg.ID == m.timer.ID() && m.started {
			m.finishSession(false)
			m.resetSession()
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			m.restart()
			return m, nil
		case tea.KeyBackspace, tea.KeyDelete:
			m.handleBackspace()
			return m, nil
		case tea.KeySpace:
			return m, m.handleRunes([]rune{' '})
		case tea.KeyRunes:
			return m, m.handleRunes(msg.Runes)
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.targetRunes) == 0 {
		return ""
	}
	cursor := -1
	if len(m.inputRunes) < len(m.targetRunes) {
		cursor = len(m.inputRunes)
	}
	cells := styleCells(m.targetRunes, m.inputRunes, cursor)
	if m.width == 0 || m.height == 0 {
		return joinCells(cells)
	}
	contentWidth := max(int(float64(m.width)*0.70), 1)
	lines := window(breakLines(cells, contentWidth), cursor, visibleLines)
	content := lipgloss.NewStyle().Width(contentWidth).Render(renderLines(cells, lines))
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) handleBackspace() {
	if len(m.inputRunes) == 0 {
		return
	}
	m.inputRunes = m.inputRunes[:len(m.inputRunes)-1]
}

func (m *Model) handleRunes(runes []rune) tea.Cmd {
	var cmd tea.Cmd
	for _, r := range runes {
		if len(m.inputRunes) >= len(m.targetRunes) {
			return cmd
		}
		now := m.now()
		if !m.started {
			m.started = true
			m.startedAt = now
			if m.settings.Mode == model.ModeTime {
				cmd = m.timer.Init()
			}
		}
		pos := len(m.inputRunes)
		expected := m.targetRunes[pos]
		m.inputRunes = append(m.inputRunes, r)
		m.countKey(now, r == expected)

		if m.failed(pos, r == expected) {
			m.finishSession(true)
			m.resetSession()
			return cmd
		}
		if m.settings.Mode == model.ModeTime && len(m.targetRunes)-len(m.inputRunes) < timeModeRefill {
			m.extendText()
		}
		if len(m.inputRunes) == len(m.targetRunes) {
			m.finishSession(false)
			m.resetSession()
			return cmd
		}
	}
	return cmd
}

// failed applies the difficulty rules: master fails on any wrong key,
// expert on submitting a word that contains an error.
func (m *Model) failed(pos int, correct bool) bool {
	switch m.settings.Difficulty {
	case model.DifficultyMaster:
		return !correct
	case model.DifficultyExpert:
		if m.targetRunes[pos] != ' ' {
			return false
		}
		start := pos
		for start > 0 && m.targetRunes[start-1] != ' ' {
			start--
		}
		for i := start; i <= pos; i++ {
			if m.inputRunes[i] != m.targetRunes[i] {
				return true
			}
		}
	}
	return false
}

func (m *Model) countKey(at time.Time, correct bool) {
	if correct {
		m.correctKeys++
	} else {
		m.incorrectKeys++
	}
	sec := int(at.Sub(m.startedAt) / time.Second)
	for len(m.perSecond) <= sec {
		m.perSecond = append(m.perSecond, 0)
	}
	m.perSecond[sec]++
}

func (m *Model) restart() {
	if m.started {
		elapsed := m.now().Sub(m.startedAt).Seconds()
		m.incomplete = append(m.incomplete, model.IncompleteTest{
			Acc:     statsPkg.RoundTo2(statsPkg.Accuracy(m.correctKeys, m.incorrectKeys)),
			Seconds: statsPkg.RoundTo2(elapsed),
		})
		m.restarts++
	}
	m.resetSession()
}

func (m *Model) loadFooterStats() {
	s := m.settings
	pb, ok := m.ledger.LocalPB(s.Mode, s.Mode2(), s.Key(), s.Funbox)
	m.pbWPM, m.hasPB = pb.WPM, ok
	m.avgWPM, m.avgAcc = m.ledger.AverageOf10(s.Mode, s.Mode2(), s.Key())
}

func (m *Model) renderFooter() string {
	if len(m.targetRunes) == 0 {
		return ""
	}
	var segments []string
	if m.settings.Mode == model.ModeTime {
		remaining := m.settings.Seconds
		if m.started {
			remaining = int(m.timer.Timeout.Round(time.Second) / time.Second)
		}
		segments = append(segments, fmt.Sprintf("%s %ds", m.settings.Mode, remaining))
	} else {
		progress := int(float64(len(m.inputRunes)) / float64(len(m.targetRunes)) * 100)
		segments = append(segments, fmt.Sprintf("%s %s %d%%", m.settings.Mode, m.settings.Mode2(), progress))
	}
	if m.last != nil {
		r := m.last.Result
		last := fmt.Sprintf("Last %.1f WPM · %.1f%% · +%d XP", r.WPM, r.Acc, m.last.XP)
		if m.last.IsPB {
			last += " " + pbStyle.Render("PB!")
		}
		segments = append(segments, last)
	}
	if m.lastErr != "" {
		segments = append(segments, incorrectStyle.Render(m.lastErr))
	}
	if m.hasPB {
		segments = append(segments, fmt.Sprintf("PB %.1f", m.pbWPM))
	}
	if m.avgWPM > 0 {
		segments = append(segments, fmt.Sprintf("Avg10 %.1f WPM · %.1f%%", m.avgWPM, m.avgAcc))
	}
	if snap := m.ledger.Get(); snap != nil {
		segments = append(segments, fmt.Sprintf("XP %d", snap.XP))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) resetSession() {
	m.inputRunes = nil
	m.started = false
	m.startedAt = time.Time{}
	m.correctKeys = 0
	m.incorrectKeys = 0
	m.perSecond = nil
	m.timer = timer.NewWithInterval(time.Duration(m.settings.Seconds)*time.Second, 100*time.Millisecond)

	count := m.settings.Words
	if m.settings.Mode == model.ModeTime {
		count = timeModeBatch
	}
	m.targetRunes = []rune(m.generateText(count))
}

func (m *Model) extendText() {
	more := m.generateText(timeModeBatch)
	if more == "" {
		return
	}
	m.targetRunes = append(m.targetRunes, ' ')
	m.targetRunes = append(m.targetRunes, []rune(more)...)
}

func (m *Model) generateText(count int) string {
	words := m.gen.Generate(m.words, count, generator.Options{
		Punctuation: m.settings.Punctuation,
		Numbers:     m.settings.Numbers,
	})
	return strings.Join(words, " ")
}

func (m *Model) finishSession(bailedOut bool) {
	if !m.started {
		return
	}
	ev := m.buildEvent(m.now(), bailedOut)
	out, err := m.recorder.Complete(context.Background(), ev)
	if err != nil {
		m.logger.Error("failed to record result", zap.Error(err))
		m.lastErr = "result not saved"
		return
	}
	m.restarts = 0
	m.incomplete = nil
	m.lastErr = ""
	m.last = &out
	m.loadFooterStats()
}

func (m *Model) buildEvent(endedAt time.Time, bailedOut bool) model.CompletedEvent {
	s := m.settings
	elapsed := endedAt.Sub(m.startedAt).Seconds()
	if s.Mode == model.ModeTime && !bailedOut {
		elapsed = float64(s.Seconds)
	}

	var correctChars, incorrectChars int
	for i, r := range m.inputRunes {
		if r == m.targetRunes[i] {
			correctChars++
		} else {
			incorrectChars++
		}
	}
	missed := 0
	if s.Mode == model.ModeWords {
		missed = len(m.targetRunes) - len(m.inputRunes)
	}

	raw := make([]float64, 0, len(m.perSecond))
	afk := 0
	for _, n := range m.perSecond {
		raw = append(raw, statsPkg.WPM(n, 1))
		if n == 0 {
			afk++
		}
	}

	var incompleteSeconds float64
	for _, it := range m.incomplete {
		incompleteSeconds += it.Seconds
	}

	return model.CompletedEvent{
		Result: model.Result{
			Mode:                  s.Mode,
			Mode2:                 s.Mode2(),
			Punctuation:           model.Bool(s.Punctuation),
			Numbers:               model.Bool(s.Numbers),
			LazyMode:              model.Bool(s.LazyMode),
			Difficulty:            s.Difficulty,
			Language:              s.Language,
			WPM:                   statsPkg.RoundTo2(statsPkg.WPM(correctChars, elapsed)),
			RawWPM:                statsPkg.RoundTo2(statsPkg.WPM(len(m.inputRunes), elapsed)),
			Acc:                   statsPkg.RoundTo2(statsPkg.Accuracy(m.correctKeys, m.incorrectKeys)),
			Consistency:           statsPkg.Consistency(raw),
			CharStats:             []int{correctChars, incorrectChars, 0, missed},
			Funbox:                append([]string(nil), s.Funbox...),
			TestDuration:          statsPkg.RoundTo2(elapsed),
			AfkDuration:           float64(afk),
			IncompleteTestSeconds: statsPkg.RoundTo2(incompleteSeconds),
			RestartCount:          m.restarts,
			BailedOut:             bailedOut,
		},
		IncompleteTests: append([]model.IncompleteTest(nil), m.incomplete...),
	}
}
