package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/cosmic-tales/internal/engine"
	"github.com/tatianab/cosmic-tales/internal/report"
	"github.com/tatianab/cosmic-tales/internal/stats"
	"github.com/tatianab/cosmic-tales/internal/story"
)

type sessionState int

const (
	stateMenu sessionState = iota
	statePlaying
	stateReport
	stateError
)

var (
	storyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	locationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			PaddingLeft(2)

	selectedChoiceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#EEEEEE")).
				Background(lipgloss.Color("#5F5F87")).
				Bold(true).
				PaddingLeft(1)

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true).
			PaddingLeft(4)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F5F87")).
			Padding(1, 2)

	barFillStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
)

type storyItem struct {
	module *story.Module
}

func (i storyItem) Title() string { return i.module.Title }
func (i storyItem) Description() string {
	return fmt.Sprintf("%d scenes · %s scoring", len(i.module.Graph.Nodes), i.module.Scoring)
}
func (i storyItem) FilterValue() string { return i.module.Title }

type model struct {
	state    sessionState
	ctrl     *engine.Controller
	store    *stats.Store
	profile  *stats.Profile
	menu     list.Model
	module   *story.Module
	run      *engine.Run
	viewport viewport.Model
	cursor   int
	report   *report.Report
	err      error
	width    int
	height   int
}

// NewModel builds the TUI over the bundled story modules. The profile may be
// nil when career stats are disabled; defaultStory preselects a menu entry
// when it names a bundled module.
func NewModel(ctrl *engine.Controller, store *stats.Store, profile *stats.Profile, defaultStory string) model {
	items := []list.Item{}
	selected := 0
	for i, m := range story.Modules() {
		if m.ID == defaultStory {
			selected = i
		}
		items = append(items, storyItem{module: m})
	}

	menu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "COSMIC TALES"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)
	menu.Select(selected)

	return model{
		state:   stateMenu,
		ctrl:    ctrl,
		store:   store,
		profile: profile,
		menu:    menu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-4)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height / 2
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateMenu:
			return m.updateMenu(msg)
		case statePlaying:
			return m.updatePlaying(msg)
		case stateReport:
			return m.updateReport(msg)
		case stateError:
			if msg.Type == tea.KeyEsc || msg.Type == tea.KeyCtrlC {
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	if m.state == stateMenu {
		m.menu, cmd = m.menu.Update(msg)
	}
	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		item, ok := m.menu.SelectedItem().(storyItem)
		if !ok {
			return m, nil
		}
		return m.startStory(item.module)
	}
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m model) startStory(mod *story.Module) (tea.Model, tea.Cmd) {
	run, err := m.ctrl.StartRun(mod)
	if err != nil {
		m.err = err
		m.state = stateError
		return m, nil
	}
	m.module = mod
	m.run = run
	m.cursor = 0
	m.state = statePlaying

	if m.profile != nil {
		m.profile.RecordStart(mod.ID, run.CurrentKey, time.Now())
		m.saveProfile()
	}

	m.refreshViewport()
	return m, nil
}

func (m model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	node, err := m.ctrl.CurrentNode(m.module, m.run)
	if err != nil {
		m.err = err
		m.state = stateError
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.cursor < len(node.Choices)-1 {
			m.cursor++
		}
		return m, nil
	case tea.KeyEnter:
		return m.choose(m.cursor)
	}

	// Digit keys jump straight to a choice.
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		idx := int(s[0] - '1')
		if idx < len(node.Choices) {
			return m.choose(idx)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) choose(idx int) (tea.Model, tea.Cmd) {
	if err := m.ctrl.ApplyChoice(m.module, m.run, idx); err != nil {
		m.err = err
		m.state = stateError
		return m, nil
	}
	m.cursor = 0
	m.refreshViewport()

	if engine.IsEnded(m.run) {
		rep := report.Compute(m.module, m.run)
		m.report = &rep
		m.state = stateReport
		if m.profile != nil {
			m.profile.RecordCompletion(rep, time.Now())
			m.saveProfile()
		}
	}
	return m, nil
}

func (m model) updateReport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "r":
		return m.startStory(m.module)
	case "m":
		m.state = stateMenu
		m.module = nil
		m.run = nil
		m.report = nil
		return m, nil
	}
	return m, nil
}

func (m *model) refreshViewport() {
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(max(m.width-4, 60), max(m.height/2, 10))
	}
	node, err := m.ctrl.CurrentNode(m.module, m.run)
	if err != nil {
		return
	}
	text := storyStyle.Width(m.viewport.Width).Render(node.Text)
	m.viewport.SetContent(text)
	m.viewport.GotoTop()
}

func (m *model) saveProfile() {
	if m.store == nil || m.profile == nil {
		return
	}
	// Saving is best-effort; a failed save never interrupts play.
	_ = m.store.Save(m.profile)
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return "\n" + m.menu.View()
	case statePlaying:
		return m.viewPlaying()
	case stateReport:
		return m.viewReport()
	case stateError:
		return fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.\n", m.err)
	}
	return ""
}

func (m model) viewPlaying() string {
	node, err := m.ctrl.CurrentNode(m.module, m.run)
	if err != nil {
		return fmt.Sprintf("\n  Error: %v\n", err)
	}

	header := titleStyle.Render(m.module.Title) + "  " +
		locationStyle.Render("/"+m.run.CurrentKey+"/")

	var choices strings.Builder
	for i, c := range node.Choices {
		line := fmt.Sprintf("%d. %s", i+1, c.Text)
		if i == m.cursor {
			choices.WriteString(selectedChoiceStyle.Render("> " + line))
		} else {
			choices.WriteString(choiceStyle.Render(line))
		}
		choices.WriteString("\n")
		if c.Description != "" {
			choices.WriteString(descStyle.Render(c.Description) + "\n")
		}
	}

	help := helpStyle.Render("↑/↓ select · enter choose · esc quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		"\n"+header,
		"",
		m.viewport.View(),
		"",
		choices.String(),
		help,
	)
}

func (m model) viewReport() string {
	rep := m.report

	var b strings.Builder
	b.WriteString(titleStyle.Render("DECISION ANALYSIS") + "\n\n")
	b.WriteString(fmt.Sprintf("Your journey ended at: %s\n\n", rep.EndingKey))
	b.WriteString(fmt.Sprintf("Ending:     %s\n", rep.EndingLabel))
	b.WriteString(fmt.Sprintf("Time taken: %s\n", rep.ElapsedDisplay()))
	b.WriteString(fmt.Sprintf("Decisions:  %d\n", rep.DecisionCount))
	b.WriteString(fmt.Sprintf("Completion: %d%%\n\n", rep.CompletionPercent))

	b.WriteString(scoreBar("Risk Taking", rep.Scores.Risk, rep.Labels.Risk))
	b.WriteString(scoreBar("Diplomacy", rep.Scores.Diplomacy, rep.Labels.Diplomacy))
	b.WriteString(scoreBar("Exploration", rep.Scores.Exploration, rep.Labels.Exploration))

	b.WriteString("\n" + titleStyle.Render("KEY DECISIONS") + "\n")
	for _, d := range rep.Decisions {
		b.WriteString("- " + d.String() + "\n")
	}

	if m.profile != nil {
		b.WriteString("\n" + titleStyle.Render("CAREER") + "\n")
		b.WriteString(fmt.Sprintf("Chapters completed: %d\n", m.profile.ChaptersCompleted))
		avg := m.profile.AverageCompletionTime
		b.WriteString(fmt.Sprintf("Avg completion:     %dm %ds\n", avg/60, avg%60))
	}

	card := cardStyle.Render(b.String())
	help := helpStyle.Render("r restart · m menu · q quit")
	return lipgloss.JoinVertical(lipgloss.Left, "\n"+card, help)
}

func scoreBar(name string, score int, label string) string {
	bar := barFillStyle.Render(strings.Repeat("█", score)) +
		strings.Repeat("░", 10-score)
	return fmt.Sprintf("%-12s %s %2d/10  %s\n", name, bar, score, label)
}

// Run starts the TUI program.
func Run(ctrl *engine.Controller, store *stats.Store, profile *stats.Profile, defaultStory string) error {
	p := tea.NewProgram(NewModel(ctrl, store, profile, defaultStory), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
