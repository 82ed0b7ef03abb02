package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/coagsim/internal/automation"
	"github.com/san-kum/coagsim/internal/config"
	"github.com/san-kum/coagsim/internal/experiment"
	"github.com/sirupsen/logrus"
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

type entry struct {
	strategy, preset string
}

func (e entry) String() string { return e.strategy + "/" + e.preset }

type param struct {
	name string
	get  func(*config.Config) float64
}

var editable = []param{
	{"temperature", func(c *config.Config) float64 { return c.Environment.Temperature }},
	{"pressure", func(c *config.Config) float64 { return c.Environment.Pressure }},
	{"number", func(c *config.Config) float64 { return c.Particles.Number }},
	{"mode_radius", func(c *config.Config) float64 { return c.Particles.ModeRadius }},
	{"gsd", func(c *config.Config) float64 { return c.Particles.GSD }},
	{"dt", func(c *config.Config) float64 { return c.Dt }},
	{"duration", func(c *config.Config) float64 { return c.Duration }},
}

var (
	heading  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subtle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	detail   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

type app struct {
	state, cursor int
	entries       []entry
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	registry      *experiment.Registry
	log           logrus.FieldLogger
	live          Model
}

// NewInteractiveApp lists every preset, lets the user tune it and then
// opens the live view.
func NewInteractiveApp(r *experiment.Registry, log logrus.FieldLogger) tea.Model {
	var entries []entry
	for _, s := range config.ListStrategies() {
		for _, p := range config.ListPresets(s) {
			entries = append(entries, entry{strategy: s, preset: p})
		}
	}
	return app{state: stateMenu, entries: entries, registry: r, log: log}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(key)
		case stateConfig:
			return m.configKey(key)
		}
	}
	if m.state == stateSim {
		live, cmd := m.live.Update(msg)
		m.live = live.(Model)
		return m, cmd
	}
	return m, nil
}

func (m app) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.entries) == 0 {
			return m, nil
		}
		e := m.entries[m.cursor]
		m.cfg = config.GetPreset(e.strategy, e.preset)
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m app) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	name := editable[m.paramCursor].name
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				_ = automation.SetParam(m.cfg, name, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-+eE") {
				m.editBuf += s
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(editable)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(editable[m.paramCursor].get(m.cfg), 'g', -1, 64)
	case "left", "h":
		_ = automation.SetParam(m.cfg, name, editable[m.paramCursor].get(m.cfg)*0.9)
	case "right", "l":
		_ = automation.SetParam(m.cfg, name, editable[m.paramCursor].get(m.cfg)*1.1)
	case "s":
		return m.start()
	}
	return m, nil
}

func (m app) start() (tea.Model, tea.Cmd) {
	exp := experiment.New(m.cfg, m.log)
	if err := exp.Setup(m.registry); err != nil {
		m.err = err
		return m, nil
	}
	live, err := NewModel(exp, m.entries[m.cursor].String())
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live, m.state = live, stateSim
	return m, live.Init()
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m app) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + heading.Render("COAGSIM") + "\n    " + subtle.Render("aerosol coagulation") + "\n    " + subtle.Render("─────────────────────────") + "\n\n")
	for i, e := range m.entries {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursor.Render("▸"), selected.Render(fmt.Sprintf("%-14s", e.preset)), detail.Render(e.strategy)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idle.Render(fmt.Sprintf("  %-14s", e.preset)), subtle.Render(e.strategy)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m app) viewConfig() string {
	var b strings.Builder
	e := m.entries[m.cursor]
	b.WriteString("\n\n    " + heading.Render(strings.ToUpper(e.preset)) + "\n    " + subtle.Render(e.strategy) + "\n    " + subtle.Render("─────────────────────────") + "\n\n")
	for i, p := range editable {
		val := fmt.Sprintf("%12.4g", p.get(m.cfg))
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%12s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursor.Render("▸"), selected.Render(fmt.Sprintf("%-12s", p.name)), detail.Bold(true).Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idle.Render(fmt.Sprintf("  %-12s", p.name)), subtle.Render(val)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive opens the preset browser full screen.
func RunInteractive(r *experiment.Registry, log logrus.FieldLogger) error {
	_, err := tea.NewProgram(NewInteractiveApp(r, log), tea.WithAltScreen()).Run()
	return err
}
