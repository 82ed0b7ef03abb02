package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/coagsim/internal/coagulation"
	"github.com/san-kum/coagsim/internal/experiment"
	"github.com/san-kum/coagsim/internal/gas"
	"github.com/san-kum/coagsim/internal/metrics"
	"github.com/san-kum/coagsim/internal/particle"
	"github.com/san-kum/coagsim/internal/sim"
	"gonum.org/v1/gonum/floats"
)

const (
	plotWidth       = 60
	plotHeight      = 20
	historyCapacity = 600
	decades         = 8 // vertical span of the distribution plot
	tickRate        = time.Second / 30
)

// Snapshot stores one committed interval for replay.
type Snapshot struct {
	Time          float64
	Concentration []float64
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// gauges are the live readouts, refreshed after every interval.
type gauges struct {
	number    *metrics.TotalNumber
	mass      *metrics.TotalMass
	radius    *metrics.MeanRadius
	lost      *metrics.LostMass
	drift     *metrics.MassDrift
	stability *metrics.Stability
}

func newGauges(d coagulation.DistributionType) gauges {
	return gauges{
		number:    metrics.NewTotalNumber(d),
		mass:      metrics.NewTotalMass(d),
		radius:    metrics.NewMeanRadius(d),
		lost:      metrics.NewLostMass(),
		drift:     metrics.NewMassDrift(d),
		stability: metrics.NewStability(),
	}
}

func (g gauges) all() []sim.Metric {
	return []sim.Metric{g.number, g.mass, g.radius, g.lost, g.drift, g.stability}
}

func (g gauges) observe(p *particle.Representation, report coagulation.StepReport, t float64) {
	for _, m := range g.all() {
		m.Observe(p, report, t)
	}
}

// start resets every gauge to the state p.
func (g gauges) start(p *particle.Representation) {
	for _, m := range g.all() {
		m.Reset()
		if st, ok := m.(sim.Starter); ok {
			st.Start(p)
		}
	}
}

// Model steps a coagulation experiment one output interval per tick and
// draws the evolving size distribution.
type Model struct {
	title     string
	simulator *sim.Simulator
	cfg       sim.Config
	env       gas.Environment
	dist      coagulation.DistributionType
	initial   *particle.Representation
	p         *particle.Representation
	logRadius []float64

	t             float64
	running, done bool
	err           error

	gauges        gauges
	numberHistory []float64
	radiusHistory []float64
	history       []Snapshot
	playHead      int

	canvas   *Canvas
	theme    Theme
	showHelp bool
}

// NewModel builds a live view over an experiment that has been set up.
func NewModel(e *experiment.Experiment, title string) (Model, error) {
	s := e.GetSimulator()
	if s == nil {
		return Model{}, errors.New("experiment not setup")
	}
	p := e.Particles()
	logR := make([]float64, p.Len())
	for i, r := range p.Distribution() {
		logR[i] = math.Log10(r)
	}
	m := Model{
		title:         title,
		simulator:     s,
		cfg:           e.SimConfig(),
		env:           e.Environment(),
		dist:          e.Distribution(),
		initial:       p.Clone(),
		p:             p,
		logRadius:     logR,
		running:       true,
		gauges:        newGauges(e.Distribution()),
		numberHistory: make([]float64, 0, historyCapacity),
		radiusHistory: make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
		canvas:        NewCanvas(plotWidth, plotHeight),
		theme:         ThemeCyberpunk,
	}
	m.gauges.start(m.p)
	m.record()
	return m, nil
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.done && m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "+", "=":
			m.scaleDt(2)
		case "-", "_":
			m.scaleDt(0.5)
		case "t":
			m.theme = m.theme.next()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

// step commits one output interval.
func (m *Model) step() {
	if m.done {
		return
	}
	h := math.Min(m.cfg.Dt, m.cfg.Duration-m.t)
	report, err := m.simulator.Step(m.p, m.env, h, m.cfg)
	if err != nil {
		m.err, m.running = err, false
		return
	}
	m.t = math.Min(m.t+h, m.cfg.Duration)
	m.gauges.observe(m.p, report, m.t)
	m.record()
	if m.cfg.Duration-m.t <= 1e-9*m.cfg.Dt {
		m.done, m.running = true, false
	}
}

func (m *Model) record() {
	m.numberHistory = appendCapped(m.numberHistory, m.gauges.number.Value())
	m.radiusHistory = appendCapped(m.radiusHistory, m.gauges.radius.Value())
	m.history = append(m.history, Snapshot{Time: m.t, Concentration: m.p.Concentration()})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// scaleDt changes the output interval, keeping the adaptive floor below it.
func (m *Model) scaleDt(factor float64) {
	dt := m.cfg.Dt * factor
	if m.cfg.Adaptive && dt < m.cfg.MinDt {
		dt = m.cfg.MinDt
	}
	m.cfg.Dt = dt
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset restores the initial distribution.
func (m *Model) reset() {
	m.p = m.initial.Clone()
	m.t = 0
	m.running, m.done, m.err = true, false, nil
	m.numberHistory = m.numberHistory[:0]
	m.radiusHistory = m.radiusHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.gauges.start(m.p)
	m.record()
}

// counts returns log10 of the per-bin counts in c.
func (m Model) counts(c []float64) []float64 {
	out := make([]float64, len(c))
	copy(out, c)
	if m.dist == coagulation.ContinuousPDF {
		floats.Mul(out, particle.BinWidths(m.p.Distribution()))
	}
	for i, v := range out {
		out[i] = math.Log10(v)
	}
	return out
}

// draw plots the initial distribution as dots and the shown one as a line.
func (m Model) draw(shown []float64) Bounds {
	initial := m.counts(m.initial.Concentration())
	current := m.counts(shown)

	top := math.Inf(-1)
	for i := range initial {
		top = math.Max(top, math.Max(initial[i], current[i]))
	}
	if !finite(top) {
		top = 0
	}
	b := Bounds{
		XMin: m.logRadius[0],
		XMax: m.logRadius[len(m.logRadius)-1],
		YMin: math.Floor(top) + 1 - decades,
		YMax: math.Floor(top) + 1,
	}
	if b.XMax == b.XMin {
		b.XMin, b.XMax = b.XMin-0.5, b.XMax+0.5
	}
	floor := func(v []float64) {
		for i := range v {
			if v[i] < b.YMin {
				v[i] = math.NaN()
			}
		}
	}
	floor(initial)
	floor(current)

	m.canvas.Clear()
	m.canvas.Scatter(b, m.logRadius, initial)
	m.canvas.Polyline(b, m.logRadius, current)
	return b
}

// View renders the TUI interface.
func (m Model) View() string {
	pal := m.theme.palette()
	shown, t, status := m.p.Concentration(), m.t, pal.good.Render("RUNNING")
	switch {
	case m.err != nil:
		status = pal.bad.Render("ERROR")
	case m.playHead >= 0 && m.playHead < len(m.history):
		snap := m.history[m.playHead]
		shown, t = snap.Concentration, snap.Time
		status = pal.warn.Render(fmt.Sprintf("REPLAY (%.1fs)", t-m.t))
	case m.done:
		status = pal.good.Render("DONE")
	case !m.running:
		status = pal.warn.Render("PAUSED")
	}

	b := m.draw(shown)
	var plot strings.Builder
	plot.WriteString(pal.muted.Render(fmt.Sprintf("1e%.0f", b.YMax)) + "\n")
	plot.WriteString(pal.current.Render(m.canvas.String()))
	plot.WriteString(pal.muted.Render(fmt.Sprintf("1e%.0f", b.YMin)) + "\n")
	axis := fmt.Sprintf("%.2e m", m.initial.Distribution()[0])
	last := fmt.Sprintf("%.2e m", m.initial.Distribution()[m.initial.Len()-1])
	gap := max(plotWidth-len(axis)-len(last), 1)
	plot.WriteString(pal.muted.Render(axis+strings.Repeat(" ", gap)+last) + "\n")
	plot.WriteString(pal.initial.Render("· initial") + "  " + pal.current.Render("─ current"))
	plotView := lipgloss.NewStyle().Padding(1, 2).Render(plot.String())

	var s strings.Builder
	s.WriteString(pal.title.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(status + "\n\n")
	row := func(label, value string) {
		s.WriteString(pal.label.Render(label) + pal.value.Render(value) + "\n")
	}
	row("Strategy", m.simulator.Strategy().Name())
	row("Integrator", m.simulator.Integrator().Name())
	row("Time", fmt.Sprintf("%.1f / %.1f s", t, m.cfg.Duration))
	s.WriteString(pal.label.Render("") + ProgressBar(t/m.cfg.Duration, 24, pal.current) + "\n")
	row("Dt", fmt.Sprintf("%.3g s", m.cfg.Dt))
	row("Number", fmt.Sprintf("%.4e m-3", m.gauges.number.Value()))
	row("Mass", fmt.Sprintf("%.4e kg m-3", m.gauges.mass.Value()))
	row("Mean r", fmt.Sprintf("%.4e m", m.gauges.radius.Value()))
	row("Lost mass", fmt.Sprintf("%.3e kg m-3", m.gauges.lost.Value()))
	row("Mass drift", fmt.Sprintf("%.2e", m.gauges.drift.Value()))
	clamped := fmt.Sprintf("%d", m.gauges.stability.Violations())
	if m.gauges.stability.Violations() > 0 {
		clamped = pal.warn.Render(clamped)
	}
	row("Clamped", clamped)
	if m.err != nil {
		s.WriteString("\n" + pal.bad.Render(m.err.Error()) + "\n")
	}

	if len(m.numberHistory) > 1 {
		chart := asciigraph.Plot(m.numberHistory, asciigraph.Height(5), asciigraph.Width(32), asciigraph.Caption("number [m-3]"))
		s.WriteString(pal.graph.Render(chart) + "\n")
	}
	s.WriteString(pal.label.Render("Mean r") + pal.initial.Render(SparklineChart(m.radiusHistory, 30)) + "\n")
	s.WriteString(pal.help.Render(Separator(30, pal.muted) + "\nSP:Pause R:Reset Q:Quit\nT:Theme  ?:Help  +/-:Dt\n[ ]:Replay"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, plotView, pal.panel.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset distribution       ║
║  Q        - Quit                     ║
║  + / -    - Double / halve time step ║
║  [        - Rewind (replay)          ║
║  ]        - Forward (replay)         ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run opens the live view full screen.
func Run(e *experiment.Experiment, title string) error {
	m, err := NewModel(e, title)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
