package viz

import (
	"io"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/coagsim/internal/config"
	"github.com/san-kum/coagsim/internal/experiment"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newLive(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Particles.Bins = 20
	cfg.Duration = 3
	exp := experiment.New(cfg, quiet())
	require.NoError(t, exp.Setup(experiment.NewRegistry()))
	m, err := NewModel(exp, "test")
	require.NoError(t, err)
	return m
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)
	assert.Equal(t, rune(0x2801), c.Grid[0][0])
	assert.Equal(t, rune(0x2880), c.Grid[0][1])

	c.Clear()
	assert.Equal(t, strings.Repeat(string(rune(blank)), 2)+"\n", c.String())
}

func TestCanvasPolylineSkipsNonFinite(t *testing.T) {
	c := NewCanvas(10, 4)
	b := Bounds{XMin: 0, XMax: 1, YMin: 0, YMax: 1}
	c.Polyline(b, []float64{0, 0.5, 1}, []float64{0, math.NaN(), 1})

	// the gap leaves only the two end dots
	lit := 0
	for _, row := range c.Grid {
		for _, r := range row {
			if r != blank {
				lit++
			}
		}
	}
	assert.Equal(t, 2, lit)
	assert.NotEqual(t, rune(blank), c.Grid[3][0])
	assert.NotEqual(t, rune(blank), c.Grid[0][9])
}

func TestSparklineChart(t *testing.T) {
	assert.Equal(t, "───", SparklineChart(nil, 3))
	assert.Equal(t, "▁█", SparklineChart([]float64{5, 0, 1, 9}, 2))
	assert.Equal(t, 4, len([]rune(SparklineChart([]float64{1, 2, 3, 4}, 10))))
}

func TestThemeCycle(t *testing.T) {
	th := ThemeCyberpunk
	for range Themes {
		th = th.next()
	}
	assert.Equal(t, ThemeCyberpunk.Name, th.Name)
	assert.Equal(t, ThemeOcean, GetTheme("ocean"))
	assert.Equal(t, ThemeCyberpunk, GetTheme("missing"))
}

func TestModelRequiresSetup(t *testing.T) {
	_, err := NewModel(experiment.New(config.DefaultConfig(), quiet()), "x")
	assert.Error(t, err)
}

func TestModelStepsToDuration(t *testing.T) {
	m := newLive(t)
	n0 := m.gauges.number.Value()

	for i := 0; i < 5; i++ {
		m = update(m, TickMsg(time.Now()))
	}
	assert.True(t, m.done)
	assert.False(t, m.running)
	assert.InDelta(t, 3.0, m.t, 1e-12)
	assert.Len(t, m.history, 4)
	assert.Less(t, m.gauges.number.Value(), n0)
	assert.Contains(t, m.View(), "DONE")
}

func TestModelPauseAndReset(t *testing.T) {
	m := newLive(t)
	m = update(m, tea.KeyMsg{Type: tea.KeySpace})
	m = update(m, TickMsg(time.Now()))
	assert.Zero(t, m.t)
	assert.Contains(t, m.View(), "PAUSED")

	m = update(m, tea.KeyMsg{Type: tea.KeySpace})
	m = update(m, TickMsg(time.Now()))
	assert.Equal(t, 1.0, m.t)

	m = update(m, runes("r"))
	assert.Zero(t, m.t)
	assert.Len(t, m.history, 1)
	assert.Equal(t, m.initial.Concentration(), m.p.Concentration())
}

func TestModelReplay(t *testing.T) {
	m := newLive(t)
	m = update(m, TickMsg(time.Now()))
	m = update(m, TickMsg(time.Now()))
	m = update(m, runes("["))
	assert.Equal(t, 1, m.playHead)
	assert.False(t, m.running)
	assert.Contains(t, m.View(), "REPLAY")

	m = update(m, runes("]"))
	m = update(m, runes("]"))
	assert.Equal(t, -1, m.playHead)
}

func TestModelScaleDt(t *testing.T) {
	m := newLive(t)
	m = update(m, runes("+"))
	assert.Equal(t, 2.0, m.cfg.Dt)
	m = update(m, runes("-"))
	m = update(m, runes("-"))
	assert.Equal(t, 0.5, m.cfg.Dt)
}

func TestModelView(t *testing.T) {
	m := newLive(t)
	v := m.View()
	assert.Contains(t, v, "TEST")
	assert.Contains(t, v, "brownian")
	assert.Contains(t, v, "euler")
	assert.Contains(t, v, "RUNNING")

	m = update(m, runes("?"))
	assert.Contains(t, m.View(), "KEYBOARD SHORTCUTS")
}

func TestInteractiveFlow(t *testing.T) {
	var m tea.Model = NewInteractiveApp(experiment.NewRegistry(), quiet())
	assert.Contains(t, m.View(), "COAGSIM")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.View(), "temperature")

	m, _ = m.Update(runes("j"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	for range "101325" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m, _ = m.Update(runes("9"))
	m, _ = m.Update(runes("0"))
	m, _ = m.Update(runes("0"))
	m, _ = m.Update(runes("0"))
	m, _ = m.Update(runes("0"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 90000.0, m.(app).cfg.Environment.Pressure)

	m, cmd := m.Update(runes("s"))
	assert.NotNil(t, cmd)
	assert.Equal(t, stateSim, m.(app).state)
	assert.Contains(t, m.View(), "RUNNING")
}
