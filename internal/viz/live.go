package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/bactsim/internal/culture"
	"github.com/san-kum/bactsim/internal/sim"
)

const (
	canvasWidth  = 60
	canvasHeight = 22
	tickInterval = time.Second / 30
)

type TickMsg time.Time

// Live steps a culture model on a timer and draws the agents next to the
// running comparison with the analytical curve.
type Live struct {
	model        *culture.Model
	state        *culture.State
	records      []sim.Record
	canvas       *Canvas
	stepsPerTick int
	running      bool
	clipped      int
	err          error
}

func NewLive(model *culture.Model, stepsPerTick int) Live {
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	l := Live{
		model:        model,
		canvas:       NewCanvas(canvasWidth, canvasHeight),
		stepsPerTick: stepsPerTick,
		running:      true,
	}
	l.reset()
	return l
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (l Live) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (l Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return l, tea.Quit
		case " ":
			l.running = !l.running
		case "r":
			l.reset()
		}
	case TickMsg:
		if l.running && !l.Done() {
			for i := 0; i < l.stepsPerTick && !l.Done(); i++ {
				l.step()
			}
			l.draw()
		}
		return l, tick()
	}
	return l, nil
}

// Done reports whether the run reached its end time or failed.
func (l Live) Done() bool {
	return l.err != nil || l.state.Step >= l.model.Config().Steps
}

func (l Live) Err() error { return l.err }

func (l Live) Records() []sim.Record { return l.records }

func (l *Live) reset() {
	l.state = l.model.Seed()
	l.records = make([]sim.Record, 0, l.model.Config().Steps+1)
	l.err = nil
	rec, err := sim.NewRecord(l.state.Time, l.state.Env.Len(), l.model.Analytical(l.state.Time))
	if err != nil {
		l.err = err
		return
	}
	l.records = append(l.records, rec)
	l.draw()
}

func (l *Live) step() {
	snap, err := l.model.Step(l.state)
	if err != nil {
		l.err = err
		return
	}
	rec, err := sim.NewRecord(snap.Time, snap.Count, l.model.Analytical(snap.Time))
	if err != nil {
		l.err = &culture.SimulationError{Step: snap.Step, Time: snap.Time, Wrapped: err}
		return
	}
	rec.Step = snap.Step
	l.records = append(l.records, rec)
}

func (l *Live) draw() {
	cfg := l.model.Config()
	l.canvas.Clear()
	l.canvas.DrawBorder()
	l.clipped = l.canvas.Plot(l.state.Env.Positions(), cfg.Width, cfg.Height)
}

// View renders the TUI interface.
func (l Live) View() string {
	cfg := l.model.Config()
	last := l.records[len(l.records)-1]

	var s strings.Builder
	s.WriteString(headerStyle.Render("BACTERIAL CULTURE") + "\n")

	status := StatusRunning.Render("RUNNING")
	switch {
	case l.err != nil:
		status = errHigh.Render("FAILED: " + l.err.Error())
	case l.Done():
		status = StatusDone.Render("DONE")
	case !l.running:
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	progress := (last.Time - cfg.Start) / (cfg.End - cfg.Start)
	s.WriteString(ProgressBar(progress, 30) + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.3f / %.1f", last.Time, cfg.End))
	row("Step", fmt.Sprintf("%d / %d", last.Step, cfg.Steps))
	row("Approx", fmt.Sprintf("%d", last.Approx))
	row("Analytical", fmt.Sprintf("%.2f", last.Analytical))
	row("Abs error", fmt.Sprintf("%.3f", last.AbsError))
	s.WriteString(labelStyle.Render("Rel error") + ErrorStyle(last.RelError).Render(fmt.Sprintf("%.4f%%", last.RelError*100)) + "\n")
	row("Integrator", l.model.Integrator())
	if l.clipped > 0 {
		row("Off canvas", fmt.Sprintf("%d", l.clipped))
	}

	if chart := Graph(l.records, 36, 6); chart != "" {
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit"))

	canvasView := canvasStyle.Render(l.canvas.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}
