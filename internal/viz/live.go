package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/twiddle/internal/control"
	"github.com/san-kum/twiddle/internal/dynamo"
	"github.com/san-kum/twiddle/internal/optim"
	"github.com/san-kum/twiddle/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 16
	historyCapacity = 600
	maxStepsPerTick = 64
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(48)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

type TickMsg time.Time

// Model is the live tuner: every tick runs a few twiddle passes and redraws
// the trajectory of the best gains so far.
type Model struct {
	eval     *sim.Evaluator
	opts     optim.Options
	tw       *optim.Twiddle
	pid      *control.PID
	baseline float64

	canvas       *Canvas
	costHistory  []float64
	last         optim.Record
	prevSteps    [3]float64
	trajectory   *dynamo.Trajectory
	running      bool
	done         bool
	stepsPerTick int
	interval     time.Duration
	showHelp     bool
}

// NewModel prepares a tuner over eval. The OnIteration hook of opts is
// ignored; the model records progress itself.
func NewModel(eval *sim.Evaluator, opts optim.Options) (Model, error) {
	opts.OnIteration = nil
	tw, err := optim.NewTwiddle(eval.Evaluate, opts)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		eval:         eval,
		opts:         opts,
		tw:           tw,
		pid:          control.NewPID(tw.Gains()),
		baseline:     eval.Evaluate(dynamo.Gains{}),
		canvas:       NewCanvas(canvasWidth, canvasHeight),
		costHistory:  make([]float64, 0, historyCapacity),
		running:      true,
		stepsPerTick: 1,
		interval:     time.Second / 20,
	}
	m.redraw()
	return m, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.advance(1)
			}
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "r":
			m.reset()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance(m.stepsPerTick)
		}
		return m, m.tick()
	}
	return m, nil
}

// advance runs up to n passes and redraws once.
func (m *Model) advance(n int) {
	if m.done {
		return
	}
	for i := 0; i < n; i++ {
		m.prevSteps = m.tw.Steps()
		rec, more := m.tw.Step()
		m.last = rec
		m.costHistory = append(m.costHistory, math.Log10(math.Max(rec.BestCost, 1e-300)))
		if len(m.costHistory) > historyCapacity {
			m.costHistory = m.costHistory[1:]
		}
		if !more {
			m.done = true
			break
		}
	}
	m.redraw()
}

func (m *Model) redraw() {
	m.pid.Gains = m.tw.Gains()
	m.trajectory = m.eval.Run(m.pid.Gains)

	m.canvas.Clear()
	xs, ys := m.trajectory.Path()
	m.canvas.DrawPath(xs, ys, 1.0)
}

func (m *Model) reset() {
	tw, err := optim.NewTwiddle(m.eval.Evaluate, m.opts)
	if err != nil {
		return
	}
	m.tw = tw
	m.last = optim.Record{}
	m.costHistory = m.costHistory[:0]
	m.done = false
	m.redraw()
}

// Result is the state of the search when the program exits.
func (m Model) Result() optim.Result { return m.tw.Result() }

// progress maps the step sum onto [0, 1] on a log scale from the initial
// step sum down to the tolerance.
func (m Model) progress() float64 {
	start := 3 * m.opts.InitialStep
	steps := m.tw.Steps()
	cur := steps[0] + steps[1] + steps[2]
	if cur <= m.opts.Tolerance {
		return 1
	}
	p := math.Log(start/cur) / math.Log(start/m.opts.Tolerance)
	return math.Max(0, math.Min(1, p))
}

func (m Model) View() string {
	var s strings.Builder

	status := StatusRunning.Render("TUNING")
	switch {
	case m.done:
		status = StatusDone.Render("CONVERGED")
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(Title.Render("TWIDDLE") + "  " + status + "\n\n")

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Iteration", fmt.Sprintf("%d", m.tw.Iteration()))
	row("Best cost", fmt.Sprintf("%.6g", m.tw.BestCost()))
	row("Baseline", fmt.Sprintf("%.6g", m.baseline))
	row("Speed", fmt.Sprintf("%d/tick", m.stepsPerTick))
	s.WriteString(MetricLabel.Render("Steps") + ProgressBar(m.progress(), 20) + "\n")

	if len(m.costHistory) > 1 {
		chart := asciigraph.Plot(m.costHistory, asciigraph.Height(5), asciigraph.Width(36), asciigraph.Caption("log10 best cost"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\nGAINS\n")
	params := m.pid.GetParams()
	steps := m.tw.Steps()
	for i, k := range []string{"Kp", "Kd", "Ki"} {
		line := fmt.Sprintf("%-3s %12.6f  ±%.4f", k, params[k], steps[i])
		if m.last.Iteration > 0 && m.last.Steps[i] > m.prevSteps[i] {
			s.WriteString(activeStyle.Render("▲ "+line) + "\n")
		} else {
			s.WriteString(Subtle.Render("  ") + line + "\n")
		}
	}

	if m.trajectory != nil {
		s.WriteString("\nCTE " + Sparkline(m.trajectory.CTE(), 36) + "\n")
	}

	s.WriteString(KeyHint.Render("\nSP:Pause N:Step +/-:Speed R:Restart Q:Quit ?:Help"))

	canvasView := canvasStyle.Render(m.canvas.String())
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		help := Panel.Render(strings.Join([]string{
			"Space  pause or resume the search",
			"N      run one pass while paused",
			"+ / -  double or halve passes per tick",
			"R      restart from the initial gains",
			"Q      quit and print the best gains",
		}, "\n"))
		return help + "\n" + main
	}
	return main
}
