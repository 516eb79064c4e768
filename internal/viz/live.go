package viz

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/env"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
	paramStep       = 0.1
)

// Snapshot stores what the canvas needs to redraw one control step.
type Snapshot struct {
	Nodes    []r3.Vec
	Target   r3.Vec
	Time     float64
	Step     int
	Distance float64
}

type TickMsg time.Time

// Model drives an environment under a policy, one control step per tick.
type Model struct {
	env        *env.Environment
	policy     dynamo.Controller
	obs        dynamo.State
	action     dynamo.Control
	info       env.Info
	ret        float64
	lastReward float64
	done       bool
	err        error

	canvas    *Canvas
	camera    *Camera
	theme     Theme
	running   bool
	showHelp  bool
	name      string
	rewards   []float64
	distances []float64
	history   []Snapshot
	playHead  int
	paramKeys []string
	selected  int
}

// NewModel resets e and prepares the view. The policy's tunables, if it
// has any, can be adjusted while running.
func NewModel(e *env.Environment, policy dynamo.Controller, policyName string) (Model, error) {
	obs, err := e.Reset()
	if err != nil {
		return Model{}, err
	}
	var keys []string
	if c, ok := policy.(dynamo.Configurable); ok {
		for k := range c.GetParams() {
			keys = append(keys, k)
		}
	}
	// u2 before u10
	slices.SortFunc(keys, func(a, b string) int {
		return cmp.Or(cmp.Compare(len(a), len(b)), cmp.Compare(a, b))
	})

	m := Model{
		env:       e,
		policy:    policy,
		obs:       obs,
		action:    make(dynamo.Control, e.ActionSize()),
		canvas:    NewCanvas(width, height),
		camera:    NewCamera(),
		theme:     themes[0],
		running:   true,
		name:      fmt.Sprintf("%s / %s", e.Config().Name, policyName),
		rewards:   make([]float64, 0, historyCapacity),
		distances: make([]float64, 0, historyCapacity),
		history:   make([]Snapshot, 0, historyCapacity),
		playHead:  -1,
		paramKeys: keys,
	}
	m.record()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the environment.
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
				m.step()
			}
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(paramStep)
		case "down", "j":
			m.adjustParam(-paramStep)
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = NextTheme(m.theme)
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "0":
			m.camera.ResetView()
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
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
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(delta float64) {
	c, ok := m.policy.(dynamo.Configurable)
	if !ok || len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	if err := c.SetParam(key, c.GetParams()[key]+delta); err != nil {
		m.err = err
	}
}

// step advances the episode by one control step. A finished episode stays
// on screen until reset.
func (m *Model) step() {
	if m.done || m.err != nil {
		return
	}
	m.action = m.policy.Compute(m.obs, m.env.Time())
	obs, r, done, info, err := m.env.Step(m.action)
	if err != nil {
		m.err = err
		return
	}
	m.obs, m.info, m.done = obs, info, done
	m.lastReward = r
	m.ret += r

	m.rewards = appendCapped(m.rewards, r)
	m.distances = appendCapped(m.distances, info.Distance)
	m.record()
}

func (m *Model) record() {
	arm := m.env.Rod()
	snap := Snapshot{
		Nodes:    slices.Clone(arm.Positions()),
		Target:   m.env.Target().Position,
		Time:     m.env.Time(),
		Step:     m.env.StepCount(),
		Distance: r3.Norm(r3.Sub(arm.Tip(), m.env.Target().Position)),
	}
	m.history = append(m.history, snap)
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

// reset starts a new episode. Policy tunables keep their values.
func (m *Model) reset() {
	obs, err := m.env.Reset()
	if err != nil {
		m.err = err
		return
	}
	m.obs, m.info, m.done, m.err = obs, env.Info{}, false, nil
	m.ret, m.lastReward = 0, 0
	m.action = make(dynamo.Control, m.env.ActionSize())
	m.rewards = m.rewards[:0]
	m.distances = m.distances[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.record()
}

// current is the snapshot on screen: the replay position or the latest.
func (m Model) current() Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return m.history[len(m.history)-1]
}

func (m Model) status() string {
	latest := m.history[len(m.history)-1]
	switch {
	case m.err != nil:
		return StatusDone.Render("ERROR")
	case m.playHead != -1:
		back := m.history[m.playHead].Time - latest.Time
		if m.running {
			return StatusPaused.Render(fmt.Sprintf("REPLAYING (%.2fs)", back))
		}
		return StatusPaused.Render(fmt.Sprintf("REPLAY PAUSED (%.2fs)", back))
	case m.done && m.info.Divergent:
		return StatusDone.Render("DIVERGED")
	case m.done:
		return StatusDone.Render("EPISODE DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

// View renders the TUI interface.
func (m Model) View() string {
	snap := m.current()
	m.draw(snap)
	canvasView := canvasStyle.Render(m.canvas.Render(m.theme))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	horizon := m.env.Horizon()
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d/%d ", snap.Step, horizon)) + ProgressBar(float64(snap.Step)/float64(horizon), 16) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3fs", snap.Time)) + "\n")
	s.WriteString(labelStyle.Render("Distance") + valueStyle.Render(fmt.Sprintf("%.4f", snap.Distance)) + "\n")
	s.WriteString(labelStyle.Render("Reward") + valueStyle.Render(fmt.Sprintf("%.4f", m.lastReward)) + "\n")
	s.WriteString(labelStyle.Render("Return") + valueStyle.Render(fmt.Sprintf("%.3f", m.ret)) + "\n")
	if m.err != nil {
		s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Warning).Render(m.err.Error()) + "\n")
	}

	if len(m.distances) > 1 {
		chart := asciigraph.Plot(m.distances, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Tip distance"))
		s.WriteString(graphStyle.Render(chart) + "\n")
		s.WriteString(labelStyle.Render("Reward") + SparklineChart(m.rewards, 30) + "\n")
	}

	s.WriteString("\nACTION\n")
	for i, v := range m.action {
		s.WriteString(fmt.Sprintf("  %-4s %s %+.2f\n", fmt.Sprintf("u%d", i), ActionBar(v, 16), v))
	}

	s.WriteString("\nPARAMETERS\n")
	if c, ok := m.policy.(dynamo.Configurable); ok && len(m.paramKeys) > 0 {
		params := c.GetParams()
		for i, k := range m.paramKeys {
			line := fmt.Sprintf("%-10s %+.2f", k, params[k])
			if i == m.selected {
				s.WriteString(activeParamStyle.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + labelStyle.Width(0).Render(line) + "\n")
			}
		}
	} else {
		s.WriteString(labelStyle.Render("  (none)") + "\n")
	}
	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause N:Step R:Reset Q:Quit\nT:Theme ?:Help\n[ ]:Replay ↑↓:Tune"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  N        - Single step when paused  ║
║  R        - New episode              ║
║  Q        - Quit                     ║
║  Tab      - Cycle policy parameters  ║
║  Up/K     - Increase parameter       ║
║  Down/J   - Decrease parameter       ║
║  [ ]      - Replay recent steps      ║
║  x y z    - Rotate view (+shift)     ║
║  + - 0    - Zoom / reset view        ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// draw projects the arena for one snapshot onto the canvas.
func (m Model) draw(snap Snapshot) {
	c, cam := m.canvas, m.camera
	sw, sh := c.SubWidth(), c.SubHeight()
	c.Clear()

	// floor line through the base
	x0, y0, _ := cam.Project(r3.Vec{X: -0.2}, sw, sh)
	x1, y1, _ := cam.Project(r3.Vec{X: 0.2}, sw, sh)
	c.Line(x0, y0, x1, y1, LayerGrid)

	for _, ob := range m.env.Obstacles() {
		end := r3.Add(ob.Start, r3.Scale(ob.Length, ob.Direction))
		ax, ay, _ := cam.Project(ob.Start, sw, sh)
		bx, by, _ := cam.Project(end, sw, sh)
		c.Line(ax, ay, bx, by, LayerObstacle)
		cx, cy, _ := cam.Project(ob.Center(), sw, sh)
		c.Circle(cx, cy, ob.Radius*cam.Scale(sw, sh), LayerObstacle)
	}

	for i := 1; i < len(snap.Nodes); i++ {
		a, b := snap.Nodes[i-1], snap.Nodes[i]
		if math.IsNaN(a.X+a.Y+a.Z+b.X+b.Y+b.Z) {
			continue
		}
		ax, ay, _ := cam.Project(a, sw, sh)
		bx, by, _ := cam.Project(b, sw, sh)
		c.Line(ax, ay, bx, by, LayerArm)
	}

	tx, ty, _ := cam.Project(snap.Target, sw, sh)
	c.Circle(tx, ty, m.env.Target().Radius*cam.Scale(sw, sh), LayerTarget)
	c.Set(tx, ty, LayerTarget)
}

// Run opens the live view full screen until the user quits. An unknown
// theme name falls back to the first theme.
func Run(e *env.Environment, policy dynamo.Controller, policyName, theme string) error {
	m, err := NewModel(e, policy, policyName)
	if err != nil {
		return err
	}
	m.theme = GetTheme(theme)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
