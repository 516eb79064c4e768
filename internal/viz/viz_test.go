package viz

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GazzolaLab/Elastica-RL-control/internal/config"
	"github.com/GazzolaLab/Elastica-RL-control/internal/control"
	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/env"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0, LayerArm)
	c.Set(3, 3, LayerArm)
	c.Set(-1, 0, LayerArm)
	c.Set(4, 0, LayerArm)
	if got := c.String(); got != "⠁⢀\n" {
		t.Errorf("String() = %q", got)
	}
	c.Clear()
	if got := c.String(); got != "⠀⠀\n" {
		t.Errorf("after Clear String() = %q", got)
	}
}

func TestCanvasLineEndpoints(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Line(0, 0, 7, 7, LayerArm)
	if c.Grid[0][0]&0x1 == 0 {
		t.Error("start dot not set")
	}
	if c.Grid[1][3]&0x80 == 0 {
		t.Error("end dot not set")
	}
}

func TestCanvasLayerPriority(t *testing.T) {
	c := NewCanvas(1, 1)
	c.Set(0, 0, LayerTarget)
	c.Set(1, 1, LayerArm)
	if c.layers[0][0] != LayerTarget {
		t.Errorf("layer = %d, want target", c.layers[0][0])
	}
	if out := c.Render(ThemeMinimal); !strings.Contains(out, "⠑") {
		t.Errorf("Render lost the dots: %q", out)
	}
}

func TestCameraProject(t *testing.T) {
	cam := NewCamera()
	sw, sh := 120, 80

	x, y, ok := cam.Project(cam.Center, sw, sh)
	if !ok || x != sw/2 || y != sh/2 {
		t.Errorf("center projects to (%d, %d, %v)", x, y, ok)
	}

	bx, by, _ := cam.Project(r3.Vec{}, sw, sh)
	if bx != sw/2 || by <= sh/2 {
		t.Errorf("base (%d, %d) should be centered below the middle", bx, by)
	}

	cam.RotateY(math.Pi / 2)
	zx, _, _ := cam.Project(r3.Add(cam.Center, r3.Vec{Z: 0.5}), sw, sh)
	if zx <= sw/2 {
		t.Errorf("after yaw +z should appear on the right, got x=%d", zx)
	}

	cam.ResetView()
	if cam.RotY != 0 || cam.Zoom != 1 {
		t.Error("ResetView did not restore defaults")
	}
}

func newLive(t *testing.T, policy func(dim int) dynamo.Controller) Model {
	t.Helper()
	cfg := config.GetPreset("reach2d")
	cfg.FinalTime = 0.05
	e, err := env.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewModel(e, policy(e.ActionSize()), "test")
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func none(dim int) dynamo.Controller { return control.NewNone(dim) }

func tick(m Model) Model {
	next, _ := m.Update(TickMsg(time.Now()))
	return next.(Model)
}

func press(m Model, key tea.KeyMsg) Model {
	next, _ := m.Update(key)
	return next.(Model)
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestModelRunsEpisode(t *testing.T) {
	m := newLive(t, none)
	if len(m.history) != 1 {
		t.Fatalf("history = %d, want the initial snapshot", len(m.history))
	}
	for i := 0; i < 8; i++ {
		m = tick(m)
	}
	if !m.done {
		t.Fatal("episode should end at the horizon")
	}
	if got := m.env.StepCount(); got != 5 {
		t.Errorf("steps = %d, want 5", got)
	}
	if len(m.rewards) != 5 {
		t.Errorf("rewards = %d, want 5", len(m.rewards))
	}
	if math.Abs(m.ret-5*-0.64) > 1e-9 {
		t.Errorf("return = %g, want %g", m.ret, 5*-0.64)
	}
	if m.err != nil {
		t.Errorf("unexpected error %v", m.err)
	}

	view := m.View()
	for _, want := range []string{"REACH2D", "EPISODE DONE", "Return"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = press(m, runes("r"))
	if m.done || m.env.StepCount() != 0 || len(m.history) != 1 || m.ret != 0 {
		t.Error("reset did not start a fresh episode")
	}
}

func TestModelPauseAndSingleStep(t *testing.T) {
	m := newLive(t, none)
	m = press(m, runes(" "))
	m = tick(m)
	if m.env.StepCount() != 0 {
		t.Fatal("paused model should not step on tick")
	}
	m = press(m, runes("n"))
	if m.env.StepCount() != 1 {
		t.Errorf("steps = %d after single step, want 1", m.env.StepCount())
	}
}

func TestModelReplay(t *testing.T) {
	m := newLive(t, none)
	m = tick(m)
	m = tick(m)
	m = press(m, runes("["))
	if m.running || m.playHead != 1 {
		t.Errorf("scrub back: running=%v playHead=%d", m.running, m.playHead)
	}
	if got := m.current().Step; got != 1 {
		t.Errorf("replayed step = %d, want 1", got)
	}
	m = press(m, runes("]"))
	m = press(m, runes("]"))
	if m.playHead != -1 {
		t.Errorf("scrubbing past the end should return to live, playHead=%d", m.playHead)
	}
}

func TestModelTunesManualPolicy(t *testing.T) {
	m := newLive(t, func(dim int) dynamo.Controller { return control.NewManual(dim) })
	if len(m.paramKeys) != 3 || m.paramKeys[0] != "u0" || m.paramKeys[2] != "u2" {
		t.Fatalf("param keys = %v", m.paramKeys)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	m = press(m, tea.KeyMsg{Type: tea.KeyUp})

	params := m.policy.(dynamo.Configurable).GetParams()
	if math.Abs(params["u1"]-0.2) > 1e-12 || params["u0"] != 0 {
		t.Errorf("params = %v, want u1=0.2", params)
	}

	m = tick(m)
	if math.Abs(m.action[1]-0.2) > 1e-12 {
		t.Errorf("action = %v, want u1 applied", m.action)
	}
}

func TestMenuStartsLiveView(t *testing.T) {
	var m tea.Model = NewMenu(nil)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	menu := m.(Menu)
	if menu.state != statePolicy || menu.preset != config.ListPresets()[0] {
		t.Fatalf("state=%d preset=%q", menu.state, menu.preset)
	}
	if !strings.Contains(menu.View(), "pick a policy") {
		t.Error("policy list not shown")
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	menu = m.(Menu)
	if menu.err != nil {
		t.Fatal(menu.err)
	}
	if menu.state != stateSim || cmd == nil {
		t.Errorf("state=%d, want live view with a tick scheduled", menu.state)
	}
}

func TestSparklineAndBars(t *testing.T) {
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("empty sparkline = %q", got)
	}
	if got := ActionBar(-1, 4); got != "[██│──]" {
		t.Errorf("ActionBar(-1) = %q", got)
	}
	if got := ActionBar(0.5, 4); got != "[──│█─]" {
		t.Errorf("ActionBar(0.5) = %q", got)
	}
}

func TestThemes(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 || names[0] != "ocean" {
		t.Fatalf("themes = %v", names)
	}
	if GetTheme("retro").Name != "retro" || GetTheme("nope").Name != "ocean" {
		t.Error("GetTheme lookup failed")
	}
	th := GetTheme(names[len(names)-1])
	if NextTheme(th).Name != names[0] {
		t.Error("NextTheme does not wrap around")
	}
}
