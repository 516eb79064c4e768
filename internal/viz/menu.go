package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/GazzolaLab/Elastica-RL-control/internal/config"
	"github.com/GazzolaLab/Elastica-RL-control/internal/control"
	"github.com/GazzolaLab/Elastica-RL-control/internal/env"
)

var presetInfo = map[string]string{
	"reach2d":     "fixed planar target",
	"track2d":     "random walk, 3 points",
	"track2d_k2":  "random walk, 2 points",
	"orient3d":    "position and yaw",
	"periodic3d":  "square path",
	"obstacles2d": "reach past posts",
}

const (
	statePreset = iota
	statePolicy
	stateSim
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuItem     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// Menu picks a preset and a policy, then hands over to the live view.
type Menu struct {
	state    int
	cursor   int
	presets  []string
	policies []string
	preset   string
	log      *zap.Logger
	live     Model
	err      error
}

func NewMenu(log *zap.Logger) Menu {
	if log == nil {
		log = zap.NewNop()
	}
	return Menu{presets: config.ListPresets(), policies: control.Names(), log: log}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		live, cmd := m.live.Update(msg)
		m.live = live.(Model)
		return m, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	items := m.items()
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.state == statePolicy {
			m.state, m.cursor = statePreset, 0
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.state == statePreset {
			m.preset = items[m.cursor]
			m.state, m.cursor = statePolicy, 0
			return m, nil
		}
		return m.start(items[m.cursor])
	}
	return m, nil
}

func (m Menu) items() []string {
	if m.state == statePreset {
		return m.presets
	}
	return m.policies
}

func (m Menu) start(policyName string) (Menu, tea.Cmd) {
	cfg := config.GetPreset(m.preset)
	e, err := env.New(cfg, env.WithLogger(m.log))
	if err != nil {
		m.err = err
		return m, nil
	}
	policy, err := control.New(policyName, e.ActionSize(), cfg.Actuation.ControlPoints, cfg.Seed)
	if err != nil {
		m.err = err
		return m, nil
	}
	if m.live, err = NewModel(e, policy, policyName); err != nil {
		m.err = err
		return m, nil
	}
	m.state = stateSim
	return m, m.live.Init()
}

func (m Menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}
	var b strings.Builder
	title, sub := "SOFT ARM", "pick a benchmark case"
	if m.state == statePolicy {
		title, sub = strings.ToUpper(m.preset), "pick a policy"
	}
	b.WriteString("\n\n    " + menuTitle.Render(title) + "\n    " + menuSub.Render(sub) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.items() {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-14s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuItem.Render(fmt.Sprintf("  %-14s", name)), menuItem.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusDone.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuItem.Render(" navigate  ") + menuKey.Render("enter") + menuItem.Render(" select  ") + menuKey.Render("esc") + menuItem.Render(" back  ") + menuKey.Render("q") + menuItem.Render(" quit") + "\n")
	return b.String()
}

// RunMenu opens the preset picker full screen.
func RunMenu(log *zap.Logger) error {
	_, err := tea.NewProgram(NewMenu(log), tea.WithAltScreen()).Run()
	return err
}
