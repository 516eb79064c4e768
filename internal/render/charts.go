package render

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/GazzolaLab/Elastica-RL-control/internal/diagnostics"
)

// Chart file names written by Episode.
const (
	TorqueFile   = "torque_profile.png"
	DistanceFile = "tip_distance.png"
	ArmFile      = "arm_xy.png"
)

// TorqueProfiles plots the last recorded torque magnitude along the arm
// for every active direction.
func TorqueProfiles(filename string, h *diagnostics.History) error {
	var series []Series
	for _, name := range []string{"normal", "binormal", "tangent"} {
		act, ok := h.Activation[name]
		if !ok || len(act.TorqueMag) == 0 {
			continue
		}
		last := len(act.TorqueMag) - 1
		series = append(series, Series{Name: name, X: act.ElementPosition[last], Y: act.TorqueMag[last]})
	}
	if len(series) == 0 {
		return fmt.Errorf("no torque history to plot")
	}
	return LinePlot(filename, "Torque profile", "arc length (m)", "torque (N m)", series...)
}

// TipDistance plots the tip-to-target distance of one episode.
func TipDistance(filename string, times, distances []float64) error {
	return LinePlot(filename, "Tip to target distance", "time (s)", "distance (m)",
		Series{X: times, Y: distances})
}

// Returns plots the return of each episode in a run.
func Returns(filename string, returns []float64) error {
	xs := make([]float64, len(returns))
	for i := range xs {
		xs[i] = float64(i)
	}
	return LinePlot(filename, "Episode return", "episode", "return", Series{X: xs, Y: returns})
}

// ArmSnapshots draws the x-y projection of up to n evenly spaced arm
// configurations and the path of the target.
func ArmSnapshots(filename string, h *diagnostics.History, n int) error {
	frames := h.Arm.NodePositionRod
	if len(frames) == 0 {
		return fmt.Errorf("no arm history to plot")
	}
	if n < 1 {
		n = 1
	}

	p := plot.New()
	p.Title.Text = "Arm (x-y projection)"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	stylePlot(p)

	for k, i := range snapshotIndices(len(frames), n) {
		xs, ys := project(frames[i])
		line, err := plotter.NewLine(finiteXYs(xs, ys))
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = plotutil.Color(k)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("t=%.2f", h.Arm.Time[i]), line)
	}

	if len(h.Arm.PositionSphere) > 0 {
		xs, ys := project(h.Arm.PositionSphere)
		path := finiteXYs(xs, ys)
		if len(path) > 0 {
			sc, err := plotter.NewScatter(path)
			if err != nil {
				return err
			}
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
			sc.GlyphStyle.Radius = vg.Points(2)
			p.Add(sc)
			p.Legend.Add("target", sc)
		}
	}

	return savePlotPNG(p, 6.0, 6.0, filename)
}

// Episode writes every chart available for one episode into dir.
func Episode(dir string, h *diagnostics.History, times, distances []float64) error {
	if err := ArmSnapshots(filepath.Join(dir, ArmFile), h, 5); err != nil {
		return err
	}
	if len(h.Activation) > 0 {
		if err := TorqueProfiles(filepath.Join(dir, TorqueFile), h); err != nil {
			return err
		}
	}
	if len(times) > 0 {
		return TipDistance(filepath.Join(dir, DistanceFile), times, distances)
	}
	return nil
}

func snapshotIndices(total, n int) []int {
	if n > total {
		n = total
	}
	if n == 1 {
		return []int{total - 1}
	}
	out := make([]int, n)
	for k := range out {
		out[k] = k * (total - 1) / (n - 1)
	}
	return out
}

func project(pts [][3]float64) ([]float64, []float64) {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p[0], p[1]
	}
	return xs, ys
}
