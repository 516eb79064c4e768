// Package render draws episode diagnostics as PNG charts and SVG
// projections of the arm.
package render

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Series is one named line of a chart.
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

// limitedTicker produces at most maxLabels evenly spaced ticks.
func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)

		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(20)
	p.Title.Padding = vg.Points(10)

	p.X.Label.TextStyle.Font.Size = vg.Points(16)
	p.Y.Label.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Padding = vg.Points(8)
	p.Y.Label.Padding = vg.Points(8)

	p.X.LineStyle.Width = vg.Points(1.8)
	p.Y.LineStyle.Width = vg.Points(1.8)
	p.X.Padding = vg.Points(16)
	p.Y.Padding = vg.Points(16)

	p.X.Tick.Label.Font.Size = vg.Points(12)
	p.Y.Tick.Label.Font.Size = vg.Points(12)
	p.X.Tick.Marker = limitedTicker(8, "%.2f")
	p.Y.Tick.Marker = limitedTicker(8, "%.2f")

	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = vg.Points(12)
}

// savePlotPNG renders p at 300 DPI. Width and height are in inches.
func savePlotPNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(300),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

// finiteXYs drops points with a non-finite coordinate; plotter rejects
// them and a diverged episode ends with NaN distances.
func finiteXYs(xs, ys []float64) plotter.XYs {
	n := min(len(xs), len(ys))
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}

// LinePlot writes an 8x6 inch chart with one line per series.
func LinePlot(filename, title, xlabel, ylabel string, series ...Series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)

	drawn := 0
	for i, s := range series {
		pts := finiteXYs(s.X, s.Y)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(2.5)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		if s.Name != "" {
			p.Legend.Add(s.Name, line)
		}
		drawn++
	}
	if drawn == 0 {
		return fmt.Errorf("plot %q has no finite data", title)
	}

	return savePlotPNG(p, 8.0, 6.0, filename)
}
