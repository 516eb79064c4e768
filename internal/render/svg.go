package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/GazzolaLab/Elastica-RL-control/internal/diagnostics"
)

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b *bounds) add(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return
	}
	b.minX = math.Min(b.minX, x)
	b.maxX = math.Max(b.maxX, x)
	b.minY = math.Min(b.minY, y)
	b.maxY = math.Max(b.maxY, y)
}

// square pads the box by 10% and makes it square so the arm keeps its
// proportions.
func (b *bounds) square() {
	span := math.Max(b.maxX-b.minX, b.maxY-b.minY)
	if span == 0 || math.IsInf(span, 0) {
		span = 1
	}
	cx, cy := (b.minX+b.maxX)/2, (b.minY+b.maxY)/2
	half := span * 0.6
	b.minX, b.maxX = cx-half, cx+half
	b.minY, b.maxY = cy-half, cy+half
}

func (b bounds) toPixel(x, y float64, size int) (float64, float64) {
	s := float64(size)
	return (x - b.minX) / (b.maxX - b.minX) * s, s - (y-b.minY)/(b.maxY-b.minY)*s
}

// pathData writes an SVG path through the finite points, starting a new
// subpath after every gap.
func pathData(pts [][3]float64, b bounds, size int) string {
	var sb strings.Builder
	pen := false
	for _, p := range pts {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			pen = false
			continue
		}
		x, y := b.toPixel(p[0], p[1], size)
		if pen {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " M%.1f,%.1f", x, y)
			pen = true
		}
	}
	return strings.TrimSpace(sb.String())
}

// ArmSVG draws the x-y projection of the episode: faded earlier arm
// configurations, the final one, the target path and any obstacles.
func ArmSVG(h *diagnostics.History, size, snapshots int) string {
	frames := h.Arm.NodePositionRod
	if len(frames) == 0 {
		return ""
	}

	b := bounds{minX: math.Inf(1), maxX: math.Inf(-1), minY: math.Inf(1), maxY: math.Inf(-1)}
	for _, f := range frames {
		for _, p := range f {
			b.add(p[0], p[1])
		}
	}
	for _, p := range h.Arm.PositionSphere {
		b.add(p[0], p[1])
	}
	for _, o := range h.Obstacles.Obstacles {
		for _, p := range o.PlotPoints {
			b.add(p[0], p[1])
		}
	}
	b.square()

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size)

	for _, o := range h.Obstacles.Obstacles {
		if d := pathData(o.PlotPoints, b, size); d != "" {
			fmt.Fprintf(&sb, `<path fill="none" stroke="#888888" stroke-width="3" d="%s"/>
`, d)
		}
	}

	if d := pathData(h.Arm.PositionSphere, b, size); d != "" {
		fmt.Fprintf(&sb, `<path fill="none" stroke="#ff5f5f" stroke-width="1" stroke-dasharray="4 3" d="%s"/>
`, d)
	}

	idx := snapshotIndices(len(frames), max(snapshots, 1))
	for k, i := range idx {
		opacity := 0.25
		if k == len(idx)-1 {
			opacity = 1
		}
		if d := pathData(frames[i], b, size); d != "" {
			fmt.Fprintf(&sb, `<path fill="none" stroke="#00ff88" stroke-opacity="%.2f" stroke-width="2" d="%s"/>
`, opacity, d)
		}
	}

	if n := len(h.Arm.PositionSphere); n > 0 {
		p := h.Arm.PositionSphere[n-1]
		if !math.IsNaN(p[0]) && !math.IsNaN(p[1]) {
			x, y := b.toPixel(p[0], p[1], size)
			r := 4.0
			if len(h.Arm.RadiiSphere) > 0 {
				r = math.Max(r, h.Arm.RadiiSphere[n-1]/(b.maxX-b.minX)*float64(size))
			}
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="#ff5f5f"/>
`, x, y, r)
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
