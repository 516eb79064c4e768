package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = rune(0x2800)

// Layer tags what a dot belongs to. A cell takes the color of the highest
// layer drawn into it.
type Layer uint8

const (
	LayerNone Layer = iota
	LayerGrid
	LayerObstacle
	LayerArm
	LayerTarget
)

type Canvas struct {
	Width, Height int
	Grid          [][]rune
	layers        [][]Layer
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		layers: make([][]Layer, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.layers[i] = make([]Layer, w)
	}
	c.Clear()
	return c
}

// SubWidth and SubHeight are the canvas size in dots.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

// Set sets the dot at (x, y) in sub-pixel coordinates. Dots outside the
// canvas are ignored.
func (c *Canvas) Set(x, y int, l Layer) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if l > c.layers[row][col] {
		c.layers[row][col] = l
	}
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.layers[i][j] = LayerNone
		}
	}
}

// Line draws a line using Bresenham's algorithm. Lines much longer than
// the canvas are dropped; they only come from a diverged arm.
func (c *Canvas) Line(x0, y0, x1, y1 int, l Layer) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	if limit := 4 * (c.SubWidth() + c.SubHeight()); dx > limit || dy > limit || dx < 0 || dy < 0 {
		return
	}
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0, l)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Circle outlines a circle of radius r dots. Radii below one dot draw a
// single dot.
func (c *Canvas) Circle(cx, cy int, r float64, l Layer) {
	if r < 1 {
		c.Set(cx, cy, l)
		return
	}
	n := int(math.Ceil(2 * math.Pi * r))
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		c.Set(cx+int(math.Round(r*math.Cos(a))), cy+int(math.Round(r*math.Sin(a))), l)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render colors each cell by its layer. Consecutive cells of the same layer
// share one styled run.
func (c *Canvas) Render(th Theme) string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.layers[i][j] == c.layers[i][start] {
				continue
			}
			b.WriteString(th.style(c.layers[i][start]).Render(string(row[start:j])))
			start = j
		}
		b.WriteString("\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func (th Theme) style(l Layer) lipgloss.Style {
	switch l {
	case LayerGrid:
		return lipgloss.NewStyle().Foreground(th.Muted)
	case LayerObstacle:
		return lipgloss.NewStyle().Foreground(th.Obstacle)
	case LayerArm:
		return lipgloss.NewStyle().Foreground(th.Arm)
	case LayerTarget:
		return lipgloss.NewStyle().Foreground(th.Target).Bold(true)
	}
	return lipgloss.NewStyle()
}
