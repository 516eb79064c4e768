package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is an orthographic view of the arena. With no rotation it looks
// down -z: lab x to the right and lab y (the undeformed arm axis) up.
type Camera struct {
	Center           r3.Vec
	Span             float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

// NewCamera frames a unit-length arm standing on the origin.
func NewCamera() *Camera {
	return &Camera{Center: r3.Vec{Y: 0.5}, Span: 2.4, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }
func (c *Camera) ResetView()        { c.RotX, c.RotY, c.RotZ, c.Zoom = 0, 0, 0, 1 }

// RotatePoint rotates a point about Center around the camera's axes.
func (c *Camera) RotatePoint(p r3.Vec) r3.Vec {
	p = r3.Sub(p, c.Center)
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Scale is dots per world unit on a sw x sh dot screen.
func (c *Camera) Scale(sw, sh int) float64 {
	return c.Zoom * math.Min(float64(sw), float64(sh)) / c.Span
}

// Project converts world coordinates to screen dots. The flag reports
// whether the point lands on screen; a non-finite point never does.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, bool) {
	rot := c.RotatePoint(p)
	s := c.Scale(sw, sh)
	if math.IsNaN(rot.X+rot.Y) || math.IsInf(rot.X+rot.Y, 0) {
		return -1, -1, false
	}
	sx := int(math.Round(rot.X*s)) + sw/2
	sy := sh/2 - int(math.Round(rot.Y*s))
	return sx, sy, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}
