package actuation

import (
	"strings"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

// Direction is the local axis a torque field acts about.
type Direction int

const (
	Normal Direction = iota
	Binormal
	Tangent
)

// Axis is the row of the torque accumulator the direction writes to.
func (d Direction) Axis() int { return int(d) }

func (d Direction) String() string {
	switch d {
	case Normal:
		return "normal"
	case Binormal:
		return "binormal"
	case Tangent:
		return "tangent"
	default:
		return "unknown"
	}
}

func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "normal":
		return Normal, nil
	case "binormal":
		return Binormal, nil
	case "tangent":
		return Tangent, nil
	}
	return 0, dynamo.NewConfigError("direction", "unknown torque direction %q", name)
}

// Mode selects which directions an action drives.
type Mode int

const (
	Mode2D Mode = iota
	Mode2D5
	Mode3D
	Mode3DTwist
)

func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "2d", "2.0", "2":
		return Mode2D, nil
	case "2.5d", "2.5":
		return Mode2D5, nil
	case "3d", "3.0", "3":
		return Mode3D, nil
	case "3.5d", "3.5":
		return Mode3DTwist, nil
	}
	return 0, dynamo.NewConfigError("actuation.dim", "unknown actuation mode %q", name)
}

func (m Mode) String() string {
	switch m {
	case Mode2D:
		return "2d"
	case Mode2D5:
		return "2.5d"
	case Mode3D:
		return "3d"
	case Mode3DTwist:
		return "3.5d"
	default:
		return "unknown"
	}
}

// Multiplier is the number of K-sized blocks in an action.
func (m Mode) Multiplier() int {
	switch m {
	case Mode2D:
		return 1
	case Mode3DTwist:
		return 3
	default:
		return 2
	}
}

// Planar reports whether targets stay in the z = 0 plane.
func (m Mode) Planar() bool {
	return m == Mode2D || m == Mode2D5
}

// Directions lists the axes that receive non-zero points in this mode, in
// action block order.
func (m Mode) Directions() []Direction {
	switch m {
	case Mode2D:
		return []Direction{Normal}
	case Mode2D5:
		return []Direction{Normal, Tangent}
	case Mode3D:
		return []Direction{Normal, Binormal}
	default:
		return []Direction{Normal, Binormal, Tangent}
	}
}
