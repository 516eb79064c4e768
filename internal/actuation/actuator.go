package actuation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

// Body is the part of the arm an actuator needs: element lengths and a
// writable torque row per axis.
type Body interface {
	Lengths() []float64
	TorqueAxis(axis int) []float64
}

type Config struct {
	Direction     Direction
	ControlPoints int
	BaseLength    float64
	// Scale multiplies the unit spline into a torque magnitude.
	Scale float64
	// RateLimit bounds how far a control point moves per call. Use
	// math.Inf(1) for immediate tracking.
	RateLimit float64
	// StepSkip is the sampling period of the history sink in calls.
	StepSkip int
}

func (c Config) validate() error {
	if c.Direction < Normal || c.Direction > Tangent {
		return dynamo.NewConfigError("actuation.direction", "unknown torque axis %d", int(c.Direction))
	}
	if c.ControlPoints < 1 {
		return fmt.Errorf("%w: control point count must be at least 1, got %d", dynamo.ErrInvalidInput, c.ControlPoints)
	}
	if c.BaseLength <= 0 {
		return dynamo.NewConfigError("rod.base_length", "must be positive, got %g", c.BaseLength)
	}
	if c.RateLimit <= 0 || math.IsNaN(c.RateLimit) {
		return dynamo.NewConfigError("actuation.max_rate_of_change", "must be positive, got %g", c.RateLimit)
	}
	return nil
}

// SplineActuator applies a spline-shaped torque field about one local
// axis. It implements the micro-step forcing hook.
type SplineActuator struct {
	cfg    Config
	body   Body
	buffer *ControlPointBuffer
	sink   HistorySink

	spline   *Spline
	arc      []float64
	field    []float64
	built    bool
	rebuilds int
	calls    int
}

// NewSplineActuator binds an actuator to a body and a control point buffer
// it does not own. sink may be nil.
func NewSplineActuator(body Body, buffer *ControlPointBuffer, cfg Config, sink HistorySink) (*SplineActuator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if buffer != nil && buffer.Len() != cfg.ControlPoints {
		return nil, fmt.Errorf("%w: buffer holds %d points, actuator expects %d", dynamo.ErrInvalidInput, buffer.Len(), cfg.ControlPoints)
	}
	if cfg.StepSkip < 1 {
		cfg.StepSkip = 1
	}
	return &SplineActuator{
		cfg:    cfg,
		body:   body,
		buffer: buffer,
		sink:   sink,
		spline: newSpline(cfg.ControlPoints, cfg.BaseLength),
	}, nil
}

// ApplyTorques reads the bound buffer and adds the field to the body.
func (a *SplineActuator) ApplyTorques(t float64) error {
	if a.buffer == nil {
		return fmt.Errorf("%w: actuator %s has no control point buffer", dynamo.ErrInvalidInput, a.cfg.Direction)
	}
	return a.Apply(a.buffer.Values(), t)
}

// Apply adds the torque field for the requested control points to the
// body. The spline is refit only when points differ from the cached
// interior values, or on the first call.
func (a *SplineActuator) Apply(points []float64, t float64) error {
	if len(points) != a.cfg.ControlPoints {
		return fmt.Errorf("%w: expected %d control points, got %d", dynamo.ErrInvalidInput, a.cfg.ControlPoints, len(points))
	}

	lengths := a.body.Lengths()
	refield := false
	if len(a.arc) != len(lengths) {
		a.arc = make([]float64, len(lengths))
		a.field = make([]float64, len(lengths))
		refield = true
	}
	arc := floats.CumSum(make([]float64, len(lengths)), lengths)
	if !floats.Equal(arc, a.arc) {
		copy(a.arc, arc)
		refield = true
	}

	if !a.built || !floats.Equal(points, a.spline.Interior()) {
		next := RateLimit(a.spline.Interior(), points, a.cfg.RateLimit)
		if err := a.spline.set(next); err != nil {
			return fmt.Errorf("fit %s spline: %w", a.cfg.Direction, err)
		}
		a.built = true
		a.rebuilds++
		refield = true
	}

	if refield {
		for i, s := range a.arc {
			a.field[i] = a.cfg.Scale * a.spline.At(s)
		}
	}

	row := a.body.TorqueAxis(a.cfg.Direction.Axis())
	floats.Add(row, a.field)

	if a.sink != nil && a.calls%a.cfg.StepSkip == 0 {
		axis := a.cfg.Direction.Axis()
		torques := make([][3]float64, len(a.field))
		for i, m := range a.field {
			torques[i][axis] = m
		}
		a.sink.RecordTorque(TorqueRecord{
			Time:            t,
			Direction:       a.cfg.Direction,
			Magnitudes:      append([]float64(nil), a.field...),
			Torques:         torques,
			ElementPosition: append([]float64(nil), a.arc...),
		})
	}
	a.calls++
	return nil
}

// Field returns a copy of the current torque magnitudes per element.
func (a *SplineActuator) Field() []float64 {
	return append([]float64(nil), a.field...)
}

// ControlPoints returns a copy of the cached, rate-limited interior values.
func (a *SplineActuator) ControlPoints() []float64 {
	return append([]float64(nil), a.spline.Interior()...)
}

func (a *SplineActuator) Spline() *Spline      { return a.spline }
func (a *SplineActuator) Direction() Direction { return a.cfg.Direction }
func (a *SplineActuator) Rebuilds() int        { return a.rebuilds }
