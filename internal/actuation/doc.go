// Package actuation turns per-decision control points into distributed
// torque fields on the arm.
//
// A policy action is split by [Route] into one control point vector per
// local axis. Each vector is written into a [ControlPointBuffer] owned by
// the environment and read by a [SplineActuator] on every micro-step. The
// actuator rate-limits the points, fits a natural cubic spline through
// them with zero anchors at the base and the tip, and adds the scaled
// spline, sampled at each element's arc length, into the arm's torque
// accumulator.
//
// The spline is rebuilt only when the requested points differ from the
// cached ones, so a constant action costs one fit per control step at
// most.
package actuation
