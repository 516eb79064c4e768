// Package dynamo provides the core primitives shared by the arm environment.
//
// The package defines the vector and interface vocabulary used across the
// simulation and learning layers:
//
//   - [State]: flat vector used for rod state and observations
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: fixed-step numerical integrator
//   - [Controller]: policy mapping observations to actions
//   - [Metric]: episode statistic fed once per control step
//
// Errors are reported through the sentinels in errors.go and compared with
// errors.Is. Configuration failures carry the offending field in a
// [ConfigError].
package dynamo
