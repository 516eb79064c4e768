// Package control provides stand-in policies that drive the arm without a
// trained network.
//
// Every policy implements [dynamo.Controller] and emits actions in [-1, 1]
// with the length the environment expects:
//
//   - [None]: zero action, the passive arm
//   - [Random]: independent uniform samples, seeded
//   - [Wave]: a travelling sine over the control points
//   - [Manual]: a fixed vector set from outside, used by the live view
//
// # Usage
//
//	policy, err := control.New("wave", e.ActionSize(), cfg.Actuation.ControlPoints, cfg.Seed)
//	res, err := e.RunEpisode(ctx, policy)
//
// Policies implementing [dynamo.Configurable] support live tuning.
package control
