// Package engine provides the world model for the delivery agent simulator.
//
// The engine package implements:
//   - A fixed-size terrain grid with per-terrain movement costs
//   - Dynamic obstacles following cyclic motion tracks
//   - A discrete, explicitly owned simulation clock
//   - Loading and saving of the JSON map format
//
// Core Types:
//
// GridEnvironment is the shared world instance queried by both the path
// planners and the delivery agent. MapFile mirrors the persisted JSON map
// schema with integer terrain codes.
//
// Usage:
//
//	env, err := engine.NewGridEnvironment(12, 12)
//	if err != nil {
//		log.Fatal(err)
//	}
//	env.PaintRegion(3, 3, 5, 5, engine.Building)
//	env.RegisterObstacle("car", []engine.Position{{X: 1, Y: 6}, {X: 2, Y: 6}})
//
//	occupied := env.OccupiedPositions(env.CurrentTime())
//
// Time Model:
//
// Obstacles are positioned purely as a function of time: a track of length n
// occupies track[t mod n] at time t. The clock only ever moves forward, one
// tick per call to AdvanceClock, and is owned by the environment instance
// rather than any global state.
package engine
