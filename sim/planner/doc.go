// Package planner implements the interchangeable path search strategies for
// the delivery agent simulator.
//
// Four strategies share the Strategy contract:
//   - BFS: uninformed breadth-first search, unit edge cost
//   - A* Manhattan: best-first on terrain cost plus Manhattan heuristic
//   - Hill Climbing: greedy local search, may stop at a local optimum
//   - Simulated Annealing: stochastic local search with a cooling schedule
//
// Time-Projected Occupancy:
//
// Every strategy evaluates the k-th step of a candidate path against the
// dynamic obstacle positions predicted for startTime + k, not the positions
// at planning time. This is what makes the searches usable for replanning
// around moving obstacles.
//
// Determinism:
//
// BFS, A*, and Hill Climbing are fully deterministic for a given
// environment. Simulated Annealing draws from a seeded random source
// configured through SimulatedAnnealingConfig, so runs are reproducible for
// a fixed seed.
//
// Usage:
//
//	strategy, err := planner.ForName("astar", planner.DefaultTuning())
//	if err != nil {
//		log.Fatal(err)
//	}
//	result := strategy.FindPath(env, start, goal, env.CurrentTime())
//	if result.Success {
//		// result.Path excludes start and ends at goal
//	}
package planner
