package planner

import (
	"math"
	"math/rand"
	"time"

	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
)

// SimulatedAnnealing is stochastic local search with an explicit cooling
// schedule. Each iteration proposes one random feasible neighbor, accepts it
// unconditionally when it strictly reduces the heuristic distance, and
// otherwise accepts with probability exp(-delta/T). Exceeding the iteration
// cap or cooling below the temperature floor is reported as failure. The
// walk is reproducible for a fixed seed.
type SimulatedAnnealing struct {
	cfg SimulatedAnnealingConfig
}

// NewSimulatedAnnealing creates the strategy with the given cooling schedule.
func NewSimulatedAnnealing(cfg SimulatedAnnealingConfig) *SimulatedAnnealing {
	return &SimulatedAnnealing{cfg: cfg}
}

// Name returns the canonical strategy name.
func (sa *SimulatedAnnealing) Name() string {
	return NameSimulatedAnnealing
}

// FindPath performs the annealed walk from start toward goal. Nodes expanded
// counts proposals.
func (sa *SimulatedAnnealing) FindPath(env *engine.GridEnvironment, start, goal engine.Position, startTime int) PathResult {
	began := time.Now()
	rng := rand.New(rand.NewSource(sa.cfg.Seed))

	current := start
	path := []engine.Position{}
	cost := 0.0
	expanded := 0
	temperature := sa.cfg.InitialTemperature

	if current == goal {
		return PathResult{Success: true, Path: path, NodesExpanded: expanded, TimeTaken: time.Since(began)}
	}

	for iter := 0; iter < sa.cfg.MaxIterations; iter++ {
		if temperature < sa.cfg.MinTemperature {
			return failure(expanded, time.Since(began))
		}

		arrival := startTime + len(path) + 1
		var feasible []engine.Position
		for _, off := range neighborOffsets {
			next := engine.Position{X: current.X + off.dx, Y: current.Y + off.dy}
			if stepFeasible(env, next, arrival) {
				feasible = append(feasible, next)
			}
		}
		if len(feasible) == 0 {
			return failure(expanded, time.Since(began))
		}

		candidate := feasible[rng.Intn(len(feasible))]
		expanded++

		delta := float64(engine.ManhattanDistance(candidate, goal) - engine.ManhattanDistance(current, goal))
		if delta < 0 || rng.Float64() < math.Exp(-delta/temperature) {
			current = candidate
			path = append(path, current)
			cost += engine.MovementCost(env.Grid[current.Y][current.X])

			if current == goal {
				return PathResult{
					Success:       true,
					Path:          path,
					Cost:          cost,
					NodesExpanded: expanded,
					TimeTaken:     time.Since(began),
				}
			}
		}

		temperature *= sa.cfg.CoolingRate
	}

	return failure(expanded, time.Since(began))
}
