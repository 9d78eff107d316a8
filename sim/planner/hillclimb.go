package planner

import (
	"time"

	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
)

// HillClimbing is greedy local search: at each step it moves to the
// unvisited neighbor with the smallest heuristic distance to the goal.
// With no strictly improving neighbor (and the sideways allowance spent)
// it stops at the local optimum and reports failure. It is deliberately
// incomplete; the move cap guarantees termination.
type HillClimbing struct {
	cfg HillClimbingConfig
}

// NewHillClimbing creates a hill climbing strategy with the given bounds.
func NewHillClimbing(cfg HillClimbingConfig) *HillClimbing {
	return &HillClimbing{cfg: cfg}
}

// Name returns the canonical strategy name.
func (hc *HillClimbing) Name() string {
	return NameHillClimbing
}

// FindPath climbs from start toward goal. Nodes expanded counts neighbor
// evaluations.
func (hc *HillClimbing) FindPath(env *engine.GridEnvironment, start, goal engine.Position, startTime int) PathResult {
	began := time.Now()

	current := start
	visited := map[engine.Position]bool{start: true}
	path := []engine.Position{}
	cost := 0.0
	expanded := 0
	sideways := 0

	if current == goal {
		return PathResult{Success: true, Path: path, NodesExpanded: expanded, TimeTaken: time.Since(began)}
	}

	for move := 0; move < hc.cfg.MaxMoves; move++ {
		arrival := startTime + len(path) + 1

		best := engine.Position{}
		bestH := -1
		for _, off := range neighborOffsets {
			next := engine.Position{X: current.X + off.dx, Y: current.Y + off.dy}
			if visited[next] || !stepFeasible(env, next, arrival) {
				continue
			}
			expanded++
			h := engine.ManhattanDistance(next, goal)
			if bestH == -1 || h < bestH {
				best, bestH = next, h
			}
		}

		if bestH == -1 {
			// Dead end: every neighbor visited or infeasible.
			return failure(expanded, time.Since(began))
		}

		currentH := engine.ManhattanDistance(current, goal)
		if bestH >= currentH {
			if bestH > currentH || sideways >= hc.cfg.SidewaysLimit {
				// Local optimum.
				return failure(expanded, time.Since(began))
			}
			sideways++
		} else {
			sideways = 0
		}

		current = best
		visited[current] = true
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

	return failure(expanded, time.Since(began))
}
