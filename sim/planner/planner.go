package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
)

var ErrUnknownStrategy = errors.New("unknown planning strategy")

// Canonical strategy names. These are also the keys used in comparison
// results and persisted experiment output.
const (
	NameBFS                = "BFS"
	NameAStar              = "A* Manhattan"
	NameHillClimbing       = "Hill Climbing"
	NameSimulatedAnnealing = "Simulated Annealing"
)

// PathResult is the outcome of a single path search. On failure the path is
// empty and the cost is meaningless for ranking.
type PathResult struct {
	Success       bool              `json:"success"`
	Path          []engine.Position `json:"path"`
	Cost          float64           `json:"cost"`
	NodesExpanded int               `json:"nodes_expanded"`
	TimeTaken     time.Duration     `json:"time_taken"`
}

// Strategy is the shared contract for all path search algorithms. The
// returned path excludes start and includes goal on success. Implementations
// must not mutate the environment; startTime anchors the time-projected
// obstacle checks.
type Strategy interface {
	Name() string
	FindPath(env *engine.GridEnvironment, start, goal engine.Position, startTime int) PathResult
}

// neighborOffsets is the fixed 4-connected expansion order shared by every
// strategy so that deterministic searches stay deterministic.
var neighborOffsets = [4]struct{ dx, dy int }{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
}

// stepFeasible reports whether a cell can be entered at the given simulated
// arrival time: inside the grid, not a building, and not predicted to be
// occupied by a dynamic obstacle at that time.
func stepFeasible(env *engine.GridEnvironment, pos engine.Position, arrival int) bool {
	if !env.InBounds(pos.X, pos.Y) {
		return false
	}
	if !engine.Passable(env.Grid[pos.Y][pos.X]) {
		return false
	}
	return !env.OccupiedPositions(arrival)[pos]
}

// failure builds the canonical failed result: empty path, zero cost.
func failure(nodesExpanded int, elapsed time.Duration) PathResult {
	return PathResult{
		Success:       false,
		Path:          []engine.Position{},
		NodesExpanded: nodesExpanded,
		TimeTaken:     elapsed,
	}
}

// All returns one instance of each strategy, configured from the tuning.
// The order matches the canonical comparison/reporting order.
func All(tuning Tuning) []Strategy {
	return []Strategy{
		NewBFS(),
		NewAStar(),
		NewHillClimbing(tuning.HillClimbing),
		NewSimulatedAnnealing(tuning.SimulatedAnnealing),
	}
}

// ForName resolves a strategy by canonical name or common alias.
func ForName(name string, tuning Tuning) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bfs", "breadth-first search", "breadth-first-search":
		return NewBFS(), nil
	case "a*", "astar", "a* manhattan", "astar-manhattan":
		return NewAStar(), nil
	case "hill climbing", "hill-climbing", "hill_climbing", "hill":
		return NewHillClimbing(tuning.HillClimbing), nil
	case "simulated annealing", "simulated-annealing", "simulated_annealing", "annealing":
		return NewSimulatedAnnealing(tuning.SimulatedAnnealing), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Names returns the canonical strategy names in comparison order.
func Names() []string {
	return []string{NameBFS, NameAStar, NameHillClimbing, NameSimulatedAnnealing}
}
