package bench

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
	"github.com/wricardo/mcp-training/deliverysim/sim/planner"
)

// Comparison holds one run of every strategy against the same query.
type Comparison struct {
	Start     engine.Position               `json:"start"`
	Goal      engine.Position               `json:"goal"`
	StartTime int                           `json:"start_time"`
	Results   map[string]planner.PathResult `json:"results"`
}

// Compare runs every strategy on the same start/goal/startTime query and
// collects the results keyed by canonical strategy name. Strategies run in
// isolation: a failure in one never affects another, and the environment
// clock is untouched.
func Compare(env *engine.GridEnvironment, start, goal engine.Position, startTime int, tuning planner.Tuning) Comparison {
	cmp := Comparison{
		Start:     start,
		Goal:      goal,
		StartTime: startTime,
		Results:   make(map[string]planner.PathResult),
	}
	for _, strategy := range planner.All(tuning) {
		cmp.Results[strategy.Name()] = strategy.FindPath(env, start, goal, startTime)
	}
	return cmp
}

// Best returns the name of the winning strategy: the successful result with
// the lowest cost, ties broken by the shorter search time. Returns false
// when every strategy failed.
func (c Comparison) Best() (string, bool) {
	best := ""
	for _, name := range planner.Names() {
		result, ok := c.Results[name]
		if !ok || !result.Success {
			continue
		}
		if best == "" {
			best = name
			continue
		}
		current := c.Results[best]
		if result.Cost < current.Cost ||
			(result.Cost == current.Cost && result.TimeTaken < current.TimeTaken) {
			best = name
		}
	}
	return best, best != ""
}

// FormatReport renders the comparison as a fixed-width text table, one row
// per strategy in canonical order, with a closing best-performer line.
func (c Comparison) FormatReport() string {
	var sb strings.Builder
	sb.WriteString("Algorithm Comparison Results:\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("%-20s %-8s %-12s %-10s %-8s %-10s\n",
		"Algorithm", "Success", "Path Length", "Cost", "Nodes", "Time (s)"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	for _, name := range planner.Names() {
		result, ok := c.Results[name]
		if !ok {
			continue
		}
		success := "No"
		pathLen := "N/A"
		cost := "N/A"
		if result.Success {
			success = "Yes"
			pathLen = fmt.Sprintf("%d", len(result.Path))
			cost = fmt.Sprintf("%.2f", result.Cost)
		}
		sb.WriteString(fmt.Sprintf("%-20s %-8s %-12s %-10s %-8d %-10.4f\n",
			name, success, pathLen, cost, result.NodesExpanded, result.TimeTaken.Seconds()))
	}

	if best, ok := c.Best(); ok {
		winner := c.Results[best]
		sb.WriteString(fmt.Sprintf("\nBest performing algorithm: %s (cost: %.2f, time: %.4fs)\n",
			best, winner.Cost, winner.TimeTaken.Seconds()))
	} else {
		sb.WriteString("\nNo algorithm found a path.\n")
	}
	return sb.String()
}
