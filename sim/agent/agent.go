package agent

import (
	"log"

	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
	"github.com/wricardo/mcp-training/deliverysim/sim/planner"
)

// DeliveryAgent interleaves planning and execution against a shared
// environment: it plans a path to the next task target, walks it one cell
// per simulation step, and replans when a dynamic obstacle blocks the way.
type DeliveryAgent struct {
	env      *engine.GridEnvironment
	strategy planner.Strategy

	state     AgentState
	status    Status
	tasks     []DeliveryTask
	path      []engine.Position
	pathIndex int
	stats     SimulationStats
}

// NewDeliveryAgent creates an idle agent at the given position with the
// given fuel budget.
func NewDeliveryAgent(env *engine.GridEnvironment, position engine.Position, initialFuel float64) *DeliveryAgent {
	if initialFuel < 0 {
		initialFuel = 0
	}
	return &DeliveryAgent{
		env:      env,
		strategy: planner.NewAStar(),
		status:   StatusIdle,
		state: AgentState{
			Position:            position,
			Fuel:                initialFuel,
			CarryingPackages:    make(map[string]bool),
			CompletedDeliveries: make(map[string]bool),
		},
	}
}

// SetStrategy swaps the planning strategy used for subsequent planning calls.
func (a *DeliveryAgent) SetStrategy(s planner.Strategy) {
	a.strategy = s
}

// Strategy returns the active planning strategy.
func (a *DeliveryAgent) Strategy() planner.Strategy {
	return a.strategy
}

// AddDeliveryTask appends a task to the agent's task list. Tasks are never
// removed; completion is tracked in the completed-deliveries set.
func (a *DeliveryAgent) AddDeliveryTask(task DeliveryTask) {
	a.tasks = append(a.tasks, task)
}

// Tasks returns the full task list, completed or not.
func (a *DeliveryAgent) Tasks() []DeliveryTask {
	return a.tasks
}

// State returns the current agent state snapshot.
func (a *DeliveryAgent) State() AgentState {
	return a.state
}

// Status returns the current state-machine status.
func (a *DeliveryAgent) Status() Status {
	return a.status
}

// Stats returns the accumulated simulation statistics.
func (a *DeliveryAgent) Stats() SimulationStats {
	return a.stats
}

// CurrentPath returns the remaining planned positions, if any.
func (a *DeliveryAgent) CurrentPath() []engine.Position {
	if a.pathIndex >= len(a.path) {
		return nil
	}
	remaining := make([]engine.Position, len(a.path)-a.pathIndex)
	copy(remaining, a.path[a.pathIndex:])
	return remaining
}

// HasActivePath reports whether the agent still has planned moves to execute.
func (a *DeliveryAgent) HasActivePath() bool {
	return a.pathIndex < len(a.path)
}

// nextTask selects the task with the highest priority among those not yet
// completed. Ties resolve to the first task in list order, so selection is
// stable across identical runs.
func (a *DeliveryAgent) nextTask() (DeliveryTask, bool) {
	var best DeliveryTask
	found := false
	for _, task := range a.tasks {
		if a.state.CompletedDeliveries[task.PackageID] {
			continue
		}
		if !found || task.Priority > best.Priority {
			best = task
			found = true
		}
	}
	return best, found
}

// PlanNextAction picks the next task and plans a path to its pickup or
// delivery location. Returns false when there is no more work or the active
// strategy finds no path; either way the agent is Done.
func (a *DeliveryAgent) PlanNextAction() bool {
	a.status = StatusPlanning

	task, ok := a.nextTask()
	if !ok {
		a.status = StatusDone
		return false
	}

	target := task.PickupLocation
	if a.state.CarryingPackages[task.PackageID] {
		target = task.DeliveryLocation
	}

	result := a.strategy.FindPath(a.env, a.state.Position, target, a.env.CurrentTime())
	a.stats.TotalPlanningTime += result.TimeTaken

	if !result.Success {
		log.Printf("[PLAN] strategy=%s package=%s target=(%d,%d) no path found",
			a.strategy.Name(), task.PackageID, target.X, target.Y)
		a.status = StatusDone
		return false
	}

	a.path = result.Path
	a.pathIndex = 0
	a.status = StatusExecuting
	return true
}

// ExecuteNextAction processes exactly one queued position. It returns false
// when the agent cannot act (no fuel, or no path to consume). A blocked step
// returns true: the step is consumed, the path is discarded, and the agent
// will replan on the next iteration. A step either fully commits its
// movement and side effects or is a complete no-op.
func (a *DeliveryAgent) ExecuteNextAction() bool {
	if a.state.Fuel <= 0 {
		a.status = StatusDone
		return false
	}
	if a.pathIndex >= len(a.path) {
		return false
	}

	next := a.path[a.pathIndex]
	if a.env.OccupiedPositions(a.env.CurrentTime())[next] {
		// The actual obstacle set, not a prediction: the cell is taken right
		// now, so discard the path and go back to planning.
		a.stats.ReplanningEvents++
		a.path = nil
		a.pathIndex = 0
		a.status = StatusBlocked
		log.Printf("[SIM] blocked at (%d,%d) t=%d replanning_events=%d",
			next.X, next.Y, a.env.CurrentTime(), a.stats.ReplanningEvents)
		return true
	}

	a.stats.TotalDistanceTraveled++
	a.stats.TotalFuelConsumed++
	a.state.Fuel--
	if a.state.Fuel < 0 {
		a.state.Fuel = 0
	}
	a.state.Position = next
	a.pathIndex++

	for _, task := range a.tasks {
		if !a.state.CarryingPackages[task.PackageID] &&
			!a.state.CompletedDeliveries[task.PackageID] &&
			a.state.Position == task.PickupLocation {
			a.state.CarryingPackages[task.PackageID] = true
		}
		if a.state.CarryingPackages[task.PackageID] &&
			!a.state.CompletedDeliveries[task.PackageID] &&
			a.state.Position == task.DeliveryLocation {
			a.state.CompletedDeliveries[task.PackageID] = true
			a.stats.DeliveriesCompleted++
			delete(a.state.CarryingPackages, task.PackageID)
			log.Printf("[SIM] delivered package=%s at (%d,%d) total=%d",
				task.PackageID, next.X, next.Y, a.stats.DeliveriesCompleted)
		}
	}

	return true
}

// Step runs one plan/execute cycle: plan if no path is active, process one
// path position, and advance the environment clock by one tick. Returns
// false when nothing happened (no fuel, no work, or planning failed); a
// blocked step counts as a step.
func (a *DeliveryAgent) Step() bool {
	if a.state.Fuel <= 0 {
		a.status = StatusDone
		return false
	}
	if !a.HasActivePath() {
		if !a.PlanNextAction() {
			return false
		}
	}
	if !a.ExecuteNextAction() {
		return false
	}
	a.stats.SimulationSteps++
	a.env.AdvanceClock()
	return true
}

// RunSimulation drives Step until maxSteps is reached, fuel runs out, or
// there is no more work. Returns the accumulated stats.
func (a *DeliveryAgent) RunSimulation(maxSteps int) SimulationStats {
	for steps := 0; steps < maxSteps; steps++ {
		if !a.Step() {
			break
		}
	}

	if !a.HasActivePath() {
		if _, remaining := a.nextTask(); !remaining {
			a.status = StatusDone
		}
	}

	return a.stats
}

// Restore rebuilds agent state from persisted values. Used by session
// loading only; counters and sets are adopted as-is.
func (a *DeliveryAgent) Restore(state AgentState, stats SimulationStats, tasks []DeliveryTask) {
	if state.CarryingPackages == nil {
		state.CarryingPackages = make(map[string]bool)
	}
	if state.CompletedDeliveries == nil {
		state.CompletedDeliveries = make(map[string]bool)
	}
	a.state = state
	a.stats = stats
	a.tasks = tasks
	a.path = nil
	a.pathIndex = 0
	a.status = StatusIdle
}
