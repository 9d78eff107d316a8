package agent

import (
	"time"

	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
)

// Status enumerates the agent state machine states.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPlanning  Status = "planning"
	StatusExecuting Status = "executing"
	StatusBlocked   Status = "blocked"
	StatusDone      Status = "done"
)

// DeliveryTask describes one package to move from pickup to delivery.
// Tasks are immutable once created; completion is tracked on the agent.
type DeliveryTask struct {
	PackageID        string          `json:"package_id"`
	PickupLocation   engine.Position `json:"pickup_location"`
	DeliveryLocation engine.Position `json:"delivery_location"`
	Priority         int             `json:"priority"`
}

// AgentState is the mutable agent snapshot: where it is, how much fuel
// remains, and which packages are on board or already delivered.
type AgentState struct {
	Position            engine.Position `json:"position"`
	Fuel                float64         `json:"fuel"`
	CarryingPackages    map[string]bool `json:"carrying_packages"`
	CompletedDeliveries map[string]bool `json:"completed_deliveries"`
}

// SimulationStats accumulates run counters. All fields only ever grow and
// are owned exclusively by one agent instance.
type SimulationStats struct {
	ReplanningEvents      int           `json:"replanning_events"`
	DeliveriesCompleted   int           `json:"deliveries_completed"`
	TotalDistanceTraveled float64       `json:"total_distance_traveled"`
	TotalFuelConsumed     float64       `json:"total_fuel_consumed"`
	TotalPlanningTime     time.Duration `json:"total_planning_time"`
	SimulationSteps       int           `json:"simulation_steps"`
}
