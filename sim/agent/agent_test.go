package agent

import (
	"testing"

	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
	"github.com/wricardo/mcp-training/deliverysim/sim/planner"
)

func createTestEnvironment(t *testing.T, width, height int) *engine.GridEnvironment {
	t.Helper()
	env, err := engine.NewGridEnvironment(width, height)
	if err != nil {
		t.Fatalf("Failed to create environment: %v", err)
	}
	return env
}

func TestDeliveryOnOpenGrid(t *testing.T) {
	env := createTestEnvironment(t, 10, 10)
	agent := NewDeliveryAgent(env, engine.Position{X: 0, Y: 0}, 100)
	agent.SetStrategy(planner.NewBFS())
	agent.AddDeliveryTask(DeliveryTask{
		PackageID:        "P1",
		PickupLocation:   engine.Position{X: 3, Y: 3},
		DeliveryLocation: engine.Position{X: 7, Y: 7},
		Priority:         1,
	})

	stats := agent.RunSimulation(100)

	if stats.DeliveriesCompleted != 1 {
		t.Errorf("Expected 1 delivery, got %d", stats.DeliveriesCompleted)
	}
	// Manhattan (0,0)->(3,3) is 6, (3,3)->(7,7) is 8.
	if stats.TotalDistanceTraveled != 14 {
		t.Errorf("Expected distance 14, got %v", stats.TotalDistanceTraveled)
	}
	if stats.TotalFuelConsumed != 14 {
		t.Errorf("Expected fuel consumption 14, got %v", stats.TotalFuelConsumed)
	}
	if stats.ReplanningEvents != 0 {
		t.Errorf("Expected no replanning on open grid, got %d", stats.ReplanningEvents)
	}
	if stats.SimulationSteps != 14 {
		t.Errorf("Expected 14 steps, got %d", stats.SimulationSteps)
	}
	if agent.State().Fuel != 86 {
		t.Errorf("Expected fuel 86, got %v", agent.State().Fuel)
	}
	if agent.Status() != StatusDone {
		t.Errorf("Expected status %s, got %s", StatusDone, agent.Status())
	}
	if !agent.State().CompletedDeliveries["P1"] {
		t.Error("Expected P1 in completed deliveries")
	}
	if len(agent.State().CarryingPackages) != 0 {
		t.Errorf("Expected no carried packages after delivery, got %v", agent.State().CarryingPackages)
	}
}

func TestBlockedStepTriggersReplanning(t *testing.T) {
	env := createTestEnvironment(t, 5, 2)
	// Obstacle alternates between (1,0) and (1,1). At t=0 it sits on (1,0),
	// directly on the agent's straight-line route.
	env.RegisterObstacle("car", []engine.Position{{X: 1, Y: 0}, {X: 1, Y: 1}})

	agent := NewDeliveryAgent(env, engine.Position{X: 0, Y: 0}, 100)
	agent.SetStrategy(planner.NewBFS())
	agent.AddDeliveryTask(DeliveryTask{
		PackageID:        "P1",
		PickupLocation:   engine.Position{X: 4, Y: 0},
		DeliveryLocation: engine.Position{X: 4, Y: 1},
		Priority:         1,
	})

	stats := agent.RunSimulation(5)

	if stats.ReplanningEvents < 1 {
		t.Errorf("Expected at least 1 replanning event, got %d", stats.ReplanningEvents)
	}
}

func TestBlockedStepIsNoOp(t *testing.T) {
	env := createTestEnvironment(t, 3, 2)
	agent := NewDeliveryAgent(env, engine.Position{X: 0, Y: 0}, 10)
	agent.SetStrategy(planner.NewBFS())
	agent.AddDeliveryTask(DeliveryTask{
		PackageID:        "P1",
		PickupLocation:   engine.Position{X: 2, Y: 0},
		DeliveryLocation: engine.Position{X: 2, Y: 1},
		Priority:         1,
	})

	if !agent.PlanNextAction() {
		t.Fatal("Expected planning to succeed on open grid")
	}
	// Block the first planned cell after planning so execution must detect it.
	env.RegisterObstacle("wall", []engine.Position{{X: 1, Y: 0}})

	before := agent.State()
	beforeStats := agent.Stats()

	if !agent.ExecuteNextAction() {
		t.Fatal("Expected blocked step to consume the step and return true")
	}

	after := agent.State()
	stats := agent.Stats()

	if agent.Status() != StatusBlocked {
		t.Errorf("Expected status %s, got %s", StatusBlocked, agent.Status())
	}
	if after.Position != before.Position {
		t.Errorf("Blocked step moved agent from %v to %v", before.Position, after.Position)
	}
	if after.Fuel != before.Fuel {
		t.Errorf("Blocked step changed fuel from %v to %v", before.Fuel, after.Fuel)
	}
	if stats.TotalDistanceTraveled != beforeStats.TotalDistanceTraveled {
		t.Errorf("Blocked step changed distance: %v", stats.TotalDistanceTraveled)
	}
	if stats.ReplanningEvents != beforeStats.ReplanningEvents+1 {
		t.Errorf("Expected replanning events to increment, got %d", stats.ReplanningEvents)
	}
	if agent.HasActivePath() {
		t.Error("Expected path to be discarded after blocked step")
	}
}

func TestFuelExhaustionStopsSimulation(t *testing.T) {
	env := createTestEnvironment(t, 10, 10)
	agent := NewDeliveryAgent(env, engine.Position{X: 0, Y: 0}, 3)
	agent.SetStrategy(planner.NewBFS())
	agent.AddDeliveryTask(DeliveryTask{
		PackageID:        "P1",
		PickupLocation:   engine.Position{X: 9, Y: 9},
		DeliveryLocation: engine.Position{X: 0, Y: 9},
		Priority:         1,
	})

	stats := agent.RunSimulation(100)

	if agent.State().Fuel != 0 {
		t.Errorf("Expected fuel 0, got %v", agent.State().Fuel)
	}
	if stats.TotalFuelConsumed != 3 {
		t.Errorf("Expected 3 fuel consumed, got %v", stats.TotalFuelConsumed)
	}
	if stats.SimulationSteps != 3 {
		t.Errorf("Expected 3 steps, got %d", stats.SimulationSteps)
	}
	if stats.DeliveriesCompleted != 0 {
		t.Errorf("Expected no deliveries, got %d", stats.DeliveriesCompleted)
	}
}

func TestHighestPriorityTaskSelectedFirst(t *testing.T) {
	env := createTestEnvironment(t, 5, 5)
	agent := NewDeliveryAgent(env, engine.Position{X: 0, Y: 0}, 100)
	agent.SetStrategy(planner.NewBFS())
	agent.AddDeliveryTask(DeliveryTask{
		PackageID:        "LOW",
		PickupLocation:   engine.Position{X: 2, Y: 0},
		DeliveryLocation: engine.Position{X: 3, Y: 0},
		Priority:         1,
	})
	agent.AddDeliveryTask(DeliveryTask{
		PackageID:        "HIGH",
		PickupLocation:   engine.Position{X: 0, Y: 2},
		DeliveryLocation: engine.Position{X: 0, Y: 3},
		Priority:         5,
	})

	if !agent.PlanNextAction() {
		t.Fatal("Expected planning to succeed")
	}
	path := agent.CurrentPath()
	if len(path) == 0 {
		t.Fatal("Expected a non-empty path")
	}
	if got := path[len(path)-1]; got != (engine.Position{X: 0, Y: 2}) {
		t.Errorf("Expected path to end at HIGH pickup (0,2), got %v", got)
	}
}

func TestEqualPriorityPrefersFirstTask(t *testing.T) {
	env := createTestEnvironment(t, 5, 5)
	agent := NewDeliveryAgent(env, engine.Position{X: 0, Y: 0}, 100)
	agent.SetStrategy(planner.NewBFS())
	agent.AddDeliveryTask(DeliveryTask{
		PackageID:        "FIRST",
		PickupLocation:   engine.Position{X: 2, Y: 0},
		DeliveryLocation: engine.Position{X: 3, Y: 0},
		Priority:         2,
	})
	agent.AddDeliveryTask(DeliveryTask{
		PackageID:        "SECOND",
		PickupLocation:   engine.Position{X: 0, Y: 2},
		DeliveryLocation: engine.Position{X: 0, Y: 3},
		Priority:         2,
	})

	if !agent.PlanNextAction() {
		t.Fatal("Expected planning to succeed")
	}
	path := agent.CurrentPath()
	if got := path[len(path)-1]; got != (engine.Position{X: 2, Y: 0}) {
		t.Errorf("Expected path to end at FIRST pickup (2,0), got %v", got)
	}
}

func TestMultipleDeliveriesCompleteInPriorityOrder(t *testing.T) {
	env := createTestEnvironment(t, 8, 8)
	agent := NewDeliveryAgent(env, engine.Position{X: 0, Y: 0}, 100)
	agent.SetStrategy(planner.NewAStar())
	agent.AddDeliveryTask(DeliveryTask{
		PackageID:        "P1",
		PickupLocation:   engine.Position{X: 1, Y: 0},
		DeliveryLocation: engine.Position{X: 2, Y: 0},
		Priority:         1,
	})
	agent.AddDeliveryTask(DeliveryTask{
		PackageID:        "P2",
		PickupLocation:   engine.Position{X: 0, Y: 1},
		DeliveryLocation: engine.Position{X: 0, Y: 2},
		Priority:         3,
	})

	stats := agent.RunSimulation(100)

	if stats.DeliveriesCompleted != 2 {
		t.Errorf("Expected 2 deliveries, got %d", stats.DeliveriesCompleted)
	}
	if !agent.State().CompletedDeliveries["P1"] || !agent.State().CompletedDeliveries["P2"] {
		t.Errorf("Expected both packages delivered, got %v", agent.State().CompletedDeliveries)
	}
	if agent.Status() != StatusDone {
		t.Errorf("Expected status %s, got %s", StatusDone, agent.Status())
	}
}

func TestNoTasksIsImmediatelyDone(t *testing.T) {
	env := createTestEnvironment(t, 5, 5)
	agent := NewDeliveryAgent(env, engine.Position{X: 0, Y: 0}, 100)

	stats := agent.RunSimulation(10)

	if stats.SimulationSteps != 0 {
		t.Errorf("Expected 0 steps with no tasks, got %d", stats.SimulationSteps)
	}
	if agent.Status() != StatusDone {
		t.Errorf("Expected status %s, got %s", StatusDone, agent.Status())
	}
}

func TestClockAdvancesPerStep(t *testing.T) {
	env := createTestEnvironment(t, 6, 2)
	agent := NewDeliveryAgent(env, engine.Position{X: 0, Y: 0}, 100)
	agent.SetStrategy(planner.NewBFS())
	agent.AddDeliveryTask(DeliveryTask{
		PackageID:        "P1",
		PickupLocation:   engine.Position{X: 3, Y: 0},
		DeliveryLocation: engine.Position{X: 5, Y: 0},
		Priority:         1,
	})

	stats := agent.RunSimulation(100)

	if env.CurrentTime() != stats.SimulationSteps {
		t.Errorf("Expected clock %d after %d steps, got %d",
			stats.SimulationSteps, stats.SimulationSteps, env.CurrentTime())
	}
}

func TestRestoreRebuildsState(t *testing.T) {
	env := createTestEnvironment(t, 5, 5)
	agent := NewDeliveryAgent(env, engine.Position{X: 0, Y: 0}, 100)

	agent.Restore(
		AgentState{Position: engine.Position{X: 2, Y: 3}, Fuel: 40},
		SimulationStats{DeliveriesCompleted: 2, SimulationSteps: 17},
		[]DeliveryTask{{PackageID: "P9", Priority: 1}},
	)

	if agent.State().Position != (engine.Position{X: 2, Y: 3}) {
		t.Errorf("Expected restored position (2,3), got %v", agent.State().Position)
	}
	if agent.State().Fuel != 40 {
		t.Errorf("Expected restored fuel 40, got %v", agent.State().Fuel)
	}
	if agent.State().CarryingPackages == nil || agent.State().CompletedDeliveries == nil {
		t.Error("Expected restore to initialize nil package sets")
	}
	if agent.Stats().DeliveriesCompleted != 2 {
		t.Errorf("Expected restored stats, got %+v", agent.Stats())
	}
	if len(agent.Tasks()) != 1 {
		t.Errorf("Expected 1 restored task, got %d", len(agent.Tasks()))
	}
}
