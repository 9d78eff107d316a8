package planner

import (
	"reflect"
	"testing"

	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
)

func TestAStar_OpenGrid(t *testing.T) {
	env := createOpenEnvironment(t, 10, 10)
	start := engine.Position{X: 1, Y: 1}
	goal := engine.Position{X: 8, Y: 6}

	result := NewAStar().FindPath(env, start, goal, 0)
	if !result.Success {
		t.Fatal("Expected A* to find a path on an open grid")
	}

	want := engine.ManhattanDistance(start, goal)
	if len(result.Path) != want {
		t.Errorf("Expected path length %d, got %d", want, len(result.Path))
	}
	// All road, so cost equals step count.
	if result.Cost != float64(want) {
		t.Errorf("Expected cost %v, got %v", float64(want), result.Cost)
	}
}

func TestAStar_AccountsForTerrainCost(t *testing.T) {
	env := createOpenEnvironment(t, 5, 5)
	// A water column across the middle, except clear road at the top row.
	env.PaintRegion(2, 1, 2, 4, engine.Water)

	start := engine.Position{X: 0, Y: 2}
	goal := engine.Position{X: 4, Y: 2}

	result := NewAStar().FindPath(env, start, goal, 0)
	if !result.Success {
		t.Fatal("Expected A* to find a path")
	}

	// Straight across: 3 road steps + 1 water step = cost 6, which beats the
	// 8-step all-road detour over the top row.
	if result.Cost != 6 {
		t.Errorf("Expected cost 6 crossing the water column, got %v", result.Cost)
	}
	if len(result.Path) != 4 {
		t.Errorf("Expected 4-step path, got %d", len(result.Path))
	}
}

func TestAStar_PrefersCheapDetourOverExpensiveTerrain(t *testing.T) {
	env := createOpenEnvironment(t, 7, 3)
	// Mountain column: crossing costs 5, stepping around costs 2 extra road steps.
	env.PaintRegion(3, 0, 3, 1, engine.Mountain)

	start := engine.Position{X: 0, Y: 1}
	goal := engine.Position{X: 6, Y: 1}

	result := NewAStar().FindPath(env, start, goal, 0)
	if !result.Success {
		t.Fatal("Expected A* to find a path")
	}

	// Detour through row 2: 8 road steps, cost 8, versus the 6-step direct
	// line whose mountain crossing costs 10 in total.
	if result.Cost != 8 {
		t.Errorf("Expected detour cost 8, got %v", result.Cost)
	}
	for _, pos := range result.Path {
		if pos.X == 3 && pos.Y <= 1 {
			t.Errorf("Path should avoid the mountain column, stepped on %v", pos)
		}
	}
}

func TestAStar_RejectsBuildings(t *testing.T) {
	env := createOpenEnvironment(t, 7, 7)
	env.PaintRegion(3, 0, 3, 6, engine.Building)

	result := NewAStar().FindPath(env, engine.Position{X: 0, Y: 3}, engine.Position{X: 6, Y: 3}, 0)
	if result.Success {
		t.Fatal("Expected failure when a building wall splits the grid")
	}
	if len(result.Path) != 0 {
		t.Error("Failed search must return an empty path")
	}
}

func TestAStar_TimeProjectedOccupancy(t *testing.T) {
	env := createOpenEnvironment(t, 5, 2)
	env.PaintRegion(0, 1, 4, 1, engine.Building)
	env.RegisterObstacle("car", []engine.Position{{X: 2, Y: 0}, {X: 2, Y: 1}})

	start := engine.Position{X: 0, Y: 0}
	goal := engine.Position{X: 4, Y: 0}

	if NewAStar().FindPath(env, start, goal, 0).Success {
		t.Error("Expected failure: obstacle predicted on the corridor at arrival time")
	}
	if !NewAStar().FindPath(env, start, goal, 1).Success {
		t.Error("Expected success with the shifted start time")
	}
}

func TestAStar_Deterministic(t *testing.T) {
	env := createOpenEnvironment(t, 12, 12)
	env.PaintRegion(4, 2, 6, 8, engine.Building)
	env.PaintRegion(0, 10, 11, 11, engine.Grass)

	start := engine.Position{X: 0, Y: 0}
	goal := engine.Position{X: 11, Y: 9}

	first := NewAStar().FindPath(env, start, goal, 0)
	second := NewAStar().FindPath(env, start, goal, 0)

	if !first.Success || !second.Success {
		t.Fatal("Expected both runs to succeed")
	}
	if !reflect.DeepEqual(first.Path, second.Path) {
		t.Error("Expected identical paths from identical inputs")
	}
	if first.NodesExpanded != second.NodesExpanded {
		t.Errorf("Expected identical expansion counts, got %d and %d", first.NodesExpanded, second.NodesExpanded)
	}
}
