package bench

import (
	"strings"
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

func TestCompareRunsAllStrategies(t *testing.T) {
	env := createTestEnvironment(t, 8, 8)
	cmp := Compare(env, engine.Position{X: 0, Y: 0}, engine.Position{X: 5, Y: 5}, 0, planner.DefaultTuning())

	if len(cmp.Results) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(cmp.Results))
	}
	for _, name := range planner.Names() {
		if _, ok := cmp.Results[name]; !ok {
			t.Errorf("Missing result for %s", name)
		}
	}
	if env.CurrentTime() != 0 {
		t.Errorf("Expected comparison to leave clock at 0, got %d", env.CurrentTime())
	}
}

func TestCompareDeterministicStrategiesSucceedOnOpenGrid(t *testing.T) {
	env := createTestEnvironment(t, 10, 10)
	cmp := Compare(env, engine.Position{X: 0, Y: 0}, engine.Position{X: 9, Y: 9}, 0, planner.DefaultTuning())

	for _, name := range []string{planner.NameBFS, planner.NameAStar, planner.NameHillClimbing} {
		result := cmp.Results[name]
		if !result.Success {
			t.Errorf("Expected %s to succeed on open grid", name)
		}
		if result.Success && len(result.Path) != 18 {
			t.Errorf("Expected %s path length 18, got %d", name, len(result.Path))
		}
	}
}

func TestBestPrefersLowestCost(t *testing.T) {
	cmp := Comparison{
		Results: map[string]planner.PathResult{
			planner.NameBFS:   {Success: true, Cost: 10, TimeTaken: 1},
			planner.NameAStar: {Success: true, Cost: 8, TimeTaken: 100},
		},
	}
	best, ok := cmp.Best()
	if !ok {
		t.Fatal("Expected a best strategy")
	}
	if best != planner.NameAStar {
		t.Errorf("Expected %s, got %s", planner.NameAStar, best)
	}
}

func TestBestBreaksCostTiesByTime(t *testing.T) {
	cmp := Comparison{
		Results: map[string]planner.PathResult{
			planner.NameBFS:   {Success: true, Cost: 10, TimeTaken: 200},
			planner.NameAStar: {Success: true, Cost: 10, TimeTaken: 50},
		},
	}
	best, _ := cmp.Best()
	if best != planner.NameAStar {
		t.Errorf("Expected tie to break on time toward %s, got %s", planner.NameAStar, best)
	}
}

func TestBestIgnoresFailures(t *testing.T) {
	cmp := Comparison{
		Results: map[string]planner.PathResult{
			planner.NameBFS:          {Success: false, Cost: 0},
			planner.NameHillClimbing: {Success: true, Cost: 99},
		},
	}
	best, ok := cmp.Best()
	if !ok || best != planner.NameHillClimbing {
		t.Errorf("Expected %s, got %q ok=%v", planner.NameHillClimbing, best, ok)
	}
}

func TestBestWithNoSuccesses(t *testing.T) {
	cmp := Comparison{
		Results: map[string]planner.PathResult{
			planner.NameBFS: {Success: false},
		},
	}
	if _, ok := cmp.Best(); ok {
		t.Error("Expected no best strategy when every result failed")
	}
}

func TestFormatReportIncludesAllRows(t *testing.T) {
	env := createTestEnvironment(t, 6, 6)
	cmp := Compare(env, engine.Position{X: 0, Y: 0}, engine.Position{X: 4, Y: 4}, 0, planner.DefaultTuning())

	report := cmp.FormatReport()
	for _, name := range planner.Names() {
		if !strings.Contains(report, name) {
			t.Errorf("Expected report to contain %s", name)
		}
	}
	if !strings.Contains(report, "Best performing algorithm:") {
		t.Error("Expected report to contain best-performer line")
	}
	if !strings.Contains(report, "Algorithm Comparison Results:") {
		t.Error("Expected report header")
	}
}

func TestFormatReportUnreachableGoal(t *testing.T) {
	env := createTestEnvironment(t, 6, 6)
	// Wall the goal corner off completely.
	env.PaintRegion(4, 5, 4, 5, engine.Building)
	env.PaintRegion(5, 4, 5, 4, engine.Building)

	cmp := Compare(env, engine.Position{X: 0, Y: 0}, engine.Position{X: 5, Y: 5}, 0, planner.DefaultTuning())
	report := cmp.FormatReport()

	if !strings.Contains(report, "No algorithm found a path.") {
		t.Error("Expected no-path line for unreachable goal")
	}
	if !strings.Contains(report, "N/A") {
		t.Error("Expected N/A placeholders for failed rows")
	}
}
