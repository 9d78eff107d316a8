package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/deliverysim/sim/agent"
	"github.com/wricardo/mcp-training/deliverysim/sim/config"
	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
	"github.com/wricardo/mcp-training/deliverysim/sim/planner"
	"github.com/wricardo/mcp-training/deliverysim/sim/session"
)

func createTestService(t *testing.T) SimulationService {
	t.Helper()
	maps, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create map manager: %v", err)
	}
	tuning := planner.DefaultTuning()
	sessions := session.NewManager(maps, tuning)
	return NewSimulationService(sessions, maps, tuning)
}

func createTestSession(t *testing.T, svc SimulationService) *SessionInfo {
	t.Helper()
	info, err := svc.CreateSession(context.Background(), CreateSessionRequest{})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return info
}

func TestCreateSessionDefaults(t *testing.T) {
	svc := createTestService(t)

	info := createTestSession(t, svc)

	if info.MapName != config.MapSmall {
		t.Errorf("Expected default map %s, got %s", config.MapSmall, info.MapName)
	}
	if info.Strategy != planner.NameAStar {
		t.Errorf("Expected default strategy %s, got %s", planner.NameAStar, info.Strategy)
	}
	if info.AgentState.Fuel != DefaultFuel {
		t.Errorf("Expected default fuel %v, got %v", DefaultFuel, info.AgentState.Fuel)
	}
	if info.Status != agent.StatusIdle {
		t.Errorf("Expected idle status, got %s", info.Status)
	}
}

func TestCreateSessionUnknownMap(t *testing.T) {
	svc := createTestService(t)

	_, err := svc.CreateSession(context.Background(), CreateSessionRequest{MapName: "mars"})
	if err == nil {
		t.Error("Expected error for unknown map")
	}
}

func TestAddTaskAndRun(t *testing.T) {
	svc := createTestService(t)
	info := createTestSession(t, svc)

	_, err := svc.AddTask(context.Background(), info.ID, agent.DeliveryTask{
		PackageID:        "P1",
		PickupLocation:   engine.Position{X: 1, Y: 1},
		DeliveryLocation: engine.Position{X: 8, Y: 8},
		Priority:         1,
	})
	if err != nil {
		t.Fatalf("Failed to add task: %v", err)
	}

	result, err := svc.Run(context.Background(), info.ID, 200)
	if err != nil {
		t.Fatalf("Failed to run simulation: %v", err)
	}
	if result.Stats.DeliveriesCompleted != 1 {
		t.Errorf("Expected 1 delivery, got %d", result.Stats.DeliveriesCompleted)
	}
	if result.Status != agent.StatusDone {
		t.Errorf("Expected done status, got %s", result.Status)
	}
	if result.Efficiency <= 0 {
		t.Errorf("Expected positive efficiency, got %v", result.Efficiency)
	}
}

func TestAddTaskValidation(t *testing.T) {
	svc := createTestService(t)
	info := createTestSession(t, svc)

	_, err := svc.AddTask(context.Background(), info.ID, agent.DeliveryTask{
		PickupLocation:   engine.Position{X: 1, Y: 1},
		DeliveryLocation: engine.Position{X: 8, Y: 8},
	})
	if err == nil {
		t.Error("Expected error for missing package ID")
	}

	_, err = svc.AddTask(context.Background(), info.ID, agent.DeliveryTask{
		PackageID:        "P1",
		PickupLocation:   engine.Position{X: 50, Y: 50},
		DeliveryLocation: engine.Position{X: 8, Y: 8},
	})
	if err == nil {
		t.Error("Expected error for out-of-bounds pickup")
	}
}

func TestStepAdvancesClock(t *testing.T) {
	svc := createTestService(t)
	info := createTestSession(t, svc)

	if _, err := svc.AddTask(context.Background(), info.ID, agent.DeliveryTask{
		PackageID:        "P1",
		PickupLocation:   engine.Position{X: 2, Y: 0},
		DeliveryLocation: engine.Position{X: 3, Y: 0},
		Priority:         1,
	}); err != nil {
		t.Fatalf("Failed to add task: %v", err)
	}

	step, err := svc.Step(context.Background(), info.ID)
	if err != nil {
		t.Fatalf("Failed to step: %v", err)
	}
	if !step.Moved {
		t.Error("Expected first step to move")
	}
	if step.Clock != 1 {
		t.Errorf("Expected clock 1 after one step, got %d", step.Clock)
	}
	if step.Stats.SimulationSteps != 1 {
		t.Errorf("Expected 1 simulation step, got %d", step.Stats.SimulationSteps)
	}
}

func TestStepWithoutTasks(t *testing.T) {
	svc := createTestService(t)
	info := createTestSession(t, svc)

	step, err := svc.Step(context.Background(), info.ID)
	if err != nil {
		t.Fatalf("Failed to step: %v", err)
	}
	if step.Moved {
		t.Error("Expected no movement without tasks")
	}
	if step.Status != agent.StatusDone {
		t.Errorf("Expected done status, got %s", step.Status)
	}
}

func TestListAndDeleteSessions(t *testing.T) {
	svc := createTestService(t)
	info := createTestSession(t, svc)

	infos, err := svc.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(infos))
	}

	if err := svc.DeleteSession(context.Background(), info.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := svc.GetSession(context.Background(), info.ID); err == nil {
		t.Error("Expected error getting deleted session")
	}
}

func TestCompareOnMap(t *testing.T) {
	svc := createTestService(t)

	result, err := svc.Compare(context.Background(), config.MapSmall,
		engine.Position{X: 0, Y: 0}, engine.Position{X: 9, Y: 9})
	if err != nil {
		t.Fatalf("Failed to compare: %v", err)
	}
	if len(result.Results) != 4 {
		t.Errorf("Expected 4 results, got %d", len(result.Results))
	}
	if result.Best == "" {
		t.Error("Expected a best algorithm on the small map")
	}
	if !strings.Contains(result.Report, "Algorithm Comparison Results:") {
		t.Error("Expected formatted report")
	}
}

func TestCompareRejectsOutOfBounds(t *testing.T) {
	svc := createTestService(t)

	_, err := svc.Compare(context.Background(), config.MapSmall,
		engine.Position{X: 0, Y: 0}, engine.Position{X: 50, Y: 50})
	if err == nil {
		t.Error("Expected error for out-of-bounds goal")
	}
}

func TestRunExperimentAndAnalyze(t *testing.T) {
	svc := createTestService(t)
	resultsPath := filepath.Join(t.TempDir(), "experiment_results.json")

	result, err := svc.RunExperiment(context.Background(), resultsPath)
	if err != nil {
		t.Fatalf("Failed to run experiment: %v", err)
	}
	if result.RunID == "" {
		t.Error("Expected a run ID")
	}
	if len(result.Results) != 4 {
		t.Errorf("Expected results for 4 maps, got %d", len(result.Results))
	}
	if len(result.Results[config.MapMedium]) != 2 {
		t.Errorf("Expected 2 medium scenarios, got %d", len(result.Results[config.MapMedium]))
	}
	for name, entries := range result.Results[config.MapSmall]["scenario_1"] {
		if entries.Success && entries.PathLength == 0 {
			t.Errorf("Expected positive path length for successful %s", name)
		}
	}
	if _, err := os.Stat(resultsPath); err != nil {
		t.Fatalf("Expected results file to exist: %v", err)
	}

	report, err := svc.Analyze(context.Background(), resultsPath)
	if err != nil {
		t.Fatalf("Failed to analyze: %v", err)
	}
	if len(report.Maps) != 4 {
		t.Errorf("Expected 4 analyzed maps, got %d", len(report.Maps))
	}
	for _, summary := range report.Maps[config.MapSmall] {
		if summary.SuccessRate < 0 || summary.SuccessRate > 100 {
			t.Errorf("Expected success rate in [0,100], got %v for %s",
				summary.SuccessRate, summary.Algorithm)
		}
	}
}

func TestAnalyzeLegacyFormat(t *testing.T) {
	dir := t.TempDir()
	resultsPath := filepath.Join(dir, "experiment_results.json")

	legacy := map[string]map[string]map[string]ExperimentEntry{
		"small": {
			"scenario_1": {
				planner.NameBFS:   {Success: true, PathLength: 18, Cost: 18, TimeTaken: 0.001},
				planner.NameAStar: {Success: true, PathLength: 18, Cost: 18, TimeTaken: 0.0005},
			},
		},
	}
	data, err := json.Marshal(legacy)
	if err != nil {
		t.Fatalf("Failed to marshal legacy results: %v", err)
	}
	if err := os.WriteFile(resultsPath, data, 0644); err != nil {
		t.Fatalf("Failed to write legacy results: %v", err)
	}

	svc := createTestService(t)
	report, err := svc.Analyze(context.Background(), resultsPath)
	if err != nil {
		t.Fatalf("Failed to analyze legacy file: %v", err)
	}
	summaries := report.Maps["small"]
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 algorithm summaries, got %d", len(summaries))
	}
	if summaries[0].SuccessRate != 100 {
		t.Errorf("Expected 100%% success rate, got %v", summaries[0].SuccessRate)
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	svc := createTestService(t)
	if _, err := svc.Analyze(context.Background(), filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing results file")
	}
}

func TestRenderSession(t *testing.T) {
	svc := createTestService(t)

	info, err := svc.CreateSession(context.Background(), CreateSessionRequest{MapName: config.MapDynamic})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	view, err := svc.RenderSession(context.Background(), info.ID)
	if err != nil {
		t.Fatalf("Failed to render session: %v", err)
	}
	lines := strings.Split(view, "\n")
	if len(lines[0]) != 15 {
		t.Errorf("Expected 15-wide grid rows, got %d", len(lines[0]))
	}
	if !strings.HasPrefix(lines[0], "A") {
		t.Errorf("Expected agent glyph at origin, got %q", lines[0])
	}
	if !strings.Contains(view, "O") {
		t.Error("Expected dynamic obstacle glyphs on the dynamic map")
	}
	if !strings.Contains(view, "#") {
		t.Error("Expected building glyphs on the dynamic map")
	}
}

func TestDefaultTasksScaleWithMapSize(t *testing.T) {
	small, err := engine.NewGridEnvironment(10, 10)
	if err != nil {
		t.Fatalf("Failed to create environment: %v", err)
	}
	large, err := engine.NewGridEnvironment(50, 50)
	if err != nil {
		t.Fatalf("Failed to create environment: %v", err)
	}

	smallTasks := DefaultTasks(small)
	largeTasks := DefaultTasks(large)

	if len(smallTasks) != 3 || len(largeTasks) != 3 {
		t.Fatalf("Expected 3 tasks each, got %d and %d", len(smallTasks), len(largeTasks))
	}
	if smallTasks[0].DeliveryLocation != (engine.Position{X: 8, Y: 8}) {
		t.Errorf("Expected small delivery at (8,8), got %v", smallTasks[0].DeliveryLocation)
	}
	if largeTasks[0].DeliveryLocation != (engine.Position{X: 45, Y: 45}) {
		t.Errorf("Expected large delivery at (45,45), got %v", largeTasks[0].DeliveryLocation)
	}
	if smallTasks[0].Priority <= smallTasks[2].Priority {
		t.Error("Expected tasks in descending priority order")
	}
}
