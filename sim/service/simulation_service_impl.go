package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/deliverysim/sim/agent"
	"github.com/wricardo/mcp-training/deliverysim/sim/bench"
	"github.com/wricardo/mcp-training/deliverysim/sim/config"
	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
	"github.com/wricardo/mcp-training/deliverysim/sim/planner"
	"github.com/wricardo/mcp-training/deliverysim/sim/session"
)

const (
	DefaultMapName  = config.MapSmall
	DefaultStrategy = planner.NameAStar
	DefaultFuel     = 100.0
	DefaultMaxSteps = 1000
)

// simulationServiceImpl implements the SimulationService interface
type simulationServiceImpl struct {
	sessions SessionManager
	maps     MapManager
	tuning   planner.Tuning
	mu       sync.RWMutex
}

// NewSimulationService creates a new simulation service instance
func NewSimulationService(sessions SessionManager, maps MapManager, tuning planner.Tuning) SimulationService {
	return &simulationServiceImpl{
		sessions: sessions,
		maps:     maps,
		tuning:   tuning,
	}
}

// CreateSession creates a new simulation session
func (s *simulationServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.MapName == "" {
		req.MapName = DefaultMapName
	}
	if req.Strategy == "" {
		req.Strategy = DefaultStrategy
	}
	if req.Fuel <= 0 {
		req.Fuel = DefaultFuel
	}

	sess, err := s.sessions.Create("", session.CreateOptions{
		MapName:  req.MapName,
		Strategy: req.Strategy,
		Start:    req.Start,
		Fuel:     req.Fuel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *simulationServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *simulationServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *simulationServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// AddTask queues a delivery task on a session's agent
func (s *simulationServiceImpl) AddTask(ctx context.Context, sessionID string, task agent.DeliveryTask) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if task.PackageID == "" {
		return nil, fmt.Errorf("task package_id is required")
	}
	for _, pos := range []engine.Position{task.PickupLocation, task.DeliveryLocation} {
		if !sess.Env.InBounds(pos.X, pos.Y) {
			return nil, fmt.Errorf("task position (%d,%d) is outside the %dx%d grid",
				pos.X, pos.Y, sess.Env.Width, sess.Env.Height)
		}
	}

	s.sessions.UpdateLastAccessed(sessionID)
	sess.Agent.AddDeliveryTask(task)

	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("[SIM] failed to persist session %s after task add: %v", sessionID, err)
	}

	return sessionInfo(sess), nil
}

// Step advances a session by exactly one simulation step
func (s *simulationServiceImpl) Step(ctx context.Context, sessionID string) (*StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	moved := sess.Agent.Step()

	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("[SIM] failed to persist session %s after step: %v", sessionID, err)
	}

	return &StepResult{
		Moved:      moved,
		Status:     sess.Agent.Status(),
		AgentState: sess.Agent.State(),
		Clock:      sess.Env.CurrentTime(),
		Stats:      sess.Agent.Stats(),
	}, nil
}

// Run drives a session's simulation loop up to maxSteps
func (s *simulationServiceImpl) Run(ctx context.Context, sessionID string, maxSteps int) (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	stats := sess.Agent.RunSimulation(maxSteps)

	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("[SIM] failed to persist session %s after run: %v", sessionID, err)
	}

	efficiency := 0.0
	if stats.SimulationSteps > 0 {
		efficiency = float64(stats.DeliveriesCompleted) / float64(stats.SimulationSteps) * 100
	}

	return &RunResult{
		Status:     sess.Agent.Status(),
		AgentState: sess.Agent.State(),
		Clock:      sess.Env.CurrentTime(),
		Stats:      stats,
		TaskCount:  len(sess.Agent.Tasks()),
		MaxSteps:   maxSteps,
		Efficiency: efficiency,
	}, nil
}

// RenderSession returns the ASCII picture of a session's environment
func (s *simulationServiceImpl) RenderSession(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return "", fmt.Errorf("session not found: %w", err)
	}

	return RenderEnvironment(sess.Env, sess.Agent), nil
}

// ListMaps returns the map catalog
func (s *simulationServiceImpl) ListMaps(ctx context.Context) ([]config.MapInfo, error) {
	return s.maps.ListMaps()
}

// CreateMaps writes the builtin maps to disk
func (s *simulationServiceImpl) CreateMaps(ctx context.Context) ([]string, error) {
	return s.maps.CreateMaps()
}

// Compare runs every strategy on the same query against a named map
func (s *simulationServiceImpl) Compare(ctx context.Context, mapName string, start, goal engine.Position) (*CompareResult, error) {
	env, err := s.maps.LoadEnvironment(mapName)
	if err != nil {
		return nil, fmt.Errorf("failed to load map: %w", err)
	}
	for _, pos := range []engine.Position{start, goal} {
		if !env.InBounds(pos.X, pos.Y) {
			return nil, fmt.Errorf("position (%d,%d) is outside the %dx%d grid",
				pos.X, pos.Y, env.Width, env.Height)
		}
	}

	cmp := bench.Compare(env, start, goal, 0, s.tuning)
	best, _ := cmp.Best()

	return &CompareResult{
		MapName: mapName,
		Start:   start,
		Goal:    goal,
		Results: cmp.Results,
		Best:    best,
		Report:  cmp.FormatReport(),
	}, nil
}

// experimentScenarios are the fixed start/goal pairs evaluated per map.
var experimentScenarios = map[string][][2]engine.Position{
	config.MapSmall:   {{{X: 0, Y: 0}, {X: 9, Y: 9}}},
	config.MapMedium:  {{{X: 0, Y: 0}, {X: 19, Y: 19}}, {{X: 5, Y: 5}, {X: 15, Y: 15}}},
	config.MapLarge:   {{{X: 0, Y: 0}, {X: 49, Y: 49}}, {{X: 10, Y: 10}, {X: 40, Y: 40}}},
	config.MapDynamic: {{{X: 0, Y: 0}, {X: 14, Y: 14}}, {{X: 1, Y: 1}, {X: 13, Y: 13}}},
}

// RunExperiment evaluates every strategy on every builtin map and scenario,
// persisting the nested results to resultsPath.
func (s *simulationServiceImpl) RunExperiment(ctx context.Context, resultsPath string) (*ExperimentResult, error) {
	result := &ExperimentResult{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now(),
		Results:   make(map[string]map[string]map[string]ExperimentEntry),
	}

	for _, mapName := range config.BuiltinNames() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		env, err := s.maps.LoadEnvironment(mapName)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s map: %w", mapName, err)
		}

		mapResults := make(map[string]map[string]ExperimentEntry)
		for i, scenario := range experimentScenarios[mapName] {
			cmp := bench.Compare(env, scenario[0], scenario[1], 0, s.tuning)

			entries := make(map[string]ExperimentEntry)
			for name, pr := range cmp.Results {
				entry := ExperimentEntry{
					Success:       pr.Success,
					Cost:          pr.Cost,
					NodesExpanded: pr.NodesExpanded,
					TimeTaken:     pr.TimeTaken.Seconds(),
				}
				if pr.Success {
					entry.PathLength = len(pr.Path)
				}
				entries[name] = entry
			}
			mapResults[fmt.Sprintf("scenario_%d", i+1)] = entries

			log.Printf("[EXPERIMENT] run=%s map=%s scenario=%d done", result.RunID, mapName, i+1)
		}
		result.Results[mapName] = mapResults
	}

	if resultsPath != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal experiment results: %w", err)
		}
		if err := os.WriteFile(resultsPath, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write experiment results: %w", err)
		}
		result.SavedTo = resultsPath
	}

	return result, nil
}

// Analyze reads a persisted experiment and aggregates per-map algorithm
// summaries: success rate, average cost and average time over scenarios.
func (s *simulationServiceImpl) Analyze(ctx context.Context, resultsPath string) (*AnalysisReport, error) {
	data, err := os.ReadFile(resultsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment results: %w", err)
	}

	var stored ExperimentResult
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse experiment results: %w", err)
	}
	results := stored.Results
	if len(results) == 0 {
		// Legacy files hold the nested map at the top level.
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("failed to parse experiment results: %w", err)
		}
	}

	report := &AnalysisReport{Maps: make(map[string][]AlgorithmSummary)}
	for mapName, scenarios := range results {
		var summaries []AlgorithmSummary
		for _, algorithm := range planner.Names() {
			successes := 0
			totalCost := 0.0
			totalTime := 0.0
			seen := 0
			for _, entries := range scenarios {
				entry, ok := entries[algorithm]
				if !ok {
					continue
				}
				seen++
				totalTime += entry.TimeTaken
				if entry.Success {
					successes++
					totalCost += entry.Cost
				}
			}
			if seen == 0 {
				continue
			}
			summary := AlgorithmSummary{
				Algorithm:   algorithm,
				SuccessRate: float64(successes) / float64(seen) * 100,
				AverageTime: totalTime / float64(seen),
			}
			if successes > 0 {
				summary.AverageCost = totalCost / float64(successes)
			}
			summaries = append(summaries, summary)
		}
		report.Maps[mapName] = summaries
	}

	return report, nil
}

// sessionInfo builds the API view of a session
func sessionInfo(sess *session.Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		MapName:        sess.MapName,
		Strategy:       sess.Agent.Strategy().Name(),
		Status:         sess.Agent.Status(),
		Clock:          sess.Env.CurrentTime(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		AgentState:     sess.Agent.State(),
		Stats:          sess.Agent.Stats(),
		Tasks:          sess.Agent.Tasks(),
	}
}

// DefaultTasks seeds three priority-ordered delivery tasks scaled to the
// grid size, matching the standard simulation setup.
func DefaultTasks(env *engine.GridEnvironment) []agent.DeliveryTask {
	switch {
	case env.Width <= 10:
		return []agent.DeliveryTask{
			{PackageID: "package_1", PickupLocation: engine.Position{X: 1, Y: 1}, DeliveryLocation: engine.Position{X: 8, Y: 8}, Priority: 3},
			{PackageID: "package_2", PickupLocation: engine.Position{X: 2, Y: 2}, DeliveryLocation: engine.Position{X: 7, Y: 7}, Priority: 2},
			{PackageID: "package_3", PickupLocation: engine.Position{X: 3, Y: 3}, DeliveryLocation: engine.Position{X: 6, Y: 6}, Priority: 1},
		}
	case env.Width <= 20:
		return []agent.DeliveryTask{
			{PackageID: "package_1", PickupLocation: engine.Position{X: 2, Y: 2}, DeliveryLocation: engine.Position{X: 18, Y: 18}, Priority: 3},
			{PackageID: "package_2", PickupLocation: engine.Position{X: 4, Y: 4}, DeliveryLocation: engine.Position{X: 16, Y: 16}, Priority: 2},
			{PackageID: "package_3", PickupLocation: engine.Position{X: 6, Y: 6}, DeliveryLocation: engine.Position{X: 14, Y: 14}, Priority: 1},
		}
	default:
		return []agent.DeliveryTask{
			{PackageID: "package_1", PickupLocation: engine.Position{X: 5, Y: 5}, DeliveryLocation: engine.Position{X: 45, Y: 45}, Priority: 3},
			{PackageID: "package_2", PickupLocation: engine.Position{X: 10, Y: 10}, DeliveryLocation: engine.Position{X: 40, Y: 40}, Priority: 2},
			{PackageID: "package_3", PickupLocation: engine.Position{X: 15, Y: 15}, DeliveryLocation: engine.Position{X: 35, Y: 35}, Priority: 1},
		}
	}
}
