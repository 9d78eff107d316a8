package service

import (
	"context"

	"github.com/wricardo/mcp-training/deliverysim/sim/agent"
	"github.com/wricardo/mcp-training/deliverysim/sim/config"
	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
)

// SimulationService defines all simulation-related operations
type SimulationService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Agent Operations
	AddTask(ctx context.Context, sessionID string, task agent.DeliveryTask) (*SessionInfo, error)
	Step(ctx context.Context, sessionID string) (*StepResult, error)
	Run(ctx context.Context, sessionID string, maxSteps int) (*RunResult, error)
	RenderSession(ctx context.Context, sessionID string) (string, error)

	// Maps
	ListMaps(ctx context.Context) ([]config.MapInfo, error)
	CreateMaps(ctx context.Context) ([]string, error)

	// Benchmarks
	Compare(ctx context.Context, mapName string, start, goal engine.Position) (*CompareResult, error)
	RunExperiment(ctx context.Context, resultsPath string) (*ExperimentResult, error)
	Analyze(ctx context.Context, resultsPath string) (*AnalysisReport, error)
}
