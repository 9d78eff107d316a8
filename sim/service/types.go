package service

import (
	"time"

	"github.com/wricardo/mcp-training/deliverysim/sim/agent"
	"github.com/wricardo/mcp-training/deliverysim/sim/config"
	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
	"github.com/wricardo/mcp-training/deliverysim/sim/planner"
	"github.com/wricardo/mcp-training/deliverysim/sim/session"
)

// CreateSessionRequest carries the parameters for a new simulation session.
// Zero values fall back to the small map, A* planning and 100 fuel.
type CreateSessionRequest struct {
	MapName  string          `json:"map_name"`
	Strategy string          `json:"strategy"`
	Start    engine.Position `json:"start"`
	Fuel     float64         `json:"fuel"`
}

// SessionInfo is the API-facing view of a session.
type SessionInfo struct {
	ID             string                `json:"id"`
	MapName        string                `json:"map_name"`
	Strategy       string                `json:"strategy"`
	Status         agent.Status          `json:"status"`
	Clock          int                   `json:"clock"`
	CreatedAt      time.Time             `json:"created_at"`
	LastAccessedAt time.Time             `json:"last_accessed_at"`
	AgentState     agent.AgentState      `json:"agent_state"`
	Stats          agent.SimulationStats `json:"stats"`
	Tasks          []agent.DeliveryTask  `json:"tasks"`
}

// StepResult reports one simulation step.
type StepResult struct {
	Moved      bool                  `json:"moved"`
	Status     agent.Status          `json:"status"`
	AgentState agent.AgentState      `json:"agent_state"`
	Clock      int                   `json:"clock"`
	Stats      agent.SimulationStats `json:"stats"`
}

// RunResult reports a completed simulation run.
type RunResult struct {
	Status      agent.Status          `json:"status"`
	AgentState  agent.AgentState      `json:"agent_state"`
	Clock       int                   `json:"clock"`
	Stats       agent.SimulationStats `json:"stats"`
	TaskCount   int                   `json:"task_count"`
	MaxSteps    int                   `json:"max_steps"`
	Efficiency  float64               `json:"efficiency"`
}

// CompareResult reports an algorithm comparison on one map.
type CompareResult struct {
	MapName string                        `json:"map_name"`
	Start   engine.Position               `json:"start"`
	Goal    engine.Position               `json:"goal"`
	Results map[string]planner.PathResult `json:"results"`
	Best    string                        `json:"best,omitempty"`
	Report  string                        `json:"report"`
}

// ExperimentEntry is one algorithm's outcome within an experiment scenario.
// TimeTaken is in seconds to match the persisted results format.
type ExperimentEntry struct {
	Success       bool    `json:"success"`
	PathLength    int     `json:"path_length"`
	Cost          float64 `json:"cost"`
	NodesExpanded int     `json:"nodes_expanded"`
	TimeTaken     float64 `json:"time_taken"`
}

// ExperimentResult is a full experiment run: map -> scenario -> algorithm.
type ExperimentResult struct {
	RunID     string                                           `json:"run_id"`
	CreatedAt time.Time                                        `json:"created_at"`
	Results   map[string]map[string]map[string]ExperimentEntry `json:"results"`
	SavedTo   string                                           `json:"saved_to,omitempty"`
}

// AlgorithmSummary aggregates one algorithm's performance across the
// scenarios of a single map.
type AlgorithmSummary struct {
	Algorithm   string  `json:"algorithm"`
	SuccessRate float64 `json:"success_rate"`
	AverageCost float64 `json:"average_cost"`
	AverageTime float64 `json:"average_time"`
}

// AnalysisReport summarizes a persisted experiment per map.
type AnalysisReport struct {
	Maps map[string][]AlgorithmSummary `json:"maps"`
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, opts session.CreateOptions) (*session.Session, error)
	Get(id string) (*session.Session, error)
	List() []*session.Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// MapManager handles map catalog access
type MapManager interface {
	LoadEnvironment(name string) (*engine.GridEnvironment, error)
	ListMaps() ([]config.MapInfo, error)
	CreateMaps() ([]string, error)
}
