package session

import (
	"time"

	"github.com/wricardo/mcp-training/deliverysim/sim/agent"
	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
)

// Session binds one environment and one agent together under an ID. The
// environment is private to the session: no other session shares its grid,
// obstacles or clock.
type Session struct {
	ID             string
	MapName        string
	Env            *engine.GridEnvironment
	Agent          *agent.DeliveryAgent
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// PersistedSessionData is the on-disk session format. The map is stored by
// name and rebuilt on load; only the agent state, tasks, stats and clock
// need to round-trip.
type PersistedSessionData struct {
	ID             string                `json:"id"`
	MapName        string                `json:"map_name"`
	Strategy       string                `json:"strategy"`
	Clock          int                   `json:"clock"`
	CreatedAt      time.Time             `json:"created_at"`
	LastAccessedAt time.Time             `json:"last_accessed_at"`
	AgentState     agent.AgentState      `json:"agent_state"`
	Tasks          []agent.DeliveryTask  `json:"tasks"`
	Stats          agent.SimulationStats `json:"stats"`
}

// MapLoader provides fresh environments by map name. Implemented by the
// config map manager.
type MapLoader interface {
	LoadEnvironment(name string) (*engine.GridEnvironment, error)
}
