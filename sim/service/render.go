package service

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/deliverysim/sim/agent"
	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
)

// terrainSymbol maps terrain to its one-character grid glyph.
func terrainSymbol(t engine.TerrainType) string {
	switch t {
	case engine.Road:
		return "."
	case engine.Grass:
		return "g"
	case engine.Water:
		return "~"
	case engine.Mountain:
		return "^"
	case engine.Building:
		return "#"
	default:
		return "?"
	}
}

// RenderEnvironment draws the grid at the environment's current time:
// A for the agent, O for dynamic obstacles, terrain glyphs elsewhere,
// followed by a short status block and the remaining planned path.
func RenderEnvironment(env *engine.GridEnvironment, a *agent.DeliveryAgent) string {
	occupied := env.OccupiedPositions(env.CurrentTime())
	agentPos := a.State().Position

	var sb strings.Builder
	for y := 0; y < env.Height; y++ {
		for x := 0; x < env.Width; x++ {
			pos := engine.Position{X: x, Y: y}
			switch {
			case pos == agentPos:
				sb.WriteString("A")
			case occupied[pos]:
				sb.WriteString("O")
			default:
				sb.WriteString(terrainSymbol(env.Grid[y][x]))
			}
		}
		sb.WriteString("\n")
	}

	state := a.State()
	stats := a.Stats()
	sb.WriteString(fmt.Sprintf("\nAgent: (%d,%d) status=%s fuel=%.1f\n",
		state.Position.X, state.Position.Y, a.Status(), state.Fuel))
	sb.WriteString(fmt.Sprintf("Clock: %d  Deliveries: %d  Replans: %d\n",
		env.CurrentTime(), stats.DeliveriesCompleted, stats.ReplanningEvents))

	if path := a.CurrentPath(); len(path) > 0 {
		preview := path
		ellipsis := ""
		if len(preview) > 5 {
			preview = preview[:5]
			ellipsis = "..."
		}
		parts := make([]string, len(preview))
		for i, p := range preview {
			parts[i] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
		}
		sb.WriteString(fmt.Sprintf("Planned path (%d steps): %s%s\n",
			len(path), strings.Join(parts, " "), ellipsis))
	}

	return sb.String()
}
