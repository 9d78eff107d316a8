// Package mcp provides a Model Context Protocol interface for the delivery
// agent simulator.
//
// The package is a thin proxy: every tool call is translated into a REST
// request against the API server, so MCP clients and HTTP clients always
// observe the same session state.
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_session: Create a simulation session (map, strategy, start, fuel)
//   - get_session / list_sessions / delete_session: Session management
//   - add_task: Queue a package delivery with pickup, dropoff and priority
//   - step: Advance the simulation by one tick
//   - run_simulation: Run to completion, fuel exhaustion or a step limit
//   - render_grid: ASCII view of the grid, agent and dynamic obstacles
//   - list_maps / create_maps: Map catalog management
//   - compare_algorithms: Benchmark all planners on one start/goal pair
//   - run_experiment: Full benchmark matrix across the built-in maps
//   - analyze_results: Aggregate a saved experiment into per-map summaries
//   - simulation_instructions: Rules, grid legend and strategy notes
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// The step and run_simulation tools accept an optional intent parameter so
// an AI agent can narrate its reasoning; the value is not interpreted.
package mcp
