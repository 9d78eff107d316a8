// Package api provides the HTTP REST surface of the delivery simulation.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (map_name, strategy, start, fuel)
//   - GET /api/sessions - List all sessions
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Simulation Operations:
//   - POST /api/sessions/{id}/tasks - Queue a delivery task
//   - POST /api/sessions/{id}/step - Advance one simulation step
//   - POST /api/sessions/{id}/run - Run the simulation loop (max_steps)
//   - GET /api/sessions/{id}/render - ASCII rendering of the environment
//
// Maps:
//   - GET /api/maps - List builtin and on-disk maps
//   - POST /api/maps - Write builtin maps to the maps directory
//
// Benchmarks:
//   - POST /api/compare - Run every algorithm on one start/goal query
//   - POST /api/experiment - Run the full experiment matrix
//   - GET /api/analysis - Aggregate a persisted experiment file
//
// All endpoints accept and return JSON. Errors come back as
//
//	{"error": "message"}
//
// with an appropriate HTTP status code. Step, run and task endpoints also
// push their results to WebSocket clients subscribed at /ws?session={id}.
package api
