// Package websocket provides real-time transport for delivery simulation
// sessions.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Automatic snapshot broadcasting after steps and runs
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine that manages reading, writing, and cleanup.
//
// Message Protocol:
//
// Clients are read-only observers. After every step or simulation run the
// server pushes a JSON message:
//   - {session_id: "abc1", event: "state_update", snapshot: {...}}
//
// The snapshot payload mirrors the REST API's step/run responses: agent
// position, fuel, status, delivery counts and the simulation clock.
//
// Session Integration:
//
// WebSocket connections are session-aware. Clients specify their session ID
// via query parameter (?session=abc1) when establishing the connection.
// Snapshots are broadcast only to clients watching the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Concurrency:
//
// The hub and client handlers are designed for concurrent operation.
// Multiple clients can connect, disconnect, and receive snapshots
// simultaneously without blocking each other.
package websocket
