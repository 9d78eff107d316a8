// Package session manages simulation session lifecycle: short hex IDs,
// an in-memory registry, optional JSON file persistence, and expiry-based
// cleanup. Each session owns its own environment and agent; persistence
// stores the map by name and rebuilds the environment on load, so session
// files stay small regardless of grid size.
package session
