package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/deliverysim/sim/agent"
	"github.com/wricardo/mcp-training/deliverysim/sim/planner"
)

// FilePersistence implements SessionPersistence using file system storage.
// The map and strategy are stored by name; loading rebuilds a fresh
// environment from the map catalog and fast-forwards its clock.
type FilePersistence struct {
	sessionsDir string
	maps        MapLoader
	tuning      planner.Tuning
}

// NewFilePersistence creates a file-based session persistence layer
func NewFilePersistence(sessionsDir string, maps MapLoader, tuning planner.Tuning) (*FilePersistence, error) {
	// Create sessions directory if it doesn't exist
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{
		sessionsDir: sessionsDir,
		maps:        maps,
		tuning:      tuning,
	}, nil
}

// Save persists a session to a JSON file
func (fp *FilePersistence) Save(session *Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := PersistedSessionData{
		ID:             session.ID,
		MapName:        session.MapName,
		Strategy:       session.Agent.Strategy().Name(),
		Clock:          session.Env.CurrentTime(),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		AgentState:     session.Agent.State(),
		Tasks:          session.Agent.Tasks(),
		Stats:          session.Agent.Stats(),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	filePath := fp.getFilePath(session.ID)
	if err := os.WriteFile(filePath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load retrieves a session from a JSON file and rebuilds its environment
// and agent.
func (fp *FilePersistence) Load(id string) (*Session, error) {
	filePath := fp.getFilePath(id)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}

	jsonData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	env, err := fp.maps.LoadEnvironment(data.MapName)
	if err != nil {
		return nil, fmt.Errorf("failed to load map '%s': %w", data.MapName, err)
	}
	if err := env.SetClock(data.Clock); err != nil {
		return nil, fmt.Errorf("failed to restore clock: %w", err)
	}

	strategy, err := planner.ForName(data.Strategy, fp.tuning)
	if err != nil {
		return nil, fmt.Errorf("failed to restore strategy: %w", err)
	}

	a := agent.NewDeliveryAgent(env, data.AgentState.Position, data.AgentState.Fuel)
	a.SetStrategy(strategy)
	a.Restore(data.AgentState, data.Stats, data.Tasks)

	return &Session{
		ID:             data.ID,
		MapName:        data.MapName,
		Env:            env,
		Agent:          a,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrSessionNotFound
	}

	if err := os.Remove(fp.getFilePath(id)); err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	return nil
}

// ListAll returns all persisted session IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessionIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			sessionIDs = append(sessionIDs, strings.TrimSuffix(name, ".json"))
		}
	}

	return sessionIDs, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.getFilePath(id))
	return err == nil
}

// getFilePath returns the full file path for a session ID
func (fp *FilePersistence) getFilePath(id string) string {
	return filepath.Join(fp.sessionsDir, fmt.Sprintf("%s.json", id))
}
