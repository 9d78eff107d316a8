package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
)

var (
	ErrMapNotFound = errors.New("map not found")
	ErrInvalidMap  = errors.New("invalid map")
)

// MapInfo describes an available map without materializing its environment.
type MapInfo struct {
	Name          string `json:"name"`
	Filename      string `json:"filename,omitempty"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	ObstacleCount int    `json:"obstacle_count"`
	Builtin       bool   `json:"builtin"`
}

// Manager handles map loading and caching. Disk maps shadow builtins of the
// same name; every LoadEnvironment call materializes a fresh environment so
// concurrent sessions never share grid or clock state.
type Manager struct {
	mapsDir string
	maps    map[string]*engine.MapFile
	mu      sync.RWMutex
}

// NewManager creates a map manager rooted at mapsDir, creating the directory
// if needed.
func NewManager(mapsDir string) (*Manager, error) {
	if err := os.MkdirAll(mapsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create maps directory: %w", err)
	}
	return &Manager{
		mapsDir: mapsDir,
		maps:    make(map[string]*engine.MapFile),
	}, nil
}

// LoadMap loads a map by name: cache first, then disk, then builtins.
func (m *Manager) LoadMap(name string) (*engine.MapFile, error) {
	m.mu.RLock()
	if mf, exists := m.maps[name]; exists {
		m.mu.RUnlock()
		return mf, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if mf, exists := m.maps[name]; exists {
		return mf, nil
	}

	mf, err := m.loadFromDisk(name)
	if err != nil {
		if !errors.Is(err, ErrMapNotFound) {
			return nil, err
		}
		env, berr := BuiltinEnvironment(name)
		if berr != nil {
			return nil, berr
		}
		mf = engine.Snapshot(env)
	}

	m.maps[name] = mf
	return mf, nil
}

// LoadEnvironment builds a fresh environment for a named map. The returned
// environment is owned by the caller; mutations never reach the cache.
func (m *Manager) LoadEnvironment(name string) (*engine.GridEnvironment, error) {
	mf, err := m.LoadMap(name)
	if err != nil {
		return nil, err
	}
	return mf.Environment()
}

// ListMaps describes every available map: builtins plus any *_map.json files
// in the maps directory, sorted by name with disk maps shadowing builtins.
func (m *Manager) ListMaps() ([]MapInfo, error) {
	infos := make(map[string]MapInfo)

	for _, name := range BuiltinNames() {
		env, err := BuiltinEnvironment(name)
		if err != nil {
			return nil, err
		}
		infos[name] = MapInfo{
			Name:          name,
			Width:         env.Width,
			Height:        env.Height,
			ObstacleCount: len(env.ObstacleTracks()),
			Builtin:       true,
		}
	}

	entries, err := os.ReadDir(m.mapsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read maps directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "_map.json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), "_map.json")
		mf, err := m.loadFromDisk(name)
		if err != nil {
			// Skip unreadable or invalid files
			continue
		}
		infos[name] = MapInfo{
			Name:          name,
			Filename:      entry.Name(),
			Width:         mf.Width,
			Height:        mf.Height,
			ObstacleCount: len(mf.DynamicObstacles),
			Builtin:       false,
		}
	}

	names := make([]string, 0, len(infos))
	for name := range infos {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]MapInfo, 0, len(names))
	for _, name := range names {
		result = append(result, infos[name])
	}
	return result, nil
}

// SaveMap writes an environment's map file to the maps directory and caches
// it under the given name.
func (m *Manager) SaveMap(name string, env *engine.GridEnvironment) (string, error) {
	path := m.mapPath(name)
	if err := engine.SaveToFile(env, path); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.maps[name] = engine.Snapshot(env)
	m.mu.Unlock()

	return path, nil
}

// CreateMaps writes every builtin map to the maps directory, returning the
// written file paths in canonical order.
func (m *Manager) CreateMaps() ([]string, error) {
	var paths []string
	for _, name := range BuiltinNames() {
		env, err := BuiltinEnvironment(name)
		if err != nil {
			return nil, err
		}
		path, err := m.SaveMap(name, env)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s map: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// RefreshCache drops every cached map so the next load re-reads disk.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maps = make(map[string]*engine.MapFile)
}

func (m *Manager) mapPath(name string) string {
	filename := name
	if !strings.HasSuffix(filename, "_map.json") {
		filename = name + "_map.json"
	}
	return filepath.Join(m.mapsDir, filename)
}

func (m *Manager) loadFromDisk(name string) (*engine.MapFile, error) {
	data, err := os.ReadFile(m.mapPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMapNotFound
		}
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	var mf engine.MapFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	if err := mf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	return &mf, nil
}
