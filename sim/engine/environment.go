package engine

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds        = errors.New("position out of bounds")
	ErrUnknownTerrainCode = errors.New("unknown terrain code")
)

// GridEnvironment is the shared world model: a fixed-size terrain grid, a
// registry of cyclically moving obstacles, and a discrete simulation clock.
// It is built once per scenario and shared read-mostly by the agent and the
// planners; only AdvanceClock and the pre-simulation setup calls mutate it.
type GridEnvironment struct {
	Width  int
	Height int
	Grid   [][]TerrainType

	obstacles   map[string][]Position
	currentTime int
}

// NewGridEnvironment creates an environment with every cell initialized to Road.
func NewGridEnvironment(width, height int) (*GridEnvironment, error) {
	if width < MinGridDim || width > MaxGridDim || height < MinGridDim || height > MaxGridDim {
		return nil, fmt.Errorf("grid dimensions must be between %d and %d, got %dx%d",
			MinGridDim, MaxGridDim, width, height)
	}

	grid := make([][]TerrainType, height)
	for y := range grid {
		grid[y] = make([]TerrainType, width)
		for x := range grid[y] {
			grid[y][x] = Road
		}
	}

	return &GridEnvironment{
		Width:     width,
		Height:    height,
		Grid:      grid,
		obstacles: make(map[string][]Position),
	}, nil
}

// InBounds reports whether (x,y) is inside the grid.
func (env *GridEnvironment) InBounds(x, y int) bool {
	return x >= 0 && x < env.Width && y >= 0 && y < env.Height
}

// TerrainAt returns the terrain at (x,y).
func (env *GridEnvironment) TerrainAt(x, y int) (TerrainType, error) {
	if !env.InBounds(x, y) {
		return "", fmt.Errorf("%w: (%d,%d) on %dx%d grid", ErrOutOfBounds, x, y, env.Width, env.Height)
	}
	return env.Grid[y][x], nil
}

// PaintRegion overwrites the inclusive rectangle (x1,y1)-(x2,y2) with the
// given terrain, clipped to grid bounds. Reversed coordinate ranges are
// normalized here so callers may pass corners in either order.
func (env *GridEnvironment) PaintRegion(x1, y1, x2, y2 int, terrain TerrainType) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			if env.InBounds(x, y) {
				env.Grid[y][x] = terrain
			}
		}
	}
}

// RegisterObstacle stores or replaces a named cyclic motion track.
func (env *GridEnvironment) RegisterObstacle(name string, track []Position) {
	copied := make([]Position, len(track))
	copy(copied, track)
	env.obstacles[name] = copied
}

// ObstacleTracks returns a copy of the registered obstacle tracks.
func (env *GridEnvironment) ObstacleTracks() map[string][]Position {
	out := make(map[string][]Position, len(env.obstacles))
	for name, track := range env.obstacles {
		copied := make([]Position, len(track))
		copy(copied, track)
		out[name] = copied
	}
	return out
}

// OccupiedPositions returns the set of cells occupied by dynamic obstacles at
// time t. Each non-empty track contributes track[t mod len]; empty tracks
// contribute nothing.
func (env *GridEnvironment) OccupiedPositions(t int) map[Position]bool {
	occupied := make(map[Position]bool, len(env.obstacles))
	for _, track := range env.obstacles {
		if len(track) == 0 {
			continue
		}
		occupied[track[t%len(track)]] = true
	}
	return occupied
}

// CurrentTime returns the simulation clock value.
func (env *GridEnvironment) CurrentTime() int {
	return env.currentTime
}

// AdvanceClock increments the simulation clock by one. This is the only
// time-advancement operation.
func (env *GridEnvironment) AdvanceClock() {
	env.currentTime++
}

// SetClock restores the clock to a persisted value. Used by session loading only.
func (env *GridEnvironment) SetClock(t int) error {
	if t < 0 {
		return fmt.Errorf("clock cannot be negative, got %d", t)
	}
	env.currentTime = t
	return nil
}
