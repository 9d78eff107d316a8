package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrMapLoad = errors.New("map load failure")

// MapFile mirrors the persisted JSON map format:
//
//	{"width": W, "height": H, "grid": [[code,...],...], "dynamic_obstacles": {name: [{"x","y"},...]}}
//
// Grid rows are height rows of width terrain codes.
type MapFile struct {
	Width            int                   `json:"width"`
	Height           int                   `json:"height"`
	Grid             [][]int               `json:"grid"`
	DynamicObstacles map[string][]Position `json:"dynamic_obstacles"`
}

// Snapshot converts an environment into its persisted form.
func Snapshot(env *GridEnvironment) *MapFile {
	grid := make([][]int, env.Height)
	for y := 0; y < env.Height; y++ {
		row := make([]int, env.Width)
		for x := 0; x < env.Width; x++ {
			row[x] = TerrainCode(env.Grid[y][x])
		}
		grid[y] = row
	}
	return &MapFile{
		Width:            env.Width,
		Height:           env.Height,
		Grid:             grid,
		DynamicObstacles: env.ObstacleTracks(),
	}
}

// Environment builds a fresh GridEnvironment (clock at zero) from a map file.
func (mf *MapFile) Environment() (*GridEnvironment, error) {
	if err := mf.Validate(); err != nil {
		return nil, err
	}

	env, err := NewGridEnvironment(mf.Width, mf.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMapLoad, err)
	}

	for y, row := range mf.Grid {
		for x, code := range row {
			terrain, err := TerrainFromCode(code)
			if err != nil {
				return nil, fmt.Errorf("%w: code %d at (%d,%d)", ErrMapLoad, code, x, y)
			}
			env.Grid[y][x] = terrain
		}
	}

	for name, track := range mf.DynamicObstacles {
		env.RegisterObstacle(name, track)
	}

	return env, nil
}

// Validate checks the structural invariants of a map file: declared
// dimensions, row shapes, terrain codes, and obstacle track bounds.
func (mf *MapFile) Validate() error {
	if mf.Width < MinGridDim || mf.Width > MaxGridDim || mf.Height < MinGridDim || mf.Height > MaxGridDim {
		return fmt.Errorf("%w: dimensions must be between %d and %d, got %dx%d",
			ErrMapLoad, MinGridDim, MaxGridDim, mf.Width, mf.Height)
	}
	if len(mf.Grid) != mf.Height {
		return fmt.Errorf("%w: grid must have %d rows, got %d", ErrMapLoad, mf.Height, len(mf.Grid))
	}
	for y, row := range mf.Grid {
		if len(row) != mf.Width {
			return fmt.Errorf("%w: row %d must have %d codes, got %d", ErrMapLoad, y, mf.Width, len(row))
		}
		for x, code := range row {
			if _, err := TerrainFromCode(code); err != nil {
				return fmt.Errorf("%w: code %d at (%d,%d)", ErrMapLoad, code, x, y)
			}
		}
	}
	for name, track := range mf.DynamicObstacles {
		for i, pos := range track {
			if pos.X < 0 || pos.X >= mf.Width || pos.Y < 0 || pos.Y >= mf.Height {
				return fmt.Errorf("%w: obstacle %q position %d at (%d,%d) is outside the %dx%d grid",
					ErrMapLoad, name, i, pos.X, pos.Y, mf.Width, mf.Height)
			}
		}
	}
	return nil
}

// SaveToFile writes the environment's map file to disk with indentation.
func SaveToFile(env *GridEnvironment, path string) error {
	data, err := json.MarshalIndent(Snapshot(env), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal map: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write map file: %w", err)
	}
	return nil
}

// LoadFromFile reads a map file and builds a fresh environment from it.
// Malformed input is rejected before any simulation state is constructed.
func LoadFromFile(path string) (*GridEnvironment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMapLoad, err)
	}

	var mf MapFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", ErrMapLoad, err)
	}

	return mf.Environment()
}
