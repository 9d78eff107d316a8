package planner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the configurable parameters of the local-search strategies.
// Keeping them in one loadable document makes comparison runs reproducible.
type Tuning struct {
	HillClimbing       HillClimbingConfig       `yaml:"hill_climbing"`
	SimulatedAnnealing SimulatedAnnealingConfig `yaml:"simulated_annealing"`
}

// HillClimbingConfig bounds the greedy local search.
type HillClimbingConfig struct {
	// MaxMoves caps the total number of moves to guarantee termination.
	MaxMoves int `yaml:"max_moves"`
	// SidewaysLimit is the number of non-improving (equal heuristic) moves
	// allowed before the search gives up. Zero means strict improvement only.
	SidewaysLimit int `yaml:"sideways_limit"`
}

// SimulatedAnnealingConfig is the explicit cooling schedule.
type SimulatedAnnealingConfig struct {
	InitialTemperature float64 `yaml:"initial_temperature"`
	CoolingRate        float64 `yaml:"cooling_rate"`
	MinTemperature     float64 `yaml:"min_temperature"`
	MaxIterations      int     `yaml:"max_iterations"`
	// Seed makes the random draw stream reproducible. This is the only
	// source of non-determinism in the planner package.
	Seed int64 `yaml:"seed"`
}

// DefaultTuning returns the compiled-in parameters used when no tuning file
// is provided.
func DefaultTuning() Tuning {
	return Tuning{
		HillClimbing: HillClimbingConfig{
			MaxMoves:      500,
			SidewaysLimit: 0,
		},
		SimulatedAnnealing: SimulatedAnnealingConfig{
			InitialTemperature: 10.0,
			CoolingRate:        0.995,
			MinTemperature:     0.01,
			MaxIterations:      5000,
			Seed:               42,
		},
	}
}

// LoadTuning reads a tuning YAML file. Unset fields fall back to defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("failed to parse tuning file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Validate rejects parameter combinations that cannot terminate or cool.
func (t Tuning) Validate() error {
	if t.HillClimbing.MaxMoves <= 0 {
		return fmt.Errorf("tuning: hill_climbing.max_moves must be positive, got %d", t.HillClimbing.MaxMoves)
	}
	if t.HillClimbing.SidewaysLimit < 0 {
		return fmt.Errorf("tuning: hill_climbing.sideways_limit cannot be negative, got %d", t.HillClimbing.SidewaysLimit)
	}
	sa := t.SimulatedAnnealing
	if sa.InitialTemperature <= 0 {
		return fmt.Errorf("tuning: simulated_annealing.initial_temperature must be positive, got %v", sa.InitialTemperature)
	}
	if sa.CoolingRate <= 0 || sa.CoolingRate >= 1 {
		return fmt.Errorf("tuning: simulated_annealing.cooling_rate must be in (0,1), got %v", sa.CoolingRate)
	}
	if sa.MinTemperature <= 0 {
		return fmt.Errorf("tuning: simulated_annealing.min_temperature must be positive, got %v", sa.MinTemperature)
	}
	if sa.MaxIterations <= 0 {
		return fmt.Errorf("tuning: simulated_annealing.max_iterations must be positive, got %d", sa.MaxIterations)
	}
	return nil
}
