package config

import (
	"fmt"

	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
)

// Builtin map names, in the order they are created and listed.
const (
	MapSmall   = "small"
	MapMedium  = "medium"
	MapLarge   = "large"
	MapDynamic = "dynamic"
)

// BuiltinNames returns the builtin map names in canonical order.
func BuiltinNames() []string {
	return []string{MapSmall, MapMedium, MapLarge, MapDynamic}
}

// BuiltinEnvironment constructs a fresh builtin environment by name.
func BuiltinEnvironment(name string) (*engine.GridEnvironment, error) {
	switch name {
	case MapSmall:
		return buildSmall()
	case MapMedium:
		return buildMedium()
	case MapLarge:
		return buildLarge()
	case MapDynamic:
		return buildDynamic()
	default:
		return nil, fmt.Errorf("%w: %q", ErrMapNotFound, name)
	}
}

// pingPongTrack builds a cyclic obstacle track that sweeps from the first
// position to the last and back, so the obstacle reverses direction instead
// of teleporting when the track wraps.
func pingPongTrack(from, to engine.Position) []engine.Position {
	dx, dy := 0, 0
	if to.X > from.X {
		dx = 1
	} else if to.X < from.X {
		dx = -1
	}
	if to.Y > from.Y {
		dy = 1
	} else if to.Y < from.Y {
		dy = -1
	}

	var track []engine.Position
	for p := from; ; p = (engine.Position{X: p.X + dx, Y: p.Y + dy}) {
		track = append(track, p)
		if p == to {
			break
		}
	}
	for p := to; ; p = (engine.Position{X: p.X - dx, Y: p.Y - dy}) {
		track = append(track, p)
		if p == from {
			break
		}
	}
	return track
}

// buildSmall is a 10x10 grid with two building clusters, a grass band and a
// water patch. Corners stay on road so the standard queries are reachable.
func buildSmall() (*engine.GridEnvironment, error) {
	env, err := engine.NewGridEnvironment(10, 10)
	if err != nil {
		return nil, err
	}
	env.PaintRegion(4, 2, 5, 3, engine.Building)
	env.PaintRegion(6, 1, 7, 2, engine.Building)
	env.PaintRegion(0, 5, 9, 6, engine.Grass)
	env.PaintRegion(2, 8, 4, 8, engine.Water)
	return env, nil
}

func buildMedium() (*engine.GridEnvironment, error) {
	env, err := engine.NewGridEnvironment(20, 20)
	if err != nil {
		return nil, err
	}
	env.PaintRegion(7, 6, 9, 8, engine.Building)
	env.PaintRegion(12, 3, 14, 10, engine.Building)
	env.PaintRegion(0, 12, 19, 14, engine.Grass)
	env.PaintRegion(16, 16, 18, 18, engine.Water)
	env.PaintRegion(2, 16, 4, 18, engine.Mountain)
	return env, nil
}

func buildLarge() (*engine.GridEnvironment, error) {
	env, err := engine.NewGridEnvironment(50, 50)
	if err != nil {
		return nil, err
	}
	env.PaintRegion(12, 12, 14, 16, engine.Building)
	env.PaintRegion(30, 5, 35, 12, engine.Building)
	env.PaintRegion(20, 30, 28, 34, engine.Building)
	env.PaintRegion(0, 20, 49, 24, engine.Grass)
	// A river: expensive to cross but never a dead end.
	env.PaintRegion(40, 0, 42, 49, engine.Water)
	env.PaintRegion(5, 40, 12, 45, engine.Mountain)
	return env, nil
}

// buildDynamic is a 15x15 grid with three patrolling cars: one horizontal,
// one vertical and one diagonal, all on ping-pong tracks.
func buildDynamic() (*engine.GridEnvironment, error) {
	env, err := engine.NewGridEnvironment(15, 15)
	if err != nil {
		return nil, err
	}
	env.PaintRegion(4, 4, 6, 6, engine.Building)
	env.PaintRegion(0, 10, 14, 11, engine.Grass)

	env.RegisterObstacle("horizontal_car",
		pingPongTrack(engine.Position{X: 1, Y: 7}, engine.Position{X: 13, Y: 7}))
	env.RegisterObstacle("vertical_car",
		pingPongTrack(engine.Position{X: 8, Y: 1}, engine.Position{X: 8, Y: 13}))
	env.RegisterObstacle("diagonal_car",
		pingPongTrack(engine.Position{X: 1, Y: 1}, engine.Position{X: 13, Y: 13}))
	return env, nil
}
