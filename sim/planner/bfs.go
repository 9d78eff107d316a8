package planner

import (
	"time"

	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
)

// BFS is uninformed breadth-first search over 4-connected neighbors with
// unit edge cost. The visited set is keyed by position only, not by
// (position, time): a cell seen once is never reconsidered even if a moving
// obstacle would make it reachable again later. That restriction is part of
// the search's observable behavior and is kept on purpose.
type BFS struct{}

// NewBFS creates the breadth-first search strategy.
func NewBFS() *BFS {
	return &BFS{}
}

// Name returns the canonical strategy name.
func (b *BFS) Name() string {
	return NameBFS
}

type bfsNode struct {
	pos  engine.Position
	path []engine.Position // excludes start, ends at pos
}

// FindPath runs BFS from start to goal. Cost equals path length and
// nodes expanded counts dequeued states.
func (b *BFS) FindPath(env *engine.GridEnvironment, start, goal engine.Position, startTime int) PathResult {
	began := time.Now()

	visited := map[engine.Position]bool{start: true}
	queue := []bfsNode{{pos: start, path: nil}}
	expanded := 0

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		expanded++

		if node.pos == goal {
			return PathResult{
				Success:       true,
				Path:          node.path,
				Cost:          float64(len(node.path)),
				NodesExpanded: expanded,
				TimeTaken:     time.Since(began),
			}
		}

		for _, off := range neighborOffsets {
			next := engine.Position{X: node.pos.X + off.dx, Y: node.pos.Y + off.dy}
			if visited[next] {
				continue
			}
			// Arrival time is one step past the depth of the current node.
			arrival := startTime + len(node.path) + 1
			if !stepFeasible(env, next, arrival) {
				continue
			}
			visited[next] = true

			path := make([]engine.Position, len(node.path), len(node.path)+1)
			copy(path, node.path)
			queue = append(queue, bfsNode{pos: next, path: append(path, next)})
		}
	}

	return failure(expanded, time.Since(began))
}
