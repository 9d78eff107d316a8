package planner

import (
	"container/heap"
	"time"

	"github.com/wricardo/mcp-training/deliverysim/sim/engine"
)

// AStar is best-first search on f = g + h where g accumulates terrain
// movement cost and h is the Manhattan distance to the goal. Frontier ties
// break on lower h, then insertion order.
type AStar struct{}

// NewAStar creates the A* Manhattan strategy.
func NewAStar() *AStar {
	return &AStar{}
}

// Name returns the canonical strategy name.
func (a *AStar) Name() string {
	return NameAStar
}

type astarNode struct {
	pos  engine.Position
	path []engine.Position
	g    float64
	h    int
	seq  int
}

type astarFrontier []*astarNode

func (f astarFrontier) Len() int { return len(f) }

func (f astarFrontier) Less(i, j int) bool {
	fi := f[i].g + float64(f[i].h)
	fj := f[j].g + float64(f[j].h)
	if fi != fj {
		return fi < fj
	}
	if f[i].h != f[j].h {
		return f[i].h < f[j].h
	}
	return f[i].seq < f[j].seq
}

func (f astarFrontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *astarFrontier) Push(x any) { *f = append(*f, x.(*astarNode)) }

func (f *astarFrontier) Pop() any {
	old := *f
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return node
}

// FindPath runs A* from start to goal, terminating the instant the goal is
// popped from the frontier. Nodes expanded counts pops.
func (a *AStar) FindPath(env *engine.GridEnvironment, start, goal engine.Position, startTime int) PathResult {
	began := time.Now()

	frontier := &astarFrontier{}
	heap.Init(frontier)
	seq := 0
	heap.Push(frontier, &astarNode{
		pos: start,
		h:   engine.ManhattanDistance(start, goal),
		seq: seq,
	})

	closed := make(map[engine.Position]bool)
	expanded := 0

	for frontier.Len() > 0 {
		node := heap.Pop(frontier).(*astarNode)
		expanded++

		if node.pos == goal {
			return PathResult{
				Success:       true,
				Path:          node.path,
				Cost:          node.g,
				NodesExpanded: expanded,
				TimeTaken:     time.Since(began),
			}
		}

		if closed[node.pos] {
			continue
		}
		closed[node.pos] = true

		for _, off := range neighborOffsets {
			next := engine.Position{X: node.pos.X + off.dx, Y: node.pos.Y + off.dy}
			if closed[next] {
				continue
			}
			arrival := startTime + len(node.path) + 1
			if !stepFeasible(env, next, arrival) {
				continue
			}

			path := make([]engine.Position, len(node.path), len(node.path)+1)
			copy(path, node.path)
			seq++
			heap.Push(frontier, &astarNode{
				pos:  next,
				path: append(path, next),
				g:    node.g + engine.MovementCost(env.Grid[next.Y][next.X]),
				h:    engine.ManhattanDistance(next, goal),
				seq:  seq,
			})
		}
	}

	return failure(expanded, time.Since(began))
}
