// Package pathfinder implements deterministic A* search over an occupancy grid.
package pathfinder

import (
	"container/heap"

	"github.com/beka-birhanu/vinom-nav/game/grid"
)

// Graph is the read-only view of a grid needed by the search.
type Graph interface {
	Passable(p grid.Position) bool
	Neighbors(p grid.Position) []grid.Position
	Cost(from, to grid.Position) int
}

var _ Graph = (*grid.Grid)(nil)

// FindPath returns a shortest path from start to goal, both inclusive.
// The second result is false when start or goal is blocked or no route connects them.
//
// The frontier is ordered by f = g + h with h the Manhattan distance to goal.
// Ties prefer the lower h, then the earlier push, so repeated calls return the same path.
func FindPath(g Graph, start, goal grid.Position) ([]grid.Position, bool) {
	if !g.Passable(start) || !g.Passable(goal) {
		return nil, false
	}

	frontier := &priorityQueue{}
	heap.Init(frontier)

	cameFrom := map[grid.Position]grid.Position{}
	gScore := map[grid.Position]int{start: 0}

	var seq uint64
	heap.Push(frontier, &item{
		pos: start,
		g:   0,
		h:   grid.Manhattan(start, goal),
		seq: seq,
	})

	for frontier.Len() > 0 {
		current := heap.Pop(frontier).(*item)
		// A cheaper route to this cell was pushed after this entry.
		if current.g > gScore[current.pos] {
			continue
		}

		if current.pos == goal {
			return reconstruct(cameFrom, start, goal), true
		}

		for _, neighbor := range g.Neighbors(current.pos) {
			tentative := current.g + g.Cost(current.pos, neighbor)
			if old, seen := gScore[neighbor]; seen && tentative >= old {
				continue
			}
			cameFrom[neighbor] = current.pos
			gScore[neighbor] = tentative
			seq++
			heap.Push(frontier, &item{
				pos: neighbor,
				g:   tentative,
				h:   grid.Manhattan(neighbor, goal),
				seq: seq,
			})
		}
	}

	return nil, false
}

// PathCost sums the edge costs along path.
func PathCost(g Graph, path []grid.Position) int {
	total := 0
	for i := 1; i < len(path); i++ {
		total += g.Cost(path[i-1], path[i])
	}
	return total
}

// reconstruct walks cameFrom back from goal and returns the path in traversal order.
func reconstruct(cameFrom map[grid.Position]grid.Position, start, goal grid.Position) []grid.Position {
	path := []grid.Position{goal}
	for current := goal; current != start; {
		current = cameFrom[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// item is a frontier entry.
type item struct {
	pos   grid.Position
	g     int    // Cost from start when pushed
	h     int    // Heuristic to goal
	seq   uint64 // Push order, last tie-breaker
	index int
}

func (it *item) f() int {
	return it.g + it.h
}

type priorityQueue []*item

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.f() != b.f() {
		return a.f() < b.f()
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	it := x.(*item)
	it.index = len(*pq)
	*pq = append(*pq, it)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*pq = old[:n-1]
	return it
}
