package world

import (
	"container/heap"
)

// ShortestPath computes a shortest node path from start to goal using A*.
// Only connections accepted by passable are followed; every edge costs 1.
// The heuristic is 0 inside the goal's area and 1 elsewhere, which never
// overestimates since leaving an area takes at least one edge.
// Returns the path including start and goal, or nil if no path exists.
func ShortestPath(w *World, docks DockConnections, start, goal NodeIndex, passable func(from NodeIndex, c Connection) bool) []NodeIndex {
	if w.Node(start) == nil || w.Node(goal) == nil {
		return nil
	}
	if start == goal {
		return []NodeIndex{start}
	}
	goalArea := w.Nodes[goal].Area
	h := func(n NodeIndex) int {
		if w.Nodes[n].Area == goalArea {
			return 0
		}
		return 1
	}

	open := &nodePQ{}
	heap.Init(open)
	seq := 0
	push := func(n NodeIndex, f int) {
		heap.Push(open, &pqNode{n: n, f: f, seq: seq})
		seq++
	}

	g := map[NodeIndex]int{start: 0}
	came := map[NodeIndex]NodeIndex{}
	closed := map[NodeIndex]bool{}
	push(start, h(start))

	for open.Len() > 0 {
		cur := heap.Pop(open).(*pqNode).n
		if closed[cur] {
			continue
		}
		closed[cur] = true
		if cur == goal {
			path := []NodeIndex{goal}
			for k := goal; k != start; {
				k = came[k]
				path = append(path, k)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}
		for _, c := range w.Edges(cur, docks) {
			if closed[c.To] || !passable(cur, c) {
				continue
			}
			tentative := g[cur] + 1
			if old, ok := g[c.To]; !ok || tentative < old {
				g[c.To] = tentative
				came[c.To] = cur
				push(c.To, tentative+h(c.To))
			}
		}
	}
	return nil
}

// pqNode orders by f, then by insertion so equal-cost paths are stable.
type pqNode struct {
	n   NodeIndex
	f   int
	seq int
}

type nodePQ []*pqNode

func (p nodePQ) Len() int { return len(p) }
func (p nodePQ) Less(i, j int) bool {
	if p[i].f != p[j].f {
		return p[i].f < p[j].f
	}
	return p[i].seq < p[j].seq
}
func (p nodePQ) Swap(i, j int) { p[i], p[j] = p[j], p[i] }
func (p *nodePQ) Push(x any)   { *p = append(*p, x.(*pqNode)) }
func (p *nodePQ) Pop() any {
	old := *p
	n := len(old)
	x := old[n-1]
	old[n-1] = nil // avoid memory leak
	*p = old[:n-1]
	return x
}
