package compiler

import (
	"slices"

	"github.com/roach88/chipsim/internal/ir"
)

// graph is the sub-chip dependency graph of a definition. Edges are
// deduplicated: several wires between the same pair of sub-chips form one
// dependency.
type graph struct {
	preds [][]int
	succs [][]int
}

func buildGraph(def *ir.ChipDefinition) (*graph, error) {
	n := len(def.Chips)
	g := &graph{preds: make([][]int, n), succs: make([][]int, n)}
	for i, w := range def.Wires {
		from, to := w.From.Chip(), w.To.Chip()
		if from < 0 || from >= n || to < 0 || to >= n {
			return nil, IndexWiringError(def, i, "wire references a missing sub-chip")
		}
		if !slices.Contains(g.succs[from], to) {
			g.succs[from] = append(g.succs[from], to)
			g.preds[to] = append(g.preds[to], from)
		}
	}
	for i := range n {
		slices.Sort(g.succs[i])
		slices.Sort(g.preds[i])
	}
	return g, nil
}

// Sort returns the sub-chip indices of def so that every sub-chip follows
// all sub-chips it depends on. Among ready sub-chips the lowest index goes
// first, so the order is stable for a given definition.
//
// A cycle fails with CYCLIC_DEPENDENCY naming a sub-chip on the cycle.
func Sort(def *ir.ChipDefinition) ([]int, error) {
	g, err := buildGraph(def)
	if err != nil {
		return nil, err
	}

	n := len(def.Chips)
	inDegree := make([]int, n)
	var ready []int
	for i := range n {
		inDegree[i] = len(g.preds[i])
		if inDegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)
	for len(ready) > 0 {
		v := ready[0]
		ready = ready[1:]
		order = append(order, v)

		for _, w := range g.succs[v] {
			inDegree[w]--
			if inDegree[w] == 0 {
				pos, _ := slices.BinarySearch(ready, w)
				ready = slices.Insert(ready, pos, w)
			}
		}
	}

	if len(order) < n {
		return nil, ir.NewCycleError(ir.Kind(def.ID), g.cycleNode(order))
	}
	return order, nil
}

// cycleNode returns a sub-chip that lies on a cycle, given the nodes Kahn's
// algorithm managed to visit. Every unvisited node keeps an unvisited
// predecessor, so walking predecessors must eventually repeat a node.
func (g *graph) cycleNode(visited []int) int {
	done := make([]bool, len(g.preds))
	for _, v := range visited {
		done[v] = true
	}

	start := slices.Index(done, false)
	seen := make(map[int]bool)
	v := start
	for !seen[v] {
		seen[v] = true
		for _, p := range g.preds[v] {
			if !done[p] {
				v = p
				break
			}
		}
	}
	return v
}
