package registry

import (
	"slices"

	"github.com/roach88/chipsim/internal/ir"
)

// referenceGraph maps a compound kind to the compound kinds it contains.
type referenceGraph map[ir.Kind][]ir.Kind

// findRecursion reports the kinds that would form a composition cycle with
// candidate if it were registered, or nil when there is none.
func findRecursion(entries map[ir.Kind]Entry, candidate Entry) []ir.Kind {
	graph := buildReferenceGraph(entries, candidate)

	for _, scc := range tarjanSCC(graph) {
		if !slices.Contains(scc, candidate.Kind) {
			continue
		}
		if len(scc) > 1 || hasSelfLoop(candidate.Kind, graph) {
			slices.Sort(scc)
			return scc
		}
	}
	return nil
}

// buildReferenceGraph builds the compound reference graph with candidate
// replacing any existing entry of the same kind. Primitive and unregistered
// kinds are leaves and are left out.
func buildReferenceGraph(entries map[ir.Kind]Entry, candidate Entry) referenceGraph {
	defs := make(map[ir.Kind]*ir.ChipDefinition, len(entries)+1)
	for k, e := range entries {
		if e.Definition != nil {
			defs[k] = e.Definition
		}
	}
	defs[candidate.Kind] = candidate.Definition

	graph := make(referenceGraph, len(defs))
	for k, def := range defs {
		graph[k] = []ir.Kind{}
		for _, ref := range def.References() {
			if _, compound := defs[ref]; compound {
				graph[k] = append(graph[k], ref)
			}
		}
	}
	return graph
}

func hasSelfLoop(node ir.Kind, graph referenceGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in ascending order so results are deterministic.
func tarjanSCC(graph referenceGraph) [][]ir.Kind {
	var (
		index   = 0
		stack   []ir.Kind
		indices = make(map[ir.Kind]int)
		lowlink = make(map[ir.Kind]int)
		onStack = make(map[ir.Kind]bool)
		sccs    [][]ir.Kind
	)

	var strongConnect func(ir.Kind)
	strongConnect = func(v ir.Kind) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// Root of an SCC: pop it off the stack.
		if lowlink[v] == indices[v] {
			var scc []ir.Kind
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]ir.Kind, 0, len(graph))
	for v := range graph {
		nodes = append(nodes, v)
	}
	slices.Sort(nodes)
	for _, v := range nodes {
		if _, visited := indices[v]; !visited {
			strongConnect(v)
		}
	}
	return sccs
}
