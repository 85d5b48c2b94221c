package dag

import (
	"container/heap"
	"slices"
)

type indexHeap []*node

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i].index < h[j].index }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(*node)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopologicalSort returns the node IDs so that every node comes after all of
// its dependencies. Among nodes that are ready at the same step, the one
// added first wins. A cyclic graph yields a *CycleError.
func (g *Graph) TopologicalSort() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	indeg := make(map[string]int, len(g.nodes))
	ready := &indexHeap{}
	for _, id := range g.order {
		n := g.nodes[id]
		indeg[id] = len(n.deps)
		if indeg[id] == 0 {
			heap.Push(ready, n)
		}
	}

	out := make([]string, 0, len(g.order))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(*node)
		out = append(out, n.id)
		for _, m := range n.dependents {
			indeg[m.id]--
			if indeg[m.id] == 0 {
				heap.Push(ready, m)
			}
		}
	}

	if len(out) != len(g.order) {
		return nil, &CycleError{Nodes: g.cycleMembers()}
	}
	return out, nil
}

// DetectCycles checks the graph for any cycles. It returns a *CycleError
// listing every participating node, or nil.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if members := g.cycleMembers(); len(members) > 0 {
		return &CycleError{Nodes: members}
	}
	return nil
}

// Cycles returns the strongly connected components that contain a cycle.
// Members of each component and the components themselves are ordered by
// insertion.
func (g *Graph) Cycles() [][]string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.cyclicComponents()
}

func (g *Graph) cycleMembers() []string {
	var members []string
	for _, comp := range g.cyclicComponents() {
		members = append(members, comp...)
	}
	slices.SortFunc(members, func(a, b string) int { return g.nodes[a].index - g.nodes[b].index })
	return members
}

// cyclicComponents runs Tarjan's algorithm and keeps components with more
// than one node. Self edges are rejected by AddEdge, so a single node can
// never form a cycle.
func (g *Graph) cyclicComponents() [][]string {
	index := 0
	indices := make(map[string]int, len(g.nodes))
	lowlink := make(map[string]int, len(g.nodes))
	onStack := make(map[string]bool, len(g.nodes))
	var stack []*node
	var comps [][]string

	var strongConnect func(n *node)
	strongConnect = func(n *node) {
		indices[n.id] = index
		lowlink[n.id] = index
		index++
		stack = append(stack, n)
		onStack[n.id] = true

		for _, depID := range sortedIDs(n.dependents) {
			m := g.nodes[depID]
			if _, visited := indices[m.id]; !visited {
				strongConnect(m)
				lowlink[n.id] = min(lowlink[n.id], lowlink[m.id])
			} else if onStack[m.id] {
				lowlink[n.id] = min(lowlink[n.id], indices[m.id])
			}
		}

		if lowlink[n.id] == indices[n.id] {
			var comp []*node
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[top.id] = false
				comp = append(comp, top)
				if top == n {
					break
				}
			}
			if len(comp) > 1 {
				set := make(map[string]*node, len(comp))
				for _, c := range comp {
					set[c.id] = c
				}
				comps = append(comps, sortedIDs(set))
			}
		}
	}

	for _, id := range g.order {
		if _, visited := indices[id]; !visited {
			strongConnect(g.nodes[id])
		}
	}

	slices.SortFunc(comps, func(a, b []string) int { return g.nodes[a[0]].index - g.nodes[b[0]].index })
	return comps
}
