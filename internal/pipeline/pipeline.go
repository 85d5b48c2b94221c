// Package pipeline groups nodes into a data-flow graph. Dependencies are
// inferred once, at construction, by matching each node's inputs against the
// outputs of the other nodes; a dataset no node produces is an entry point
// that must be seeded before a run.
package pipeline

import (
	"errors"
	"slices"
	"sort"

	"github.com/vk/perfgrid/internal/dag"
	"github.com/vk/perfgrid/internal/node"
)

type edge struct {
	from, to string
}

// Pipeline is an immutable collection of nodes and the dependencies between
// them.
type Pipeline struct {
	nodes     []*node.Node
	byName    map[string]*node.Node
	producers map[string]*node.Node
	edges     []edge
}

// New builds a pipeline from nodes in declaration order. Node names must be
// unique and every dataset may have at most one producer. Cycles are allowed
// here and reported by Validate.
func New(nodes ...*node.Node) (*Pipeline, error) {
	p := &Pipeline{
		nodes:     make([]*node.Node, 0, len(nodes)),
		byName:    make(map[string]*node.Node, len(nodes)),
		producers: make(map[string]*node.Node),
	}

	for _, n := range nodes {
		if _, dup := p.byName[n.Name()]; dup {
			return nil, &DuplicateNodeNameError{Name: n.Name()}
		}
		p.byName[n.Name()] = n
		p.nodes = append(p.nodes, n)
	}

	claims := make(map[string][]string)
	for _, n := range p.nodes {
		for _, out := range n.Outputs() {
			claims[out] = append(claims[out], n.Name())
			p.producers[out] = n
		}
	}
	if err := ambiguous(claims); err != nil {
		return nil, err
	}

	for _, n := range p.nodes {
		seen := make(map[string]bool)
		for _, in := range n.Inputs() {
			producer, ok := p.producers[in]
			if !ok || seen[producer.Name()] {
				continue
			}
			seen[producer.Name()] = true
			p.edges = append(p.edges, edge{from: producer.Name(), to: n.Name()})
		}
	}

	return p, nil
}

// ambiguous picks the alphabetically first over-claimed dataset so the error
// does not depend on declaration order.
func ambiguous(claims map[string][]string) error {
	var datasets []string
	for ds, producers := range claims {
		if len(producers) > 1 {
			datasets = append(datasets, ds)
		}
	}
	if len(datasets) == 0 {
		return nil
	}
	sort.Strings(datasets)
	producers := slices.Clone(claims[datasets[0]])
	sort.Strings(producers)
	return &AmbiguousProducerError{Dataset: datasets[0], Producers: producers}
}

// MustNew is like New but panics on error. Intended for module registration.
func MustNew(nodes ...*node.Node) *Pipeline {
	p, err := New(nodes...)
	if err != nil {
		panic(err)
	}
	return p
}

// Nodes returns the nodes in declaration order. This is not an execution
// order.
func (p *Pipeline) Nodes() []*node.Node {
	return slices.Clone(p.nodes)
}

// Len returns the number of nodes.
func (p *Pipeline) Len() int { return len(p.nodes) }

// Node looks up a node by name.
func (p *Pipeline) Node(name string) (*node.Node, bool) {
	n, ok := p.byName[name]
	return n, ok
}

// Producer returns the node that outputs the given dataset, if any.
func (p *Pipeline) Producer(dataset string) (*node.Node, bool) {
	n, ok := p.producers[dataset]
	return n, ok
}

// DependencyGraph returns a fresh graph whose vertices are node names, added
// in declaration order, with an edge M->N whenever M produces an input of N.
func (p *Pipeline) DependencyGraph() *dag.Graph {
	g := dag.New()
	for _, n := range p.nodes {
		g.AddNode(n.Name())
	}
	for _, e := range p.edges {
		// Both ends exist and self edges are impossible since a node
		// cannot consume its own output.
		_ = g.AddEdge(e.from, e.to)
	}
	return g
}

// Validate reports a *CyclicPipelineError if the dependency graph has a
// cycle.
func (p *Pipeline) Validate() error {
	var cycle *dag.CycleError
	if err := p.DependencyGraph().DetectCycles(); errors.As(err, &cycle) {
		return &CyclicPipelineError{Nodes: cycle.Nodes}
	}
	return nil
}

// Inputs returns the datasets consumed by some node but produced by none.
// These must be seeded before a run.
func (p *Pipeline) Inputs() []string {
	set := make(map[string]struct{})
	for _, n := range p.nodes {
		for _, in := range n.Inputs() {
			if _, produced := p.producers[in]; !produced {
				set[in] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

// Outputs returns the datasets produced by some node and consumed by none.
func (p *Pipeline) Outputs() []string {
	consumed := make(map[string]struct{})
	for _, n := range p.nodes {
		for _, in := range n.Inputs() {
			consumed[in] = struct{}{}
		}
	}
	set := make(map[string]struct{})
	for ds := range p.producers {
		if _, ok := consumed[ds]; !ok {
			set[ds] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// AllOutputs returns every dataset produced by the pipeline.
func (p *Pipeline) AllOutputs() []string {
	set := make(map[string]struct{}, len(p.producers))
	for ds := range p.producers {
		set[ds] = struct{}{}
	}
	return sortedKeys(set)
}

// Tags returns the union of node tags, sorted.
func (p *Pipeline) Tags() []string {
	set := make(map[string]struct{})
	for _, n := range p.nodes {
		for _, t := range n.Tags() {
			set[t] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
