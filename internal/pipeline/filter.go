package pipeline

import (
	"sort"

	"github.com/vk/perfgrid/internal/node"
)

// Sum merges pipelines into one. A node instance present in several
// pipelines is kept once; two different nodes with the same name are a
// *DuplicateNodeNameError.
func Sum(pipelines ...*Pipeline) (*Pipeline, error) {
	var nodes []*node.Node
	seen := make(map[*node.Node]bool)
	for _, p := range pipelines {
		if p == nil {
			continue
		}
		for _, n := range p.nodes {
			if seen[n] {
				continue
			}
			seen[n] = true
			nodes = append(nodes, n)
		}
	}
	return New(nodes...)
}

// Only returns the sub-pipeline made of the named nodes.
func (p *Pipeline) Only(names ...string) (*Pipeline, error) {
	if err := p.checkNodes(names); err != nil {
		return nil, err
	}
	keep := make(map[string]bool, len(names))
	for _, name := range names {
		keep[name] = true
	}
	return p.subset(keep), nil
}

// OnlyTags returns the nodes carrying at least one of the tags. No match
// yields an empty pipeline.
func (p *Pipeline) OnlyTags(tags ...string) *Pipeline {
	keep := make(map[string]bool)
	for _, n := range p.nodes {
		for _, t := range tags {
			if n.HasTag(t) {
				keep[n.Name()] = true
				break
			}
		}
	}
	return p.subset(keep)
}

// ToOutputs returns the nodes needed to produce the given datasets.
func (p *Pipeline) ToOutputs(datasets ...string) (*Pipeline, error) {
	var missing []string
	var targets []string
	for _, ds := range datasets {
		n, ok := p.producers[ds]
		if !ok {
			missing = append(missing, ds)
			continue
		}
		targets = append(targets, n.Name())
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &UnknownDatasetError{Names: missing}
	}
	ids, err := p.DependencyGraph().Ancestors(targets...)
	if err != nil {
		return nil, err
	}
	return p.subset(toSet(ids)), nil
}

// FromNodes returns the named nodes and everything downstream of them.
func (p *Pipeline) FromNodes(names ...string) (*Pipeline, error) {
	if err := p.checkNodes(names); err != nil {
		return nil, err
	}
	ids, err := p.DependencyGraph().Descendants(names...)
	if err != nil {
		return nil, err
	}
	return p.subset(toSet(ids)), nil
}

// ToNodes returns the named nodes and everything upstream of them.
func (p *Pipeline) ToNodes(names ...string) (*Pipeline, error) {
	if err := p.checkNodes(names); err != nil {
		return nil, err
	}
	ids, err := p.DependencyGraph().Ancestors(names...)
	if err != nil {
		return nil, err
	}
	return p.subset(toSet(ids)), nil
}

func (p *Pipeline) checkNodes(names []string) error {
	var missing []string
	for _, name := range names {
		if _, ok := p.byName[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &UnknownNodeError{Names: missing}
	}
	return nil
}

// subset keeps declaration order. Uniqueness already holds for any subset of
// a valid pipeline, so New cannot fail.
func (p *Pipeline) subset(keep map[string]bool) *Pipeline {
	var nodes []*node.Node
	for _, n := range p.nodes {
		if keep[n.Name()] {
			nodes = append(nodes, n)
		}
	}
	sub, err := New(nodes...)
	if err != nil {
		panic(err)
	}
	return sub
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
