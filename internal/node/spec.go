package node

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// SpecKind identifies how a Spec binds dataset names.
type SpecKind int

const (
	// PositionalSpec binds an ordered list of dataset names. It also covers
	// the empty case of a node with no inputs or no outputs.
	PositionalSpec SpecKind = iota
	// SingleSpec binds exactly one dataset name.
	SingleSpec
	// KeywordSpec binds parameter names to dataset names.
	KeywordSpec
)

func (k SpecKind) String() string {
	switch k {
	case SingleSpec:
		return "single"
	case PositionalSpec:
		return "positional"
	case KeywordSpec:
		return "keyword"
	default:
		return fmt.Sprintf("SpecKind(%d)", int(k))
	}
}

// Spec describes the dataset bindings of a node's inputs or outputs.
type Spec struct {
	kind    SpecKind
	names   []string
	keyword map[string]string
}

// Single binds one dataset name.
func Single(name string) Spec {
	return Spec{kind: SingleSpec, names: []string{name}}
}

// Positional binds dataset names in order.
func Positional(names ...string) Spec {
	return Spec{kind: PositionalSpec, names: slices.Clone(names)}
}

// None declares no datasets.
func None() Spec {
	return Spec{kind: PositionalSpec}
}

// Keyword binds parameter names to dataset names.
func Keyword(bindings map[string]string) Spec {
	return Spec{kind: KeywordSpec, keyword: maps.Clone(bindings)}
}

// Kind returns the binding style.
func (s Spec) Kind() SpecKind {
	return s.kind
}

// Params returns the parameter names of a keyword spec in lexical order.
func (s Spec) Params() []string {
	if s.kind != KeywordSpec {
		return nil
	}
	return slices.Sorted(maps.Keys(s.keyword))
}

// Dataset returns the dataset bound to a keyword parameter.
func (s Spec) Dataset(param string) (string, bool) {
	name, ok := s.keyword[param]
	return name, ok
}

// Names returns the bound dataset names. For keyword specs the order follows
// the lexical order of the parameter names.
func (s Spec) Names() []string {
	if s.kind != KeywordSpec {
		return slices.Clone(s.names)
	}
	params := s.Params()
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = s.keyword[p]
	}
	return names
}

// Len returns the number of bound datasets.
func (s Spec) Len() int {
	if s.kind == KeywordSpec {
		return len(s.keyword)
	}
	return len(s.names)
}

func (s Spec) String() string {
	switch s.kind {
	case SingleSpec:
		return s.names[0]
	case KeywordSpec:
		parts := make([]string, 0, len(s.keyword))
		for _, p := range s.Params() {
			parts = append(parts, p+"="+s.keyword[p])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "[" + strings.Join(s.names, ", ") + "]"
	}
}
