// Package node wraps a plain Go function as a named pipeline unit with
// declared dataset inputs and outputs.
//
// A node's function is called by reflection. It may take a leading
// context.Context and may return a trailing error. Single and positional
// inputs bind to the remaining parameters in order; keyword inputs bind to a
// single struct parameter whose fields carry `pipe:"<param>"` tags.
//
// Outputs are destructured symmetrically: a single output takes the one
// result, positional outputs take one result each (or one slice result of
// matching length), keyword outputs take one map or tagged struct result
// whose keys must match the declared parameters exactly.
package node

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/vk/perfgrid/internal/catalog"
)

// TagKey is the struct tag used for keyword bindings.
const TagKey = "pipe"

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Node is a named, stateless unit of computation.
type Node struct {
	name    string
	inputs  Spec
	outputs Spec
	tags    []string

	fn         reflect.Value
	takesCtx   bool
	returnsErr bool
	// params are the parameter types after the optional context.
	params []reflect.Type
	// numResults counts the results before the optional error.
	numResults int
	// kwFields maps a keyword parameter to its struct field index path.
	kwFields map[string][]int
}

// Option configures a Node.
type Option func(*Node)

// WithTags attaches tags used for pipeline filtering.
func WithTags(tags ...string) Option {
	return func(n *Node) {
		n.tags = append(n.tags, tags...)
	}
}

// New validates fn against the declared specs and returns the node.
func New(name string, fn any, inputs, outputs Spec, opts ...Option) (*Node, error) {
	if name == "" {
		return nil, signatureErrorf(name, "node name must not be empty")
	}
	n := &Node{name: name, inputs: inputs, outputs: outputs}
	for _, opt := range opts {
		opt(n)
	}

	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, signatureErrorf(name, "function must be a non-nil func, got %T", fn)
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, signatureErrorf(name, "variadic functions are not supported")
	}
	n.fn = fv

	if err := n.checkNames(); err != nil {
		return nil, err
	}
	if err := n.bindParams(ft); err != nil {
		return nil, err
	}
	if err := n.bindResults(ft); err != nil {
		return nil, err
	}
	return n, nil
}

// MustNew is like New but panics on error. Modules use it for node
// declarations that are fixed at compile time.
func MustNew(name string, fn any, inputs, outputs Spec, opts ...Option) *Node {
	n, err := New(name, fn, inputs, outputs, opts...)
	if err != nil {
		panic(err)
	}
	return n
}

func (n *Node) checkNames() error {
	for _, in := range n.inputs.Names() {
		if in == "" {
			return signatureErrorf(n.name, "input dataset name must not be empty")
		}
	}
	seen := make(map[string]struct{})
	for _, out := range n.outputs.Names() {
		if out == "" {
			return signatureErrorf(n.name, "output dataset name must not be empty")
		}
		if _, dup := seen[out]; dup {
			return signatureErrorf(n.name, "output dataset %q is declared more than once", out)
		}
		seen[out] = struct{}{}
		if slices.Contains(n.inputs.Names(), out) {
			return signatureErrorf(n.name, "dataset %q is both an input and an output", out)
		}
	}
	return nil
}

func (n *Node) bindParams(ft reflect.Type) error {
	start := 0
	if ft.NumIn() > 0 && ft.In(0) == contextType {
		n.takesCtx = true
		start = 1
	}
	for i := start; i < ft.NumIn(); i++ {
		n.params = append(n.params, ft.In(i))
	}

	switch n.inputs.Kind() {
	case SingleSpec, PositionalSpec:
		if len(n.params) != n.inputs.Len() {
			return signatureErrorf(n.name, "function takes %d parameters but %d inputs are declared", len(n.params), n.inputs.Len())
		}
	case KeywordSpec:
		if len(n.params) != 1 {
			return signatureErrorf(n.name, "keyword inputs need exactly one struct parameter, function takes %d", len(n.params))
		}
		st := n.params[0]
		if st.Kind() == reflect.Pointer {
			st = st.Elem()
		}
		if st.Kind() != reflect.Struct {
			return signatureErrorf(n.name, "keyword inputs need a struct parameter, got %s", n.params[0])
		}
		fields := taggedFields(st)
		n.kwFields = make(map[string][]int, n.inputs.Len())
		for _, p := range n.inputs.Params() {
			idx, ok := fields[p]
			if !ok {
				return signatureErrorf(n.name, "parameter %q has no field tagged `%s:%q` in %s", p, TagKey, p, st)
			}
			n.kwFields[p] = idx
		}
	}
	return nil
}

func (n *Node) bindResults(ft reflect.Type) error {
	n.numResults = ft.NumOut()
	if n.numResults > 0 && ft.Out(n.numResults-1) == errorType {
		n.returnsErr = true
		n.numResults--
	}

	switch n.outputs.Kind() {
	case SingleSpec:
		if n.numResults != 1 {
			return signatureErrorf(n.name, "single output needs exactly one result, function returns %d", n.numResults)
		}
	case PositionalSpec:
		if n.numResults == n.outputs.Len() {
			return nil
		}
		if n.numResults == 1 && n.outputs.Len() > 1 && destructurableSeq(ft.Out(0)) {
			return nil
		}
		return signatureErrorf(n.name, "function returns %d results but %d outputs are declared", n.numResults, n.outputs.Len())
	case KeywordSpec:
		if n.numResults != 1 || !destructurableMap(ft.Out(0)) {
			return signatureErrorf(n.name, "keyword outputs need one map, struct or interface result")
		}
	}
	return nil
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// InputSpec returns the declared input bindings.
func (n *Node) InputSpec() Spec { return n.inputs }

// OutputSpec returns the declared output bindings.
func (n *Node) OutputSpec() Spec { return n.outputs }

// Inputs returns the input dataset names in binding order.
func (n *Node) Inputs() []string { return n.inputs.Names() }

// Outputs returns the output dataset names in declaration order.
func (n *Node) Outputs() []string { return n.outputs.Names() }

// Tags returns the node's tags.
func (n *Node) Tags() []string { return slices.Clone(n.tags) }

// HasTag reports whether the node carries tag.
func (n *Node) HasTag(tag string) bool { return slices.Contains(n.tags, tag) }

func (n *Node) String() string {
	return fmt.Sprintf("%s: %s -> %s", n.name, n.inputs, n.outputs)
}

// Run fetches the node's inputs from the store, invokes its function and
// writes the destructured outputs back. Nothing is written unless the whole
// result is valid.
func (n *Node) Run(ctx context.Context, store *catalog.Store) error {
	inputs, err := n.Load(store)
	if err != nil {
		return err
	}
	outputs, err := n.Call(ctx, inputs)
	if err != nil {
		return err
	}
	return n.Save(store, outputs)
}

// Load reads the node's declared inputs from the store.
func (n *Node) Load(store *catalog.Store) (map[string]any, error) {
	inputs := make(map[string]any, n.inputs.Len())
	for _, name := range n.inputs.Names() {
		v, err := store.Get(name)
		if err != nil {
			return nil, &catalog.MissingDatasetError{Name: name, Node: n.name}
		}
		inputs[name] = v
	}
	return inputs, nil
}

// Save writes the declared outputs to the store in one batch. A conflict on
// any of them leaves the store untouched.
func (n *Node) Save(store *catalog.Store, outputs map[string]any) error {
	values := make(map[string]any, n.outputs.Len())
	for _, name := range n.outputs.Names() {
		values[name] = outputs[name]
	}
	return store.PutAll(values, n.name)
}

// Call invokes the function with inputs keyed by dataset name and returns
// outputs keyed by dataset name.
func (n *Node) Call(ctx context.Context, inputs map[string]any) (outputs map[string]any, err error) {
	args, err := n.buildArgs(ctx, inputs)
	if err != nil {
		return nil, &NodeExecutionError{Node: n.name, Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			outputs = nil
			err = &NodeExecutionError{Node: n.name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	results := n.fn.Call(args)

	if n.returnsErr {
		if errVal := results[len(results)-1]; !errVal.IsNil() {
			return nil, &NodeExecutionError{Node: n.name, Err: errVal.Interface().(error)}
		}
		results = results[:len(results)-1]
	}
	return n.destructure(results)
}
