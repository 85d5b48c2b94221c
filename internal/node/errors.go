package node

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSignature is the sentinel wrapped by SignatureError.
	ErrSignature = errors.New("invalid node signature")
	// ErrOutputShape is the sentinel wrapped by OutputShapeError.
	ErrOutputShape = errors.New("output shape mismatch")
	// ErrNodeExecution is matched by NodeExecutionError through errors.Is.
	ErrNodeExecution = errors.New("node execution failed")
)

// SignatureError reports a node whose function cannot be bound to its
// declared inputs and outputs. It is raised at construction time.
type SignatureError struct {
	Node   string
	Reason string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("node %q: %s", e.Node, e.Reason)
}

func (e *SignatureError) Unwrap() error { return ErrSignature }

func signatureErrorf(node, format string, args ...any) error {
	return &SignatureError{Node: node, Reason: fmt.Sprintf(format, args...)}
}

// OutputShapeError reports a function result whose arity or keys do not
// match the node's output spec.
type OutputShapeError struct {
	Node     string
	Expected string
	Got      string
}

func (e *OutputShapeError) Error() string {
	return fmt.Sprintf("node %q: output shape mismatch: declared %s, function returned %s", e.Node, e.Expected, e.Got)
}

func (e *OutputShapeError) Unwrap() error { return ErrOutputShape }

// NodeExecutionError wraps a failure raised by a node's function.
type NodeExecutionError struct {
	Node string
	Err  error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %q failed: %v", e.Node, e.Err)
}

func (e *NodeExecutionError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrNodeExecution while Unwrap still exposes the
// original failure.
func (e *NodeExecutionError) Is(target error) bool {
	return target == ErrNodeExecution
}

func quoteAll(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = fmt.Sprintf("%q", n)
	}
	return "[" + strings.Join(q, " ") + "]"
}
