package dag

import (
	"fmt"
	"strings"
)

// CycleError lists every node that takes part in at least one cycle.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected involving nodes: %s", strings.Join(e.Nodes, ", "))
}
