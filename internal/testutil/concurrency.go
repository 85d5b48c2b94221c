package testutil

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/vk/perfgrid/internal/node"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/registry"
)

// SleeperPipeline is the name under which SleeperModule registers its pipeline.
const SleeperPipeline = "sleepers"

// ExecutionRecord stores the start and end time of a single node execution.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}

// SleeperStep declares one sleeping node and the steps it waits for.
type SleeperStep struct {
	Name  string
	After []string
}

// SleeperModule is a shared, self-contained module for concurrency tests.
// It records the execution time of each node it registers. Each step
// produces the dataset "<name>_done" and consumes the outputs of its
// After steps.
type SleeperModule struct {
	ExecutionTimes map[string]*ExecutionRecord
	mu             sync.Mutex
	sleepDuration  time.Duration
	completionChan chan<- string
	steps          []SleeperStep
}

// NewSleeperModule creates a new sleeper module for testing. completionChan
// may be nil; otherwise it receives each node name as the node finishes.
func NewSleeperModule(completionChan chan<- string, sleep time.Duration, steps ...SleeperStep) *SleeperModule {
	return &SleeperModule{
		ExecutionTimes: make(map[string]*ExecutionRecord),
		sleepDuration:  sleep,
		completionChan: completionChan,
		steps:          steps,
	}
}

// Output returns the dataset a sleeper step produces.
func Output(step string) string { return step + "_done" }

// Record returns the execution record of a step, if it ran.
func (m *SleeperModule) Record(step string) (*ExecutionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.ExecutionTimes[step]
	return rec, ok
}

// Register registers the sleeper pipeline.
func (m *SleeperModule) Register(r *registry.Registry) {
	nodes := make([]*node.Node, 0, len(m.steps))
	for _, step := range m.steps {
		nodes = append(nodes, m.newNode(step))
	}
	r.RegisterPipeline(SleeperPipeline, pipeline.MustNew(nodes...))
}

var (
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
	ctxType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// newNode builds a function taking one parameter per upstream step.
func (m *SleeperModule) newNode(step SleeperStep) *node.Node {
	in := []reflect.Type{ctxType}
	inputs := make([]string, 0, len(step.After))
	for _, dep := range step.After {
		in = append(in, anyType)
		inputs = append(inputs, Output(dep))
	}
	ft := reflect.FuncOf(in, []reflect.Type{anyType, errorType}, false)

	fn := reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
		ctx := args[0].Interface().(context.Context)
		startTime := time.Now()
		var err error
		select {
		case <-time.After(m.sleepDuration):
		case <-ctx.Done():
			err = ctx.Err()
		}
		endTime := time.Now()

		m.mu.Lock()
		m.ExecutionTimes[step.Name] = &ExecutionRecord{Start: startTime, End: endTime}
		m.mu.Unlock()

		if m.completionChan != nil && err == nil {
			m.completionChan <- step.Name
		}
		out := reflect.New(anyType).Elem()
		out.Set(reflect.ValueOf(fmt.Sprintf("%s finished", step.Name)))
		errV := reflect.New(errorType).Elem()
		if err != nil {
			errV.Set(reflect.ValueOf(err))
		}
		return []reflect.Value{out, errV}
	})

	inSpec := node.None()
	if len(inputs) > 0 {
		inSpec = node.Positional(inputs...)
	}
	return node.MustNew(step.Name, fn.Interface(), inSpec, node.Single(Output(step.Name)))
}
