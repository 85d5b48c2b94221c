package runner

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vk/perfgrid/internal/catalog"
	"github.com/vk/perfgrid/internal/ctxlog"
	"github.com/vk/perfgrid/internal/hooks"
	"github.com/vk/perfgrid/internal/node"
	"github.com/vk/perfgrid/internal/pipeline"
)

// DefaultWorkers is used when a parallel runner is given a non-positive
// worker count.
const DefaultWorkers = 4

// Parallel runs independent nodes concurrently on a fixed pool of workers.
// A node is dispatched once every producer of its inputs has finished. The
// first failure cancels the run: queued nodes are skipped and nothing
// downstream of the failing node is started.
type Parallel struct {
	workers int
	hooks   *hooks.Manager
}

// NewParallel creates a parallel runner.
func NewParallel(workers int, opts ...Option) *Parallel {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	o := buildOptions(opts)
	return &Parallel{workers: workers, hooks: hooks.NewManager(o.hooks...)}
}

// Workers returns the size of the worker pool.
func (r *Parallel) Workers() int { return r.workers }

type state int32

const (
	pending state = iota
	running
	done
	failed
	skipped
)

type task struct {
	n          *node.Node
	depCount   atomic.Int32
	state      atomic.Int32
	dependents []*task
}

// claim moves a pending task to the given state. Only one caller wins.
func (t *task) claim(to state) bool {
	return t.state.CompareAndSwap(int32(pending), int32(to))
}

// execution holds the state of one parallel run.
type execution struct {
	r      *Parallel
	store  *catalog.Store
	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu       sync.Mutex
	firstErr *PipelineExecutionError
}

// Run executes p against store.
func (r *Parallel) Run(ctx context.Context, p *pipeline.Pipeline, store *catalog.Store) (*catalog.Store, error) {
	logger := ctxlog.FromContext(ctx)

	order, err := prepare(p, store)
	if err != nil {
		return store, err
	}

	info := runInfo(ctx, KindParallel, p, order)
	ctx = r.hooks.BeforePipelineRun(ctx, info)

	tasks := buildTasks(p, order)
	readyChan := make(chan *task, len(tasks))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e := &execution{r: r, store: store, cancel: cancel}

	logger.Debug("Initializing parallel runner, finding root nodes...")
	rootCount := 0
	for _, t := range tasks {
		if t.depCount.Load() == 0 {
			readyChan <- t
			rootCount++
		}
	}
	logger.Debug("Found all root nodes.", "count", rootCount)

	e.wg.Add(len(tasks))

	logger.Debug("Starting worker pool.", "workers", r.workers)
	for i := 0; i < r.workers; i++ {
		go e.worker(runCtx, readyChan, i)
	}

	e.wg.Wait()
	close(readyChan)

	var runErr error
	if e.firstErr != nil {
		runErr = e.firstErr
	} else if err := ctx.Err(); err != nil {
		runErr = &PipelineExecutionError{Node: firstUnfinished(tasks), Err: err}
	}

	r.hooks.AfterPipelineRun(ctx, info, runErr)
	return store, runErr
}

// buildTasks mirrors the dependency graph. Tasks keep execution order so
// roots are queued deterministically.
func buildTasks(p *pipeline.Pipeline, order []*node.Node) []*task {
	tasks := make([]*task, len(order))
	byName := make(map[string]*task, len(order))
	for i, n := range order {
		tasks[i] = &task{n: n}
		byName[n.Name()] = tasks[i]
	}

	g := p.DependencyGraph()
	for _, t := range tasks {
		deps, _ := g.Dependencies(t.n.Name())
		t.depCount.Store(int32(len(deps)))
		for _, dep := range deps {
			byName[dep].dependents = append(byName[dep].dependents, t)
		}
	}
	return tasks
}

func firstUnfinished(tasks []*task) string {
	for _, t := range tasks {
		if state(t.state.Load()) != done {
			return t.n.Name()
		}
	}
	return ""
}

// worker is the core processing loop for a single concurrent worker.
func (e *execution) worker(ctx context.Context, readyChan chan *task, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for t := range readyChan {
		workerLogger := logger.With("workerID", workerID, "node", t.n.Name())

		if ctx.Err() != nil {
			if t.claim(skipped) {
				workerLogger.Debug("Run cancelled, skipping queued node.")
				e.skipDependents(ctx, t)
				e.wg.Done()
			}
			continue
		}

		if !t.claim(running) {
			continue
		}

		workerLogger.Debug("Worker picked up node for execution.")
		if err := execute(ctx, e.r.hooks, t.n, e.store); err != nil {
			t.state.Store(int32(failed))
			e.fail(t.n.Name(), err)
			e.skipDependents(ctx, t)
			e.wg.Done()
			continue
		}

		t.state.Store(int32(done))
		for _, dependent := range t.dependents {
			if dependent.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent node.", "dependent", dependent.n.Name())
				readyChan <- dependent
			}
		}
		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// fail records the first failure and cancels the run. Later failures are
// usually symptoms of the cancellation and are only logged.
func (e *execution) fail(name string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.firstErr == nil {
		e.firstErr = &PipelineExecutionError{Node: name, Err: err}
		e.cancel()
	}
}

// skipDependents recursively marks all downstream tasks as skipped and
// releases them from the wait group.
func (e *execution) skipDependents(ctx context.Context, t *task) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range t.dependents {
		if dependent.claim(skipped) {
			logger.Warn("Skipping dependent node due to upstream failure.", "node", dependent.n.Name(), "dependency", t.n.Name())
			e.skipDependents(ctx, dependent)
			e.wg.Done()
		}
	}
}

var _ Runner = (*Parallel)(nil)
