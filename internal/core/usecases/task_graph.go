package usecases

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"warp/internal/core/domain"
	platerrors "warp/internal/platform/errors"
)

// Task is one node of a TaskGraph: an id, the ids of tasks it depends on,
// and the executor that runs once every dependency succeeds.
type Task struct {
	ID        string
	DependsOn []string
	Run       func(ctx context.Context) error
}

// TaskGraph is a generic DAG executor. It validates acyclicity via
// in-degree propagation before any executor runs, then schedules tasks as
// soon as their known dependencies complete successfully. Concurrency is
// structurally unbounded here — it is bounded externally by whatever
// resource the executors contend on (the WorkerPool, in practice).
type TaskGraph struct {
	tasks []Task
}

// NewTaskGraph builds a TaskGraph over tasks. Task ids must be unique; a
// dependency id that names no task in the set is ignored — it can never
// gate scheduling.
func NewTaskGraph(tasks []Task) (*TaskGraph, error) {
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			return nil, platerrors.Wrapped(platerrors.CompileErr, "task graph: empty task id", domain.ErrEmptyTaskID)
		}
		if seen[t.ID] {
			return nil, platerrors.Wrapped(platerrors.CompileErr, fmt.Sprintf("task graph: duplicate id %q", t.ID), domain.ErrDuplicateTaskID)
		}
		seen[t.ID] = true
	}
	return &TaskGraph{tasks: tasks}, nil
}

// Validate checks acyclicity via Kahn's algorithm (in-degree-zero
// propagation), run as a pre-pass before any executor is invoked. Cycles
// are reported with the ids that remained blocked.
func (g *TaskGraph) Validate() error {
	indeg := make(map[string]int, len(g.tasks))
	dependents := make(map[string][]string)
	known := make(map[string]bool, len(g.tasks))
	for _, t := range g.tasks {
		known[t.ID] = true
	}
	for _, t := range g.tasks {
		deg := 0
		for _, dep := range t.DependsOn {
			if !known[dep] {
				continue // unknown deps never gate scheduling
			}
			deg++
			dependents[dep] = append(dependents[dep], t.ID)
		}
		indeg[t.ID] = deg
	}

	queue := make([]string, 0, len(g.tasks))
	for id, deg := range indeg {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range dependents[id] {
			indeg[dep]--
			if indeg[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if visited != len(g.tasks) {
		var stuck []string
		for id, deg := range indeg {
			if deg > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return platerrors.Wrapped(platerrors.CompileErr,
			fmt.Sprintf("task graph has a cycle among: %v", stuck), domain.ErrCyclicPlan)
	}
	return nil
}

// Run validates the graph and executes it. A task runs as soon as every
// known dependency has completed successfully; the reverse-adjacency index
// and per-node in-degree counters mean a completion wakes only the tasks
// whose in-degree just reached zero, for O(V+E) total scheduling work. If
// any executor returns an error, the overall call returns that error and
// dependents of the failed task are never launched.
func (g *TaskGraph) Run(ctx context.Context) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if len(g.tasks) == 0 {
		return nil
	}

	byID := make(map[string]Task, len(g.tasks))
	indeg := make(map[string]int, len(g.tasks))
	dependents := make(map[string][]string)
	for _, t := range g.tasks {
		byID[t.ID] = t
	}
	for _, t := range g.tasks {
		deg := 0
		for _, dep := range t.DependsOn {
			if _, ok := byID[dep]; !ok {
				continue
			}
			deg++
			dependents[dep] = append(dependents[dep], t.ID)
		}
		indeg[t.ID] = deg
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		launched = make(map[string]bool, len(g.tasks))
	)

	var launch func(id string)
	launch = func(id string) {
		mu.Lock()
		if launched[id] {
			mu.Unlock()
			return
		}
		launched[id] = true
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			t := byID[id]
			err := t.Run(ctx)

			mu.Lock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("task %q: %w", id, err)
				}
				mu.Unlock()
				return // dependents of a failed task are never launched
			}
			var ready []string
			for _, dep := range dependents[id] {
				indeg[dep]--
				if indeg[dep] == 0 {
					ready = append(ready, dep)
				}
			}
			mu.Unlock()

			for _, r := range ready {
				launch(r)
			}
		}()
	}

	for _, t := range g.tasks {
		if indeg[t.ID] == 0 {
			launch(t.ID)
		}
	}

	wg.Wait()
	return firstErr
}
