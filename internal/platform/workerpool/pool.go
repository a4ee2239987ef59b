package workerpool

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	platerrors "warp/internal/platform/errors"
	"warp/internal/platform/logx"
)

// SpawnFunc launches worker id and returns a handle to its IPC stream.
// Production pools spawn the current binary in worker mode; tests inject
// an in-memory fake for crash-handling boundary tests.
type SpawnFunc func(id int) (processHandle, error)

// Pool is the process-based worker pool: N workers are pre-warmed, each
// loading the compiler once, and compile requests are dispatched to
// whichever worker is idle. Each worker is modeled as a small state
// machine {starting, idle, busy, dead}; dead is terminal, so the
// underlying "error then exit" event pair for one crash is only ever
// acted on once.
type Pool struct {
	size   int
	spawn  SpawnFunc
	logger logx.Logger

	mu           sync.Mutex
	workers      map[int]*workerEntry
	idle         []int
	pendingQueue []*pendingCompile
	inFlight     map[string]*pendingCompile
	terminated   bool

	readyOnce  sync.Once
	readyCh    chan struct{}
	readyErr   error
	readyCount int
}

// workerState is one worker's lifecycle position. All transitions happen
// under Pool.mu; workerDead is terminal.
type workerState int

const (
	workerStarting workerState = iota
	workerIdle
	workerBusy
	workerDead
)

type workerEntry struct {
	id             int
	handle         processHandle
	state          workerState
	currentRequest string
}

type pendingCompile struct {
	id         string
	targetName string
	req        *CompileRequest
	resultCh   chan compileOutcome
}

type compileOutcome struct {
	resp CompileResponse
	err  error
}

// Size implements the pool's sizing rule: never more workers than unique
// compile jobs, never zero.
func Size(availableCPUs, uniqueCompilations int) int {
	n := availableCPUs
	if uniqueCompilations < n {
		n = uniqueCompilations
	}
	if n < 1 {
		n = 1
	}
	return n
}

// NewPool builds a pool of size workers, each launched via spawn.
func NewPool(size int, spawn SpawnFunc, logger logx.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = logx.New()
	}
	return &Pool{
		size:     size,
		spawn:    spawn,
		logger:   logger.With("component", "workerpool"),
		workers:  make(map[int]*workerEntry, size),
		inFlight: make(map[string]*pendingCompile),
		readyCh:  make(chan struct{}),
	}
}

// Start launches all workers and their read pumps. It does not block until
// they are ready; call WaitReady for that.
func (p *Pool) Start() error {
	for i := 0; i < p.size; i++ {
		handle, err := p.spawn(i)
		if err != nil {
			p.failReady(fmt.Errorf("worker %d failed to start: %w", i, err))
			return err
		}
		entry := &workerEntry{id: i, handle: handle}
		p.mu.Lock()
		p.workers[i] = entry
		p.mu.Unlock()
		go p.pump(entry)
	}
	return nil
}

// pump reads messages from one worker until its stream ends, dispatching
// ready/result messages and treating stream end as a crash.
func (p *Pool) pump(entry *workerEntry) {
	for {
		msg, err := entry.handle.Recv()
		if err != nil {
			p.crash(entry, err)
			return
		}
		switch msg.Type {
		case MsgReady:
			p.onReady(entry)
		case MsgResult:
			if msg.Result != nil {
				p.onResult(*msg.Result)
			}
		default:
			// Unrecognized message shape: dropped, never fatal.
		}
	}
}

func (p *Pool) onReady(entry *workerEntry) {
	p.mu.Lock()
	if p.terminated || entry.state == workerDead {
		p.mu.Unlock()
		return
	}
	entry.state = workerIdle
	p.idle = append(p.idle, entry.id)
	p.readyCount++
	allReady := p.readyCount >= p.size
	p.mu.Unlock()

	p.dispatchQueued()

	if allReady {
		p.readyOnce.Do(func() { close(p.readyCh) })
	}
}

func (p *Pool) onResult(resp CompileResponse) {
	p.mu.Lock()
	pc, ok := p.inFlight[resp.RequestID]
	if !ok {
		p.mu.Unlock()
		return // correlates with nothing pending; dropped
	}
	delete(p.inFlight, resp.RequestID)
	for _, e := range p.workers {
		if e.currentRequest == resp.RequestID {
			e.currentRequest = ""
			if e.state != workerDead && !p.terminated {
				e.state = workerIdle
				p.idle = append(p.idle, e.id)
			}
			break
		}
	}
	p.mu.Unlock()

	pc.resultCh <- compileOutcome{resp: resp}
	p.dispatchQueued()
}

// dispatchQueued assigns queued requests to idle workers until one side
// runs out.
func (p *Pool) dispatchQueued() {
	for {
		p.mu.Lock()
		if p.terminated || len(p.pendingQueue) == 0 || len(p.idle) == 0 {
			p.mu.Unlock()
			return
		}
		workerID := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		pc := p.pendingQueue[0]
		p.pendingQueue = p.pendingQueue[1:]
		entry := p.workers[workerID]
		entry.state = workerBusy
		entry.currentRequest = pc.id
		p.inFlight[pc.id] = pc
		p.mu.Unlock()

		if err := entry.handle.Send(Message{Type: MsgCompile, Compile: pc.req}); err != nil {
			p.crash(entry, err)
		}
	}
}

// crash centralizes worker-death handling: the transition into the
// terminal dead state happens exactly once, so the "error" and "exit"
// signals for one underlying failure are only processed once.
func (p *Pool) crash(entry *workerEntry, cause error) {
	p.mu.Lock()
	if entry.state == workerDead {
		p.mu.Unlock()
		return
	}
	entry.state = workerDead

	// Remove from idle set.
	for i, id := range p.idle {
		if id == entry.id {
			p.idle = append(p.idle[:i], p.idle[i+1:]...)
			break
		}
	}

	var failedInFlight *pendingCompile
	if entry.currentRequest != "" {
		failedInFlight = p.inFlight[entry.currentRequest]
		delete(p.inFlight, entry.currentRequest)
		entry.currentRequest = ""
	}

	activeCount := 0
	for _, e := range p.workers {
		if e.state != workerDead {
			activeCount++
		}
	}

	notReady := p.readyCount < p.size
	var drainQueue []*pendingCompile
	if activeCount == 0 && len(p.pendingQueue) > 0 {
		drainQueue = p.pendingQueue
		p.pendingQueue = nil
	}
	p.mu.Unlock()

	entry.handle.Stop()

	workerErr := fmt.Errorf("worker %d died: %w", entry.id, cause)
	p.logger.Warn("worker died", "worker", entry.id, "error", cause.Error())

	if failedInFlight != nil {
		failedInFlight.resultCh <- compileOutcome{err: platerrors.Wrapped(platerrors.CompileErr,
			fmt.Sprintf("while compiling target %q (try running without --parallel)", failedInFlight.targetName), workerErr)}
	}

	if notReady {
		p.failReady(workerErr)
	}

	for _, pc := range drainQueue {
		pc.resultCh <- compileOutcome{err: platerrors.Wrapped(platerrors.CompileErr,
			fmt.Sprintf("while compiling target %q: no workers remain alive (try running without --parallel)", pc.targetName), workerErr)}
	}
}

func (p *Pool) failReady(err error) {
	p.readyOnce.Do(func() {
		p.readyErr = err
		close(p.readyCh)
	})
}

// WaitReady resolves once every worker has sent its ready message, or
// rejects promptly if a worker dies before that point. Multiple callers
// observe the same resolution.
func (p *Pool) WaitReady(ctx context.Context) error {
	select {
	case <-p.readyCh:
		return p.readyErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Compile dispatches req to an idle worker (or queues it) and returns the
// resulting CompileResponse. Calls after Terminate reject synchronously.
func (p *Pool) Compile(ctx context.Context, req CompileRequest) (CompileResponse, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	pc := &pendingCompile{id: req.RequestID, targetName: req.Target.Name, req: &req, resultCh: make(chan compileOutcome, 1)}

	p.mu.Lock()
	if p.terminated {
		p.mu.Unlock()
		return CompileResponse{}, platerrors.NewTyped(platerrors.CompileErr, "worker pool terminated")
	}

	var assignedWorker *workerEntry
	if len(p.idle) > 0 {
		id := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		assignedWorker = p.workers[id]
		assignedWorker.state = workerBusy
		assignedWorker.currentRequest = pc.id
		p.inFlight[pc.id] = pc
	} else {
		p.pendingQueue = append(p.pendingQueue, pc)
	}
	p.mu.Unlock()

	if assignedWorker != nil {
		if err := assignedWorker.handle.Send(Message{Type: MsgCompile, Compile: pc.req}); err != nil {
			p.crash(assignedWorker, err)
		}
	}

	select {
	case out := <-pc.resultCh:
		return out.resp, out.err
	case <-ctx.Done():
		return CompileResponse{}, ctx.Err()
	}
}

// Terminate marks the pool terminated, rejects every in-flight and queued
// task with a typed error, and stops every worker process.
func (p *Pool) Terminate() {
	p.mu.Lock()
	if p.terminated {
		p.mu.Unlock()
		return
	}
	p.terminated = true
	queued := p.pendingQueue
	p.pendingQueue = nil
	inFlight := make([]*pendingCompile, 0, len(p.inFlight))
	for _, pc := range p.inFlight {
		inFlight = append(inFlight, pc)
	}
	p.inFlight = make(map[string]*pendingCompile)
	workers := make([]*workerEntry, 0, len(p.workers))
	for _, e := range p.workers {
		// Transitioning to dead here keeps the read pump's EOF (a direct
		// consequence of stopping it) from being reported as a crash.
		e.state = workerDead
		workers = append(workers, e)
	}
	p.mu.Unlock()

	terminatedErr := platerrors.NewTyped(platerrors.CompileErr, "worker pool terminated")
	p.failReady(terminatedErr)
	for _, pc := range queued {
		pc.resultCh <- compileOutcome{err: terminatedErr}
	}
	for _, pc := range inFlight {
		pc.resultCh <- compileOutcome{err: terminatedErr}
	}
	for _, e := range workers {
		e.handle.Stop()
	}
}
