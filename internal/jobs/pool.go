package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Runner executes one job kind. It returns the JSON result to persist.
type Runner func(ctx context.Context, job Job) (json.RawMessage, error)

var ErrQueueFull = errors.New("job queue is full")

// Pool runs queued jobs on a fixed set of workers, recording transitions in
// the store.
type Pool struct {
	store   *Store
	runners map[string]Runner
	log     *slog.Logger

	queue chan Job
	wg    sync.WaitGroup
}

func NewPool(store *Store, depth int, log *slog.Logger) *Pool {
	if depth <= 0 {
		depth = 64
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pool{
		store:   store,
		runners: make(map[string]Runner),
		log:     log,
		queue:   make(chan Job, depth),
	}
}

// Register binds a runner to a job kind. Call before Start.
func (p *Pool) Register(kind string, r Runner) { p.runners[kind] = r }

func (p *Pool) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Enqueue persists a new job and hands it to a worker. It never blocks.
func (p *Pool) Enqueue(ctx context.Context, id, kind string, payload json.RawMessage) (Job, error) {
	if _, ok := p.runners[kind]; !ok {
		return Job{}, fmt.Errorf("unknown job kind %q", kind)
	}
	j, err := p.store.Create(ctx, id, kind, payload)
	if err != nil {
		return Job{}, err
	}
	select {
	case p.queue <- j:
		return j, nil
	default:
		_ = p.store.SetError(ctx, j.ID, ErrQueueFull)
		return Job{}, ErrQueueFull
	}
}

// Shutdown stops accepting work and waits for in-flight jobs.
func (p *Pool) Shutdown() {
	close(p.queue)
	p.wg.Wait()
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-p.queue:
			if !ok {
				return
			}
			p.runOne(ctx, j)
		}
	}
}

func (p *Pool) runOne(ctx context.Context, j Job) {
	log := p.log.With("job_id", j.ID, "kind", j.Kind)
	if err := p.store.SetStatus(ctx, j.ID, StatusRunning); err != nil {
		log.Error("mark running", "error", err)
		return
	}
	log.Info("job started")

	result, err := p.run(ctx, j)
	if err != nil {
		log.Error("job failed", "error", err)
		if serr := p.store.SetError(ctx, j.ID, err); serr != nil {
			log.Error("record failure", "error", serr)
		}
		return
	}
	if err := p.store.SetResult(ctx, j.ID, result); err != nil {
		log.Error("record result", "error", err)
		return
	}
	log.Info("job done")
}

// run wraps the runner so a panic inside one job fails that job instead of
// taking down the worker.
func (p *Pool) run(ctx context.Context, j Job) (result json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return p.runners[j.Kind](ctx, j)
}
