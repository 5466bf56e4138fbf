package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/castaway/internal/adapters/mq/queue"
	"github.com/okian/castaway/pkg/logger"
	"github.com/okian/castaway/pkg/metrics"
)

const defaultQueueSize = 256

// ErrJobIndex reports a job whose Index falls outside the batch.
var ErrJobIndex = errors.New("job index out of range")

// Handler runs one job. It must be safe for concurrent use and must draw all
// randomness from the job's seed.
type Handler[T any] func(ctx context.Context, job queue.Job) (T, error)

// Pool fans a batch of jobs out over workers and returns their results in
// job order, so output never depends on scheduling.
type Pool[T any] struct {
	handler Handler[T]
	cfg     settings
}

// NewPool creates a pool around handler.
func NewPool[T any](handler Handler[T], opts ...Option) *Pool[T] {
	cfg := settings{name: "worker-pool", queueSize: defaultQueueSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = runtime.NumCPU()
	}
	if cfg.logger == nil {
		cfg.logger = logger.Current().Named(cfg.name)
	}
	return &Pool[T]{handler: handler, cfg: cfg}
}

// Workers returns the configured worker count.
func (p *Pool[T]) Workers() int {
	return p.cfg.workers
}

// Run executes jobs and returns results indexed by Job.Index. The first
// handler error cancels the remaining jobs and is returned.
func (p *Pool[T]) Run(ctx context.Context, jobs []queue.Job) ([]T, error) {
	results := make([]T, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}
	for _, j := range jobs {
		if j.Index < 0 || j.Index >= len(jobs) {
			return nil, fmt.Errorf("%w: %d of %d", ErrJobIndex, j.Index, len(jobs))
		}
	}

	workers := min(p.cfg.workers, len(jobs))
	q := queue.NewInMemoryQueue(queue.WithCapacity(p.cfg.queueSize))
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer func() { _ = q.Close() }()
		for _, j := range jobs {
			if err := q.EnqueueWait(gctx, j); err != nil {
				return err
			}
		}
		return nil
	})

	metrics.UpdateWorkerActiveCount(workers)
	defer metrics.UpdateWorkerActiveCount(0)

	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for job := range q.Dequeue(gctx) {
				start := time.Now()
				res, err := p.handler(gctx, job)
				metrics.RecordJobLatency(time.Since(start).Seconds())
				if err != nil {
					metrics.RecordJobError()
					metrics.RecordErrorByComponent("worker", "job_failed")
					p.cfg.logger.Error(gctx, "job failed",
						logger.Int("worker", w),
						logger.Int("job", job.Index),
						logger.Int64("seed", job.Seed),
						logger.Error(err),
					)
					return fmt.Errorf("job %d (seed %d): %w", job.Index, job.Seed, err)
				}
				results[job.Index] = res
			}
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.cfg.logger.Debug(ctx, "batch complete",
		logger.Int("jobs", len(jobs)),
		logger.Int("workers", workers),
	)
	return results, nil
}

// SeededJobs builds n jobs with seeds base, base+stride, base+2*stride, ...
func SeededJobs(n int, base, stride int64) []queue.Job {
	jobs := make([]queue.Job, n)
	for i := range jobs {
		jobs[i] = queue.Job{Index: i, Seed: base + int64(i)*stride}
	}
	return jobs
}
