package queue

import (
	"context"
	"sync"

	"github.com/uiverify/uiverify/logger"
)

// Processor executes one claimed job. Returning an error marks the job
// failed with the error text; returning nil marks it successful.
type Processor interface {
	Process(ctx context.Context, job *Job) error
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, job *Job) error

func (f ProcessorFunc) Process(ctx context.Context, job *Job) error {
	return f(ctx, job)
}

// WorkerPool manages a pool of goroutines that process queued jobs.
// Workers are notified via the Work channel when new jobs are created;
// each worker atomically claims jobs so no job runs twice.
type WorkerPool struct {
	Work       chan struct{}
	maxWorkers int
	store      Store
	processor  Processor
	logger     logger.Logger
	wg         sync.WaitGroup
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(maxWorkers int, store Store, processor Processor, log logger.Logger) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &WorkerPool{
		Work:       make(chan struct{}, maxWorkers),
		maxWorkers: maxWorkers,
		store:      store,
		processor:  processor,
		logger:     log,
	}
}

// Start spawns worker goroutines that listen for job notifications and
// drains any jobs already queued. Workers stop when ctx is cancelled.
func (p *WorkerPool) Start(ctx context.Context) {
	p.logger.Info(ctx, "starting worker pool", map[string]interface{}{
		"max_workers": p.maxWorkers,
	})
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.Notify()
}

// Notify wakes a worker to check for queued jobs. Safe to call from
// any goroutine; a full notification channel means workers are already
// draining the queue.
func (p *WorkerPool) Notify() {
	select {
	case p.Work <- struct{}{}:
	default:
	}
}

// Wait blocks until every worker has stopped.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	log := p.logger.WithField("worker_id", id)
	log.Info(ctx, "worker started", nil)

	for {
		select {
		case <-p.Work:
			// Drain all available created jobs before going back to wait.
			for {
				job, err := p.store.ClaimNextCreated(ctx)
				if err != nil {
					log.Error(ctx, "worker failed to claim job", map[string]interface{}{
						"error": err.Error(),
					})
					break
				}
				if job == nil {
					break
				}
				p.process(ctx, log, job)
			}
		case <-ctx.Done():
			log.Info(ctx, "worker stopping", nil)
			return
		}
	}
}

func (p *WorkerPool) process(ctx context.Context, log logger.Logger, job *Job) {
	log.Info(ctx, "worker processing job", map[string]interface{}{
		"job_id":        job.ID.String(),
		"scenario_name": job.ScenarioName,
	})

	status := StatusSuccess
	jobErr := ""
	if err := p.processor.Process(ctx, job); err != nil {
		status = StatusFailed
		jobErr = err.Error()
	}

	if err := p.store.Complete(ctx, job.ID, status, jobErr); err != nil {
		log.Error(ctx, "worker failed to complete job", map[string]interface{}{
			"job_id": job.ID.String(),
			"error":  err.Error(),
		})
	}
}
