package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/doctex/internal/config"
)

// Orchestrator manages the document render pipeline.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	cache    *ResultCache
	renderer *Renderer
	log      *slog.Logger
	cfg      config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, renderer *Renderer, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		cache:    NewResultCache(cfg.CacheTTL),
		renderer: renderer,
		log:      log,
		cfg:      cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.renderer, o.cache, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// Renderer returns the renderer workers use, for synchronous callers.
func (o *Orchestrator) Renderer() *Renderer {
	return o.renderer
}

// Stats is a point-in-time view of pipeline load.
type Stats struct {
	Workers       int `json:"workers"`
	QueueDepth    int `json:"queue_depth"`
	QueueSize     int `json:"queue_size"`
	TrackedJobs   int `json:"tracked_jobs"`
	CachedRenders int `json:"cached_renders"`
}

// Stats returns current queue and cache usage.
func (o *Orchestrator) Stats() Stats {
	return Stats{
		Workers:       o.cfg.WorkerCount,
		QueueDepth:    len(o.queue),
		QueueSize:     cap(o.queue),
		TrackedJobs:   o.jobs.Len(),
		CachedRenders: o.cache.Len(),
	}
}
