package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Worker processes render jobs one at a time. Every job gets its own parse
// tree and serializer state, so workers share nothing but the cache.
type Worker struct {
	renderer *Renderer
	cache    *ResultCache
	log      *slog.Logger
}

func NewWorker(renderer *Renderer, cache *ResultCache, log *slog.Logger) *Worker {
	return &Worker{renderer: renderer, cache: cache, log: log}
}

// Process runs the full render pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// A failing handler must not take the worker goroutine down with it.
	defer func() {
		if r := recover(); r != nil {
			phase := job.Snapshot().Phase
			log.Error("render panicked", "phase", phase, "panic", r, "stack", string(debug.Stack()))
			job.AddError(fmt.Sprintf("internal error: %v", r))
			job.SetStatus(StatusFailed, phase)
		}
	}()

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "cancelled")
		return
	}

	key := CacheKey(job.Filename, job.ContentHash, job.Options)
	if out, ok := w.cache.Get(key); ok {
		log.Info("render served from cache")
		job.SetOutput(out)
		job.SetStatus(StatusCached, "done")
		return
	}

	out, err := w.renderer.Render(job.FileData(), job.Filename, job.Options, func(s JobStatus) {
		job.SetStatus(s, string(s))
	})
	if err != nil {
		phase := job.Snapshot().Phase
		log.Error("render failed", "phase", phase, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, phase)
		return
	}

	w.cache.Put(key, out)
	job.SetOutput(out)
	log.Info("render complete",
		"bytes", len(out.Latex),
		"abbreviations", out.Abbreviations,
		"warnings", len(out.Warnings),
	)
	job.SetStatus(StatusCompleted, "done")
}
