package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgallion1/tooncsv/internal/config"
	"github.com/dgallion1/tooncsv/internal/source"
)

// Orchestrator manages the conversion job queue.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	cache   *ResultCache
	stats   *Stats
	sources source.Config
	log     *slog.Logger
	cfg     config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, log *slog.Logger) (*Orchestrator, error) {
	cache, err := NewResultCache(cfg.ResultCacheSize)
	if err != nil {
		return nil, err
	}
	o := &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		cache:   cache,
		stats:   NewStats(time.Hour),
		sources: source.Config{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		log:     log,
		cfg:     cfg,
	}
	return o, nil
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.sources, o.cfg.OutputDir, o.cache, o.stats, o.log)
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
				o.Cleanup()
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
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// Cleanup drops expired jobs and deletes the output they point at. Cached
// jobs share another job's archive, so files are kept while any live job
// still references them.
func (o *Orchestrator) Cleanup() {
	for _, job := range o.jobs.Cleanup() {
		outDir, zipPath, key := job.output()
		if zipPath == "" || o.jobs.References(zipPath) {
			continue
		}
		o.cache.Remove(key)
		if err := os.RemoveAll(outDir); err != nil {
			o.log.Warn("remove job output failed", "job_id", job.ID, "error", err)
		}
		if err := os.Remove(zipPath); err != nil && !os.IsNotExist(err) {
			o.log.Warn("remove job archive failed", "job_id", job.ID, "error", err)
		}
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the conversion latency tracker.
func (o *Orchestrator) Stats() *Stats {
	return o.stats
}

// Sources returns the extractor settings shared with synchronous conversions.
func (o *Orchestrator) Sources() source.Config {
	return o.sources
}
