package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/tooncsv/internal/source"
	"github.com/dgallion1/tooncsv/internal/writer"
)

// Worker processes a single conversion job.
type Worker struct {
	sources   source.Config
	outputDir string
	cache     *ResultCache
	stats     *Stats
	log       *slog.Logger
}

func NewWorker(sources source.Config, outputDir string, cache *ResultCache, stats *Stats, log *slog.Logger) *Worker {
	return &Worker{
		sources:   sources,
		outputDir: outputDir,
		cache:     cache,
		stats:     stats,
		log:       log,
	}
}

// Process runs extract, parse and write for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()
	err := w.process(ctx, log, job)
	w.stats.Record(time.Since(start).Milliseconds(), err != nil)
	job.releaseFileData()

	if err != nil {
		if IsInputError(err) {
			log.Warn("rejected input", "error", err)
		} else {
			log.Error("conversion failed", "error", err)
		}
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, job.Snapshot().Phase)
	}
}

func (w *Worker) process(ctx context.Context, log *slog.Logger, job *Job) error {
	// Phase 1: Extract
	job.SetStatus(StatusExtracting, "extracting")
	text, err := Extract(w.sources, job.Filename, job.FileData())
	if err != nil {
		return err
	}

	key := CacheKey(text, job.BOM, job.Flat)
	job.mu.Lock()
	job.ContentHash = key
	job.mu.Unlock()
	if res, ok := w.cache.Get(key); ok {
		job.SetOutput(res)
		job.SetStatus(StatusCached, "done")
		log.Info("reused cached conversion", "zip", res.ZipPath)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Phase 2: Parse
	job.SetStatus(StatusParsing, "parsing")
	conv, err := Parse(text)
	if err != nil {
		return err
	}
	for _, d := range conv.Doc.Diagnostics {
		log.Warn("declared row count mismatch", "path", d.Path, "declared", d.Declared, "actual", d.Actual)
		job.AddDiagnostic(d.String())
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Phase 3: Write
	job.SetStatus(StatusWriting, "writing")
	out, err := writer.Write(conv.CSVs, writer.Options{
		OutDir:  filepath.Join(w.outputDir, job.ID),
		ZipName: filepath.Join(w.outputDir, job.ID+".zip"),
		BOM:     job.BOM,
		Flat:    job.Flat,
	})
	if err != nil {
		return fmt.Errorf("write tables: %w", err)
	}

	res := Result{
		OutDir:  out.OutDir,
		ZipPath: out.ZipPath,
		Tables:  len(conv.CSVs),
		Rows:    conv.Rows(),
	}
	job.SetOutput(res)
	w.cache.Add(key, res)
	job.SetStatus(StatusCompleted, "done")
	log.Info("conversion complete", "tables", res.Tables, "rows", res.Rows)
	return nil
}
