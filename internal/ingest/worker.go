package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/banshee-data/weld.report/internal/fsutil"
	"github.com/banshee-data/weld.report/internal/monitoring"
	"github.com/banshee-data/weld.report/internal/timeutil"
)

// ErrQueueFull is returned by Enqueue when the worker cannot accept a job.
var ErrQueueFull = errors.New("ingest queue full")

// DefaultQueueSize bounds the number of uploads waiting to be ingested.
const DefaultQueueSize = 16

// Job is one spooled upload awaiting ingestion.
type Job struct {
	GroupID   string
	ZipPath   string
	Submitted time.Time
}

// JobOutcome is passed to the worker's OnDone hook after every job.
type JobOutcome struct {
	Job      Job
	Result   *Result
	Err      error
	Duration time.Duration
}

// Worker spools uploaded archives and ingests them in the background, one
// at a time. A failed job marks its group failed; the spooled archive is
// removed either way.
type Worker struct {
	ingester *Ingester
	store    Store
	fs       fsutil.FileSystem
	spoolDir string
	clock    timeutil.Clock
	queue    chan Job
	logf     func(format string, v ...interface{})

	// OnDone, if set, is called after each job finishes.
	OnDone func(JobOutcome)
}

// WorkerConfig configures NewWorker. Zero values take defaults.
type WorkerConfig struct {
	FS        fsutil.FileSystem
	SpoolDir  string
	Clock     timeutil.Clock
	QueueSize int
}

// NewWorker returns a Worker that ingests through in and records failures
// in store.
func NewWorker(in *Ingester, store Store, cfg WorkerConfig) *Worker {
	if cfg.FS == nil {
		cfg.FS = fsutil.OSFileSystem{}
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	return &Worker{
		ingester: in,
		store:    store,
		fs:       cfg.FS,
		spoolDir: cfg.SpoolDir,
		clock:    cfg.Clock,
		queue:    make(chan Job, cfg.QueueSize),
		logf:     monitoring.Tagged("ingest-worker"),
	}
}

// Spool writes the archive in r to the spool directory and returns a Job
// for it. The caller enqueues the job once the group row exists.
func (w *Worker) Spool(groupID string, r io.Reader) (Job, error) {
	if err := w.fs.MkdirAll(w.spoolDir, 0o755); err != nil {
		return Job{}, fmt.Errorf("create spool dir: %w", err)
	}
	name := filepath.Join(w.spoolDir, groupID+".zip")
	f, err := w.fs.Create(name)
	if err != nil {
		return Job{}, fmt.Errorf("create spool file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		w.fs.Remove(name)
		return Job{}, fmt.Errorf("write spool file: %w", err)
	}
	if err := f.Close(); err != nil {
		w.fs.Remove(name)
		return Job{}, fmt.Errorf("close spool file: %w", err)
	}
	return Job{GroupID: groupID, ZipPath: name, Submitted: w.clock.Now()}, nil
}

// Discard removes a spooled archive that will never be enqueued.
func (w *Worker) Discard(job Job) {
	if err := w.fs.Remove(job.ZipPath); err != nil {
		w.logf("remove %s: %v", job.ZipPath, err)
	}
}

// Enqueue hands job to the worker without blocking.
func (w *Worker) Enqueue(job Job) error {
	select {
	case w.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes queued jobs until ctx is cancelled. Jobs still queued at
// that point are left on disk and their groups stay pending.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if n := len(w.queue); n > 0 {
				w.logf("stopping with %d queued jobs", n)
			}
			return
		case job := <-w.queue:
			w.Process(ctx, job)
		}
	}
}

// Process ingests a single job synchronously.
func (w *Worker) Process(ctx context.Context, job Job) JobOutcome {
	start := w.clock.Now()
	out := JobOutcome{Job: job}

	data, err := w.fs.ReadFile(job.ZipPath)
	if err == nil {
		out.Result, err = w.ingester.IngestZipBytes(ctx, data, job.GroupID)
		// Removed before OnDone runs.
		if rmErr := w.fs.Remove(job.ZipPath); rmErr != nil {
			w.logf("remove %s: %v", job.ZipPath, rmErr)
		}
	}
	out.Err = err
	out.Duration = w.clock.Since(start)

	if err != nil {
		w.logf("group %s failed after %s: %v", job.GroupID, out.Duration, err)
		if markErr := w.store.MarkFailed(job.GroupID, err); markErr != nil {
			w.logf("group %s: mark failed: %v", job.GroupID, markErr)
		}
	} else {
		w.logf("group %s ingested in %s (%d created, %d errors)",
			job.GroupID, out.Duration, out.Result.Created, out.Result.Errors)
	}

	if w.OnDone != nil {
		w.OnDone(out)
	}
	return out
}
