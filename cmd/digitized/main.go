// Package main provides the entry point for the digitizer intake service.
// It watches the inbox for new captures and digitizes each one as it settles.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/readalongapp/digitizer/internal/config"
	"github.com/readalongapp/digitizer/internal/di"
	"github.com/readalongapp/digitizer/internal/di/providers"
	"github.com/readalongapp/digitizer/internal/id"
	"github.com/readalongapp/digitizer/internal/logger"
	"github.com/readalongapp/digitizer/internal/pipeline"
	"github.com/readalongapp/digitizer/internal/store"
	"github.com/readalongapp/digitizer/internal/watcher"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap digitizer: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	cfg := do.MustInvoke[*config.Config](injector)

	watcherHandle, err := do.Invoke[*providers.WatcherHandle](injector)
	if err != nil {
		log.Error("Intake watcher unavailable; set --inbox-path or INBOX_PATH", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watcherHandle.Start(ctx)
	go runIntake(ctx, injector, cfg, watcherHandle.Watcher, log)

	// Pick up captures dropped while the service was down.
	if err := watcherHandle.Watcher.Rescan(); err != nil {
		log.Error("inbox rescan failed", "error", err)
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down digitizer gracefully...")
	cancel()

	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	if journal, err := do.Invoke[*providers.JournalHandle](injector); err == nil {
		log.Info("Closing job journal...")
		if err := journal.Shutdown(); err != nil {
			log.Error("Failed to close job journal", "error", err)
		}
	}

	log.Info("Digitizer stopped")
}

// runIntake digitizes settled captures one at a time. Sequential on purpose:
// scoring and recognition already saturate the machine per job.
func runIntake(ctx context.Context, injector do.Injector, cfg *config.Config, w *watcher.Watcher, log *logger.Logger) {
	jobs := do.MustInvoke[*store.Jobs](injector)
	pipe := do.MustInvoke[*pipeline.Pipeline](injector)
	opts := providers.PipelineOptions(cfg)

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			log.Error("intake watch error", "error", err)
		case capture, ok := <-w.Events():
			if !ok {
				return
			}
			digitizeCapture(ctx, jobs, pipe, capture, opts, log)
		}
	}
}

func digitizeCapture(ctx context.Context, jobs *store.Jobs, pipe *pipeline.Pipeline, capture watcher.Capture, opts pipeline.Options, log *logger.Logger) {
	if prior, err := jobs.LatestBySource(ctx, capture.Path); err != nil {
		log.Error("failed to check journal for capture", "path", capture.Path, "error", err)
	} else if prior != nil && prior.Status == store.JobCompleted {
		log.Info("capture already digitized, skipping", "path", capture.Path, "job_id", prior.ID)
		return
	}

	jobID, err := id.Generate("job")
	if err != nil {
		log.Error("failed to generate job id", "error", err)
		return
	}

	job := &store.Job{ID: jobID, SourcePath: capture.Path, SourceKind: capture.Kind}
	if err := jobs.Create(ctx, job); err != nil {
		log.Error("failed to journal job", "job_id", jobID, "error", err)
		return
	}
	if err := jobs.MarkRunning(ctx, jobID); err != nil {
		log.Error("failed to mark job running", "job_id", jobID, "error", err)
	}

	log.Info("digitizing capture", "job_id", jobID, "path", capture.Path, "kind", capture.Kind)

	result, err := pipe.Run(ctx, jobID, capture.Path, opts)
	if err != nil {
		log.Error("digitization failed", "job_id", jobID, "error", err)
		if markErr := jobs.MarkFailed(ctx, jobID, err.Error()); markErr != nil {
			log.Error("failed to mark job failed", "job_id", jobID, "error", markErr)
		}
		return
	}

	if err := jobs.MarkCompleted(ctx, jobID, result.FrameCount, result.PageCount, result.ChapterCount, result.BookDir); err != nil {
		log.Error("failed to mark job completed", "job_id", jobID, "error", err)
	}
}
