// Package main provides the one-shot digitization command. It runs a single
// capture through the pipeline and prints a summary.
//
// Usage: digitize [flags] <video-or-photo-dir>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	"github.com/readalongapp/digitizer/internal/config"
	"github.com/readalongapp/digitizer/internal/di"
	"github.com/readalongapp/digitizer/internal/di/providers"
	"github.com/readalongapp/digitizer/internal/id"
	"github.com/readalongapp/digitizer/internal/logger"
	"github.com/readalongapp/digitizer/internal/pipeline"
	"github.com/readalongapp/digitizer/internal/store"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap digitizer: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	cfg := do.MustInvoke[*config.Config](injector)

	sourcePath := sourceArg(flag.CommandLine, os.Args[1:])
	if sourcePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: digitize [flags] <video-or-photo-dir>")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobs := do.MustInvoke[*store.Jobs](injector)
	pipe := do.MustInvoke[*pipeline.Pipeline](injector)

	jobID := id.MustGenerate("job")
	kind := store.SourceVideo
	if info, err := os.Stat(sourcePath); err == nil && info.IsDir() {
		kind = store.SourceArchive
	}

	job := &store.Job{ID: jobID, SourcePath: sourcePath, SourceKind: kind}
	if err := jobs.Create(ctx, job); err != nil {
		log.Error("failed to journal job", "error", err)
	} else if err := jobs.MarkRunning(ctx, jobID); err != nil {
		log.Error("failed to mark job running", "error", err)
	}

	result, err := pipe.Run(ctx, jobID, sourcePath, providers.PipelineOptions(cfg))
	if err != nil {
		_ = jobs.MarkFailed(ctx, jobID, err.Error())
		log.Error("digitization failed", "job_id", jobID, "error", err)
		shutdown(injector, log)
		os.Exit(1)
	}

	if err := jobs.MarkCompleted(ctx, jobID, result.FrameCount, result.PageCount, result.ChapterCount, result.BookDir); err != nil {
		log.Error("failed to mark job completed", "error", err)
	}

	printSummary(result)
	shutdown(injector, log)
}

// sourceArg returns the first positional argument, parsing the flag set
// first if nothing else has. Config loading parses flags as a side effect of
// bootstrap, but reading positional args must not depend on that ordering.
func sourceArg(fs *flag.FlagSet, args []string) string {
	if !fs.Parsed() {
		_ = fs.Parse(args)
	}
	return fs.Arg(0)
}

func printSummary(result *pipeline.Result) {
	fmt.Printf("Job:      %s\n", result.JobID)
	fmt.Printf("Source:   %s (%s)\n", result.SourcePath, result.SourceKind)
	fmt.Printf("Frames:   %d (%d dropped)\n", result.FrameCount, result.DroppedFrames)
	fmt.Printf("Pages:    %d\n", result.PageCount)
	if result.HasChapters {
		fmt.Printf("Chapters: %d\n", result.ChapterCount)
	} else {
		fmt.Println("Chapters: none detected (single untitled chapter)")
	}
	fmt.Printf("Output:   %s\n", result.BookDir)
	fmt.Printf("Elapsed:  %s\n", result.Elapsed.Round(time.Millisecond))
}

func shutdown(injector *do.RootScope, log *logger.Logger) {
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}
}
