// Package di provides dependency injection configuration for the digitizer.
package di

import (
	"github.com/samber/do/v2"

	"github.com/readalongapp/digitizer/internal/config"
	"github.com/readalongapp/digitizer/internal/di/providers"
	"github.com/readalongapp/digitizer/internal/logger"
	"github.com/readalongapp/digitizer/internal/media/frames"
	"github.com/readalongapp/digitizer/internal/pipeline"
	"github.com/readalongapp/digitizer/internal/selector"
	"github.com/readalongapp/digitizer/internal/store"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideJournal)
	do.Provide(injector, providers.ProvideJobs)

	// Media layer
	do.Provide(injector, providers.ProvideOCREngine)
	do.Provide(injector, providers.ProvideExtractor)
	do.Provide(injector, providers.ProvideSelector)
	do.Provide(injector, providers.ProvidePipeline)

	// Workers
	do.Provide(injector, providers.ProvideWatcher)

	return injector
}

// Bootstrap initializes the core services ahead of use. The watcher is left
// lazy because one-shot runs never need it.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.JournalHandle](injector)
	_ = do.MustInvoke[*store.Jobs](injector)
	_ = do.MustInvoke[*frames.Extractor](injector)
	_ = do.MustInvoke[*selector.Selector](injector)
	_ = do.MustInvoke[*pipeline.Pipeline](injector)
	return nil
}
