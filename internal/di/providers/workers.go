package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/readalongapp/digitizer/internal/config"
	"github.com/readalongapp/digitizer/internal/errors"
	"github.com/readalongapp/digitizer/internal/logger"
	"github.com/readalongapp/digitizer/internal/watcher"
)

// WatcherHandle wraps the intake watcher with shutdown capability.
type WatcherHandle struct {
	*watcher.Watcher
}

// Shutdown implements do.Shutdownable.
func (h *WatcherHandle) Shutdown() error {
	return h.Close()
}

// ProvideWatcher provides the intake inbox watcher. Requires an inbox path;
// one-shot runs never invoke it.
func ProvideWatcher(i do.Injector) (*WatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Intake.InboxPath == "" {
		return nil, errors.Validation("inbox path is not configured")
	}
	if err := os.MkdirAll(cfg.Intake.InboxPath, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create inbox directory")
	}

	w, err := watcher.New(cfg.Intake.InboxPath, watcher.DefaultSettleDelay, log.Logger)
	if err != nil {
		return nil, err
	}
	return &WatcherHandle{Watcher: w}, nil
}
