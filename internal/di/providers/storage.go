package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/readalongapp/digitizer/internal/config"
	"github.com/readalongapp/digitizer/internal/logger"
	"github.com/readalongapp/digitizer/internal/store"
)

// JournalHandle wraps the job journal database with shutdown capability.
type JournalHandle struct {
	*store.DB
}

// Shutdown implements do.Shutdownable.
func (h *JournalHandle) Shutdown() error {
	return h.Close()
}

// ProvideJournal provides the job journal database.
func ProvideJournal(i do.Injector) (*JournalHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "journal.db")
	db, err := store.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("job journal opened", "path", dbPath)
	return &JournalHandle{DB: db}, nil
}

// ProvideJobs provides the job repository.
func ProvideJobs(i do.Injector) (*store.Jobs, error) {
	journal := do.MustInvoke[*JournalHandle](i)
	return store.NewJobs(journal.DB), nil
}
