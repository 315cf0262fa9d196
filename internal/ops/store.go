package ops

import (
	"database/sql"
	"path/filepath"

	"github.com/hpungsan/tutorhub/internal/config"
	"github.com/hpungsan/tutorhub/internal/db"
	"github.com/hpungsan/tutorhub/internal/history"
)

// ProgressFileName is the file backend's file under the base directory.
const ProgressFileName = "progress.json"

var (
	_ history.Updater = (*db.KVStore)(nil)
	_ history.Updater = (*history.FileStore)(nil)
	_ history.Updater = (*history.MemoryStore)(nil)
)

// OpenProgressStore returns the ProgressStore selected by cfg.ProgressBackend.
// The sqlite backend shares database; the file backend lives in baseDir.
func OpenProgressStore(cfg *config.Config, database *sql.DB, baseDir string) history.ProgressStore {
	backend := config.BackendSQLite
	quota := 0
	if cfg != nil {
		backend = cfg.ProgressBackend
		quota = cfg.ProgressQuotaBytes
	}

	switch backend {
	case config.BackendFile:
		return history.NewFileStore(filepath.Join(baseDir, ProgressFileName), quota)
	case config.BackendMemory:
		return history.NewMemoryStore()
	case config.BackendNone:
		return history.NopStore{}
	default:
		if database == nil {
			return history.NopStore{}
		}
		return db.NewKVStore(database)
	}
}
