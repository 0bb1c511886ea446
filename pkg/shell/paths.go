package shell

import (
	"os"
	"path/filepath"

	"src.rook.sh/pkg/env"
)

// historyDBPath returns the path of the history database, creating its
// directory if needed. ROOK_HISTORY_DB and -db override the default location
// in the data directory.
func historyDBPath(settings env.Settings) (string, error) {
	db := settings.HistoryDB
	if db == "" {
		dir, err := env.DataDir()
		if err != nil {
			return "", err
		}
		db = filepath.Join(dir, "history.db")
	}
	if err := os.MkdirAll(filepath.Dir(db), 0700); err != nil {
		return "", err
	}
	return db, nil
}
