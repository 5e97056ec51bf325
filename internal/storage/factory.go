package storage

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nixlim/cc-scout/internal/config"
	"github.com/nixlim/cc-scout/internal/detector"
)

// NewStore returns a persistent store when a db_path is configured, or
// a no-op store otherwise. The boolean reports whether persistence is
// active; storage problems degrade to the no-op store with a warning
// rather than failing startup.
func NewStore(cfg config.StorageConfig) (Store, bool, error) {
	if cfg.DBPath == "" {
		return NopStore{}, false, nil
	}

	dbPath := expandTilde(cfg.DBPath)

	store, err := NewSQLiteStore(dbPath, cfg.RetentionDays)
	if err != nil {
		log.Printf("WARNING: SQLite storage unavailable (%v), suggestions will not be persisted", err)
		return NopStore{}, false, nil
	}

	return store, true, nil
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// NopStore discards all writes and reads back nothing.
type NopStore struct{}

func (NopStore) SaveSuggestion(string, detector.Suggestion, time.Time) {}

func (NopStore) SaveToolCall(string, detector.ToolCall) {}

func (NopStore) RecentSuggestions(int) ([]SuggestionRecord, error) { return nil, nil }

func (NopStore) Close() error { return nil }
