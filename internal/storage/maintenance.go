package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

const (
	maintenanceInterval = 1 * time.Hour
	vacuumInterval      = 7 * 24 * time.Hour
)

func (s *SQLiteStore) startMaintenance(ctx context.Context, retentionDays int) {
	go s.maintenanceLoop(ctx, retentionDays)
}

func (s *SQLiteStore) maintenanceLoop(ctx context.Context, retentionDays int) {
	defer close(s.maintenanceDone)

	lastVacuum := time.Now()
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.runMaintenanceCycle(retentionDays); err != nil {
				log.Printf("ERROR: maintenance cycle failed: %v", err)
			}

			if time.Since(lastVacuum) >= vacuumInterval {
				if _, err := s.db.Exec("VACUUM"); err != nil {
					log.Printf("ERROR: VACUUM failed: %v", err)
				} else {
					lastVacuum = time.Now()
				}
			}
		}
	}
}

// Prune deletes suggestions and tool calls older than the retention
// horizon. The maintenance loop calls this hourly; it is exported so
// callers can force a pass.
func (s *SQLiteStore) Prune(retentionDays int) error {
	return s.runMaintenanceCycle(retentionDays)
}

func (s *SQLiteStore) runMaintenanceCycle(retentionDays int) error {
	retentionModifier := fmt.Sprintf("-%d days", retentionDays)

	_, err := s.db.Exec("DELETE FROM suggestions WHERE datetime(fired_at) < datetime('now', ?)", retentionModifier)
	if err != nil {
		return fmt.Errorf("pruning old suggestions: %w", err)
	}

	_, err = s.db.Exec("DELETE FROM tool_calls WHERE datetime(timestamp) < datetime('now', ?)", retentionModifier)
	if err != nil {
		return fmt.Errorf("pruning old tool calls: %w", err)
	}

	return nil
}
