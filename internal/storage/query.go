package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecentSuggestions returns up to limit persisted suggestions, newest
// first.
func (s *SQLiteStore) RecentSuggestions(limit int) ([]SuggestionRecord, error) {
	if limit < 1 {
		limit = 1
	}

	rows, err := s.db.Query(`
		SELECT id, session_id, trigger, confidence, estimated_savings, suggested_query, context, fired_at
		FROM suggestions
		ORDER BY fired_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying suggestions: %w", err)
	}
	defer rows.Close()

	var out []SuggestionRecord
	for rows.Next() {
		var rec SuggestionRecord
		var contextJSON, firedAt string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Trigger, &rec.Confidence,
			&rec.EstimatedSavings, &rec.SuggestedQuery, &contextJSON, &firedAt); err != nil {
			return nil, fmt.Errorf("scanning suggestion row: %w", err)
		}
		if contextJSON != "" {
			_ = json.Unmarshal([]byte(contextJSON), &rec.Context)
		}
		if ts, err := time.Parse(time.RFC3339Nano, firedAt); err == nil {
			rec.FiredAt = ts
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SuggestionCountsByTrigger returns how many persisted suggestions each
// trigger has fired.
func (s *SQLiteStore) SuggestionCountsByTrigger() (map[string]int, error) {
	rows, err := s.db.Query("SELECT trigger, COUNT(*) FROM suggestions GROUP BY trigger")
	if err != nil {
		return nil, fmt.Errorf("counting suggestions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var trigger string
		var n int
		if err := rows.Scan(&trigger, &n); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		counts[trigger] = n
	}
	return counts, rows.Err()
}
