package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nixlim/cc-scout/internal/detector"
)

const (
	writeChannelSize = 1000
	batchSize        = 50
	flushInterval    = 100 * time.Millisecond
)

// Store is the persistence surface the rest of the program depends on.
// The nop implementation is substituted when no database is configured.
type Store interface {
	SaveSuggestion(sessionID string, s detector.Suggestion, firedAt time.Time)
	SaveToolCall(sessionID string, c detector.ToolCall)
	RecentSuggestions(limit int) ([]SuggestionRecord, error)
	Close() error
}

// SuggestionRecord is a persisted suggestion as read back from the
// database.
type SuggestionRecord struct {
	ID               string
	SessionID        string
	Trigger          string
	Confidence       string
	EstimatedSavings string
	SuggestedQuery   string
	Context          map[string]any
	FiredAt          time.Time
}

type suggestionRow struct {
	ID               string
	SessionID        string
	Trigger          string
	Confidence       string
	EstimatedSavings string
	SuggestedQuery   string
	ContextJSON      string
	FiredAt          string
}

type toolCallRow struct {
	SessionID  string
	ToolName   string
	ArgsJSON   string
	ResultKind string
	ResultSize int
	Timestamp  string
}

type writeOp struct {
	opType     string
	suggestion *suggestionRow
	call       *toolCallRow
}

// SQLiteStore persists suggestions and tool calls through a background
// writer goroutine that batches operations into transactions.
type SQLiteStore struct {
	db              *sql.DB
	writeChan       chan writeOp
	droppedWrites   atomic.Int64
	doneChan        chan struct{}
	closed          atomic.Bool
	cancelMaint     context.CancelFunc
	maintenanceDone chan struct{}
}

func NewSQLiteStore(dbPath string, retentionDays int) (*SQLiteStore, error) {
	return newSQLiteStoreWithChannelSize(dbPath, writeChannelSize, retentionDays)
}

func newSQLiteStoreWithChannelSize(dbPath string, chanSize, retentionDays int) (*SQLiteStore, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	store := &SQLiteStore{
		db:              db,
		writeChan:       make(chan writeOp, chanSize),
		doneChan:        make(chan struct{}),
		cancelMaint:     cancel,
		maintenanceDone: make(chan struct{}),
	}

	go store.writerLoop()
	store.startMaintenance(ctx, retentionDays)

	return store, nil
}

// SaveSuggestion queues a fired suggestion for persistence. Each
// suggestion gets a fresh UUID as its stored identity.
func (s *SQLiteStore) SaveSuggestion(sessionID string, sg detector.Suggestion, firedAt time.Time) {
	row := &suggestionRow{
		ID:               uuid.NewString(),
		SessionID:        sessionID,
		Trigger:          string(sg.Trigger),
		Confidence:       string(sg.Confidence),
		EstimatedSavings: sg.EstimatedSavings,
		SuggestedQuery:   sg.SuggestedQuery,
		FiredAt:          firedAt.UTC().Format(time.RFC3339Nano),
	}
	if len(sg.Context) > 0 {
		if data, err := json.Marshal(sg.Context); err == nil {
			row.ContextJSON = string(data)
		}
	}

	s.sendWrite(writeOp{opType: "suggestion", suggestion: row})
}

// SaveToolCall queues an observed tool call for persistence. Result
// text is reduced to its size; raw content is never stored.
func (s *SQLiteStore) SaveToolCall(sessionID string, c detector.ToolCall) {
	row := &toolCallRow{
		SessionID: sessionID,
		ToolName:  c.Name,
		Timestamp: c.Time.UTC().Format(time.RFC3339Nano),
	}
	if len(c.Args) > 0 {
		if data, err := json.Marshal(c.Args); err == nil {
			row.ArgsJSON = string(data)
		}
	}
	switch {
	case !c.Result.Present():
		row.ResultKind = "absent"
	case c.Result.Text() != "":
		row.ResultKind = "text"
		row.ResultSize = len(c.Result.Text())
	default:
		row.ResultKind = "items"
		row.ResultSize = c.Result.ItemCount()
	}

	s.sendWrite(writeOp{opType: "toolCall", call: row})
}

func (s *SQLiteStore) sendWrite(op writeOp) {
	if s.closed.Load() {
		return
	}
	defer func() { _ = recover() }()
	select {
	case s.writeChan <- op:
	default:
		s.droppedWrites.Add(1)
		log.Printf("WARNING: SQLite write channel full, dropped write (type=%s)", op.opType)
	}
}

func (s *SQLiteStore) DroppedWrites() int64 {
	return s.droppedWrites.Load()
}

func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	// Stop maintenance before closing the channel so the prune loop
	// never races a closed database.
	s.cancelMaint()
	select {
	case <-s.maintenanceDone:
	case <-time.After(30 * time.Second):
		log.Printf("WARNING: maintenance goroutine did not stop within 30s")
	}

	close(s.writeChan)

	select {
	case <-s.doneChan:
	case <-time.After(10 * time.Second):
		log.Printf("ERROR: failed to drain writes within 10s, data may be lost")
	}

	return s.db.Close()
}

func (s *SQLiteStore) writerLoop() {
	defer close(s.doneChan)

	batch := make([]writeOp, 0, batchSize)
	flushTimer := time.NewTimer(flushInterval)
	defer flushTimer.Stop()

	for {
		select {
		case op, ok := <-s.writeChan:
			if !ok {
				if len(batch) > 0 {
					s.flushBatch(batch)
				}
				return
			}

			batch = append(batch, op)

			if len(batch) >= batchSize {
				s.flushBatch(batch)
				batch = batch[:0]
				flushTimer.Reset(flushInterval)
			}

		case <-flushTimer.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
			flushTimer.Reset(flushInterval)
		}
	}
}

func (s *SQLiteStore) flushBatch(batch []writeOp) {
	tx, err := s.db.Begin()
	if err != nil {
		log.Printf("ERROR: failed to begin transaction: %v", err)
		return
	}
	defer func() { _ = tx.Rollback() }()

	for _, op := range batch {
		if err := s.executeOp(tx, op); err != nil {
			log.Printf("ERROR: failed to execute write op (type=%s): %v", op.opType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("ERROR: failed to commit transaction: %v", err)
	}
}

func (s *SQLiteStore) executeOp(tx *sql.Tx, op writeOp) error {
	switch op.opType {
	case "suggestion":
		return s.writeSuggestion(tx, op.suggestion)
	case "toolCall":
		return s.writeToolCall(tx, op.call)
	default:
		return fmt.Errorf("unknown op type: %s", op.opType)
	}
}

func (s *SQLiteStore) writeSuggestion(tx *sql.Tx, row *suggestionRow) error {
	_, err := tx.Exec(`
		INSERT INTO suggestions (id, session_id, trigger, confidence, estimated_savings, suggested_query, context, fired_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, row.ID, row.SessionID, row.Trigger, row.Confidence, row.EstimatedSavings, row.SuggestedQuery, row.ContextJSON, row.FiredAt)
	return err
}

func (s *SQLiteStore) writeToolCall(tx *sql.Tx, row *toolCallRow) error {
	_, err := tx.Exec(`
		INSERT INTO tool_calls (session_id, tool_name, args, result_kind, result_size, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, row.SessionID, row.ToolName, row.ArgsJSON, row.ResultKind, row.ResultSize, row.Timestamp)
	return err
}

// Flush blocks until every write queued so far has been committed. Used
// by tests and the headless exit path.
func (s *SQLiteStore) Flush() {
	// The writer commits batches at flushInterval; waiting two
	// intervals guarantees the current batch has landed.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(s.writeChan) == 0 {
			time.Sleep(2 * flushInterval)
			return
		}
		time.Sleep(flushInterval)
	}
}
