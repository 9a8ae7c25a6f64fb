// Package journal records codec runs in a pebble database keyed by KSUID.
// KSUIDs sort by creation time, so key order is run order.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// ErrNotFound is returned when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

// Status of a finished run
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Operations recorded in Run.Operation.
const (
	OperationDecode = "decode"
	OperationEncode = "encode"
)

// Run is one decode or encode invocation
type Run struct {
	ID           ksuid.KSUID   `json:"id"`
	Operation    string        `json:"operation"`
	Input        string        `json:"input"`
	Output       string        `json:"output"`
	HeaderBytes  int           `json:"header_bytes"`
	ContentBytes int           `json:"content_bytes"`
	Status       Status        `json:"status"`
	Error        string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}

// Journal stores runs
type Journal struct {
	db *pebble.DB
}

// Open opens or creates the journal database in dir
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create journal dir: %w", err)
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return &Journal{db: db}, nil
}

var (
	idMu   sync.Mutex
	lastID ksuid.KSUID
)

// NewRunID returns a fresh run ID. IDs from one process are strictly
// increasing, even within the same second.
func NewRunID() ksuid.KSUID {
	idMu.Lock()
	defer idMu.Unlock()

	id := ksuid.New()
	if ksuid.Compare(id, lastID) <= 0 {
		id = lastID.Next()
	}
	lastID = id
	return id
}

// Record stores run, assigning an ID if it has none, and returns the ID.
func (j *Journal) Record(run Run) (ksuid.KSUID, error) {
	if run.ID == ksuid.Nil {
		run.ID = NewRunID()
	}

	data, err := json.Marshal(run)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := j.db.Set(run.ID.Bytes(), data, pebble.Sync); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to write run %s: %w", run.ID, err)
	}
	return run.ID, nil
}

// Get returns the run with the given ID
func (j *Journal) Get(id ksuid.KSUID) (*Run, error) {
	data, closer, err := j.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", id, err)
	}
	return &run, nil
}

// List returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (j *Journal) List(limit int) ([]Run, error) {
	iter, err := j.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate journal: %w", err)
	}

	runs := make([]Run, 0)
	for valid := iter.Last(); valid; valid = iter.Prev() {
		if limit > 0 && len(runs) >= limit {
			break
		}
		var run Run
		if err := json.Unmarshal(iter.Value(), &run); err != nil {
			_ = iter.Close()
			return nil, fmt.Errorf("failed to unmarshal run %x: %w", iter.Key(), err)
		}
		runs = append(runs, run)
	}

	if err := iter.Close(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Delete removes a run
func (j *Journal) Delete(id ksuid.KSUID) error {
	return j.db.Delete(id.Bytes(), pebble.Sync)
}

// Close closes the underlying database
func (j *Journal) Close() error {
	return j.db.Close()
}
