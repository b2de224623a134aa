package events

import (
	"encoding/binary"
	"math/big"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
)

// SwapExecuted is emitted once per hop, in hop order.
type SwapExecuted struct {
	Venue     common.Address
	AmountIn  *big.Int
	AmountOut *big.Int
}

// ArbitrageExecuted is emitted once per successful route, after both hops.
type ArbitrageExecuted struct {
	Profit    *big.Int
	Timestamp time.Time
}

// Event is one observable output of the executor.
type Event interface{}

// ExecutionRecord summarizes one committed arbitrage execution.
type ExecutionRecord struct {
	ID        uint64
	Asset     common.Address
	Borrowed  *big.Int
	Premium   *big.Int
	Profit    *big.Int
	Timestamp time.Time
}

// Recorder collects events emitted during a unit of work. It participates in
// rollback, so events appended inside a discarded unit of work never become
// visible. Committed execution records are additionally retained in a bounded
// cache keyed by a hash-derived ID.
type Recorder struct {
	mu      sync.RWMutex
	log     []Event
	pending []ExecutionRecord
	recent  *lru.Cache
}

// DefaultHistorySize bounds the retained execution records.
const DefaultHistorySize = 128

// NewRecorder creates a recorder retaining up to historySize committed
// executions. historySize <= 0 falls back to DefaultHistorySize.
func NewRecorder(historySize int) (*Recorder, error) {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	cache, err := lru.New(historySize)
	if err != nil {
		return nil, err
	}
	return &Recorder{recent: cache}, nil
}

// Emit appends an event to the log of the current unit of work.
func (r *Recorder) Emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, ev)
}

// Events returns a copy of all committed events in emission order.
func (r *Recorder) Events() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Event, len(r.log))
	copy(out, r.log)
	return out
}

// RecordExecution stages an execution record. It is assigned a hash-derived
// ID and moves into the bounded history only when the enclosing unit of work
// commits; a rollback drops it.
func (r *Recorder) RecordExecution(rec ExecutionRecord) ExecutionRecord {
	rec.ID = executionID(rec)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, rec)
	return rec
}

// Commit moves staged execution records into the retained history.
func (r *Recorder) Commit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.pending {
		r.recent.Add(rec.ID, rec)
	}
	r.pending = nil
}

// RecentExecutions returns retained execution records, oldest first.
func (r *Recorder) RecentExecutions() []ExecutionRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := r.recent.Keys()
	out := make([]ExecutionRecord, 0, len(keys))
	for _, key := range keys {
		if v, ok := r.recent.Peek(key); ok {
			out = append(out, v.(ExecutionRecord))
		}
	}
	return out
}

type recorderMark struct {
	log     int
	pending int
}

// Snapshot captures the current log and staging positions.
func (r *Recorder) Snapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return recorderMark{log: len(r.log), pending: len(r.pending)}
}

// Restore truncates the event log and staged records back to a previously
// captured position.
func (r *Recorder) Restore(snapshot any) {
	mark, ok := snapshot.(recorderMark)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if mark.log >= 0 && mark.log <= len(r.log) {
		r.log = r.log[:mark.log]
	}
	if mark.pending >= 0 && mark.pending <= len(r.pending) {
		r.pending = r.pending[:mark.pending]
	}
}

func executionID(rec ExecutionRecord) uint64 {
	d := xxhash.New()
	_, _ = d.Write(rec.Asset.Bytes())
	if rec.Borrowed != nil {
		_, _ = d.Write(rec.Borrowed.Bytes())
	}
	if rec.Profit != nil {
		_, _ = d.Write(rec.Profit.Bytes())
	}
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(rec.Timestamp.UnixNano()))
	_, _ = d.Write(ts[:])
	return d.Sum64()
}
