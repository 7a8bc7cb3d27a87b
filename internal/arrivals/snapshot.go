package arrivals

import (
	"slices"
	"sync/atomic"
	"time"
)

// Snapshot is the complete result of one poll cycle. It is never modified
// after construction; accessors hand out copies.
type Snapshot struct {
	records  []Record
	polledAt time.Time
}

// NewSnapshot takes a private copy of records.
func NewSnapshot(records []Record, polledAt time.Time) *Snapshot {
	return &Snapshot{
		records:  slices.Clone(records),
		polledAt: polledAt,
	}
}

// Records returns a copy of the arrivals in feed order.
func (s *Snapshot) Records() []Record {
	return slices.Clone(s.records)
}

// Len returns the number of arrivals.
func (s *Snapshot) Len() int {
	return len(s.records)
}

// PolledAt returns when the cycle that produced the snapshot completed.
// It is the zero time for the placeholder held before the first publish.
func (s *Snapshot) PolledAt() time.Time {
	return s.polledAt
}

// Store hands the latest complete Snapshot from the poller to the renderer
// and carries the process-wide error flag.
//
// Publish swaps the whole snapshot in one atomic store, so Read observes
// either the previous or the new snapshot and never one being assembled.
type Store struct {
	current atomic.Pointer[Snapshot]
	failed  atomic.Bool
}

// NewStore returns a store holding an empty snapshot.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(NewSnapshot(nil, time.Time{}))
	return s
}

// Publish makes snapshot the current one. A nil snapshot is ignored.
func (s *Store) Publish(snapshot *Snapshot) {
	if snapshot == nil {
		return
	}
	s.current.Store(snapshot)
}

// Read returns the current snapshot. It never returns nil.
func (s *Store) Read() *Snapshot {
	return s.current.Load()
}

// SetFailed records whether the most recent poll cycle failed.
func (s *Store) SetFailed(failed bool) {
	s.failed.Store(failed)
}

// Failed reports whether the most recent poll cycle failed.
func (s *Store) Failed() bool {
	return s.failed.Load()
}
