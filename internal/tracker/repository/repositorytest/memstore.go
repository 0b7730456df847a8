// Package repositorytest provides an in-memory repository.Store with transaction rollback and
// uniqueness checks, for service tests.
package repositorytest

import (
	"context"
	"sort"
	"sync"

	"golang-price-tracker/internal/entity"
	"golang-price-tracker/internal/tracker/repository"
)

// Failure points that can be armed with FailOn.
const (
	OpInsightCreate   = "insights.create"
	OpEventsFindArmed = "events.find_armed"
	OpSnapshotCreate  = "snapshots.create"
)

type state struct {
	mu sync.Mutex

	nextID    int64
	products  map[int64]entity.TrackedProduct
	snapshots map[int64]entity.PriceSnapshot
	insights  map[int64]entity.AIInsight
	events    map[int64]entity.PriceEvent

	lookupHook func()
	failures   map[string]error
}

// txn is shared by a transaction and its savepoints; each savepoint remembers its journal offset.
type txn struct {
	undo []func()
}

// MemStore is an in-memory repository.Store. Writes are visible to other callers immediately and
// are undone when their transaction (or savepoint) fails.
type MemStore struct {
	st *state
	tx *txn
}

var _ repository.Store = (*MemStore)(nil)

func New() *MemStore {
	return &MemStore{st: &state{
		products:  map[int64]entity.TrackedProduct{},
		snapshots: map[int64]entity.PriceSnapshot{},
		insights:  map[int64]entity.AIInsight{},
		events:    map[int64]entity.PriceEvent{},
		failures:  map[string]error{},
	}}
}

// SetLookupHook installs fn to run at the start of every TrackedProductRepository.FindForOwner call.
func (s *MemStore) SetLookupHook(fn func()) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.lookupHook = fn
}

// FailOn makes the named operation return err until cleared with a nil err.
func (s *MemStore) FailOn(op string, err error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err == nil {
		delete(s.st.failures, op)
		return
	}
	s.st.failures[op] = err
}

func (s *MemStore) Products() repository.TrackedProductRepository { return &productRepo{s: s} }
func (s *MemStore) Snapshots() repository.PriceSnapshotRepository { return &snapshotRepo{s: s} }
func (s *MemStore) Insights() repository.AIInsightRepository      { return &insightRepo{s: s} }
func (s *MemStore) Events() repository.PriceEventRepository       { return &eventRepo{s: s} }

func (s *MemStore) WithTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.tx == nil {
		child := &MemStore{st: s.st, tx: &txn{}}
		if err := fn(child); err != nil {
			s.rollback(child.tx, 0)
			return err
		}
		return nil
	}

	mark := len(s.tx.undo)
	if err := fn(s); err != nil {
		s.rollback(s.tx, mark)
		return err
	}
	return nil
}

func (s *MemStore) rollback(t *txn, mark int) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for i := len(t.undo) - 1; i >= mark; i-- {
		t.undo[i]()
	}
	t.undo = t.undo[:mark]
}

// record must be called with st.mu held.
func (s *MemStore) record(undo func()) {
	if s.tx != nil {
		s.tx.undo = append(s.tx.undo, undo)
	}
}

func (s *MemStore) failure(op string) error {
	return s.st.failures[op]
}

func (s *MemStore) newID() int64 {
	s.st.nextID++
	return s.st.nextID
}

// ProductList returns every stored product ordered by id.
func (s *MemStore) ProductList() []entity.TrackedProduct {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return sortedValues(s.st.products, func(p entity.TrackedProduct) int64 { return p.ID })
}

// SnapshotList returns every stored snapshot ordered by id.
func (s *MemStore) SnapshotList() []entity.PriceSnapshot {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return sortedValues(s.st.snapshots, func(p entity.PriceSnapshot) int64 { return p.ID })
}

// InsightList returns every stored insight ordered by id.
func (s *MemStore) InsightList() []entity.AIInsight {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return sortedValues(s.st.insights, func(p entity.AIInsight) int64 { return p.ID })
}

// EventList returns every stored alert ordered by id.
func (s *MemStore) EventList() []entity.PriceEvent {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return sortedValues(s.st.events, func(p entity.PriceEvent) int64 { return p.ID })
}

func sortedValues[T any](m map[int64]T, id func(T) int64) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}
