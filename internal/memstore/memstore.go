// Package memstore is an in-memory implementation of the record
// repositories, used where a SQLite file is unwanted (tests, dry runs).
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/domain"
)

// Repo keeps records of one kind, newest first.
type Repo[T any] struct {
	mu    sync.RWMutex
	items []T
	now   func() time.Time

	idOf    func(T) uuid.UUID
	ownerOf func(T) uuid.UUID
	stamp   func(T, uuid.UUID, time.Time) T
}

var (
	_ domain.EmotionRepository = (*Repo[domain.EmotionEntry])(nil)
	_ domain.ThoughtRepository = (*Repo[domain.ThoughtRecord])(nil)
)

// NewEmotions returns an empty emotion repository.
func NewEmotions() *Repo[domain.EmotionEntry] {
	return &Repo[domain.EmotionEntry]{
		now:     time.Now,
		idOf:    func(e domain.EmotionEntry) uuid.UUID { return e.ID },
		ownerOf: func(e domain.EmotionEntry) uuid.UUID { return e.OwnerID },
		stamp: func(e domain.EmotionEntry, id uuid.UUID, at time.Time) domain.EmotionEntry {
			e.ID, e.CreatedAt = id, at
			return e
		},
	}
}

// NewThoughts returns an empty thought-record repository.
func NewThoughts() *Repo[domain.ThoughtRecord] {
	return &Repo[domain.ThoughtRecord]{
		now:     time.Now,
		idOf:    func(r domain.ThoughtRecord) uuid.UUID { return r.ID },
		ownerOf: func(r domain.ThoughtRecord) uuid.UUID { return r.OwnerID },
		stamp: func(r domain.ThoughtRecord, id uuid.UUID, at time.Time) domain.ThoughtRecord {
			r.ID, r.CreatedAt = id, at
			return r
		},
	}
}

// List returns ownerID's records newest first.
func (r *Repo[T]) List(ctx context.Context, ownerID uuid.UUID) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []T{}
	for _, it := range r.items {
		if r.ownerOf(it) == ownerID {
			out = append(out, it)
		}
	}
	return out, nil
}

// Create stamps item with a fresh ID and creation time and puts it first.
func (r *Repo[T]) Create(ctx context.Context, item T) (T, error) {
	item = r.stamp(item, uuid.New(), r.now().UTC())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]T{item}, r.items...)
	return item, nil
}

// Delete removes ownerID's record id.
func (r *Repo[T]) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, it := range r.items {
		if r.idOf(it) == id && r.ownerOf(it) == ownerID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// Len returns the number of stored records across all owners.
func (r *Repo[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
