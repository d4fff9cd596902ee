package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence capability for one record kind. List returns
// the owner's records newest first; Create assigns the ID and creation time;
// Delete returns ErrNotFound when id is absent or belongs to another owner.
type Repository[T any] interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]T, error)
	Create(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// EmotionRepository stores emotion check-ins.
type EmotionRepository = Repository[EmotionEntry]

// ThoughtRepository stores thought records.
type ThoughtRepository = Repository[ThoughtRecord]
