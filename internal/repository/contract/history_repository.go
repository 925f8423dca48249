package contract

import (
	"context"

	"ai-scribe-be/internal/entity"

	"github.com/google/uuid"
)

// HistoryRepository is the append-only store of finished notes. Entries are
// immutable once created; the only mutations are deletions.
type HistoryRepository interface {
	Create(ctx context.Context, entry *entity.HistoryEntry) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error
	// FindAllByUserId returns entries strictly newest-first.
	FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.HistoryEntry, error)
	CountByUserId(ctx context.Context, userId uuid.UUID) (int64, error)
}
