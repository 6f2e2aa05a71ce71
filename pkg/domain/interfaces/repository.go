package interfaces

import (
	"context"

	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/pergamene/pergamene/pkg/domain/types"
)

// BatchRepository holds batches while they are alive
type BatchRepository interface {
	Put(ctx context.Context, batch *model.Batch) error

	// Get returns a copy of the batch, or nil when it does not exist
	Get(ctx context.Context, id types.BatchID) (*model.Batch, error)

	// Delete removes the batch and returns it, or nil when it did not exist
	Delete(ctx context.Context, id types.BatchID) (*model.Batch, error)

	// MarkArchived flags a live batch as archived. It returns false when the
	// batch no longer exists or was already archived.
	MarkArchived(ctx context.Context, id types.BatchID) (bool, error)

	List(ctx context.Context) ([]*model.Batch, error)
}
