package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/pergamene/pergamene/pkg/domain/types"
)

// BatchRepository keeps batches in process memory
type BatchRepository struct {
	mu      sync.RWMutex
	batches map[types.BatchID]*model.Batch
}

var _ interfaces.BatchRepository = (*BatchRepository)(nil)

// NewBatchRepository creates an empty repository
func NewBatchRepository() *BatchRepository {
	return &BatchRepository{
		batches: make(map[types.BatchID]*model.Batch),
	}
}

func (r *BatchRepository) Put(ctx context.Context, batch *model.Batch) error {
	if batch == nil || batch.ID == "" {
		return goerr.New("batch without ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[batch.ID] = batch.Copy()
	return nil
}

func (r *BatchRepository) Get(ctx context.Context, id types.BatchID) (*model.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	batch, ok := r.batches[id]
	if !ok {
		return nil, nil
	}
	return batch.Copy(), nil
}

func (r *BatchRepository) Delete(ctx context.Context, id types.BatchID) (*model.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch, ok := r.batches[id]
	if !ok {
		return nil, nil
	}
	delete(r.batches, id)
	return batch, nil
}

func (r *BatchRepository) MarkArchived(ctx context.Context, id types.BatchID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch, ok := r.batches[id]
	if !ok || batch.Archived {
		return false, nil
	}
	batch.Archived = true
	return true, nil
}

// List returns all batches ordered by creation time
func (r *BatchRepository) List(ctx context.Context) ([]*model.Batch, error) {
	r.mu.RLock()
	out := make([]*model.Batch, 0, len(r.batches))
	for _, b := range r.batches {
		out = append(out, b.Copy())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
