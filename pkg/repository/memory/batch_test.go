package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/pergamene/pergamene/pkg/domain/types"
	"github.com/pergamene/pergamene/pkg/repository/memory"
)

func TestBatchRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("get returns stored batch as a copy", func(t *testing.T) {
		repo := memory.NewBatchRepository()
		batch := &model.Batch{
			ID:    types.NewBatchID(),
			Files: []string{"diploma_Mario_Rossi_forml1v7.pdf"},
		}
		gt.NoError(t, repo.Put(ctx, batch))

		got, err := repo.Get(ctx, batch.ID)
		gt.NoError(t, err)
		gt.NotNil(t, got)
		gt.A(t, got.Files).Length(1)

		got.Files[0] = "tampered.pdf"
		got.Archived = true

		again, err := repo.Get(ctx, batch.ID)
		gt.NoError(t, err)
		gt.V(t, again.Files[0]).Equal("diploma_Mario_Rossi_forml1v7.pdf")
		gt.V(t, again.Archived).Equal(false)
	})

	t.Run("missing batch returns nil without error", func(t *testing.T) {
		repo := memory.NewBatchRepository()
		got, err := repo.Get(ctx, types.BatchID("unknown"))
		gt.NoError(t, err)
		gt.True(t, got == nil)
	})

	t.Run("delete removes and returns batch", func(t *testing.T) {
		repo := memory.NewBatchRepository()
		batch := &model.Batch{ID: types.NewBatchID(), TempDir: "/tmp/x"}
		gt.NoError(t, repo.Put(ctx, batch))

		deleted, err := repo.Delete(ctx, batch.ID)
		gt.NoError(t, err)
		gt.V(t, deleted.TempDir).Equal("/tmp/x")

		deleted, err = repo.Delete(ctx, batch.ID)
		gt.NoError(t, err)
		gt.True(t, deleted == nil)
	})

	t.Run("mark archived only flags a live batch once", func(t *testing.T) {
		repo := memory.NewBatchRepository()
		batch := &model.Batch{ID: types.NewBatchID()}
		gt.NoError(t, repo.Put(ctx, batch))

		marked, err := repo.MarkArchived(ctx, batch.ID)
		gt.NoError(t, err)
		gt.True(t, marked)

		got, err := repo.Get(ctx, batch.ID)
		gt.NoError(t, err)
		gt.True(t, got.Archived)

		marked, err = repo.MarkArchived(ctx, batch.ID)
		gt.NoError(t, err)
		gt.V(t, marked).Equal(false)

		_, err = repo.Delete(ctx, batch.ID)
		gt.NoError(t, err)

		marked, err = repo.MarkArchived(ctx, batch.ID)
		gt.NoError(t, err)
		gt.V(t, marked).Equal(false)

		got, err = repo.Get(ctx, batch.ID)
		gt.NoError(t, err)
		gt.True(t, got == nil)
	})

	t.Run("put rejects batch without ID", func(t *testing.T) {
		repo := memory.NewBatchRepository()
		gt.Error(t, repo.Put(ctx, &model.Batch{}))
	})

	t.Run("list is ordered by creation time", func(t *testing.T) {
		repo := memory.NewBatchRepository()
		base := time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC)
		for _, offset := range []int{3, 1, 2} {
			gt.NoError(t, repo.Put(ctx, &model.Batch{
				ID:        types.NewBatchID(),
				CreatedAt: base.Add(time.Duration(offset) * time.Minute),
			}))
		}

		list, err := repo.List(ctx)
		gt.NoError(t, err)
		gt.A(t, list).Length(3)
		gt.True(t, list[0].CreatedAt.Before(list[1].CreatedAt))
		gt.True(t, list[1].CreatedAt.Before(list[2].CreatedAt))
	})

	t.Run("concurrent access", func(t *testing.T) {
		repo := memory.NewBatchRepository()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				batch := &model.Batch{ID: types.NewBatchID()}
				_ = repo.Put(ctx, batch)
				_, _ = repo.Get(ctx, batch.ID)
				_, _ = repo.List(ctx)
				_, _ = repo.Delete(ctx, batch.ID)
			}()
		}
		wg.Wait()

		list, err := repo.List(ctx)
		gt.NoError(t, err)
		gt.A(t, list).Length(0)
	})
}
