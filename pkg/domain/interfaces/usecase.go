package interfaces

import (
	"context"
	"io"

	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/pergamene/pergamene/pkg/domain/types"
)

// GenerateInput is an uploaded data file with the faculty chosen in the form
type GenerateInput struct {
	Faculty  string
	FileName string
	Data     []byte
}

// BatchUseCase defines the batch lifecycle: generation, preview, archive and print
type BatchUseCase interface {
	// Generate parses the data file and renders all documents into a new batch
	Generate(ctx context.Context, input GenerateInput) (*model.Batch, error)

	// Get returns a live batch
	Get(ctx context.Context, id types.BatchID) (*model.Batch, error)

	// FilePath resolves a generated file of a batch to its local path
	FilePath(ctx context.Context, id types.BatchID, name string) (string, error)

	// WriteBundle writes the ZIP bundle of every generated file to w
	WriteBundle(ctx context.Context, id types.BatchID, w io.Writer) (string, error)

	// Archive stores the diplomas in the archive destinations and the ledger
	Archive(ctx context.Context, id types.BatchID) (*model.ArchiveResult, error)

	// Print copies the combined documents into a new print folder
	Print(ctx context.Context, id types.BatchID) (*model.PrintResult, error)

	// CountBatches returns the number of live batches
	CountBatches(ctx context.Context) int
}
