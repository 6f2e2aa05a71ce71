package interfaces

import (
	"context"

	"github.com/pergamene/pergamene/pkg/domain/model"
)

// ArchiveDestination stores a finished archive file
type ArchiveDestination interface {
	// Name identifies the destination in logs and results
	Name() string

	// Store copies the local file at path into the destination under name
	Store(ctx context.Context, path, name string) error
}

// Ledger appends archive rows to the yearly spreadsheet
type Ledger interface {
	Append(ctx context.Context, row model.LedgerRow) (string, error)
}

// ArchiveRecorder keeps a record of completed archives outside the ledger
type ArchiveRecorder interface {
	Record(ctx context.Context, result *model.ArchiveResult) error
}

// Notifier announces completed archives
type Notifier interface {
	NotifyArchive(ctx context.Context, result *model.ArchiveResult) error
}
