package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/pergamene/pergamene/pkg/domain/types"
	"github.com/pergamene/pergamene/pkg/utils/fsutil"
)

const (
	printListName = "Elenco.txt"
	missingValue  = "N/D"
)

// Print copies the combined documents of a batch into a new folder under the
// print directory, together with the list of students it contains.
func (uc *BatchUseCase) Print(ctx context.Context, id types.BatchID) (*model.PrintResult, error) {
	batch, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if uc.printDir == "" {
		return nil, goerr.New("print directory is not configured")
	}

	timestamp := uc.now().Format("20060102_150405")
	folder := fmt.Sprintf("Stampa_%s_%s", batch.Metadata.Faculty, timestamp)
	dest := filepath.Join(uc.printDir, folder)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create print folder", goerr.V("path", dest))
	}

	result := &model.PrintResult{Folder: folder, Path: dest}
	for _, name := range batch.FilesWithPrefix(model.CombinedDiplomaPrefix, model.CombinedCoverPrefix) {
		if err := fsutil.CopyFile(filepath.Join(batch.TempDir, name), filepath.Join(dest, name)); err != nil {
			return nil, goerr.Wrap(err, "failed to copy combined document", goerr.V("file", name))
		}
		result.Files = append(result.Files, name)
	}

	listPath := filepath.Join(dest, printListName)
	if err := os.WriteFile(listPath, []byte(printList(batch.Metadata, timestamp)), 0644); err != nil {
		return nil, goerr.Wrap(err, "failed to write print list", goerr.V("path", listPath))
	}
	result.Files = append(result.Files, printListName)

	ctxlog.From(ctx).Info("Print folder created", "batch_id", id, "path", dest, "files", len(result.Files))
	return result, nil
}

func printList(meta model.BatchMetadata, timestamp string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ELENCO STAMPA - %s - %s\n", meta.Faculty, timestamp)
	b.WriteString(strings.Repeat("-", 80) + "\n")

	for _, rec := range meta.Records {
		fmt.Fprintf(&b, "MATR: %s | NOM: %s | PROT: %s | CORSO: %s\n",
			rec.GetOr("MATRI", missingValue),
			strings.ReplaceAll(rec.GetOr("NOM_COG", missingValue), "|", " "),
			rec.GetOr("PROTOCOL", missingValue),
			strings.ReplaceAll(rec.GetOr("CORSOLAU", missingValue), "|", " "),
		)
	}
	return b.String()
}
