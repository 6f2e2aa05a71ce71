package usecase

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/pergamene/pergamene/pkg/domain/types"
	"github.com/pergamene/pergamene/pkg/utils/async"
)

const archiveNamesFile = "lista_nomi.txt"

// archiveName builds "<category>_<total>_<faculty>_<year>_<ddmmYYYY_HHMM>"
func archiveName(meta model.BatchMetadata, stamp string) string {
	return fmt.Sprintf("%s_%d_%s_%s_%s", meta.Category, meta.Total, meta.Faculty, meta.GraduationYear, stamp)
}

// Archive packs the diplomas of a batch into a ZIP, stores it in every
// archive destination and appends a row to the yearly ledger.
func (uc *BatchUseCase) Archive(ctx context.Context, id types.BatchID) (*model.ArchiveResult, error) {
	logger := ctxlog.From(ctx)

	uc.archiveMu.Lock()
	defer uc.archiveMu.Unlock()

	batch, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch.Archived {
		return nil, goerr.New("batch already archived",
			goerr.V("batch_id", id),
			goerr.T(types.ErrTagConflict))
	}

	meta := batch.Metadata
	now := uc.now()
	name := archiveName(meta, now.Format("02012006_1504"))
	zipName := name + ".zip"
	zipPath := filepath.Join(batch.TempDir, zipName)

	if err := writeArchiveZip(zipPath, name, batch, now); err != nil {
		return nil, err
	}

	result := &model.ArchiveResult{
		BatchID:    id.String(),
		Name:       name,
		ZipName:    zipName,
		Protocol:   meta.Protocol,
		Category:   string(meta.Category),
		Faculty:    meta.Faculty,
		Year:       meta.GraduationYear,
		Total:      meta.Total,
		ArchivedAt: now,
	}

	for _, dest := range uc.destinations {
		if err := dest.Store(ctx, zipPath, zipName); err != nil {
			return nil, goerr.Wrap(err, "failed to store archive",
				goerr.V("destination", dest.Name()),
				goerr.V("zip", zipName))
		}
		result.Destinations = append(result.Destinations, dest.Name())
		logger.Info("Archive stored", "batch_id", id, "destination", dest.Name(), "zip", zipName)
	}

	if uc.ledger != nil {
		ledgerPath, err := uc.ledger.Append(ctx, model.LedgerRow{
			Protocol:  meta.Protocol,
			Category:  string(meta.Category),
			Total:     meta.Total,
			Faculty:   meta.Faculty,
			Year:      meta.GraduationYear,
			PrintedAt: now,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to append ledger row", goerr.V("batch_id", id))
		}
		result.LedgerPath = ledgerPath
	}

	// The cleanup timer may have removed the batch while the archive was written
	marked, err := uc.repo.MarkArchived(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to mark batch archived", goerr.V("batch_id", id))
	}
	if !marked {
		return nil, goerr.New("batch expired during archive",
			goerr.V("batch_id", id),
			goerr.V("zip", zipName),
			goerr.T(types.ErrTagNotFound))
	}

	logger.Info("Batch archived",
		"batch_id", id,
		"protocol", meta.Protocol,
		"name", name,
		"destinations", result.Destinations,
	)

	uc.publishArchive(ctx, result)
	return result, nil
}

// publishArchive hands the result to the recorder and notifier without blocking the request
func (uc *BatchUseCase) publishArchive(ctx context.Context, result *model.ArchiveResult) {
	if uc.recorder != nil {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.recorder.Record(ctx, result)
		})
	}
	if uc.notifier != nil {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.notifier.NotifyArchive(ctx, result)
		})
	}
}

func writeArchiveZip(zipPath, name string, batch *model.Batch, now time.Time) (err error) {
	f, err := os.Create(zipPath)
	if err != nil {
		return goerr.Wrap(err, "failed to create archive", goerr.V("path", zipPath))
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = goerr.Wrap(cerr, "failed to close archive", goerr.V("path", zipPath))
		}
	}()

	modified := batch.CreatedAt
	zw := zip.NewWriter(f)
	for _, file := range batch.FilesWithPrefix(model.DiplomaPrefix) {
		if err := addFileToZip(zw, filepath.Join(batch.TempDir, file), path.Join(name, file), modified); err != nil {
			return err
		}
	}

	names := fmt.Sprintf("REGISTRO %s - %s\n", batch.Metadata.Category, now.Format("2006-01-02 15:04:05.000000")) +
		strings.Join(batch.Metadata.Names, "\n")
	if err := addBytesToZip(zw, []byte(names), path.Join(name, archiveNamesFile), modified); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize archive", goerr.V("path", zipPath))
	}
	return nil
}
