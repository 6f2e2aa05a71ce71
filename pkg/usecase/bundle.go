package usecase

import (
	"context"
	"io"
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
)

const bundleLogName = "log_creazione_documenti.txt"

// bundleFolder returns the bundle sub folder of a generated file
func bundleFolder(name string) string {
	switch {
	case strings.HasPrefix(name, model.DiplomaPrefix):
		return "pergamene"
	case strings.HasPrefix(name, model.CoverPrefix):
		return "camicie"
	case strings.HasPrefix(name, model.CombinedDiplomaPrefix):
		return "combinato"
	default:
		return "altri"
	}
}

// BundleName is the download name of the ZIP bundle of a batch
func BundleName(batch *model.Batch) string {
	return "documenti_" + batch.FolderName + ".zip"
}

// WriteBundle writes every generated file of the batch and its log as a ZIP to w
func (uc *BatchUseCase) WriteBundle(ctx context.Context, id types.BatchID, w io.Writer) (string, error) {
	batch, err := uc.Get(ctx, id)
	if err != nil {
		return "", err
	}

	zw := zip.NewWriter(w)
	modified := uc.now()

	for _, name := range batch.Files {
		arcName := path.Join(batch.FolderName, bundleFolder(name), name)
		if err := addFileToZip(zw, filepath.Join(batch.TempDir, name), arcName, modified); err != nil {
			return "", err
		}
	}

	logArc := path.Join(batch.FolderName, bundleLogName)
	if err := addFileToZip(zw, batch.LogFilePath, logArc, modified); err != nil {
		return "", err
	}

	if err := zw.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize bundle", goerr.V("batch_id", id))
	}

	ctxlog.From(ctx).Debug("Bundle written", "batch_id", id, "files", len(batch.Files))
	return BundleName(batch), nil
}

func addFileToZip(zw *zip.Writer, src, arcName string, modified time.Time) error {
	f, err := os.Open(src)
	if err != nil {
		return goerr.Wrap(err, "failed to open file for zip", goerr.V("path", src))
	}
	defer f.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     arcName,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create zip entry", goerr.V("name", arcName))
	}

	if _, err := io.Copy(w, f); err != nil {
		return goerr.Wrap(err, "failed to write zip entry", goerr.V("name", arcName))
	}
	return nil
}

func addBytesToZip(zw *zip.Writer, data []byte, arcName string, modified time.Time) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     arcName,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create zip entry", goerr.V("name", arcName))
	}
	if _, err := w.Write(data); err != nil {
		return goerr.Wrap(err, "failed to write zip entry", goerr.V("name", arcName))
	}
	return nil
}
