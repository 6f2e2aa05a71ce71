package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/pergamene/pergamene/pkg/domain/types"
	"github.com/pergamene/pergamene/pkg/usecase"
)

func TestBatchUseCase_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("renders diplomas and covers", func(t *testing.T) {
		f := newFixture(t)
		batch := f.generate(t, sampleData)

		gt.V(t, batch.Files).Equal([]string{
			"diploma_Mario_Rossi_forml27v7.pdf",
			"camicia_Mario_Rossi.pdf",
			"diploma_Anna_Bianchi_forml27v7.pdf",
			"camicia_Anna_Bianchi.pdf",
			"tutti_i_diplomi_2025-07-15.pdf",
			"tutte_le_camicie_2025-07-15.pdf",
		})
		for _, name := range batch.Files {
			_, err := os.Stat(filepath.Join(batch.TempDir, name))
			gt.NoError(t, err)
		}

		gt.V(t, batch.FolderName).Equal("2025-07-15")
		gt.V(t, batch.CreatedAt).Equal(fixedNow)
		gt.V(t, batch.ExpiresAt).Equal(fixedNow.Add(time.Hour))
		gt.V(t, batch.Archived).Equal(false)
		gt.V(t, f.pdf.calls).Equal(4)
		gt.A(t, f.merger.inputs).Length(2)
		gt.A(t, f.merger.inputs[0]).Length(2)
	})

	t.Run("generation log", func(t *testing.T) {
		f := newFixture(t)
		batch := f.generate(t, sampleData)

		gt.V(t, batch.LogContent).Equal(strings.Join([]string{
			"OK: Mario Rossi",
			"OK: Anna Bianchi",
			"SKIP: Modulo 'unknown' non trovato per Luca Verdi",
		}, "\n"))

		data, err := os.ReadFile(batch.LogFilePath)
		gt.NoError(t, err)
		gt.V(t, string(data)).Equal(batch.LogContent)
		gt.V(t, filepath.Base(batch.LogFilePath)).Equal(model.GenerationLogName)
	})

	t.Run("metadata", func(t *testing.T) {
		f := newFixture(t)
		meta := f.generate(t, sampleData).Metadata

		gt.V(t, meta.Protocol).Equal("16828")
		gt.V(t, meta.Category).Equal(model.CategoryMaster)
		gt.V(t, meta.Faculty).Equal("Scienze_Agrarie")
		gt.V(t, meta.GraduationYear).Equal("2025")
		gt.V(t, meta.Total).Equal(3)
		gt.V(t, meta.Names).Equal([]string{"MARIO ROSSI", "ANNA BIANCHI", "LUCA VERDI"})
		gt.A(t, meta.Records).Length(3)
	})

	t.Run("bachelor batch with empty graduation date", func(t *testing.T) {
		f := newFixture(t)
		meta := f.generate(t, preamble+
			"NOM_COG^MODULO^PROTOCOL^DATALAUR^CLASSE\n"+
			"MARIO ROSSI^forml1v7^^^L-18\n").Metadata

		gt.V(t, meta.Category).Equal(model.CategoryBachelor)
		gt.V(t, meta.GraduationYear).Equal("2025")
		gt.V(t, meta.Protocol).Equal("")
	})

	t.Run("render failure is logged and the batch continues", func(t *testing.T) {
		f := newFixture(t)
		f.docs.failFor = "Mario Rossi"
		batch := f.generate(t, sampleData)

		gt.String(t, batch.LogContent).Contains("ERRORE Mario Rossi: template failure")
		gt.String(t, batch.LogContent).Contains("OK: Anna Bianchi")
		gt.V(t, batch.HasFile("diploma_Mario_Rossi_forml27v7.pdf")).Equal(false)
		gt.V(t, batch.HasFile("diploma_Anna_Bianchi_forml27v7.pdf")).Equal(true)
	})

	t.Run("merge failure keeps single documents", func(t *testing.T) {
		f := newFixture(t)
		f.merger.fail = true
		batch := f.generate(t, sampleData)

		gt.String(t, batch.LogContent).Contains("ERRORE merge tutti_i_diplomi_2025-07-15.pdf")
		gt.A(t, batch.FilesWithPrefix(model.CombinedDiplomaPrefix, model.CombinedCoverPrefix)).Length(0)
		gt.A(t, batch.FilesWithPrefix(model.DiplomaPrefix)).Length(2)
	})

	t.Run("duplicate names get a suffix", func(t *testing.T) {
		f := newFixture(t)
		batch := f.generate(t, preamble+
			"NOM_COG^MODULO\n"+
			"MARIO ROSSI^forml1v7\n"+
			"MARIO ROSSI^forml1v7\n")

		gt.V(t, batch.HasFile("diploma_Mario_Rossi_forml1v7.pdf")).Equal(true)
		gt.V(t, batch.HasFile("diploma_Mario_Rossi_forml1v7_2.pdf")).Equal(true)
		gt.V(t, batch.HasFile("camicia_Mario_Rossi_2.pdf")).Equal(true)
	})

	t.Run("missing faculty", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Generate(ctx, usecaseInput(" ", sampleData))
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagInvalidInput))
	})

	t.Run("no records", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Generate(ctx, usecaseInput("Economia", "a\nb\nc\nNOM_COG\n"))
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagInvalidInput))
		gt.V(t, f.uc.CountBatches(ctx)).Equal(0)
	})

	t.Run("returned batch is a copy", func(t *testing.T) {
		f := newFixture(t)
		batch := f.generate(t, sampleData)
		batch.Files = nil

		stored, err := f.uc.Get(ctx, batch.ID)
		gt.NoError(t, err)
		gt.A(t, stored.Files).Length(6)
	})
}

func TestBatchUseCase_GetAndFilePath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	batch := f.generate(t, sampleData)

	_, err := f.uc.Get(ctx, "unknown")
	gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))

	path, err := f.uc.FilePath(ctx, batch.ID, "diploma_Mario_Rossi_forml27v7.pdf")
	gt.NoError(t, err)
	gt.V(t, path).Equal(filepath.Join(batch.TempDir, "diploma_Mario_Rossi_forml27v7.pdf"))

	for _, name := range []string{"other.pdf", "../" + filepath.Base(batch.TempDir) + "/camicia_Mario_Rossi.pdf", model.GenerationLogName} {
		_, err := f.uc.FilePath(ctx, batch.ID, name)
		gt.True(t, goerr.HasTag(err, types.ErrTagForbidden))
	}

	_, err = f.uc.FilePath(ctx, "unknown", "diploma_Mario_Rossi_forml27v7.pdf")
	gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))
}

func TestBatchUseCase_Cleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("batch expires after the delay", func(t *testing.T) {
		f := newFixture(t, usecase.WithCleanupDelay(20*time.Millisecond))
		batch := f.generate(t, sampleData)
		gt.V(t, f.uc.CountBatches(ctx)).Equal(1)

		deadline := time.Now().Add(5 * time.Second)
		for f.uc.CountBatches(ctx) > 0 && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		gt.V(t, f.uc.CountBatches(ctx)).Equal(0)

		// directory removal follows the repository delete
		for time.Now().Before(deadline) {
			if _, err := os.Stat(batch.TempDir); os.IsNotExist(err) {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		_, err := os.Stat(batch.TempDir)
		gt.True(t, os.IsNotExist(err))

		_, err = f.uc.Get(ctx, batch.ID)
		gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))
	})

	t.Run("close flushes pending cleanups", func(t *testing.T) {
		f := newFixture(t)
		first := f.generate(t, sampleData)
		second := f.generate(t, sampleData)
		gt.V(t, f.uc.CountBatches(ctx)).Equal(2)

		f.uc.Close()

		gt.V(t, f.uc.CountBatches(ctx)).Equal(0)
		for _, b := range []*model.Batch{first, second} {
			_, err := os.Stat(b.TempDir)
			gt.True(t, os.IsNotExist(err))
		}
	})
}

var _ interfaces.BatchUseCase = (*usecase.BatchUseCase)(nil)
