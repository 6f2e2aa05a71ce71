package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/pergamene/pergamene/pkg/domain/types"
)

// BatchHandler serves the upload, preview, download, archive and print endpoints
type BatchHandler struct {
	batchUC      interfaces.BatchUseCase
	pages        *pages
	faculties    []string
	cleanupDelay time.Duration
}

// NewBatchHandler creates a new BatchHandler
func NewBatchHandler(batchUC interfaces.BatchUseCase, pages *pages, faculties []string, cleanupDelay time.Duration) *BatchHandler {
	return &BatchHandler{
		batchUC:      batchUC,
		pages:        pages,
		faculties:    faculties,
		cleanupDelay: cleanupDelay,
	}
}

// PreviewFile is a diploma listed on the preview page
type PreviewFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Preview is the preview page model, also served as JSON
type Preview struct {
	BatchID             string        `json:"batch_id"`
	Files               []PreviewFile `json:"files"`
	DownloadURL         string        `json:"download_url"`
	LogURL              string        `json:"log_url"`
	ArchiveURL          string        `json:"archive_url"`
	PrintURL            string        `json:"print_url"`
	CleanupDelayMinutes float64       `json:"cleanup_delay_minutes"`
	Archived            bool          `json:"archived"`
}

func batchID(r *http.Request) types.BatchID {
	return types.BatchID(chi.URLParam(r, "batchID"))
}

// Index renders the upload form
func (h *BatchHandler) Index(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.pages.upload, struct{ Faculties []string }{Faculties: h.faculties})
}

// Upload generates a batch from the uploaded data file and redirects to its preview
func (h *BatchHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, goerr.Wrap(err, "file too large", goerr.V("limit", MaxUploadSize)), http.StatusRequestEntityTooLarge)
			return
		}
		handleError(w, r, goerr.Wrap(err, "Dati mancanti: seleziona la facoltà e carica il file.",
			goerr.T(types.ErrTagInvalidInput)))
		return
	}

	faculty := r.FormValue("facolta_selezionata")
	file, header, err := r.FormFile("data_file")
	if err != nil || strings.TrimSpace(faculty) == "" {
		handleError(w, r, goerr.New("Dati mancanti: seleziona la facoltà e carica il file.",
			goerr.T(types.ErrTagInvalidInput)))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		handleError(w, r, goerr.New("Nessun file selezionato", goerr.T(types.ErrTagInvalidInput)))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		handleError(w, r, goerr.Wrap(err, "failed to read uploaded file", goerr.V("file", header.Filename)))
		return
	}

	batch, err := h.batchUC.Generate(ctx, interfaces.GenerateInput{
		Faculty:  faculty,
		FileName: header.Filename,
		Data:     data,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	ctxlog.From(ctx).Info("Batch generated", "batch_id", batch.ID, "files", len(batch.Files))
	http.Redirect(w, r, "/preview/"+batch.ID.String(), http.StatusSeeOther)
}

// Preview lists the diplomas of a batch with download, archive and print links
func (h *BatchHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id := batchID(r)
	batch, err := h.batchUC.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	base := url.PathEscape(id.String())
	preview := &Preview{
		BatchID:             id.String(),
		Files:               []PreviewFile{},
		DownloadURL:         "/download_zip/" + base,
		LogURL:              "/preview/log/" + base,
		ArchiveURL:          "/archive/" + base,
		PrintURL:            "/print-files/" + base,
		CleanupDelayMinutes: h.cleanupDelay.Minutes(),
		Archived:            batch.Archived,
	}
	for _, name := range batch.FilesWithPrefix(model.DiplomaPrefix) {
		preview.Files = append(preview.Files, PreviewFile{
			Name: name,
			URL:  "/preview/pdf/" + base + "/" + url.PathEscape(name),
		})
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, r, http.StatusOK, preview)
		return
	}
	render(w, r, h.pages.preview, preview)
}

// PDF serves a single generated file of a batch
func (h *BatchHandler) PDF(w http.ResponseWriter, r *http.Request) {
	path, err := h.batchUC.FilePath(r.Context(), batchID(r), chi.URLParam(r, "filename"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = goerr.Wrap(err, "file already removed", goerr.T(types.ErrTagNotFound))
		}
		handleError(w, r, goerr.Wrap(err, "failed to open file", goerr.V("path", path)))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		handleError(w, r, goerr.Wrap(err, "failed to stat file", goerr.V("path", path)))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// Log serves the generation log as an attachment
func (h *BatchHandler) Log(w http.ResponseWriter, r *http.Request) {
	batch, err := h.batchUC.Get(r.Context(), batchID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(model.GenerationLogName))
	http.ServeContent(w, r, model.GenerationLogName, batch.CreatedAt, strings.NewReader(batch.LogContent))
}

// Bundle serves the ZIP of every generated file of a batch
func (h *BatchHandler) Bundle(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	name, err := h.batchUC.WriteBundle(r.Context(), batchID(r), &buf)
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", attachment(name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write bundle", "error", err)
	}
}

// Archive stores the batch diplomas and ledger row
func (h *BatchHandler) Archive(w http.ResponseWriter, r *http.Request) {
	result, err := h.batchUC.Archive(r.Context(), batchID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"message": "Archiviazione completata. Protocollo: " + result.Protocol,
		"archive": result,
	})
}

// Print prepares the print folder of a batch
func (h *BatchHandler) Print(w http.ResponseWriter, r *http.Request) {
	result, err := h.batchUC.Print(r.Context(), batchID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"message": "Cartella creata con file unici ed elenco: " + result.Folder,
		"print":   result,
	})
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}
