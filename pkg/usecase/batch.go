package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/pergamene/pergamene/pkg/domain/types"
	"github.com/pergamene/pergamene/pkg/utils/async"
)

// DefaultCleanupDelay is how long a batch stays available after generation
const DefaultCleanupDelay = time.Hour

const folderDateLayout = "2006-01-02"

// BatchUseCase implements the batch lifecycle
type BatchUseCase struct {
	repo   interfaces.BatchRepository
	docs   interfaces.DocumentRenderer
	pdf    interfaces.PDFRenderer
	merger interfaces.PDFMerger

	destinations []interfaces.ArchiveDestination
	ledger       interfaces.Ledger
	recorder     interfaces.ArchiveRecorder
	notifier     interfaces.Notifier

	printDir     string
	tempRoot     string
	cleanupDelay time.Duration
	dataOpts     dataOptions
	now          func() time.Time

	archiveMu sync.Mutex
	timersMu  sync.Mutex
	timers    map[types.BatchID]*async.Timer
}

var _ interfaces.BatchUseCase = (*BatchUseCase)(nil)

// Option is a functional option for BatchUseCase
type Option func(*BatchUseCase)

// WithArchiveDestinations sets where archive ZIP files are stored
func WithArchiveDestinations(dests ...interfaces.ArchiveDestination) Option {
	return func(uc *BatchUseCase) {
		uc.destinations = append(uc.destinations, dests...)
	}
}

// WithLedger sets the spreadsheet ledger
func WithLedger(ledger interfaces.Ledger) Option {
	return func(uc *BatchUseCase) {
		uc.ledger = ledger
	}
}

// WithArchiveRecorder sets an additional record keeper for archives
func WithArchiveRecorder(recorder interfaces.ArchiveRecorder) Option {
	return func(uc *BatchUseCase) {
		uc.recorder = recorder
	}
}

// WithNotifier sets the archive notifier
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(uc *BatchUseCase) {
		uc.notifier = notifier
	}
}

// WithPrintDir sets the root directory of print folders
func WithPrintDir(dir string) Option {
	return func(uc *BatchUseCase) {
		uc.printDir = dir
	}
}

// WithTempRoot sets the parent directory of batch temporary directories
func WithTempRoot(dir string) Option {
	return func(uc *BatchUseCase) {
		uc.tempRoot = dir
	}
}

// WithCleanupDelay sets how long a batch is kept
func WithCleanupDelay(delay time.Duration) Option {
	return func(uc *BatchUseCase) {
		uc.cleanupDelay = delay
	}
}

// WithFooter overrides the fixed diploma footer text
func WithFooter(footer string) Option {
	return func(uc *BatchUseCase) {
		uc.dataOpts.footer = footer
	}
}

// WithRawNames disables name and place normalization
func WithRawNames(raw bool) Option {
	return func(uc *BatchUseCase) {
		uc.dataOpts.rawNames = raw
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(uc *BatchUseCase) {
		uc.now = now
	}
}

// NewBatch creates a new BatchUseCase
func NewBatch(
	repo interfaces.BatchRepository,
	docs interfaces.DocumentRenderer,
	pdf interfaces.PDFRenderer,
	merger interfaces.PDFMerger,
	opts ...Option,
) *BatchUseCase {
	uc := &BatchUseCase{
		repo:         repo,
		docs:         docs,
		pdf:          pdf,
		merger:       merger,
		cleanupDelay: DefaultCleanupDelay,
		dataOpts:     dataOptions{footer: DefaultFooter},
		now:          time.Now,
		timers:       make(map[types.BatchID]*async.Timer),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// CleanupDelay returns how long a batch is kept after generation
func (uc *BatchUseCase) CleanupDelay() time.Duration {
	return uc.cleanupDelay
}

// Generate parses the data file and renders every diploma and cover sheet into a new batch
func (uc *BatchUseCase) Generate(ctx context.Context, input interfaces.GenerateInput) (*model.Batch, error) {
	logger := ctxlog.From(ctx)

	faculty := strings.TrimSpace(input.Faculty)
	if faculty == "" || len(input.Data) == 0 {
		return nil, goerr.New("Dati mancanti: seleziona la facoltà e carica il file.",
			goerr.T(types.ErrTagInvalidInput))
	}

	records, err := ParseRecords(input.Data)
	if err != nil {
		return nil, goerr.Wrap(err, "File dati non valido o vuoto.", goerr.V("file", input.FileName))
	}
	if len(records) == 0 {
		return nil, goerr.New("File dati non valido o vuoto.",
			goerr.V("file", input.FileName),
			goerr.T(types.ErrTagInvalidInput))
	}

	now := uc.now()
	batchID := types.NewBatchID()

	tempDir, err := os.MkdirTemp(uc.tempRoot, "pergamene-batch-*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create batch directory")
	}

	logger.Info("Generating batch",
		"batch_id", batchID,
		"file", input.FileName,
		"faculty", faculty,
		"records", len(records),
		"temp_dir", tempDir,
	)

	folderName := now.Format(folderDateLayout)
	var files, logEntries []string
	used := make(map[string]struct{})

	for _, rec := range records {
		doc := buildDocumentData(rec, uc.dataOpts)

		if !uc.docs.HasModule(doc.Module) {
			logEntries = append(logEntries, fmt.Sprintf("SKIP: Modulo '%s' non trovato per %s", doc.Module, doc.DisplayName))
			continue
		}

		created, err := uc.renderRecord(ctx, tempDir, doc, used)
		files = append(files, created...)
		if err != nil {
			logger.Warn("Failed to render record", "batch_id", batchID, "name", doc.DisplayName, "error", err)
			logEntries = append(logEntries, fmt.Sprintf("ERRORE %s: %v", doc.DisplayName, err))
			continue
		}
		logEntries = append(logEntries, "OK: "+doc.DisplayName)
	}

	combined := []struct {
		prefix string
		name   string
	}{
		{model.DiplomaPrefix, model.CombinedDiplomaPrefix + folderName + ".pdf"},
		{model.CoverPrefix, model.CombinedCoverPrefix + folderName + ".pdf"},
	}
	for _, c := range combined {
		var inputs []string
		for _, f := range files {
			if strings.HasPrefix(f, c.prefix) {
				inputs = append(inputs, filepath.Join(tempDir, f))
			}
		}
		if len(inputs) == 0 {
			continue
		}

		if err := uc.merger.Merge(ctx, inputs, filepath.Join(tempDir, c.name)); err != nil {
			logger.Error("Failed to merge documents", "batch_id", batchID, "output", c.name, "error", err)
			logEntries = append(logEntries, fmt.Sprintf("ERRORE merge %s: %v", c.name, err))
			continue
		}
		files = append(files, c.name)
	}

	logContent := strings.Join(logEntries, "\n")
	logPath := filepath.Join(tempDir, model.GenerationLogName)
	if err := os.WriteFile(logPath, []byte(logContent), 0600); err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, goerr.Wrap(err, "failed to write generation log", goerr.V("path", logPath))
	}

	batch := &model.Batch{
		ID:          batchID,
		TempDir:     tempDir,
		Files:       files,
		LogContent:  logContent,
		LogFilePath: logPath,
		FolderName:  folderName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(uc.cleanupDelay),
		Metadata:    buildMetadata(records, faculty, now),
	}

	if err := uc.repo.Put(ctx, batch); err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, goerr.Wrap(err, "failed to store batch", goerr.V("batch_id", batchID))
	}
	uc.scheduleCleanup(ctx, batchID)

	logger.Info("Batch generated",
		"batch_id", batchID,
		"files", len(files),
		"log_entries", len(logEntries),
		"expires_at", batch.ExpiresAt,
	)

	return batch.Copy(), nil
}

// renderRecord writes the diploma and the cover sheet of one record and
// returns the file names written, even when it fails halfway.
func (uc *BatchUseCase) renderRecord(ctx context.Context, dir string, doc documentData, used map[string]struct{}) ([]string, error) {
	var created []string

	diplomaHTML, err := uc.docs.RenderDiploma(ctx, doc.Module, doc.Diploma)
	if err != nil {
		return created, err
	}
	diplomaName := uniqueName(doc.diplomaFileName(), used)
	if err := uc.writePDF(ctx, filepath.Join(dir, diplomaName), diplomaHTML); err != nil {
		return created, err
	}
	created = append(created, diplomaName)

	coverHTML, err := uc.docs.RenderCover(ctx, doc.Cover)
	if err != nil {
		return created, err
	}
	coverName := uniqueName(doc.coverFileName(), used)
	if err := uc.writePDF(ctx, filepath.Join(dir, coverName), coverHTML); err != nil {
		return created, err
	}
	created = append(created, coverName)

	return created, nil
}

func (uc *BatchUseCase) writePDF(ctx context.Context, path string, html []byte) error {
	pdf, err := uc.pdf.RenderPDF(ctx, html)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, pdf, 0600); err != nil {
		return goerr.Wrap(err, "failed to write PDF", goerr.V("path", path))
	}
	return nil
}

// uniqueName reserves name in used, adding a numeric suffix when it is taken
func uniqueName(name string, used map[string]struct{}) string {
	candidate := name
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		if _, ok := used[candidate]; !ok {
			used[candidate] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
}

func buildMetadata(records []model.Record, faculty string, now time.Time) model.BatchMetadata {
	first := records[0]

	protocol, _, _ := strings.Cut(strings.TrimSpace(first.Get("PROTOCOL")), "/")

	category := model.CategoryBachelor
	if strings.Contains(first.Get("CLASSE"), "LM-") {
		category = model.CategoryMaster
	}

	year := strings.ReplaceAll(strings.TrimSpace(first.Get("DATALAUR")), "/", "-")
	if year == "" {
		year = now.Format("2006")
	}

	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.GetOr("NOM_COG", "N/A")
	}

	return model.BatchMetadata{
		Protocol:       protocol,
		Category:       category,
		Faculty:        sanitizeFaculty(faculty),
		GraduationYear: year,
		Names:          names,
		Total:          len(records),
		Records:        records,
	}
}

// sanitizeFaculty makes the faculty usable inside file and folder names
func sanitizeFaculty(faculty string) string {
	r := strings.NewReplacer(" ", "_", "/", "-", "\\", "-")
	return r.Replace(strings.TrimSpace(faculty))
}

// Get returns a live batch
func (uc *BatchUseCase) Get(ctx context.Context, id types.BatchID) (*model.Batch, error) {
	batch, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get batch", goerr.V("batch_id", id))
	}
	if batch == nil {
		return nil, goerr.New("batch not found or expired",
			goerr.V("batch_id", id),
			goerr.T(types.ErrTagNotFound))
	}
	return batch, nil
}

// FilePath resolves a generated file of a batch. Only files listed in the batch are served.
func (uc *BatchUseCase) FilePath(ctx context.Context, id types.BatchID, name string) (string, error) {
	batch, err := uc.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !batch.HasFile(name) {
		return "", goerr.New("file not part of the batch",
			goerr.V("batch_id", id),
			goerr.V("file", name),
			goerr.T(types.ErrTagForbidden))
	}
	return filepath.Join(batch.TempDir, name), nil
}

// CountBatches returns the number of live batches
func (uc *BatchUseCase) CountBatches(ctx context.Context) int {
	batches, err := uc.repo.List(ctx)
	if err != nil {
		ctxlog.From(ctx).Warn("Failed to list batches", "error", err)
		return 0
	}
	return len(batches)
}

func (uc *BatchUseCase) scheduleCleanup(ctx context.Context, id types.BatchID) {
	timer := async.After(ctx, uc.cleanupDelay, func(ctx context.Context) error {
		return uc.cleanup(ctx, id)
	})

	uc.timersMu.Lock()
	uc.timers[id] = timer
	uc.timersMu.Unlock()
}

// cleanup drops the batch and removes its temporary directory
func (uc *BatchUseCase) cleanup(ctx context.Context, id types.BatchID) error {
	uc.timersMu.Lock()
	delete(uc.timers, id)
	uc.timersMu.Unlock()

	batch, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete batch", goerr.V("batch_id", id))
	}
	if batch == nil {
		return nil
	}

	if err := os.RemoveAll(batch.TempDir); err != nil {
		return goerr.Wrap(err, "failed to remove batch directory",
			goerr.V("batch_id", id),
			goerr.V("temp_dir", batch.TempDir))
	}

	ctxlog.From(ctx).Info("Batch cleaned up", "batch_id", id, "temp_dir", batch.TempDir)
	return nil
}

// Close runs every pending cleanup immediately
func (uc *BatchUseCase) Close() {
	uc.timersMu.Lock()
	timers := make([]*async.Timer, 0, len(uc.timers))
	for _, t := range uc.timers {
		timers = append(timers, t)
	}
	uc.timersMu.Unlock()

	for _, t := range timers {
		t.Flush()
	}
}
