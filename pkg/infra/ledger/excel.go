package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/xuri/excelize/v2"
)

// Header is the first row of a new ledger
var Header = []any{"Protocollo", "Tipologia", "Totale PDF", "Facoltà", "Anno Laurea", "Data Stampa"}

// Excel appends archive rows to a yearly xlsx workbook, Pergamene_<year>.xlsx
type Excel struct {
	dir string
	mu  sync.Mutex
}

var _ interfaces.Ledger = (*Excel)(nil)

// NewExcel creates a ledger writing workbooks into dir
func NewExcel(dir string) *Excel {
	return &Excel{dir: dir}
}

// FileName returns the workbook name for a year
func FileName(year int) string {
	return fmt.Sprintf("Pergamene_%d.xlsx", year)
}

// Append adds row to the workbook of the row's year and returns the workbook path
func (l *Excel) Append(ctx context.Context, row model.LedgerRow) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return "", goerr.Wrap(err, "failed to create ledger directory", goerr.V("dir", l.dir))
	}

	path := filepath.Join(l.dir, FileName(row.PrintedAt.Year()))
	f, sheet, created, err := openOrCreate(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read ledger rows", goerr.V("path", path))
	}

	next := len(rows) + 1
	if created {
		if err := f.SetSheetRow(sheet, "A1", &Header); err != nil {
			return "", goerr.Wrap(err, "failed to write ledger header", goerr.V("path", path))
		}
		next = 2
	}

	cell, err := excelize.CoordinatesToCellName(1, next)
	if err != nil {
		return "", goerr.Wrap(err, "failed to compute ledger cell", goerr.V("row", next))
	}

	values := []any{
		row.Protocol,
		row.Category,
		row.Total,
		row.Faculty,
		row.Year,
		row.PrintedAt.Format("02/01/2006 15:04"),
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return "", goerr.Wrap(err, "failed to write ledger row", goerr.V("path", path), goerr.V("cell", cell))
	}

	if err := f.SaveAs(path); err != nil {
		return "", goerr.Wrap(err, "failed to save ledger", goerr.V("path", path))
	}

	ctxlog.From(ctx).Info("Ledger row appended", "path", path, "row", next, "protocol", row.Protocol)
	return path, nil
}

func openOrCreate(path string) (*excelize.File, string, bool, error) {
	f, err := excelize.OpenFile(path)
	if err == nil {
		return f, f.GetSheetName(f.GetActiveSheetIndex()), false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, "", false, goerr.Wrap(err, "failed to open ledger", goerr.V("path", path))
	}

	f = excelize.NewFile()
	return f, f.GetSheetName(f.GetActiveSheetIndex()), true, nil
}
