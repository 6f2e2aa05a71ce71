package pdf

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
)

// Merger concatenates PDF files with pdfcpu
type Merger struct{}

var _ interfaces.PDFMerger = (*Merger)(nil)

// NewMerger creates a Merger
func NewMerger() *Merger {
	return &Merger{}
}

func (m *Merger) Merge(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return goerr.New("no input files to merge", goerr.V("output", output))
	}

	if err := api.MergeCreateFile(inputs, output, false, nil); err != nil {
		return goerr.Wrap(err, "failed to merge PDF files",
			goerr.V("inputs", len(inputs)),
			goerr.V("output", output))
	}
	return nil
}
