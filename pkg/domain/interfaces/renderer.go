package interfaces

import "context"

// DocumentRenderer turns template data into HTML documents
type DocumentRenderer interface {
	// HasModule reports whether a diploma template is registered for module
	HasModule(module string) bool

	// RenderDiploma renders the diploma template registered for module
	RenderDiploma(ctx context.Context, module string, data map[string]any) ([]byte, error)

	// RenderCover renders the cover sheet template
	RenderCover(ctx context.Context, data map[string]any) ([]byte, error)
}

// PDFRenderer converts an HTML document into PDF bytes
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html []byte) ([]byte, error)
}

// PDFMerger concatenates PDF files into a single output file
type PDFMerger interface {
	Merge(ctx context.Context, inputs []string, output string) error
}
