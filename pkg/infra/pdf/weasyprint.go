package pdf

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
)

// WeasyPrint renders PDFs by piping HTML through the weasyprint command
type WeasyPrint struct {
	binary  string
	baseURL string
}

var _ interfaces.PDFRenderer = (*WeasyPrint)(nil)

// NewWeasyPrint creates a renderer. baseURL resolves relative image and
// stylesheet references, e.g. "file:///srv/pergamene/static/".
func NewWeasyPrint(binary, baseURL string) *WeasyPrint {
	if binary == "" {
		binary = "weasyprint"
	}
	return &WeasyPrint{binary: binary, baseURL: baseURL}
}

func (w *WeasyPrint) RenderPDF(ctx context.Context, html []byte) ([]byte, error) {
	args := []string{"--quiet"}
	if w.baseURL != "" {
		args = append(args, "--base-url", w.baseURL)
	}
	args = append(args, "-", "-")

	cmd := exec.CommandContext(ctx, w.binary, args...)
	cmd.Stdin = bytes.NewReader(html)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, goerr.Wrap(err, "weasyprint failed",
			goerr.V("binary", w.binary),
			goerr.V("stderr", strings.TrimSpace(stderr.String())))
	}
	if stdout.Len() == 0 {
		return nil, goerr.New("weasyprint produced no output", goerr.V("binary", w.binary))
	}

	return stdout.Bytes(), nil
}
