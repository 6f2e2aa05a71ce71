package pdf

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
)

const gotenbergHTMLRoute = "/forms/chromium/convert/html"

// Gotenberg renders PDFs through a Gotenberg server's Chromium HTML route
type Gotenberg struct {
	endpoint  string
	assetsDir string
	client    *http.Client
}

var _ interfaces.PDFRenderer = (*Gotenberg)(nil)

// GotenbergOption is a functional option for Gotenberg
type GotenbergOption func(*Gotenberg)

// WithAssetsDir uploads every regular file of dir next to index.html so relative references resolve
func WithAssetsDir(dir string) GotenbergOption {
	return func(g *Gotenberg) {
		g.assetsDir = dir
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) GotenbergOption {
	return func(g *Gotenberg) {
		g.client = client
	}
}

// NewGotenberg creates a renderer for the server at baseURL
func NewGotenberg(baseURL string, opts ...GotenbergOption) *Gotenberg {
	g := &Gotenberg{
		endpoint: strings.TrimRight(baseURL, "/") + gotenbergHTMLRoute,
		client:   &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gotenberg) RenderPDF(ctx context.Context, html []byte) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create form file")
	}
	if _, err := part.Write(html); err != nil {
		return nil, goerr.Wrap(err, "failed to write html part")
	}

	if g.assetsDir != "" {
		if err := attachAssets(mw, g.assetsDir); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, &body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gotenberg request", goerr.V("endpoint", g.endpoint))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call gotenberg", goerr.V("endpoint", g.endpoint))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read gotenberg response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status from gotenberg",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(data)))
	}

	return data, nil
}

func attachAssets(mw *multipart.Writer, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return goerr.Wrap(err, "failed to read assets directory", goerr.V("dir", dir))
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := attachFile(mw, filepath.Join(dir, entry.Name()), entry.Name()); err != nil {
			return err
		}
	}
	return nil
}

func attachFile(mw *multipart.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return goerr.Wrap(err, "failed to open asset", goerr.V("path", path))
	}
	defer f.Close()

	part, err := mw.CreateFormFile("files", name)
	if err != nil {
		return goerr.Wrap(err, "failed to create asset part", goerr.V("name", name))
	}
	if _, err := io.Copy(part, f); err != nil {
		return goerr.Wrap(err, "failed to write asset part", goerr.V("name", name))
	}
	return nil
}
