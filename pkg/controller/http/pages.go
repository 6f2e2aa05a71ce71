package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed pages/*.html
var pagesFS embed.FS

type pages struct {
	upload  *template.Template
	preview *template.Template
}

func newPages() (*pages, error) {
	upload, err := template.ParseFS(pagesFS, "pages/layout.html", "pages/upload.html")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse upload page")
	}
	preview, err := template.ParseFS(pagesFS, "pages/layout.html", "pages/preview.html")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse preview page")
	}
	return &pages{upload: upload, preview: preview}, nil
}

// render executes the page into a buffer first so a template failure still yields a clean 500
func render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		handleError(w, r, goerr.Wrap(err, "failed to render page", goerr.V("page", tmpl.Name())))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write page", "error", err)
	}
}
