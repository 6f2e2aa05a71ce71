package document

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"os"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/pergamene/pergamene/pkg/domain/types"
)

//go:embed templates/*
var embedded embed.FS

const (
	registryFile = "registry.toml"
	baseFile     = "base.html"
)

// Registry maps export "modulo" values to diploma template files
type Registry struct {
	Cover   string            `toml:"cover"`
	Modules map[string]string `toml:"modules"`
}

// Renderer renders diplomas and cover sheets with html/template
type Renderer struct {
	registry Registry
	diplomas map[string]*template.Template // by file name
	cover    *template.Template
}

var _ interfaces.DocumentRenderer = (*Renderer)(nil)

type config struct {
	dir string
}

// Option is a functional option for Renderer
type Option func(*config)

// WithDir loads templates and registry.toml from dir instead of the built-in set
func WithDir(dir string) Option {
	return func(c *config) {
		c.dir = dir
	}
}

// New parses the registry and every template it references
func New(opts ...Option) (*Renderer, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	var fsys fs.FS
	if cfg.dir != "" {
		fsys = os.DirFS(cfg.dir)
	} else {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open embedded templates")
		}
		fsys = sub
	}

	raw, err := fs.ReadFile(fsys, registryFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read template registry", goerr.V("dir", cfg.dir))
	}

	var registry Registry
	if err := toml.Unmarshal(raw, &registry); err != nil {
		return nil, goerr.Wrap(err, "failed to parse template registry", goerr.V("dir", cfg.dir))
	}
	if registry.Cover == "" {
		return nil, goerr.New("template registry has no cover template", goerr.V("dir", cfg.dir))
	}

	r := &Renderer{
		registry: registry,
		diplomas: make(map[string]*template.Template),
	}

	if r.cover, err = parseTemplate(fsys, registry.Cover); err != nil {
		return nil, err
	}
	for module, file := range registry.Modules {
		if _, ok := r.diplomas[file]; ok {
			continue
		}
		t, err := parseTemplate(fsys, file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load diploma template", goerr.V("module", module))
		}
		r.diplomas[file] = t
	}

	return r, nil
}

func parseTemplate(fsys fs.FS, file string) (*template.Template, error) {
	t, err := template.New(file).ParseFS(fsys, file)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse template", goerr.V("file", file))
	}

	if _, err := fs.Stat(fsys, baseFile); err == nil {
		if t, err = t.ParseFS(fsys, baseFile); err != nil {
			return nil, goerr.Wrap(err, "failed to parse base template", goerr.V("file", baseFile))
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, goerr.Wrap(err, "failed to stat base template")
	}

	return t, nil
}

// Modules returns the registered module codes, sorted
func (r *Renderer) Modules() []string {
	out := make([]string, 0, len(r.registry.Modules))
	for m := range r.registry.Modules {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func (r *Renderer) HasModule(module string) bool {
	_, ok := r.registry.Modules[module]
	return ok
}

func (r *Renderer) RenderDiploma(ctx context.Context, module string, data map[string]any) ([]byte, error) {
	file, ok := r.registry.Modules[module]
	if !ok {
		return nil, goerr.New("no template for module",
			goerr.V("module", module),
			goerr.T(types.ErrTagNotFound))
	}
	return execute(r.diplomas[file], data)
}

func (r *Renderer) RenderCover(ctx context.Context, data map[string]any) ([]byte, error) {
	return execute(r.cover, data)
}

func execute(t *template.Template, data map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, goerr.Wrap(err, "failed to execute template", goerr.V("template", t.Name()))
	}
	return buf.Bytes(), nil
}
