package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/pergamene/pergamene/pkg/infra/document"
	"github.com/pergamene/pergamene/pkg/infra/pdf"
	"github.com/urfave/cli/v3"
)

const (
	EngineWeasyPrint = "weasyprint"
	EngineGotenberg  = "gotenberg"
)

// Renderer holds document template and PDF engine configuration
type Renderer struct {
	Engine       string
	WeasyPrint   string
	GotenbergURL string
	TemplateDir  string
	AssetsDir    string
	Footer       string
	RawNames     bool
}

// Flags returns CLI flags for renderer configuration
func (c *Renderer) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "pdf-engine",
			Usage:       "HTML to PDF engine (weasyprint, gotenberg)",
			Value:       EngineWeasyPrint,
			Destination: &c.Engine,
			Sources:     cli.EnvVars("PERGAMENE_PDF_ENGINE"),
		},
		&cli.StringFlag{
			Name:        "weasyprint-bin",
			Usage:       "WeasyPrint executable",
			Value:       "weasyprint",
			Destination: &c.WeasyPrint,
			Sources:     cli.EnvVars("PERGAMENE_WEASYPRINT_BIN"),
		},
		&cli.StringFlag{
			Name:        "gotenberg-url",
			Usage:       "Gotenberg base URL",
			Value:       "http://localhost:3000",
			Destination: &c.GotenbergURL,
			Sources:     cli.EnvVars("PERGAMENE_GOTENBERG_URL"),
		},
		&cli.StringFlag{
			Name:        "template-dir",
			Usage:       "Directory with registry.toml and templates (embedded defaults when empty)",
			Destination: &c.TemplateDir,
			Sources:     cli.EnvVars("PERGAMENE_TEMPLATE_DIR"),
		},
		&cli.StringFlag{
			Name:        "assets-dir",
			Usage:       "Directory with images referenced by templates",
			Value:       "static",
			Destination: &c.AssetsDir,
			Sources:     cli.EnvVars("PERGAMENE_ASSETS_DIR"),
		},
		&cli.StringFlag{
			Name:        "footer",
			Usage:       "Footer text printed on every diploma",
			Destination: &c.Footer,
			Sources:     cli.EnvVars("PERGAMENE_FOOTER"),
		},
		&cli.BoolFlag{
			Name:        "raw-names",
			Usage:       "Print names and places as exported, without capitalization",
			Destination: &c.RawNames,
			Sources:     cli.EnvVars("PERGAMENE_RAW_NAMES"),
		},
	}
}

// Documents loads the template registry
func (c *Renderer) Documents() (*document.Renderer, error) {
	var opts []document.Option
	if c.TemplateDir != "" {
		opts = append(opts, document.WithDir(c.TemplateDir))
	}
	return document.New(opts...)
}

// PDF builds the configured HTML to PDF engine
func (c *Renderer) PDF() (interfaces.PDFRenderer, error) {
	switch c.Engine {
	case EngineWeasyPrint:
		return pdf.NewWeasyPrint(c.WeasyPrint, c.AssetsDir), nil
	case EngineGotenberg:
		return pdf.NewGotenberg(c.GotenbergURL, pdf.WithAssetsDir(c.AssetsDir)), nil
	default:
		return nil, goerr.New("unknown PDF engine", goerr.V("engine", c.Engine))
	}
}
