package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/cli/config"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/pergamene/pergamene/pkg/domain/types"
	"github.com/pergamene/pergamene/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdCheck() *cli.Command {
	var (
		file        string
		rendererCfg config.Renderer
	)

	return &cli.Command{
		Name:      "check",
		Usage:     "Validate a data file against the template registry without generating documents",
		ArgsUsage: "--file <path>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "Data file exported from the student registry",
				Required:    true,
				Destination: &file,
			},
			&cli.StringFlag{
				Name:        "template-dir",
				Usage:       "Directory with registry.toml and templates (embedded defaults when empty)",
				Destination: &rendererCfg.TemplateDir,
				Sources:     cli.EnvVars("PERGAMENE_TEMPLATE_DIR"),
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return goerr.Wrap(err, "failed to read data file", goerr.V("file", file))
			}

			docs, err := rendererCfg.Documents()
			if err != nil {
				return err
			}

			w := c.Root().Writer
			if w == nil {
				w = os.Stdout
			}

			usable, err := checkRecords(w, docs, data)
			if err != nil {
				return err
			}
			if usable == 0 {
				return goerr.New("no usable record in data file",
					goerr.V("file", file),
					goerr.T(types.ErrTagInvalidInput))
			}
			return nil
		},
	}
}

// checkRecords prints one line per record and returns how many have a registered template
func checkRecords(w io.Writer, docs interfaces.DocumentRenderer, data []byte) (int, error) {
	records, err := usecase.ParseRecords(data)
	if err != nil {
		return 0, err
	}

	ok := color.New(color.FgGreen, color.Bold)
	skip := color.New(color.FgYellow, color.Bold)

	usable := 0
	for i, rec := range records {
		name := usecase.FormatPersonName(rec.GetOr("NOM_COG", "N/A"))
		module := rec.Get("MODULO")

		if docs.HasModule(module) {
			usable++
			_, _ = ok.Fprint(w, "OK  ")
		} else {
			_, _ = skip.Fprint(w, "SKIP")
		}
		_, _ = fmt.Fprintf(w, " %3d  %-40s  %s\n", i+1, name, module)
	}

	summary := color.New(color.Bold)
	if usable == 0 {
		summary.Add(color.FgRed)
	}
	_, _ = summary.Fprintf(w, "%d/%d records ready\n", usable, len(records))

	return usable, nil
}
