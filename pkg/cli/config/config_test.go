package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/pergamene/pergamene/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func TestRenderer_PDF(t *testing.T) {
	tests := []struct {
		name    string
		engine  string
		wantErr bool
	}{
		{name: "weasyprint", engine: config.EngineWeasyPrint},
		{name: "gotenberg", engine: config.EngineGotenberg},
		{name: "unknown engine", engine: "wkhtmltopdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Renderer{Engine: tt.engine, WeasyPrint: "weasyprint", GotenbergURL: "http://localhost:3000"}
			r, err := cfg.PDF()
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.NotNil(t, r)
		})
	}
}

func TestRenderer_Documents(t *testing.T) {
	cfg := &config.Renderer{}
	docs, err := cfg.Documents()
	gt.NoError(t, err)
	gt.True(t, docs.HasModule("forml1v7"))

	cfg = &config.Renderer{TemplateDir: t.TempDir()}
	_, err = cfg.Documents()
	gt.Error(t, err)
}

func TestSlack_Notifier(t *testing.T) {
	cfg := &config.Slack{}
	gt.True(t, cfg.Notifier() == nil)

	cfg = &config.Slack{WebhookURL: "https://hooks.slack.com/services/T000/B000/XXX"}
	gt.NotNil(t, cfg.Notifier())
}

func TestSentry_Configure(t *testing.T) {
	cfg := &config.Sentry{}
	gt.V(t, cfg.Enabled()).Equal(false)
	gt.NoError(t, cfg.Configure())
}

func TestGCP_DisabledClients(t *testing.T) {
	cfg := &config.GCP{}

	sc, err := cfg.StorageClient(t.Context())
	gt.NoError(t, err)
	gt.True(t, sc == nil)

	fc, err := cfg.FirestoreClient(t.Context())
	gt.NoError(t, err)
	gt.True(t, fc == nil)

	cfg = &config.GCP{FirestoreDatabase: "pergamene"}
	_, err = cfg.FirestoreClient(t.Context())
	gt.Error(t, err)
}

func TestStorage_Defaults(t *testing.T) {
	var cfg config.Storage
	cmd := &cli.Command{
		Name:   "serve",
		Flags:  cfg.Flags(),
		Action: func(context.Context, *cli.Command) error { return nil },
	}
	gt.NoError(t, cmd.Run(t.Context(), []string{"serve"}))

	gt.V(t, cfg.ArchiveDirs).Equal([]string{"Archivio_Locale", "Archivio_Franco"})
	gt.V(t, cfg.LedgerDir).Equal("Registri")
	gt.V(t, cfg.PrintDir).Equal("Da_Stampare")
	gt.V(t, cfg.TempDir).Equal("")
}
