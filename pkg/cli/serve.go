package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/cli/config"
	controller "github.com/pergamene/pergamene/pkg/controller/http"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/pergamene/pergamene/pkg/infra/archive"
	fsrecorder "github.com/pergamene/pergamene/pkg/infra/firestore"
	"github.com/pergamene/pergamene/pkg/infra/ledger"
	"github.com/pergamene/pergamene/pkg/infra/pdf"
	"github.com/pergamene/pergamene/pkg/repository/memory"
	"github.com/pergamene/pergamene/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg   config.Server
		storageCfg  config.Storage
		rendererCfg config.Renderer
		sentryCfg   config.Sentry
		slackCfg    config.Slack
		gcpCfg      config.GCP
	)

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, rendererCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, gcpCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting pergamene server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("storage", storageCfg),
				slog.Any("renderer", rendererCfg),
				slog.Any("sentry", sentryCfg),
				slog.Any("slack", slackCfg),
				slog.Any("gcp", gcpCfg),
			)

			if err := sentryCfg.Configure(); err != nil {
				return err
			}
			if sentryCfg.Enabled() {
				defer sentry.Flush(2 * time.Second)
			}

			docs, err := rendererCfg.Documents()
			if err != nil {
				return err
			}
			pdfRenderer, err := rendererCfg.PDF()
			if err != nil {
				return err
			}

			opts := []usecase.Option{
				usecase.WithLedger(ledger.NewExcel(storageCfg.LedgerDir)),
				usecase.WithPrintDir(storageCfg.PrintDir),
				usecase.WithTempRoot(storageCfg.TempDir),
				usecase.WithCleanupDelay(serverCfg.CleanupDelay),
				usecase.WithFooter(rendererCfg.Footer),
				usecase.WithRawNames(rendererCfg.RawNames),
			}

			var destinations []interfaces.ArchiveDestination
			for _, dir := range storageCfg.ArchiveDirs {
				destinations = append(destinations, archive.NewDirectory(dir))
			}

			storageClient, err := gcpCfg.StorageClient(ctx)
			if err != nil {
				return err
			}
			if storageClient != nil {
				defer storageClient.Close()
				destinations = append(destinations, archive.NewCloudStorage(storageClient, gcpCfg.Bucket, gcpCfg.BucketPrefix))
			}
			opts = append(opts, usecase.WithArchiveDestinations(destinations...))

			firestoreClient, err := gcpCfg.FirestoreClient(ctx)
			if err != nil {
				return err
			}
			if firestoreClient != nil {
				defer firestoreClient.Close()
				opts = append(opts, usecase.WithArchiveRecorder(
					fsrecorder.NewRecorder(firestoreClient, gcpCfg.FirestoreCollection)))
			}

			if notifier := slackCfg.Notifier(); notifier != nil {
				opts = append(opts, usecase.WithNotifier(notifier))
			}

			batchUC := usecase.NewBatch(
				memory.NewBatchRepository(),
				docs,
				pdfRenderer,
				pdf.NewMerger(),
				opts...,
			)

			serverOpts := []controller.Option{
				controller.WithAddr(serverCfg.Addr),
				controller.WithStaticDir(serverCfg.StaticDir),
				controller.WithCleanupDelay(serverCfg.CleanupDelay),
				controller.WithSentry(sentryCfg.Enabled()),
			}
			if len(serverCfg.CORSOrigins) > 0 {
				serverOpts = append(serverOpts, controller.WithCORSOrigins(serverCfg.CORSOrigins...))
			}
			if len(serverCfg.Faculties) > 0 {
				serverOpts = append(serverOpts, controller.WithFaculties(serverCfg.Faculties...))
			}

			// Create HTTP server with options
			server, err := controller.NewServer(ctx, batchUC, serverOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			err = server.Shutdown(shutdownCtx)

			// Remove every batch still waiting for its cleanup
			batchUC.Close()

			if err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
