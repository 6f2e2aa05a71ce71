package http

import (
	"context"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/rs/cors"
)

// MaxUploadSize caps the upload request body
const MaxUploadSize = 32 << 20

// DefaultFaculties are offered in the upload form when none are configured
var DefaultFaculties = []string{
	"Agraria",
	"Economia",
	"Giurisprudenza",
	"Ingegneria",
	"Lettere e Filosofia",
	"Medicina e Chirurgia",
	"Scienze Matematiche Fisiche e Naturali",
}

// config holds internal HTTP server configuration
type config struct {
	addr         string
	staticDir    string
	corsOrigins  []string
	sentry       bool
	faculties    []string
	cleanupDelay time.Duration
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithStaticDir serves signature and logo assets from dir under /static/
func WithStaticDir(dir string) Option {
	return func(c *config) {
		c.staticDir = dir
	}
}

// WithCORSOrigins enables CORS for the given origins
func WithCORSOrigins(origins ...string) Option {
	return func(c *config) {
		c.corsOrigins = origins
	}
}

// WithSentry enables Sentry panic and error reporting. sentry.Init must be called beforehand.
func WithSentry(enabled bool) Option {
	return func(c *config) {
		c.sentry = enabled
	}
}

// WithFaculties sets the faculties listed in the upload form
func WithFaculties(faculties ...string) Option {
	return func(c *config) {
		c.faculties = faculties
	}
}

// WithCleanupDelay sets the delay announced on the preview page
func WithCleanupDelay(delay time.Duration) Option {
	return func(c *config) {
		c.cleanupDelay = delay
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	batchUC interfaces.BatchUseCase,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr:         "localhost:8080",
		faculties:    DefaultFaculties,
		cleanupDelay: time.Hour,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	pages, err := newPages()
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)
	if cfg.sentry {
		router.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	if len(cfg.corsOrigins) > 0 {
		router.Use(cors.New(cors.Options{
			AllowedOrigins: cfg.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}).Handler)
	}

	// Health check
	router.Get("/health", handleHealth(batchUC))

	batchHandler := NewBatchHandler(batchUC, pages, cfg.faculties, cfg.cleanupDelay)
	router.Get("/", batchHandler.Index)
	router.Post("/upload-data", batchHandler.Upload)
	router.Get("/preview/{batchID}", batchHandler.Preview)
	router.Get("/preview/pdf/{batchID}/{filename}", batchHandler.PDF)
	router.Get("/preview/log/{batchID}", batchHandler.Log)
	router.Get("/download_zip/{batchID}", batchHandler.Bundle)
	router.Post("/archive/{batchID}", batchHandler.Archive)
	router.Post("/print-files/{batchID}", batchHandler.Print)

	if cfg.staticDir != "" {
		router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.staticDir))))
	}

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
