package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr         string
	StaticDir    string
	CORSOrigins  []string
	Faculties    []string
	CleanupDelay time.Duration
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("PERGAMENE_ADDR"),
		},
		&cli.StringFlag{
			Name:        "static-dir",
			Usage:       "Directory with signature and logo images served under /static/",
			Value:       "static",
			Destination: &c.StaticDir,
			Sources:     cli.EnvVars("PERGAMENE_STATIC_DIR"),
		},
		&cli.StringSliceFlag{
			Name:        "cors-origin",
			Usage:       "Allowed CORS origin (repeatable)",
			Destination: &c.CORSOrigins,
			Sources:     cli.EnvVars("PERGAMENE_CORS_ORIGINS"),
		},
		&cli.StringSliceFlag{
			Name:        "faculty",
			Usage:       "Faculty offered in the upload form (repeatable)",
			Destination: &c.Faculties,
			Sources:     cli.EnvVars("PERGAMENE_FACULTIES"),
		},
		&cli.DurationFlag{
			Name:        "cleanup-delay",
			Usage:       "How long a generated batch is kept before its files are removed",
			Value:       time.Hour,
			Destination: &c.CleanupDelay,
			Sources:     cli.EnvVars("PERGAMENE_CLEANUP_DELAY"),
		},
	}
}
