package config

import "github.com/urfave/cli/v3"

// Storage holds local directories for archives, the ledger and print folders
type Storage struct {
	ArchiveDirs []string
	LedgerDir   string
	PrintDir    string
	TempDir     string
}

// Flags returns CLI flags for storage configuration
func (c *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "archive-dir",
			Usage:       "Directory receiving archive ZIP files (repeatable)",
			Value:       []string{"Archivio_Locale", "Archivio_Franco"},
			Destination: &c.ArchiveDirs,
			Sources:     cli.EnvVars("PERGAMENE_ARCHIVE_DIRS"),
		},
		&cli.StringFlag{
			Name:        "ledger-dir",
			Usage:       "Directory holding the yearly Excel ledger",
			Value:       "Registri",
			Destination: &c.LedgerDir,
			Sources:     cli.EnvVars("PERGAMENE_LEDGER_DIR"),
		},
		&cli.StringFlag{
			Name:        "print-dir",
			Usage:       "Directory where print folders are created",
			Value:       "Da_Stampare",
			Destination: &c.PrintDir,
			Sources:     cli.EnvVars("PERGAMENE_PRINT_DIR"),
		},
		&cli.StringFlag{
			Name:        "temp-dir",
			Usage:       "Root for batch working directories (system default when empty)",
			Destination: &c.TempDir,
			Sources:     cli.EnvVars("PERGAMENE_TEMP_DIR"),
		},
	}
}
