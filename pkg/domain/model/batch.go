package model

import (
	"strings"
	"time"

	"github.com/pergamene/pergamene/pkg/domain/types"
)

// File name prefixes of generated documents
const (
	DiplomaPrefix         = "diploma_"
	CoverPrefix           = "camicia_"
	CombinedDiplomaPrefix = "tutti_i_diplomi_"
	CombinedCoverPrefix   = "tutte_le_camicie_"

	GenerationLogName = "log_creazione_diplomi.txt"
)

// Category of degree a batch belongs to
type Category string

const (
	CategoryMaster   Category = "LaureaMagistrale"
	CategoryBachelor Category = "LaureaTriennale"
)

// Batch is the result of one upload, kept in memory until archived or expired
type Batch struct {
	ID          types.BatchID
	TempDir     string
	Files       []string // generated file names in creation order
	LogContent  string
	LogFilePath string
	FolderName  string // creation date, YYYY-MM-DD
	Archived    bool
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Metadata    BatchMetadata
}

// BatchMetadata is derived from the first record and the upload form
type BatchMetadata struct {
	Protocol       string
	Category       Category
	Faculty        string
	GraduationYear string
	Names          []string
	Total          int
	Records        []Record
}

// HasFile reports whether name was generated by this batch
func (b *Batch) HasFile(name string) bool {
	for _, f := range b.Files {
		if f == name {
			return true
		}
	}
	return false
}

// FilesWithPrefix returns generated files whose name starts with one of the prefixes
func (b *Batch) FilesWithPrefix(prefixes ...string) []string {
	var out []string
	for _, f := range b.Files {
		for _, p := range prefixes {
			if strings.HasPrefix(f, p) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// Copy returns a copy safe to mutate at the top level
func (b *Batch) Copy() *Batch {
	c := *b
	c.Files = append([]string(nil), b.Files...)
	c.Metadata.Names = append([]string(nil), b.Metadata.Names...)
	c.Metadata.Records = append([]Record(nil), b.Metadata.Records...)
	return &c
}
