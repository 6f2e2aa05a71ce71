package model

import "time"

// ArchiveResult describes a completed archive operation
type ArchiveResult struct {
	BatchID      string    `json:"batch_id" firestore:"batch_id"`
	Name         string    `json:"name" firestore:"name"`
	ZipName      string    `json:"zip_name" firestore:"zip_name"`
	Protocol     string    `json:"protocol" firestore:"protocol"`
	Category     string    `json:"category" firestore:"category"`
	Faculty      string    `json:"faculty" firestore:"faculty"`
	Year         string    `json:"graduation_year" firestore:"graduation_year"`
	Total        int       `json:"total" firestore:"total"`
	Destinations []string  `json:"destinations" firestore:"destinations"`
	LedgerPath   string    `json:"ledger_path" firestore:"ledger_path"`
	ArchivedAt   time.Time `json:"archived_at" firestore:"archived_at"`
}

// LedgerRow is one line of the yearly spreadsheet ledger
type LedgerRow struct {
	Protocol  string
	Category  string
	Total     int
	Faculty   string
	Year      string
	PrintedAt time.Time
}

// PrintResult describes a folder prepared for printing
type PrintResult struct {
	Folder string   `json:"folder"`
	Path   string   `json:"path"`
	Files  []string `json:"files"`
}
