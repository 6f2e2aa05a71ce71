package usecase

import "github.com/pergamene/pergamene/pkg/domain/model"

func BuildDocumentData(rec model.Record, footer string, rawNames bool) documentData {
	return buildDocumentData(rec, dataOptions{footer: footer, rawNames: rawNames})
}

func (d documentData) DiplomaFileName() string { return d.diplomaFileName() }
func (d documentData) CoverFileName() string   { return d.coverFileName() }
