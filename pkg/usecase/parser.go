package usecase

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/pergamene/pergamene/pkg/domain/types"
	"golang.org/x/text/encoding/charmap"
)

const (
	// headerLine is the zero-based line of the column header; earlier lines are export preamble
	headerLine = 3

	fieldDelimiter = '^'
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// ParseRecords parses a registry export: three preamble lines, a header
// line, then one record per line, fields separated by '^'. Rows whose field
// count differs from the header are dropped.
func ParseRecords(content []byte) ([]model.Record, error) {
	text, err := decodeText(content)
	if err != nil {
		return nil, err
	}

	lines := splitLines(text)
	if len(lines) <= headerLine+1 {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[headerLine:], "\n")))
	reader.Comma = fieldDelimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read header line", goerr.T(types.ErrTagInvalidInput))
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var records []model.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read data line",
				goerr.V("records_read", len(records)),
				goerr.T(types.ErrTagInvalidInput))
		}
		if len(row) != len(headers) {
			continue
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		records = append(records, model.NewRecord(headers, row))
	}

	return records, nil
}

// decodeText returns content as UTF-8, falling back to Windows-1252 for legacy exports
func decodeText(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, byteOrderMark)
	if utf8.Valid(content) {
		return string(content), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(content)
	if err != nil {
		return "", goerr.Wrap(err, "failed to decode data file", goerr.T(types.ErrTagInvalidInput))
	}
	return string(decoded), nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
