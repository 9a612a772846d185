package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aristath/kafkanator/pkg/inequality"
)

// CSVOptions controls CSV parsing. The first record is always the header.
type CSVOptions struct {
	Comma rune // Defaults to ','
}

// ReadCSV parses a CSV stream with a header row into a Table.
func ReadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, inequality.DomainError("read-csv", "csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(header) > 0 {
		// strip a UTF-8 BOM left by spreadsheet exports
		header[0] = trimBOM(header[0])
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, inequality.DomainError("read-csv", "malformed csv: %v", err)
	}

	return New(header, records)
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
