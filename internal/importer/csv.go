package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cleared-dev/supportbank/internal/model"
)

// CSVParser parses header-driven CSV with Date, From, To, Amount and
// Narrative columns in any order.
type CSVParser struct{}

const (
	csvDateFormat = "2/1/2006" // DD/MM/YYYY, leading zeros optional
	csvColDate    = "Date"
	csvColFrom    = "From"
	csvColTo      = "To"
	csvColAmount  = "Amount"
	csvColReason  = "Narrative"
)

var csvRequired = []string{csvColDate, csvColFrom, csvColTo, csvColAmount, csvColReason}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads a CSV file with a header row and returns its records in order.
func (p *CSVParser) Parse(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols, err := csvColumns(rows[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 1 {
		return nil, nil
	}

	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, csvRecord(row, cols))
	}
	return records, nil
}

// csvColumns maps required column names to their index in the header.
func csvColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range csvRequired {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q in header", name)
		}
	}
	return cols, nil
}

func csvRecord(row []string, cols map[string]int) model.Record {
	raw := row[cols[csvColDate]]
	rec := model.Record{
		RawDate: raw,
		From:    row[cols[csvColFrom]],
		To:      row[cols[csvColTo]],
		Amount:  row[cols[csvColAmount]],
		Reason:  row[cols[csvColReason]],
	}
	date, err := time.Parse(csvDateFormat, strings.TrimSpace(raw))
	if err != nil {
		rec.DateErr = fmt.Errorf("parsing date %q: %w", raw, err)
	} else {
		rec.Date = date
	}
	return rec
}
