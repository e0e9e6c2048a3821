// Package auditlog records one CSV row per imported file.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/supportbank/internal/importer"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp time.Time
	RunID     string
	File      string
	Format    string
	Status    string
	Accepted  int
	Rejected  int
	Details   string
}

// Header is the CSV header for the audit log.
const Header = "timestamp,run_id,file,format,status,accepted,rejected,details"

const (
	numFields    = 8
	colTimestamp = 0
	colRunID     = 1
	colFile      = 2
	colFormat    = 3
	colStatus    = 4
	colAccepted  = 5
	colRejected  = 6
	colDetails   = 7
)

// FromResult builds the audit entry for one import.
func FromResult(res importer.Result, now time.Time) Entry {
	e := Entry{
		Timestamp: now,
		RunID:     res.RunID,
		File:      res.File,
		Format:    res.Format,
		Status:    string(res.Status),
		Accepted:  res.Accepted,
		Rejected:  len(res.Rejected),
	}
	switch {
	case res.Err != nil:
		e.Details = res.Err.Error()
	case len(res.Rejected) > 0:
		msgs := make([]string, len(res.Rejected))
		for i, r := range res.Rejected {
			msgs[i] = r.Error()
		}
		e.Details = strings.Join(msgs, "; ")
	}
	return e
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colFile] = e.File
	row[colFormat] = e.Format
	row[colStatus] = e.Status
	row[colAccepted] = strconv.Itoa(e.Accepted)
	row[colRejected] = strconv.Itoa(e.Rejected)
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	accepted, err := strconv.Atoi(record[colAccepted])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing accepted count %q: %w", record[colAccepted], err)
	}
	rejected, err := strconv.Atoi(record[colRejected])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing rejected count %q: %w", record[colRejected], err)
	}

	return Entry{
		Timestamp: ts,
		RunID:     record[colRunID],
		File:      record[colFile],
		Format:    record[colFormat],
		Status:    record[colStatus],
		Accepted:  accepted,
		Rejected:  rejected,
		Details:   record[colDetails],
	}, nil
}

// Append writes entries to the log at path, creating the file, its
// directory, and the header if needed.
func Append(path string, entries []Entry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating audit log dir: %w", err)
		}
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from the log at path.
// Returns an empty slice if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
