package importer

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/supportbank/internal/model"
)

// Status is the outcome of importing one file.
type Status string

const (
	StatusImported    Status = "imported"
	StatusUnsupported Status = "unsupported"
	StatusFailed      Status = "failed"
)

// Result summarises one file import.
type Result struct {
	RunID    string
	File     string
	Format   string
	Status   Status
	Records  int
	Accepted int
	Rejected []*RecordError
	Err      error // set when Status is StatusFailed
}

// Pipeline reads files, parses them with the matching parser, and applies
// each valid record to the ledger.
type Pipeline struct {
	ledger   Ledger
	registry *Registry
	opts     Options
	log      zerolog.Logger
}

// NewPipeline creates a Pipeline writing to l.
func NewPipeline(l Ledger, reg *Registry, opts Options, log zerolog.Logger) *Pipeline {
	return &Pipeline{ledger: l, registry: reg, opts: opts, log: log}
}

// ImportFile imports one file. An unknown extension is not an error: the
// result has StatusUnsupported and nothing is applied. Read and parse
// failures return an error and leave the ledger untouched. Individual bad
// records are skipped and listed in Result.Rejected.
func (p *Pipeline) ImportFile(path string) (Result, error) {
	res := Result{RunID: uuid.NewString(), File: path}
	log := p.log.With().Str("run_id", res.RunID).Str("file", path).Logger()

	parser := p.registry.ForPath(path)
	if parser == nil {
		log.Warn().Msg("unsupported file type, skipping")
		res.Status = StatusUnsupported
		return res, nil
	}
	res.Format = parser.Format()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Msg("file could not be read")
		return failed(res, fmt.Errorf("reading %s: %w", path, err))
	}

	log.Info().Str("format", res.Format).Msg("importing file")

	records, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		log.Error().Err(err).Str("format", res.Format).Msg("file could not be parsed")
		return failed(res, fmt.Errorf("importing %s: %w", path, &FormatError{Format: res.Format, Err: err}))
	}

	res.Status = StatusImported
	res.Records = len(records)
	for i, rec := range records {
		logRecord(log.Debug(), rec).Int("record", i+1).Msg("importing transaction")

		if _, err := Apply(p.ledger, rec, p.opts); err != nil {
			logRecord(log.Warn(), rec).Int("record", i+1).Err(err).Msg("invalid record, skipping")
			res.Rejected = append(res.Rejected, &RecordError{Index: i, Record: rec, Err: err})
			continue
		}
		res.Accepted++
	}

	log.Info().
		Int("accepted", res.Accepted).
		Int("rejected", len(res.Rejected)).
		Msg("import finished")
	return res, nil
}

func failed(res Result, err error) (Result, error) {
	res.Status = StatusFailed
	res.Err = err
	return res, err
}

func logRecord(e *zerolog.Event, rec model.Record) *zerolog.Event {
	return e.
		Str("date", rec.RawDate).
		Str("from", rec.From).
		Str("to", rec.To).
		Str("amount", rec.Amount).
		Str("reason", rec.Reason)
}

// ImportDir imports every supported file in dir, in name order. A file that
// fails does not stop the others; records applied from earlier files stay.
// When move is set, successfully imported files go to dir/processed/.
func (p *Pipeline) ImportDir(dir string, move bool) ([]Result, error) {
	files, err := Scan(dir, p.registry)
	if err != nil {
		return nil, err
	}

	var results []Result
	var errs []error
	for _, f := range files {
		res, err := p.ImportFile(f.Path)
		results = append(results, res)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if move && res.Status == StatusImported {
			if err := MarkProcessed(dir, f.Name); err != nil {
				p.log.Warn().Err(err).Str("file", f.Path).Msg("could not move imported file")
				errs = append(errs, err)
			}
		}
	}
	return results, errors.Join(errs...)
}
