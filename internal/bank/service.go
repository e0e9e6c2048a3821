// Package bank ties the ledger, importer, exporter and audit log together
// behind the operations the CLI and the REPL offer.
package bank

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/supportbank/internal/auditlog"
	"github.com/cleared-dev/supportbank/internal/export"
	"github.com/cleared-dev/supportbank/internal/importer"
	"github.com/cleared-dev/supportbank/internal/ledger"
)

// ErrNoSuchAccount is returned when a report is requested for an account
// that no import has created.
var ErrNoSuchAccount = errors.New("the specified account doesn't exist")

// Options configures a Service.
type Options struct {
	Import        importer.Options
	Export        export.Options
	MoveProcessed bool
	AuditLog      string // empty disables the audit log
}

// Service is one in-memory bank session.
type Service struct {
	ledger   *ledger.Ledger
	pipeline *importer.Pipeline
	opts     Options
	log      zerolog.Logger
	now      func() time.Time
}

// New creates a Service with an empty ledger and the built-in parsers.
func New(opts Options, log zerolog.Logger) *Service {
	l := ledger.New()
	return &Service{
		ledger:   l,
		pipeline: importer.NewPipeline(l, importer.DefaultRegistry(), opts.Import, log),
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// Ledger exposes the underlying ledger for read access.
func (s *Service) Ledger() *ledger.Ledger { return s.ledger }

// ImportFile imports one file and records the outcome in the audit log.
func (s *Service) ImportFile(path string) (importer.Result, error) {
	res, err := s.pipeline.ImportFile(path)
	if auditErr := s.audit(res); auditErr != nil {
		return res, errors.Join(err, auditErr)
	}
	return res, err
}

// ImportDir imports every supported file in dir.
func (s *Service) ImportDir(dir string) ([]importer.Result, error) {
	results, err := s.pipeline.ImportDir(dir, s.opts.MoveProcessed)
	if auditErr := s.audit(results...); auditErr != nil {
		return results, errors.Join(err, auditErr)
	}
	return results, err
}

func (s *Service) audit(results ...importer.Result) error {
	if s.opts.AuditLog == "" || len(results) == 0 {
		return nil
	}
	now := s.now().UTC()
	entries := make([]auditlog.Entry, len(results))
	for i, res := range results {
		entries[i] = auditlog.FromResult(res, now)
	}
	if err := auditlog.Append(s.opts.AuditLog, entries); err != nil {
		s.log.Error().Err(err).Str("audit_log", s.opts.AuditLog).Msg("could not write audit log")
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

// ExportFile writes every transaction to path in the JSON import format and
// returns how many were written.
func (s *Service) ExportFile(path string) (int, error) {
	n, err := export.File(path, s.ledger, s.opts.Export)
	if err != nil {
		s.log.Error().Err(err).Str("file", path).Msg("export failed")
		return 0, err
	}
	s.log.Info().Str("file", path).Int("transactions", n).Msg("exported transactions")
	return n, nil
}

// Account returns the named account's balance and history.
func (s *Service) Account(name string) (ledger.AccountReport, error) {
	rep, ok := s.ledger.Report(name)
	if !ok {
		return ledger.AccountReport{}, fmt.Errorf("%w: %q", ErrNoSuchAccount, name)
	}
	return rep, nil
}

// Accounts returns every account with its balance, in creation order.
func (s *Service) Accounts() []ledger.Summary {
	return s.ledger.Accounts()
}

// Verify checks the ledger's invariants and logs any violation.
func (s *Service) Verify() []ledger.ValidationError {
	errs := s.ledger.Verify()
	for _, e := range errs {
		s.log.Error().Int("invariant", e.Invariant).Str("subject", e.Subject).Msg(e.Description)
	}
	return errs
}
