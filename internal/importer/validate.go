package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/supportbank/internal/model"
	"github.com/cleared-dev/supportbank/internal/money"
)

// Reasons a single record is skipped. Amount problems are reported with the
// money package's errors (ErrNotANumber, ErrNonPositive, ErrOutOfRange).
var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrMissingAccount = errors.New("missing account name")
	ErrSelfPayment    = errors.New("source and destination are the same account")
)

// RecordError explains why one record was skipped.
type RecordError struct {
	Index  int // zero-based position in the file
	Record model.Record
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index+1, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// FormatError means the file could not be parsed as its format at all.
type FormatError struct {
	Format string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed %s: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Options controls record validation.
type Options struct {
	RejectSelfPayments bool
}

// DefaultOptions rejects self-payments.
func DefaultOptions() Options {
	return Options{RejectSelfPayments: true}
}

// Ledger is the part of the ledger the pipeline writes to.
type Ledger interface {
	GetOrCreate(name string) model.Account
	Pay(src, dst string, date time.Time, reason string, amount money.Amount) (model.Transaction, error)
}

// checkDate is step 1.
func checkDate(rec model.Record) error {
	if rec.ValidDate() {
		return nil
	}
	if rec.DateErr != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDate, rec.DateErr)
	}
	return fmt.Errorf("%w: %q", ErrInvalidDate, rec.RawDate)
}

// checkParties rejects blank names before they can create an account.
func checkParties(rec model.Record) error {
	if strings.TrimSpace(rec.From) == "" {
		return fmt.Errorf("%w: from", ErrMissingAccount)
	}
	if strings.TrimSpace(rec.To) == "" {
		return fmt.Errorf("%w: to", ErrMissingAccount)
	}
	return nil
}

// checkAmount converts the amount text to minor units.
func checkAmount(rec model.Record) (money.Amount, error) {
	amount, err := money.Parse(rec.Amount)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", rec.Amount, err)
	}
	return amount, nil
}

// Apply validates rec and, if it is acceptable, pays it into l. Accounts are
// resolved before the amount is checked, so a record with a bad amount still
// introduces its parties.
func Apply(l Ledger, rec model.Record, opts Options) (model.Transaction, error) {
	if err := checkDate(rec); err != nil {
		return model.Transaction{}, err
	}
	if err := checkParties(rec); err != nil {
		return model.Transaction{}, err
	}

	l.GetOrCreate(rec.From)
	l.GetOrCreate(rec.To)

	amount, err := checkAmount(rec)
	if err != nil {
		return model.Transaction{}, err
	}
	if opts.RejectSelfPayments && rec.From == rec.To {
		return model.Transaction{}, fmt.Errorf("%w: %q", ErrSelfPayment, rec.From)
	}

	return l.Pay(rec.From, rec.To, rec.Date, rec.Reason, amount)
}
