package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cleared-dev/supportbank/internal/model"
)

// DateFormat is the date layout written to exported files. The JSON importer
// reads it back unchanged.
const DateFormat = "2006-01-02"

// Transaction is one entry of the exported JSON array. Field names match the
// JSON import format so an export can be imported again.
type Transaction struct {
	Date        string `json:"Date"`
	FromAccount string `json:"FromAccount"`
	ToAccount   string `json:"ToAccount"`
	Narrative   string `json:"Narrative"`
	Amount      string `json:"Amount"`
}

// Options controls the exported layout.
type Options struct {
	Indent bool
}

// Source is anything that can list the ledger's transactions in order.
type Source interface {
	Transactions() []model.Transaction
}

// FromModel converts ledger transactions to their exported form.
func FromModel(txns []model.Transaction) []Transaction {
	out := make([]Transaction, len(txns))
	for i, t := range txns {
		out[i] = Transaction{
			Date:        t.Date.Format(DateFormat),
			FromAccount: t.From,
			ToAccount:   t.To,
			Narrative:   t.Reason,
			Amount:      t.Amount.String(),
		}
	}
	return out
}

// WriteJSON writes txns as a JSON array.
func WriteJSON(w io.Writer, txns []model.Transaction, opts Options) error {
	enc := json.NewEncoder(w)
	if opts.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(FromModel(txns)); err != nil {
		return fmt.Errorf("encoding transactions: %w", err)
	}
	return nil
}

// File writes the ledger's transaction log to path. The file is written to a
// temporary name first and renamed into place, so a failed export never
// leaves a truncated file behind.
func File(path string, src Source, opts Options) (int, error) {
	txns := src.Transactions()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("creating export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("setting export file mode: %w", err)
	}
	if err := WriteJSON(tmp, txns, opts); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return len(txns), nil
}
