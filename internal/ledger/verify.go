package ledger

import (
	"fmt"

	"github.com/cleared-dev/supportbank/internal/model"
	"github.com/cleared-dev/supportbank/internal/money"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	Subject     string // account name or transaction reference
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.Subject, e.Description)
}

// Verify checks the ledger's structural invariants and returns every
// violation found. An empty result means the ledger is consistent.
func (l *Ledger) Verify() []ValidationError {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var errs []ValidationError

	// Invariant 1: money is conserved across all accounts.
	var total money.Amount
	for _, name := range l.order {
		for _, id := range l.accounts[name].Transactions {
			if int(id) >= 0 && int(id) < len(l.txns) {
				total += l.txns[id].Effect(name)
			}
		}
	}
	if total != 0 {
		errs = append(errs, ValidationError{
			Invariant:   1,
			Subject:     "ledger",
			Description: fmt.Sprintf("balances sum to %s, want 0.00", total),
		})
	}

	// Invariant 2: each transaction is linked from exactly its two parties.
	links := make(map[model.TxnID]int, len(l.txns))
	for _, name := range l.order {
		acct := l.accounts[name]
		for _, id := range acct.Transactions {
			if int(id) < 0 || int(id) >= len(l.txns) {
				errs = append(errs, ValidationError{
					Invariant:   2,
					Subject:     name,
					Description: fmt.Sprintf("references missing transaction %d", id),
				})
				continue
			}
			if !l.txns[id].Involves(name) {
				errs = append(errs, ValidationError{
					Invariant:   2,
					Subject:     name,
					Description: fmt.Sprintf("lists transaction %d it is not a party to", id),
				})
			}
			links[id]++
		}
	}
	for _, txn := range l.txns {
		want := 2
		if txn.From == txn.To {
			want = 1
		}
		if links[txn.ID] != want {
			errs = append(errs, ValidationError{
				Invariant:   2,
				Subject:     txnRef(txn.ID),
				Description: fmt.Sprintf("linked from %d accounts, want %d", links[txn.ID], want),
			})
		}

		// Invariant 3: amounts are positive.
		if txn.Amount <= 0 {
			errs = append(errs, ValidationError{
				Invariant:   3,
				Subject:     txnRef(txn.ID),
				Description: fmt.Sprintf("non-positive amount %s", txn.Amount),
			})
		}
	}

	// Invariant 4: account history is in application order.
	for _, name := range l.order {
		ids := l.accounts[name].Transactions
		for i := 1; i < len(ids); i++ {
			if ids[i] <= ids[i-1] {
				errs = append(errs, ValidationError{
					Invariant:   4,
					Subject:     name,
					Description: fmt.Sprintf("transaction %d listed after %d", ids[i], ids[i-1]),
				})
			}
		}
	}

	return errs
}

func txnRef(id model.TxnID) string {
	return fmt.Sprintf("txn %d", id)
}
