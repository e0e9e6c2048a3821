package model

import (
	"time"

	"github.com/cleared-dev/supportbank/internal/money"
)

// TxnID addresses a transaction in the ledger's append-only log.
type TxnID int

// Transaction moves Amount from one account to another. It is immutable once
// applied.
type Transaction struct {
	ID     TxnID
	From   string // source account name
	To     string // destination account name
	Date   time.Time
	Reason string
	Amount money.Amount // always > 0
}

// Involves reports whether the named account is the source or destination.
func (t Transaction) Involves(name string) bool {
	return t.From == name || t.To == name
}

// Effect returns the signed change this transaction makes to the named
// account's balance.
func (t Transaction) Effect(name string) money.Amount {
	var delta money.Amount
	if t.To == name {
		delta += t.Amount
	}
	if t.From == name {
		delta -= t.Amount
	}
	return delta
}

// CivilDate truncates t to a calendar date at UTC midnight.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
