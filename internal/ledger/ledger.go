package ledger

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cleared-dev/supportbank/internal/model"
	"github.com/cleared-dev/supportbank/internal/money"
)

var (
	// ErrUnknownAccount is returned by Pay when an account was never created.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrNonPositiveAmount is returned by Pay for zero or negative amounts.
	ErrNonPositiveAmount = errors.New("transaction amount must be positive")
)

// Summary is an account name with its derived balance.
type Summary struct {
	Name    string
	Balance money.Amount
}

// AccountReport is everything needed to print one account.
type AccountReport struct {
	Name         string
	Balance      money.Amount
	Transactions []model.Transaction
}

// Ledger owns the account table and the append-only transaction log.
// Accounts reference transactions by ID; balances are always recomputed from
// the log. A single lock covers every mutation so get-or-create and Pay are
// atomic.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[string]*model.Account
	order    []string
	txns     []model.Transaction
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{accounts: make(map[string]*model.Account)}
}

// GetOrCreate returns the named account, creating it on first reference.
func (l *Ledger) GetOrCreate(name string) model.Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[name]
	if !ok {
		acct = &model.Account{Name: name}
		l.accounts[name] = acct
		l.order = append(l.order, name)
	}
	return cloneAccount(acct)
}

// Pay records a transfer of amount from src to dst and links it to both
// accounts. Both accounts must already exist.
func (l *Ledger) Pay(src, dst string, date time.Time, reason string, amount money.Amount) (model.Transaction, error) {
	if amount <= 0 {
		return model.Transaction{}, fmt.Errorf("%w: %s", ErrNonPositiveAmount, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	from, ok := l.accounts[src]
	if !ok {
		return model.Transaction{}, fmt.Errorf("%w: %q", ErrUnknownAccount, src)
	}
	to, ok := l.accounts[dst]
	if !ok {
		return model.Transaction{}, fmt.Errorf("%w: %q", ErrUnknownAccount, dst)
	}

	txn := model.Transaction{
		ID:     model.TxnID(len(l.txns)),
		From:   src,
		To:     dst,
		Date:   model.CivilDate(date),
		Reason: reason,
		Amount: amount,
	}
	l.txns = append(l.txns, txn)

	from.Transactions = append(from.Transactions, txn.ID)
	if to != from {
		to.Transactions = append(to.Transactions, txn.ID)
	}
	return txn, nil
}

// Account looks up an account by exact name.
func (l *Ledger) Account(name string) (model.Account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, ok := l.accounts[name]
	if !ok {
		return model.Account{}, false
	}
	return cloneAccount(acct), true
}

// Balance derives the account's balance from its transactions: money received
// minus money paid.
func (l *Ledger) Balance(name string) (money.Amount, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, ok := l.accounts[name]
	if !ok {
		return 0, false
	}
	return l.balanceLocked(acct), true
}

func (l *Ledger) balanceLocked(acct *model.Account) money.Amount {
	var total money.Amount
	for _, id := range acct.Transactions {
		total += l.txns[id].Effect(acct.Name)
	}
	return total
}

// Accounts returns every account with its balance, in creation order.
func (l *Ledger) Accounts() []Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Summary, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, Summary{Name: name, Balance: l.balanceLocked(l.accounts[name])})
	}
	return out
}

// History returns the account's transactions in the order they were applied.
func (l *Ledger) History(name string) ([]model.Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, ok := l.accounts[name]
	if !ok {
		return nil, false
	}
	return l.historyLocked(acct), true
}

func (l *Ledger) historyLocked(acct *model.Account) []model.Transaction {
	out := make([]model.Transaction, len(acct.Transactions))
	for i, id := range acct.Transactions {
		out[i] = l.txns[id]
	}
	return out
}

// Report returns the account with its balance and history.
func (l *Ledger) Report(name string) (AccountReport, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, ok := l.accounts[name]
	if !ok {
		return AccountReport{}, false
	}
	return AccountReport{
		Name:         acct.Name,
		Balance:      l.balanceLocked(acct),
		Transactions: l.historyLocked(acct),
	}, true
}

// Transactions returns the full log in ledger order.
func (l *Ledger) Transactions() []model.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.txns)
}

// Len returns the number of accounts and transactions.
func (l *Ledger) Len() (accounts, transactions int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order), len(l.txns)
}

func cloneAccount(acct *model.Account) model.Account {
	return model.Account{
		Name:         acct.Name,
		Transactions: slices.Clone(acct.Transactions),
	}
}
