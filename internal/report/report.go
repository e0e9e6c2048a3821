package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/supportbank/internal/ledger"
	"github.com/cleared-dev/supportbank/internal/model"
)

// DateFormat is how transaction dates are shown to people.
const DateFormat = "02/01/2006"

// TransactionLine renders one transaction, e.g.
// "[01/01/2023] 10.50 from Alice to Bob for rent".
func TransactionLine(t model.Transaction) string {
	return fmt.Sprintf("[%s] %s from %s to %s for %s",
		t.Date.Format(DateFormat), t.Amount, t.From, t.To, t.Reason)
}

// WriteAccount prints an account's balance and its transactions.
func WriteAccount(w io.Writer, rep ledger.AccountReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Account: %s\n", rep.Name)
	fmt.Fprintf(&b, "Balance: %s\n", rep.Balance)
	b.WriteString("Transactions:\n")
	for _, t := range rep.Transactions {
		fmt.Fprintf(&b, "  %s\n", TransactionLine(t))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary prints every account with its balance.
func WriteSummary(w io.Writer, accounts []ledger.Summary) error {
	var b strings.Builder
	b.WriteString("All accounts:\n")
	for _, s := range accounts {
		fmt.Fprintf(&b, "%s: %s\n", s.Name, s.Balance)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
