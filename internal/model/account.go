package model

// Account is a named party in the ledger. Its balance is never stored; it is
// derived from the transactions listed in Transactions.
type Account struct {
	Name         string
	Transactions []TxnID // application order
}
