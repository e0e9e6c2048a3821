package model

import "time"

// Record is the normalized shape every format parser produces. It exists only
// between parsing and validation.
type Record struct {
	Date    time.Time
	DateErr error  // non-nil when the source date could not be interpreted
	RawDate string // source date text, for diagnostics
	From    string
	To      string
	Amount  string // decimal text as found in the file
	Reason  string
}

// ValidDate reports whether the record carries a usable calendar date.
func (r Record) ValidDate() bool {
	return r.DateErr == nil && !r.Date.IsZero()
}
