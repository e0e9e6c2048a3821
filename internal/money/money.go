package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a currency value in minor units (pence).
type Amount int64

const minorDigits = 2

var (
	// ErrNotANumber means the text is not a decimal number at all.
	ErrNotANumber = errors.New("amount is not a number")
	// ErrNonPositive means the amount parsed but rounds to zero or below.
	ErrNonPositive = errors.New("amount must be positive")
	// ErrOutOfRange means the amount does not fit in minor units.
	ErrOutOfRange = errors.New("amount out of range")
)

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// ParseAny converts decimal text to minor units, rounding half away from zero
// to the nearest minor unit. The sign is not checked.
func ParseAny(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrNotANumber
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrNotANumber
	}
	minor := d.Shift(minorDigits).Round(0)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, ErrOutOfRange
	}
	return Amount(minor.IntPart()), nil
}

// Parse converts decimal text to a strictly positive Amount.
func Parse(s string) (Amount, error) {
	a, err := ParseAny(s)
	if err != nil {
		return 0, err
	}
	if a <= 0 {
		return 0, ErrNonPositive
	}
	return a, nil
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -minorDigits)
}

// String renders the amount with exactly two fractional digits.
func (a Amount) String() string {
	return a.Decimal().StringFixed(minorDigits)
}

// Sum adds amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}
