package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/araddon/dateparse"

	"github.com/cleared-dev/supportbank/internal/model"
)

// JSONParser parses an array of {Date, FromAccount, ToAccount, Amount,
// Narrative} objects.
type JSONParser struct{}

type jsonTransaction struct {
	Date        jsonValue `json:"Date"`
	FromAccount jsonValue `json:"FromAccount"`
	ToAccount   jsonValue `json:"ToAccount"`
	Amount      jsonValue `json:"Amount"`
	Narrative   jsonValue `json:"Narrative"`
}

// jsonValue keeps the text of a scalar whatever its JSON type, so a wrongly
// typed field becomes an invalid record rather than a failed file.
type jsonValue struct {
	text   string
	quoted bool
}

func (v *jsonValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = jsonValue{}
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = jsonValue{text: s, quoted: true}
	default:
		*v = jsonValue{text: string(b)}
	}
	return nil
}

var (
	errDateNotString = errors.New("date is not a string")
	errTrailingData  = errors.New("unexpected data after top-level value")
)

// Format returns the parser name.
func (p *JSONParser) Format() string { return "json" }

// Parse decodes the whole array and returns its records in order.
func (p *JSONParser) Parse(r io.Reader) ([]model.Record, error) {
	var txns []jsonTransaction
	dec := json.NewDecoder(r)
	if err := dec.Decode(&txns); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	// Only whitespace may follow the array.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	if len(txns) == 0 {
		return nil, nil
	}

	records := make([]model.Record, 0, len(txns))
	for _, t := range txns {
		rec := model.Record{
			RawDate: t.Date.text,
			From:    t.FromAccount.text,
			To:      t.ToAccount.text,
			Amount:  t.Amount.text,
			Reason:  t.Narrative.text,
		}
		rec.Date, rec.DateErr = parseJSONDate(t.Date)
		records = append(records, rec)
	}
	return records, nil
}

func parseJSONDate(v jsonValue) (time.Time, error) {
	if !v.quoted {
		return time.Time{}, fmt.Errorf("%w: %s", errDateNotString, v.text)
	}
	t, err := dateparse.ParseIn(v.text, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", v.text, err)
	}
	return model.CivilDate(t), nil
}
