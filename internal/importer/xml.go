package importer

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/supportbank/internal/model"
)

// XMLParser parses a TransactionList of SupportTransaction elements whose
// Date attribute counts days since 1900-01-01.
type XMLParser struct{}

// xmlEpoch is day 0 of the XML Date attribute.
var xmlEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Offsets outside these bounds leave the four-digit years the export writes.
var (
	xmlMinDays = daysSinceEpoch(time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC))
	xmlMaxDays = daysSinceEpoch(time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC))
)

func daysSinceEpoch(t time.Time) int {
	return int((t.Unix() - xmlEpoch.Unix()) / (24 * 60 * 60))
}

type xmlTransactionList struct {
	XMLName      xml.Name         `xml:"TransactionList"`
	Transactions []xmlTransaction `xml:"SupportTransaction"`
}

type xmlTransaction struct {
	Date        string `xml:"Date,attr"`
	Description string `xml:"Description"`
	Value       string `xml:"Value"`
	From        string `xml:"Parties>From"`
	To          string `xml:"Parties>To"`
}

// Format returns the parser name.
func (p *XMLParser) Format() string { return "xml" }

// Parse decodes the document and returns its records in order.
func (p *XMLParser) Parse(r io.Reader) ([]model.Record, error) {
	var list xmlTransactionList
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("decoding XML: %w", err)
	}
	if err := xmlTrailer(dec); err != nil {
		return nil, fmt.Errorf("decoding XML: %w", err)
	}
	if len(list.Transactions) == 0 {
		return nil, nil
	}

	records := make([]model.Record, 0, len(list.Transactions))
	for _, t := range list.Transactions {
		rec := model.Record{
			RawDate: t.Date,
			From:    t.From,
			To:      t.To,
			Amount:  t.Value,
			Reason:  t.Description,
		}
		rec.Date, rec.DateErr = xmlDate(t.Date)
		records = append(records, rec)
	}
	return records, nil
}

// xmlTrailer consumes the rest of the document. Only whitespace, comments
// and processing instructions may follow the root element.
func xmlTrailer(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(tok)) != 0 {
				return fmt.Errorf("%w: text %q", errTrailingData, string(tok))
			}
		default:
			return fmt.Errorf("%w: %T", errTrailingData, tok)
		}
	}
}

// xmlDate converts a day offset from xmlEpoch to a calendar date.
func xmlDate(attr string) (time.Time, error) {
	days, err := strconv.Atoi(strings.TrimSpace(attr))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing day offset %q: %w", attr, err)
	}
	if days < xmlMinDays || days > xmlMaxDays {
		return time.Time{}, fmt.Errorf("day offset %d is outside years 1 to 9999", days)
	}
	return xmlEpoch.AddDate(0, 0, days), nil
}
