package importer

import (
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXMLParser_Parse(t *testing.T) {
	f, err := os.Open("../../testdata/transactions.xml")
	require.NoError(t, err)
	defer f.Close()

	recs, err := (&XMLParser{}).Parse(f)
	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.Equal(t, "Jon A", recs[0].From)
	assert.Equal(t, "Sarah T", recs[0].To)
	assert.Equal(t, "7.8", recs[0].Amount)
	assert.Equal(t, "Pokemon Training", recs[0].Reason)
	assert.Equal(t, "41638", recs[0].RawDate)
	assert.Equal(t, time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC), recs[0].Date)
	assert.Equal(t, time.Date(2014, 1, 3, 0, 0, 0, 0, time.UTC), recs[3].Date)
}

func TestXMLDate(t *testing.T) {
	tests := []struct {
		attr string
		want time.Time
	}{
		{"0", time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"1", time.Date(1900, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"59", time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC)}, // 1900 is not a leap year
		{"44925", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"-1", time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := xmlDate(tt.attr)
		require.NoError(t, err, "attr %q", tt.attr)
		assert.Equal(t, tt.want, got, "attr %q", tt.attr)
	}
}

func TestXMLParser_BadDateIsRecordLevel(t *testing.T) {
	in := `<TransactionList>
  <SupportTransaction Date="soon"><Description>a</Description><Value>1</Value><Parties><From>A</From><To>B</To></Parties></SupportTransaction>
  <SupportTransaction><Description>b</Description><Value>1</Value><Parties><From>A</From><To>B</To></Parties></SupportTransaction>
  <SupportTransaction Date="41638.5"><Description>c</Description><Value>1</Value><Parties><From>A</From><To>B</To></Parties></SupportTransaction>
</TransactionList>`
	recs, err := (&XMLParser{}).Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.False(t, rec.ValidDate(), "record %q", rec.Reason)
	}
}

func TestXMLParser_EmptyList(t *testing.T) {
	recs, err := (&XMLParser{}).Parse(strings.NewReader(`<TransactionList></TransactionList>`))
	require.NoError(t, err)
	assert.Nil(t, recs)
}

func TestXMLParser_Malformed(t *testing.T) {
	f, err := os.Open("../../testdata/malformed.xml")
	require.NoError(t, err)
	defer f.Close()

	_, err = (&XMLParser{}).Parse(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding XML")
}

func TestXMLParser_WrongRoot(t *testing.T) {
	_, err := (&XMLParser{}).Parse(strings.NewReader(`<Transactions></Transactions>`))
	assert.Error(t, err)
}

func TestXMLParser_Idempotent(t *testing.T) {
	data, err := os.ReadFile("../../testdata/transactions.xml")
	require.NoError(t, err)

	p := &XMLParser{}
	first, err := p.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	second, err := p.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

const xmlOneTransaction = `<TransactionList>
  <SupportTransaction Date="44925"><Description>a</Description><Value>1.00</Value><Parties><From>A</From><To>B</To></Parties></SupportTransaction>
</TransactionList>`

func TestXMLParser_TrailingData(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed element", xmlOneTransaction + `<unclosed`},
		{"text", xmlOneTransaction + "\njunk\n"},
		{"second root", xmlOneTransaction + `<TransactionList></TransactionList>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := (&XMLParser{}).Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, recs)
			assert.Contains(t, err.Error(), "decoding XML")
		})
	}
}

func TestXMLParser_TrailingCommentsAllowed(t *testing.T) {
	in := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + xmlOneTransaction + "\n<!-- exported -->\n<?app done?>\n"
	recs, err := (&XMLParser{}).Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestXMLDate_OutOfRange(t *testing.T) {
	got, err := xmlDate(strconv.Itoa(xmlMaxDays))
	require.NoError(t, err)
	assert.Equal(t, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC), got)

	got, err = xmlDate(strconv.Itoa(xmlMinDays))
	require.NoError(t, err)
	assert.Equal(t, time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), got)

	for _, attr := range []string{
		strconv.Itoa(xmlMaxDays + 1),
		strconv.Itoa(xmlMinDays - 1),
		"3000000",
		"9223372036854775807",
	} {
		_, err := xmlDate(attr)
		assert.Error(t, err, "attr %q", attr)
	}
}
