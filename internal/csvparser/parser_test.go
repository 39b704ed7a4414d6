package csvparser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/tally-sales-xml/internal/types"
)

const sales = "\ufeffInvoice No,Invoice Date,Party A/C Name,Place of Supply,ITEM,Taxable Value,IGST,Cgst,Sgst\n" +
	"INV-001,20240115,Acme Traders,Karnataka,Widget,100,18,,\n" +
	",,,,,,,,\n" +
	"INV-002,20240116,\"Bharat Stores, Goa\",Goa,Bolt,50.25,,4.5,4.5\n" +
	"INV-003,20240117,Short Row\n"

func TestDecode(t *testing.T) {
	records, err := Decode(strings.NewReader(sales), Options{})
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, types.KindString, first.Get(types.ColInvoiceNo).Kind)
	assert.Equal(t, "INV-001", first.Get(types.ColInvoiceNo).String())
	assert.Equal(t, types.KindNumber, first.Get(types.ColIGST).Kind)
	assert.True(t, first.Get(types.ColCGST).IsAbsent())

	second := records[1]
	assert.Equal(t, 4, second.Row)
	assert.Equal(t, "Bharat Stores, Goa", second.Get(types.ColPartyName).String())
	assert.Equal(t, "50.25", second.Get(types.ColTaxableValue).String())

	short := records[2]
	assert.Equal(t, "Short Row", short.Get(types.ColPartyName).String())
	assert.True(t, short.Get(types.ColItem).IsAbsent())
}

func TestDecodeKeepsNumericText(t *testing.T) {
	records, err := Decode(strings.NewReader("Invoice No,Invoice Date,Taxable Value\n0012,01012024,100.50\n"), Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "0012", r.Get(types.ColInvoiceNo).String())
	assert.Equal(t, "01012024", r.Get(types.ColInvoiceDate).String())

	amount, ok := r.Get(types.ColTaxableValue).Decimal()
	require.True(t, ok)
	assert.Equal(t, "100.5", amount.String())
}

func TestDecodeDelimiters(t *testing.T) {
	for _, delim := range []string{"|", "pipe"} {
		records, err := Decode(strings.NewReader("Invoice No|ITEM\nINV1|Widget\n"), Options{Delimiter: delim})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Widget", records[0].Get(types.ColItem).String())
	}

	records, err := Decode(strings.NewReader("Invoice No\tITEM\nINV1\tWidget\n"), Options{Delimiter: "tab"})
	require.NoError(t, err)
	assert.Equal(t, "INV1", records[0].Get(types.ColInvoiceNo).String())
}

func TestDecodeEmpty(t *testing.T) {
	records, err := Decode(strings.NewReader(""), Options{})
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = Decode(strings.NewReader("Invoice No,ITEM\n"), Options{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(strings.NewReader("a,b\n1,2\n"), Options{Delimiter: "\""})
	require.Error(t, err, "a quote cannot be the delimiter")
	assert.True(t, errors.Is(err, types.ErrDecode))

	boom := errors.New("boom")
	_, err = Decode(iotest.ErrReader(boom), Options{})
	assert.True(t, errors.Is(err, types.ErrDecode))
	assert.True(t, errors.Is(err, boom))
}

func TestParse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(sales), 0o644))

	records, err := Parse(path, Options{})
	require.NoError(t, err)
	assert.Len(t, records, 3)

	_, err = Parse(filepath.Join(dir, "missing.csv"), Options{})
	var de *types.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, de.Source, "missing.csv")
}
