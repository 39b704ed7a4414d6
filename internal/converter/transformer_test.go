package converter

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/tally-sales-xml/internal/config"
	"github.com/ginjaninja78/tally-sales-xml/internal/types"
)

func TestApplyTransformation(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		action config.TransformationAction
		want   string
	}{
		{"trim", "  Acme  ", config.TransformationAction{Type: "trim"}, "Acme"},
		{"uppercase", "goa", config.TransformationAction{Type: "uppercase"}, "GOA"},
		{"lowercase", "GOA", config.TransformationAction{Type: "lowercase"}, "goa"},
		{"prepend", "001", config.TransformationAction{Type: "prepend_string", Value: "S-"}, "S-001"},
		{"append", "INV", config.TransformationAction{Type: "append_string", Value: "/24"}, "INV/24"},
		{"replace", "INV-001", config.TransformationAction{Type: "replace", Find: "-", Value: "/"}, "INV/001"},
		{"replace without find", "INV-001", config.TransformationAction{Type: "replace", Value: "/"}, "INV-001"},
		{"regex", "INV  001", config.TransformationAction{Type: "regex_replace", Find: `\s+`, Value: "-"}, "INV-001"},
		{"pad", "42", config.TransformationAction{Type: "pad_zeros_to_length", Value: "5"}, "00042"},
		{"pad longer", "123456", config.TransformationAction{Type: "pad_zeros_to_length", Value: "3"}, "123456"},
		{"lookup hit", "KA", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"KA": "Karnataka"}}, "Karnataka"},
		{"lookup miss", "TN", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"KA": "Karnataka"}}, "TN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyTransformation(tt.value, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyTransformationErrors(t *testing.T) {
	_, err := ApplyTransformation("x", config.TransformationAction{Type: "shout"})
	assert.ErrorContains(t, err, "unknown transformation type: shout")

	_, err = ApplyTransformation("x", config.TransformationAction{Type: "regex_replace", Find: "("})
	assert.ErrorContains(t, err, "invalid regex pattern")

	_, err = ApplyTransformation("x", config.TransformationAction{Type: "pad_zeros_to_length", Value: "ten"})
	assert.Error(t, err)
}

func TestTransformRecordsLeavesAmounts(t *testing.T) {
	rules := []config.TransformationRule{
		{Field: types.ColInvoiceNo, Actions: []config.TransformationAction{{Type: "trim"}, {Type: "prepend_string", Value: "S-"}}},
		{Field: types.ColTaxableValue, Actions: []config.TransformationAction{{Type: "append_string", Value: "0"}}},
		{Field: types.ColItem, Actions: []config.TransformationAction{{Type: "replace", Find: "Widget", Value: " "}}},
	}

	r := types.NewRecord(2)
	r.Set(types.ColInvoiceNo, types.String(" INV1 "))
	r.Set(types.ColTaxableValue, types.ParseCell("100"))
	r.Set(types.ColItem, types.String("Widget"))
	records := []types.Record{r}

	require.NoError(t, NewTransformer(rules).TransformRecords(records))

	assert.Equal(t, "S-INV1", records[0].Get(types.ColInvoiceNo).String())
	assert.Equal(t, "100", records[0].Get(types.ColTaxableValue).String(), "amounts are left alone")
	assert.Equal(t, types.KindNumber, records[0].Get(types.ColTaxableValue).Kind)
	assert.True(t, records[0].Get(types.ColItem).IsAbsent(), "emptied cells become absent")
}

func TestSeveralRulesOnOneColumnApplyOnce(t *testing.T) {
	rules := []config.TransformationRule{
		{Field: types.ColInvoiceNo, Actions: []config.TransformationAction{{Type: "prepend_string", Value: "S-"}}},
		{Field: types.ColItem, Actions: []config.TransformationAction{{Type: "uppercase"}}},
		{Field: types.ColInvoiceNo, Actions: []config.TransformationAction{{Type: "append_string", Value: "/24"}}},
	}

	r := types.NewRecord(2)
	r.Set(types.ColInvoiceNo, types.String("INV1"))
	r.Set(types.ColItem, types.String("widget"))
	records := []types.Record{r}

	require.NoError(t, NewTransformer(rules).TransformRecords(records))

	assert.Equal(t, "S-INV1/24", records[0].Get(types.ColInvoiceNo).String())
	assert.Equal(t, "WIDGET", records[0].Get(types.ColItem).String())
}

func TestTransformRecordsRewritesNumericText(t *testing.T) {
	rules := []config.TransformationRule{
		{Field: types.ColInvoiceNo, Actions: []config.TransformationAction{{Type: "prepend_string", Value: "S-"}}},
		{Field: types.ColInvoiceDate, Actions: []config.TransformationAction{{Type: "pad_zeros_to_length", Value: "8"}}},
		{Field: types.ColPlaceOfSupply, Actions: []config.TransformationAction{{Type: "trim"}}},
	}

	r := types.NewRecord(2)
	r.Set(types.ColInvoiceNo, types.ParseCell("1001"))
	r.Set(types.ColInvoiceDate, types.ParseCell("1012024"))
	r.Set(types.ColPlaceOfSupply, types.ParseCell("29"))
	records := []types.Record{r}

	require.NoError(t, NewTransformer(rules).TransformRecords(records))

	assert.Equal(t, types.String("S-1001"), records[0].Get(types.ColInvoiceNo))
	assert.Equal(t, types.String("01012024"), records[0].Get(types.ColInvoiceDate))
	assert.Equal(t, types.ParseCell("29"), records[0].Get(types.ColPlaceOfSupply), "unchanged cells keep their kind")
}

func TestTransformRecordsReportsRow(t *testing.T) {
	rules := []config.TransformationRule{
		{Field: types.ColItem, Actions: []config.TransformationAction{{Type: "shout"}}},
	}
	r := types.NewRecord(7)
	r.Set(types.ColItem, types.String("Widget"))

	err := NewTransformer(rules).TransformRecords([]types.Record{r})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 7")
	assert.Contains(t, err.Error(), "ITEM")
}

func TestNoRulesIsNoOp(t *testing.T) {
	r := types.NewRecord(2)
	r.Set(types.ColItem, types.String("  Widget "))
	records := []types.Record{r}

	require.NoError(t, NewTransformer(nil).TransformRecords(records))
	assert.Equal(t, "  Widget ", records[0].Get(types.ColItem).String())
}

func TestConfiguredActionsAreImplemented(t *testing.T) {
	field, ok := reflect.TypeOf(config.TransformationAction{}).FieldByName("Type")
	require.True(t, ok)

	tag := field.Tag.Get("validate")
	i := strings.Index(tag, "oneof=")
	require.GreaterOrEqual(t, i, 0)

	names := strings.Fields(tag[i+len("oneof="):])
	assert.Len(t, actions, len(names))
	for _, name := range names {
		assert.Contains(t, actions, name)
	}
}
