// =============================================================================
// Tally Sales XML - Transformation Engine
// =============================================================================
//
// This module cleans up text columns before rows are grouped into vouchers.
// Rules come from the transformation_rules section of config.yaml.
//
// SCOPE:
//   Text cells are transformed, and so are numeric cells of descriptive
//   columns (an Invoice No stored as 1001 is rewritten as the text "1001").
//   Amount columns keep their numbers, so a rule never changes a total.
//   Empty cells pass through. With no rules configured the records are
//   returned unchanged.
//
// EXAMPLE:
//   transformation_rules:
//     - field: "Invoice No"
//       actions:
//         - type: trim
//         - type: prepend_string
//           value: "S-"
//     - field: "Place of Supply"
//       actions:
//         - type: lookup
//           lookup_table:
//             "KA": "Karnataka"
//             "GA": "Goa"
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/ginjaninja78/tally-sales-xml/internal/config"
	"github.com/ginjaninja78/tally-sales-xml/internal/types"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer handles field value transformations.
type Transformer struct {
	rules []config.TransformationRule

	// fields lists each ruled column once, in first-rule order.
	fields []string
}

// NewTransformer creates a new Transformer with the given rules.
func NewTransformer(rules []config.TransformationRule) *Transformer {
	seen := make(map[string]bool)
	var fields []string
	for _, rule := range rules {
		if !seen[rule.Field] {
			seen[rule.Field] = true
			fields = append(fields, rule.Field)
		}
	}

	return &Transformer{
		rules:  rules,
		fields: fields,
	}
}

// TransformRecords applies every rule to every record in place.
//
// RETURNS:
//   - An error naming the sheet row and field if an action fails.
func (t *Transformer) TransformRecords(records []types.Record) error {
	if len(t.rules) == 0 {
		return nil
	}

	for i := range records {
		if err := t.TransformRecord(&records[i]); err != nil {
			return err
		}
	}
	return nil
}

// TransformRecord applies the rules to one record. Each column runs its
// actions once, in rule order.
func (t *Transformer) TransformRecord(record *types.Record) error {
	for _, field := range t.fields {
		value := record.Get(field)
		if !transformable(field, value) {
			continue
		}

		original := value.String()
		result, err := t.Transform(field, original)
		if err != nil {
			return fmt.Errorf("row %d: error transforming field '%s': %w", record.Row, field, err)
		}
		if result == original {
			continue
		}

		// A rule that empties the cell leaves it absent, same as a blank cell.
		if strings.TrimSpace(result) == "" {
			record.Set(field, types.Absent())
			continue
		}
		record.Set(field, types.String(result))
	}
	return nil
}

// transformable reports whether rules may rewrite v. Text cells always can.
// Numeric cells can outside the amount columns, where a number such as an
// invoice number 1001 is really text.
func transformable(field string, v types.Value) bool {
	switch v.Kind {
	case types.KindString:
		return true
	case types.KindNumber:
		return !types.IsMonetary(field)
	default:
		return false
	}
}

// Transform applies all actions configured for fieldName to value.
func (t *Transformer) Transform(fieldName, value string) (string, error) {
	result := value
	for _, rule := range t.rules {
		if rule.Field != fieldName {
			continue
		}
		for _, action := range rule.Actions {
			var err error
			result, err = ApplyTransformation(result, action)
			if err != nil {
				return "", fmt.Errorf("transformation '%s' failed: %w", action.Type, err)
			}
		}
	}
	return result, nil
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// actionFunc rewrites one cell value.
type actionFunc func(value string, action config.TransformationAction) (string, error)

// actions maps each transformation type to its implementation.
//
// CUSTOMIZATION:
//   Add new transformation types here and to the oneof list on
//   config.TransformationAction.Type.
var actions = map[string]actionFunc{
	"trim":      textAction(strings.TrimSpace),
	"uppercase": textAction(strings.ToUpper),
	"lowercase": textAction(strings.ToLower),

	// "123" + "S-" -> "S-123"
	"prepend_string": func(value string, a config.TransformationAction) (string, error) {
		return a.Value + value, nil
	},
	"append_string": func(value string, a config.TransformationAction) (string, error) {
		return value + a.Value, nil
	},

	"replace": func(value string, a config.TransformationAction) (string, error) {
		if a.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, a.Find, a.Value), nil
	},
	"regex_replace": regexReplace,

	// "123" with value "6" -> "000123"
	"pad_zeros_to_length": func(value string, a config.TransformationAction) (string, error) {
		width, err := strconv.Atoi(a.Value)
		if err != nil || width <= 0 {
			return "", fmt.Errorf("invalid length %q", a.Value)
		}
		return PadLeft(value, width, '0'), nil
	},

	// Values missing from the table are kept as they are.
	"lookup": func(value string, a config.TransformationAction) (string, error) {
		if mapped, ok := a.LookupTable[value]; ok {
			return mapped, nil
		}
		return value, nil
	},
}

// ApplyTransformation applies a single transformation action.
func ApplyTransformation(value string, action config.TransformationAction) (string, error) {
	apply, ok := actions[action.Type]
	if !ok {
		return "", fmt.Errorf("unknown transformation type: %s", action.Type)
	}
	return apply(value, action)
}

func textAction(fn func(string) string) actionFunc {
	return func(value string, _ config.TransformationAction) (string, error) {
		return fn(value), nil
	}
}

var (
	patternMu sync.Mutex
	patterns  = map[string]*regexp.Regexp{}
)

// regexReplace compiles each pattern once; the same rule runs on every row.
func regexReplace(value string, a config.TransformationAction) (string, error) {
	if a.Find == "" {
		return value, nil
	}

	patternMu.Lock()
	re, ok := patterns[a.Find]
	if !ok {
		var err error
		re, err = regexp.Compile(a.Find)
		if err != nil {
			patternMu.Unlock()
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		patterns[a.Find] = re
	}
	patternMu.Unlock()

	return re.ReplaceAllString(value, a.Value), nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// PadLeft pads a string with a character on the left to reach the target length.
func PadLeft(s string, length int, padChar rune) string {
	n := len([]rune(s))
	if n >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-n) + s
}
