package voucher

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/tally-sales-xml/internal/types"
)

// Amount is a monetary figure that may be invalid.
//
// Invalid amounts come from absent or non-numeric cells and render as "NaN",
// the same text the sheet-based tool produced for them. Any sum involving an
// invalid amount is invalid.
type Amount struct {
	value decimal.Decimal
	valid bool

	// negZero marks a negated zero, which renders as "-0.00" like the
	// credit of a zero-value invoice always has.
	negZero bool
}

// NewAmount wraps a decimal as a valid amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{value: d, valid: true}
}

// InvalidAmount returns an amount that renders as NaN.
func InvalidAmount() Amount {
	return Amount{}
}

// Required reads a monetary cell that must be present: absent or text is invalid.
func Required(v types.Value) Amount {
	if d, ok := v.Decimal(); ok {
		return NewAmount(d)
	}
	return InvalidAmount()
}

// Optional reads a monetary cell that defaults to zero when absent.
func Optional(v types.Value) Amount {
	if v.IsAbsent() {
		return NewAmount(decimal.Zero)
	}
	return Required(v)
}

// Valid reports whether the amount is a number.
func (a Amount) Valid() bool {
	return a.valid
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	if !a.valid || !b.valid {
		return InvalidAmount()
	}
	return NewAmount(a.value.Add(b.value))
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	if !a.valid {
		return a
	}
	if a.value.IsZero() {
		return Amount{value: a.value, valid: true, negZero: !a.negZero}
	}
	return NewAmount(a.value.Neg())
}

// IsPositive reports whether a is a number greater than zero.
func (a Amount) IsPositive() bool {
	return a.valid && a.value.IsPositive()
}

// Format renders the amount with exactly two fractional digits.
func (a Amount) Format() string {
	if !a.valid {
		return "NaN"
	}
	if a.negZero {
		return "-" + a.value.StringFixed(2)
	}
	return a.value.StringFixed(2)
}
