package domain

import (
	"math"
	"strconv"
)

// MissingSentinel marks a day with no recorded measurement.
const MissingSentinel = -999

// ValueKind tags the result of parsing one daily token.
type ValueKind uint8

const (
	ValueOK ValueKind = iota
	ValueMissing
	ValueInvalid
)

func (k ValueKind) String() string {
	switch k {
	case ValueOK:
		return "ok"
	case ValueMissing:
		return "missing"
	default:
		return "invalid"
	}
}

// Value is one parsed daily amount. Amount is only meaningful for ValueOK;
// Raw keeps the original token for error reporting.
type Value struct {
	Kind   ValueKind
	Amount float64
	Raw    string
}

// OK reports whether the value contributes to aggregates.
func (v Value) OK() bool { return v.Kind == ValueOK }

// ParseValue classifies a single token as a measured amount, the missing
// sentinel, or an unparseable token.
func ParseValue(token string) Value {
	f, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{Kind: ValueInvalid, Raw: token}
	}
	if f == MissingSentinel {
		return Value{Kind: ValueMissing, Raw: token}
	}
	if f < 0 {
		return Value{Kind: ValueInvalid, Raw: token}
	}
	return Value{Kind: ValueOK, Amount: f, Raw: token}
}
