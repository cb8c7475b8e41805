// Package nvdb holds the Segment model and the attribute-ingestion step
// that turns raw WKB geometries and typed NVDB attribute columns into
// owned Segment records.
package nvdb

import (
	"math"
	"strconv"
)

// Kind identifies which field of a PropertyValue is populated.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
)

// PropertyValue is a tagged union over the NVDB cell types: integer, float,
// string, boolean, or null.
type PropertyValue struct {
	Kind Kind
	I    int64
	F    float64
	S    string
	B    bool
}

// Null is the canonical absent value.
var Null = PropertyValue{Kind: KindNull}

func IntValue(i int64) PropertyValue    { return PropertyValue{Kind: KindInt, I: i} }
func FloatValue(f float64) PropertyValue { return PropertyValue{Kind: KindFloat, F: f} }
func StringValue(s string) PropertyValue { return PropertyValue{Kind: KindString, S: s} }
func BoolValue(b bool) PropertyValue     { return PropertyValue{Kind: KindBool, B: b} }

// IsNull reports whether the value is absent.
func (v PropertyValue) IsNull() bool { return v.Kind == KindNull }

// AsInt returns the value as an int64 if it is an int, a float with no
// fractional part, or a boolean (0/1).
func (v PropertyValue) AsInt() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.I, true
	case KindFloat:
		if v.F == math.Trunc(v.F) {
			return int64(v.F), true
		}
		return 0, false
	case KindBool:
		if v.B {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// AsFloat returns the value as a float64 if it is numeric.
func (v PropertyValue) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.I), true
	case KindFloat:
		return v.F, true
	default:
		return 0, false
	}
}

// AsString renders the value as a display string ("" for null).
func (v PropertyValue) AsString() string {
	switch v.Kind {
	case KindString:
		return v.S
	case KindInt:
		return formatInt(v.I)
	case KindFloat:
		return formatFloat(v.F)
	case KindBool:
		if v.B {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// AsBool reports whether the value is truthy: a nonzero number, a true
// boolean, or a non-empty, non-"0" string.
func (v PropertyValue) AsBool() bool {
	switch v.Kind {
	case KindBool:
		return v.B
	case KindInt:
		return v.I != 0
	case KindFloat:
		return v.F != 0
	case KindString:
		return v.S != "" && v.S != "0"
	default:
		return false
	}
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return formatInt(int64(f))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
