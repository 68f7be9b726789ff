// Package table provides the in-memory tabular model used by olyfilter.
// A Table is an ordered set of columns and an ordered list of rows whose
// cells are typed Values. Tables are never mutated once built: filtering,
// projection and truncation all return new tables.
package table

import (
	"strconv"
	"strings"
)

// Kind identifies the native type of a cell.
type Kind int

const (
	// KindMissing marks an absent value (empty field or a missing marker such as "NA").
	KindMissing Kind = iota
	// KindInt is a 64-bit integer cell.
	KindInt
	// KindFloat is a 64-bit floating point cell.
	KindFloat
	// KindString is a text cell.
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// missingMarkers are the field contents read as missing values.
var missingMarkers = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissingMarker reports whether raw field text denotes a missing value.
func IsMissingMarker(raw string) bool {
	_, ok := missingMarkers[raw]
	return ok
}

// Value is a single typed cell. Raw keeps the text the value was read from
// so that writing a table back out reproduces its input.
type Value struct {
	kind Kind
	raw  string
	ival int64
	fval float64
}

// Missing returns a missing value.
func Missing() Value {
	return Value{kind: KindMissing}
}

// String returns a text value.
func String(s string) Value {
	return Value{kind: KindString, raw: s}
}

// Int returns an integer value.
func Int(i int64) Value {
	return Value{kind: KindInt, raw: strconv.FormatInt(i, 10), ival: i}
}

// Float returns a floating point value.
func Float(f float64) Value {
	return Value{kind: KindFloat, raw: strconv.FormatFloat(f, 'g', -1, 64), fval: f}
}

// Kind returns the cell kind.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the cell holds no value.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Text returns the cell as text. Missing cells return "".
func (v Value) Text() string { return v.raw }

// Native returns the Go value of the cell: nil, int64, float64 or string.
func (v Value) Native() any {
	switch v.kind {
	case KindInt:
		return v.ival
	case KindFloat:
		return v.fval
	case KindString:
		return v.raw
	default:
		return nil
	}
}

// Equal compares two cells by native value. Cells of different kinds are
// never equal, so Int(2008) does not equal String("2008").
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.ival == o.ival
	case KindFloat:
		return v.fval == o.fval
	case KindString:
		return v.raw == o.raw
	default:
		return true
	}
}

// key returns a comparable identity used for distinct-value tracking.
func (v Value) key() valueKey {
	switch v.kind {
	case KindInt:
		return valueKey{kind: KindInt, i: v.ival}
	case KindFloat:
		return valueKey{kind: KindFloat, f: v.fval}
	default:
		return valueKey{kind: v.kind, s: v.raw}
	}
}

type valueKey struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// inferKind picks the narrowest kind that can hold every non-missing cell.
func inferKind(cells []string) Kind {
	kind := KindInt
	seen := false
	for _, c := range cells {
		if IsMissingMarker(c) {
			continue
		}
		seen = true
		if kind == KindInt {
			if _, err := strconv.ParseInt(strings.TrimSpace(c), 10, 64); err == nil {
				continue
			}
			kind = KindFloat
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(c), 64); err != nil {
			return KindString
		}
	}
	if !seen {
		return KindString
	}
	return kind
}

// parseAs converts raw field text into a Value of the given column kind.
func parseAs(raw string, kind Kind) Value {
	if IsMissingMarker(raw) {
		return Missing()
	}
	switch kind {
	case KindInt:
		i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err == nil {
			return Value{kind: KindInt, raw: raw, ival: i}
		}
	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err == nil {
			return Value{kind: KindFloat, raw: raw, fval: f}
		}
	}
	return String(raw)
}
