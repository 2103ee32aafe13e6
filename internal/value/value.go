// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package value defines the typed values held by item variables.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindText
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Value is the interface all variable values implement.
// A Value is always exactly one of Int, Float or Text.
type Value interface {
	// String returns the plain text form of the value, as substituted into
	// interpolated text and written by serialization.
	String() string
	// Kind returns the variant of the value.
	Kind() Kind
}

// Int is an integer value.
type Int int64

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (i Int) Kind() Kind     { return KindInt }

// Float is a floating point value that is not integral (or too large to be
// held as an Int).
type Float float64

func (f Float) String() string { return formatFloat(float64(f)) }
func (f Float) Kind() Kind     { return KindFloat }

// Text is a string value.
type Text string

func (t Text) String() string { return string(t) }
func (t Text) Kind() Kind     { return KindText }

// AutoType converts raw text into the most specific Value: an Int if the
// text is a number with no fractional part, a Float if it is any other
// number, and Text holding raw unchanged otherwise. Whole numbers outside
// the int64 range stay Text so their digits are kept. It never fails.
func AutoType(raw string) Value {
	f, ok := parseFloat(raw)
	if !ok {
		return Text(raw)
	}
	if math.Trunc(f) == f && !fitsInt(f) {
		return Text(raw)
	}
	return fromFloat(f)
}

// Decode rebuilds a Value from the kind name and text form produced by
// Kind.String and Value.String.
func Decode(kind, text string) (Value, error) {
	switch kind {
	case "int":
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decoding int %q: %w", text, err)
		}
		return Int(n), nil
	case "float":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("decoding float %q: %w", text, err)
		}
		return Float(f), nil
	case "text":
		return Text(text), nil
	}
	return nil, fmt.Errorf("unknown value kind %q", kind)
}

// Normalize runs a Value through the same coercion as AutoType without a
// round trip through text: integral Floats become Ints and Text is re-typed.
// A nil Value normalizes to empty Text.
func Normalize(v Value) Value {
	switch t := v.(type) {
	case nil:
		return Text("")
	case Int:
		return t
	case Float:
		return fromFloat(float64(t))
	case Text:
		return AutoType(string(t))
	}
	return AutoType(v.String())
}

// ToInt converts a numeric value to an integer, truncating floats.
// It returns false for Text.
func ToInt(v Value) (int64, bool) {
	switch t := v.(type) {
	case Int:
		return int64(t), true
	case Float:
		f := float64(t)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		return int64(math.Trunc(f)), true
	}
	return 0, false
}

// ToFloat returns the numeric value of v as a float64.
func ToFloat(v Value) (float64, bool) {
	switch t := v.(type) {
	case Int:
		return float64(t), true
	case Float:
		return float64(t), true
	}
	return 0, false
}

// Add returns a + b. Two Ints give an Int; any Float operand gives a Float.
// It returns false if either operand is Text.
func Add(a, b Value) (Value, bool) {
	if ai, ok := a.(Int); ok {
		if bi, ok := b.(Int); ok {
			return ai + bi, true
		}
	}
	af, ok := ToFloat(a)
	if !ok {
		return nil, false
	}
	bf, ok := ToFloat(b)
	if !ok {
		return nil, false
	}
	return Float(af + bf), true
}

// Half returns v / 2, using floor division for Ints.
func Half(v Value) (Value, bool) {
	switch t := v.(type) {
	case Int:
		q := t / 2
		if t < 0 && t%2 != 0 {
			q--
		}
		return q, true
	case Float:
		return t / 2, true
	}
	return nil, false
}

// FormatFixed renders f with exactly decimals digits after the point.
func FormatFixed(f float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

// Equal reports whether a and b have the same kind and value.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind() == b.Kind() && a.String() == b.String()
}

func fromFloat(f float64) Value {
	if math.Trunc(f) == f && fitsInt(f) {
		return Int(int64(f))
	}
	return Float(f)
}

func fitsInt(f float64) bool {
	return f >= math.MinInt64 && f < math.MaxInt64
}

// parseFloat accepts decimal notation with optional surrounding whitespace.
// Infinities, NaN, hexadecimal forms and digit separators are rejected so
// they stay Text.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(lower, "0x") || strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// formatFloat renders the shortest form that reads back as f, switching to
// exponent notation below 1e-4 and from 1e16 upward.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	e := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
