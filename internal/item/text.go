// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package item

import (
	"strings"

	"nickandperla.net/itemscript/internal/value"
)

// MaxSubstitutions bounds the number of '[name]' substitutions made while
// evaluating a single text.
const MaxSubstitutions = 1000

// EvalText replaces every '[name]' in text with the value of the variable
// and returns the typed result. See Interpolate.
func (it *Item) EvalText(text string, roundFloats bool) (value.Value, error) {
	return it.Interpolate(value.Text(text), roundFloats)
}

// Interpolate substitutes variables into a value. Numbers are returned as
// they are. In text, each '[name]' is replaced by the value of name; text
// brought in by a substitution is scanned again, so a variable may hold
// another reference. With roundFloats, float values are formatted with the
// item's round_decimals. The result is typed with value.AutoType.
func (it *Item) Interpolate(v value.Value, roundFloats bool) (value.Value, error) {
	t, ok := v.(value.Text)
	if !ok {
		return value.Normalize(v), nil
	}
	original := string(t)
	text := original

	decimals := 0
	if roundFloats {
		decimals = it.decimals()
	}

	pos := 0
	for n := 0; ; n++ {
		start := strings.IndexByte(text[pos:], '[')
		if start < 0 {
			break
		}
		start += pos
		end := strings.IndexByte(text[start+1:], ']')
		if end < 0 {
			return nil, &UnterminatedBracketError{Text: original, Item: it.name}
		}
		end += start + 1
		if n == MaxSubstitutions {
			return nil, &InterpolationLimitError{Text: original, Item: it.name, Limit: MaxSubstitutions}
		}

		val, err := it.Get(text[start+1 : end])
		if err != nil {
			return nil, err
		}
		sub := val.String()
		if f, ok := val.(value.Float); ok && roundFloats {
			sub = value.FormatFixed(float64(f), decimals)
		}
		text = text[:start] + sub + text[end+1:]
		pos = start
	}
	return value.AutoType(text), nil
}

// decimals returns the round_decimals variable if it is numeric, else the
// item's configured precision.
func (it *Item) decimals() int {
	if !it.Has("round_decimals") {
		return it.roundDecimals
	}
	v, err := it.Get("round_decimals")
	if err != nil {
		return it.roundDecimals
	}
	if n, ok := value.ToInt(v); ok {
		return int(n)
	}
	return it.roundDecimals
}
