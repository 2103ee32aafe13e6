// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package item

import (
	"fmt"
	"strings"

	"nickandperla.net/itemscript/internal/token"
)

// Match evaluates a conditional expression such as
//
//	[response] = 1 or [response] = 2
//	[response_time] > 512
//
// 'always' is true. Clauses are joined by ' and ' (checked first) and
// ' or '. Only the first two clauses of a chain are evaluated; any further
// clauses are ignored. Each clause is '<a> <op> <c>'. The left operand is
// a variable if it is bracketed or names a bound variable; the right
// operand only if it is bracketed. Both operands are compared as text, so
// 64 > 512 is true.
func (it *Item) Match(expr string) (bool, error) {
	if expr == "always" {
		return true, nil
	}

	if parts := strings.Split(expr, " and "); len(parts) > 1 {
		l, err := it.Match(parts[0])
		if err != nil || !l {
			return false, err
		}
		return it.Match(parts[1])
	}

	if parts := strings.Split(expr, " or "); len(parts) > 1 {
		l, err := it.Match(parts[0])
		if err != nil || l {
			return l, err
		}
		return it.Match(parts[1])
	}

	fields := strings.Fields(expr)
	if len(fields) != 3 {
		return false, &ExpressionError{
			Expr:   expr,
			Item:   it.name,
			Reason: fmt.Sprintf("expected '<value> <operator> <value>', got %d words", len(fields)),
		}
	}

	a := fields[0]
	if a[0] == '[' {
		v, err := it.Get(bracketed(a))
		if err != nil {
			return false, err
		}
		a = v.String()
	} else if it.Has(a) {
		v, err := it.Get(a)
		if err != nil {
			return false, err
		}
		a = v.String()
	} else {
		a = unquote(a)
	}

	c := fields[2]
	if c[0] == '[' {
		v, err := it.Get(bracketed(c))
		if err != nil {
			return false, err
		}
		c = v.String()
	} else {
		c = unquote(c)
	}

	op, ok := token.Operator(fields[1])
	if !ok {
		return false, &ExpressionError{
			Expr:   expr,
			Item:   it.name,
			Reason: fmt.Sprintf("unknown operator '%s'", fields[1]),
		}
	}
	return op.Compare(a, c), nil
}

// bracketed strips the first and last character of an operand such as
// '[name]'. The closing bracket is not checked.
func bracketed(s string) string {
	if len(s) < 2 {
		return ""
	}
	return s[1 : len(s)-1]
}

// unquote strips one pair of surrounding double quotes from a literal.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
