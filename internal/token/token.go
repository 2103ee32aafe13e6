// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines the token types of item scripts: line kinds,
// statement keywords and comparison operators.
package token

// Token represents a script token type.
type Token int

const (
	EOF Token = iota
	BLANK
	COMMENT
	TEXT

	// Statement keywords
	SET    // set <name> <value>
	DEFINE // define <type> <name>
	DRAW   // draw <element> [<name>=<value> | <value>]...

	// Comparison operators
	EQ // = or ==
	NE // != or <>
	LT // <
	GT // >
	LE // <=
	GE // >=
)

// Comment markers recognized at the start of a line.
const (
	CommentHash  = "#"
	CommentSlash = "//"
)

var keywords = map[string]Token{
	"set":    SET,
	"define": DEFINE,
	"draw":   DRAW,
}

var operators = map[string]Token{
	"=":  EQ,
	"==": EQ,
	"!=": NE,
	"<>": NE,
	"<":  LT,
	">":  GT,
	"<=": LE,
	">=": GE,
}

// Lookup returns the keyword token for word, or TEXT.
func Lookup(word string) Token {
	if t, ok := keywords[word]; ok {
		return t
	}
	return TEXT
}

// Operator returns the comparison token for an operator symbol.
func Operator(sym string) (Token, bool) {
	t, ok := operators[sym]
	return t, ok
}

// String returns the string representation of a token.
func (t Token) String() string {
	switch t {
	case EOF:
		return "EOF"
	case BLANK:
		return "BLANK"
	case COMMENT:
		return "COMMENT"
	case TEXT:
		return "TEXT"
	case SET:
		return "set"
	case DEFINE:
		return "define"
	case DRAW:
		return "draw"
	case EQ:
		return "=="
	case NE:
		return "!="
	case LT:
		return "<"
	case GT:
		return ">"
	case LE:
		return "<="
	case GE:
		return ">="
	}
	return "UNKNOWN"
}

// IsKeyword returns true if the token is a statement keyword.
func (t Token) IsKeyword() bool {
	switch t {
	case SET, DEFINE, DRAW:
		return true
	}
	return false
}

// IsComparison returns true if the token is a comparison operator.
func (t Token) IsComparison() bool {
	switch t {
	case EQ, NE, LT, GT, LE, GE:
		return true
	}
	return false
}

// Compare applies a comparison operator to two strings, ordering them
// lexicographically. It returns false for non-comparison tokens.
func (t Token) Compare(a, b string) bool {
	switch t {
	case EQ:
		return a == b
	case NE:
		return a != b
	case LT:
		return a < b
	case GT:
		return a > b
	case LE:
		return a <= b
	case GE:
		return a >= b
	}
	return false
}
