// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package item

import (
	"errors"
	"fmt"
	"strings"

	"nickandperla.net/itemscript/internal/scanner"
	"nickandperla.net/itemscript/internal/token"
	"nickandperla.net/itemscript/internal/value"
)

// Statement is the result of parsing one line of an item definition.
type Statement struct {
	Token   token.Token // COMMENT, SET, BLANK or TEXT
	Comment string      // For COMMENT
	Name    string      // For SET
	Value   value.Value // For SET
	Words   []string    // Tokenized line, for SET and TEXT
}

// ParseLine parses a single definition line. A 'set' line must have exactly
// three words. Lines that are neither comments nor 'set' statements give a
// TEXT statement for other parsers to inspect.
func ParseLine(line string) (Statement, error) {
	l := scanner.Classify(line, 0)
	switch l.Token {
	case token.BLANK:
		return Statement{Token: token.BLANK}, nil
	case token.COMMENT:
		return Statement{Token: token.COMMENT, Comment: l.Comment}, nil
	}

	words, err := l.Words()
	if err != nil {
		return Statement{}, &ScriptError{Line: line, Err: errors.Unwrap(err)}
	}
	if len(words) == 0 || token.Lookup(words[0]) != token.SET {
		return Statement{Token: token.TEXT, Words: words}, nil
	}
	if len(words) != 3 {
		return Statement{}, &ScriptError{
			Line: line,
			Err:  fmt.Errorf("expected 'set <name> <value>', got %d words", len(words)),
		}
	}
	return Statement{
		Token: token.SET,
		Name:  words[1],
		Value: value.AutoType(words[2]),
		Words: words,
	}, nil
}

// Serialize renders a variable as a 'set' statement. Double quotes in the
// value are not escaped.
func Serialize(name string, v value.Value) string {
	return fmt.Sprintf("set %s \"%s\"", name, v)
}

// ParseVariable applies a single definition line to the item: comments are
// recorded and 'set' statements bind variables. It reports whether the
// line was handled.
func (it *Item) ParseVariable(line string) (bool, error) {
	st, err := ParseLine(line)
	if err != nil {
		var se *ScriptError
		if errors.As(err, &se) {
			se.Item = it.name
		}
		return false, err
	}
	switch st.Token {
	case token.COMMENT:
		it.AddComment(st.Comment)
		return true, nil
	case token.SET:
		it.Set(st.Name, st.Value)
		return true, nil
	}
	return false, nil
}

// LineHandler receives the definition lines ParseVariable does not handle.
type LineHandler func(l *scanner.Line) error

// Parse resets the item's variables and comments and applies every line of
// text in order. Unhandled non-blank lines go to other, if it is not nil.
func (it *Item) Parse(text string, other LineHandler) error {
	it.vars.Reset()
	it.comments = nil

	scan := scanner.NewFromString(text)
	for {
		l, err := scan.Next()
		if err != nil {
			return err
		}
		if l.Token == token.EOF {
			return nil
		}
		handled, err := it.ParseVariable(l.Text)
		if err != nil {
			return fmt.Errorf("line %d: %w", l.Number, err)
		}
		if !handled && l.Token == token.TEXT && other != nil {
			if err := other(l); err != nil {
				return fmt.Errorf("line %d: %w", l.Number, err)
			}
		}
	}
}

// FromString replaces the item's variables with those defined in text.
// Later 'set' statements for a name overwrite earlier ones.
func (it *Item) FromString(text string) error {
	return it.Parse(text, nil)
}

// String renders the item definition using its own type tag.
func (it *Item) String() string {
	return it.ToString(it.typ)
}

// ToString renders the item definition as 'define <type> <name>' followed
// by its comments and variables.
func (it *Item) ToString(typ string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "define %s %s\n", typ, it.name)
	sb.WriteString(it.Body())
	return sb.String()
}

// Body renders the indented comment and variable lines of the definition.
func (it *Item) Body() string {
	var sb strings.Builder
	for _, c := range it.comments {
		fmt.Fprintf(&sb, "\t# %s\n", strings.TrimSpace(c))
	}
	it.vars.Range(func(name string, v value.Value) bool {
		sb.WriteString("\t")
		sb.WriteString(Serialize(name, v))
		sb.WriteString("\n")
		return true
	})
	return sb.String()
}
