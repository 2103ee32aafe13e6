// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package experiment

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"nickandperla.net/itemscript/internal/item"
	"nickandperla.net/itemscript/internal/scanner"
	"nickandperla.net/itemscript/internal/token"
	"nickandperla.net/itemscript/internal/value"
)

// FromString loads an experiment script. Top-level 'set' lines bind
// experiment variables and each 'define <type> <name>' line starts an item
// whose definition is the indented lines that follow. Items replace
// existing items of the same name.
func (e *Experiment) FromString(script string) error {
	return e.FromReader(strings.NewReader(script))
}

// FromReader loads an experiment script from r. See FromString.
func (e *Experiment) FromReader(r io.Reader) error {
	scan := scanner.New(r)
	for {
		l, err := scan.Next()
		if err != nil {
			return err
		}
		switch l.Token {
		case token.EOF:
			return nil
		case token.BLANK, token.COMMENT:
			continue
		}

		switch l.Keyword() {
		case token.SET:
			st, err := item.ParseLine(l.Text)
			if err != nil {
				var se *item.ScriptError
				if errors.As(err, &se) {
					se.Item = Type
				}
				return fmt.Errorf("line %d: %w", l.Number, err)
			}
			e.Set(st.Name, st.Value)
		case token.DEFINE:
			if err := e.define(scan, l); err != nil {
				return err
			}
		default:
			return &DefineError{Line: l.Number, Text: l.Text, Reason: "expected 'set' or 'define'"}
		}
	}
}

func (e *Experiment) define(scan *scanner.Scanner, l *scanner.Line) error {
	words, err := l.Words()
	if err != nil {
		return &DefineError{Line: l.Number, Text: l.Text, Reason: errors.Unwrap(err).Error()}
	}
	if len(words) != 3 {
		return &DefineError{Line: l.Number, Text: l.Text, Reason: "expected 'define <type> <name>'"}
	}
	typ, name := words[1], words[2]

	var body []string
	for {
		next, err := scan.Peek()
		if err != nil {
			return err
		}
		if next.Token == token.EOF || (next.Token != token.BLANK && !indented(next.Text)) {
			break
		}
		scan.Next()
		body = append(body, next.Text)
	}

	if _, err := e.AddItem(typ, name, strings.Join(body, "\n")); err != nil {
		return fmt.Errorf("define %s %s (line %d): %w", typ, name, l.Number, err)
	}
	return nil
}

func indented(text string) bool {
	return strings.HasPrefix(text, " ") || strings.HasPrefix(text, "\t")
}

// ToString renders the experiment variables followed by every item
// definition, in a form FromString reads back.
func (e *Experiment) ToString() string {
	var sb strings.Builder
	e.vars.Range(func(name string, v value.Value) bool {
		sb.WriteString(item.Serialize(name, v))
		sb.WriteString("\n")
		return true
	})
	for _, it := range e.Items() {
		sb.WriteString("\n")
		sb.WriteString(it.String())
	}
	return sb.String()
}
