// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package sketchpad implements the sketchpad item and its drawable
// elements.
package sketchpad

import (
	"fmt"
	"sort"
	"strings"

	"nickandperla.net/itemscript/internal/item"
	"nickandperla.net/itemscript/internal/scanner"
	"nickandperla.net/itemscript/internal/token"
)

// Type is the item type tag of sketchpads.
const Type = "sketchpad"

// Canvas paints prepared elements.
type Canvas interface {
	// Clear starts a new frame.
	Clear() error
	// Draw paints one element on the frame.
	Draw(e *Element) error
	// Show presents the frame.
	Show() error
}

// Sketchpad is an item that draws elements and then waits for its
// duration.
type Sketchpad struct {
	*item.Item
	canvas      Canvas
	definitions []string
	elements    []*Element
}

// New creates a sketchpad. canvas may be nil, in which case Run only
// records the onset and waits.
func New(name string, exp item.Experiment, canvas Canvas, definition string) (*Sketchpad, error) {
	it, err := item.New(name, Type, exp, "")
	if err != nil {
		return nil, err
	}
	s := &Sketchpad{Item: it, canvas: canvas}
	if err := s.FromString(definition); err != nil {
		return nil, err
	}
	return s, nil
}

// FromString replaces the sketchpad's variables, comments and element
// definitions with those in text.
func (s *Sketchpad) FromString(text string) error {
	s.definitions = nil
	s.elements = nil
	return s.Parse(text, s.parseLine)
}

func (s *Sketchpad) parseLine(l *scanner.Line) error {
	switch l.Keyword() {
	case token.DRAW:
		s.definitions = append(s.definitions, strings.TrimSpace(l.Text))
		return nil
	case token.DEFINE:
		// String starts with the sketchpad's own header, so its output
		// can be parsed back. Any other define is an error.
		if words, err := l.Words(); err == nil && len(words) == 3 && words[1] == Type {
			return nil
		}
	}
	return &item.ScriptError{
		Line: l.Text,
		Item: s.Name(),
		Err:  fmt.Errorf("expected a 'set' or 'draw' statement"),
	}
}

// AddDefinition appends a 'draw' line. It is parsed on the next Prepare.
func (s *Sketchpad) AddDefinition(def string) {
	s.definitions = append(s.definitions, strings.TrimSpace(def))
}

// Definitions returns the 'draw' lines in order.
func (s *Sketchpad) Definitions() []string {
	out := make([]string, len(s.definitions))
	copy(out, s.definitions)
	return out
}

// Elements returns the prepared elements in drawing order.
func (s *Sketchpad) Elements() []*Element {
	out := make([]*Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// Prepare builds the elements from their definitions and resolves the
// duration.
func (s *Sketchpad) Prepare() error {
	if err := s.Item.Prepare(); err != nil {
		return err
	}

	elements := make([]*Element, 0, len(s.definitions))
	for _, def := range s.definitions {
		fields := strings.Fields(def)
		if len(fields) < 2 {
			return &InvalidElementDefinitionError{Definition: def, Item: s.Name(), Reason: "missing element type"}
		}
		schema, ok := Lookup(fields[1])
		if !ok {
			return &InvalidElementDefinitionError{
				Definition: def,
				Item:       s.Name(),
				Reason:     fmt.Sprintf("unknown element type '%s'", fields[1]),
			}
		}
		e, err := NewElement(s.Item, fields[1], schema, def)
		if err != nil {
			return err
		}
		elements = append(elements, e)
	}
	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].ZIndex() > elements[j].ZIndex()
	})
	s.elements = elements

	return s.PrepareDuration()
}

// Run draws the visible elements, records the onset and runs the
// duration.
func (s *Sketchpad) Run() error {
	if s.canvas != nil {
		if err := s.canvas.Clear(); err != nil {
			return err
		}
		for _, e := range s.elements {
			visible, err := e.Visible()
			if err != nil {
				return err
			}
			if !visible {
				continue
			}
			if err := s.canvas.Draw(e); err != nil {
				return err
			}
		}
		if err := s.canvas.Show(); err != nil {
			return err
		}
	}
	s.MarkOnset()
	return s.RunDuration()
}

// String renders the sketchpad definition.
func (s *Sketchpad) String() string {
	var sb strings.Builder
	sb.WriteString(s.ToString(Type))
	for _, def := range s.definitions {
		sb.WriteString("\t")
		sb.WriteString(def)
		sb.WriteString("\n")
	}
	return sb.String()
}
