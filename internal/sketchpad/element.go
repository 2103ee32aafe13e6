// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package sketchpad

import (
	"errors"
	"fmt"
	"strings"

	"nickandperla.net/itemscript/internal/scanner"
	"nickandperla.net/itemscript/internal/token"
	"nickandperla.net/itemscript/internal/value"
)

// Owner is the item an element belongs to. The element uses it to look up
// variables and evaluate text; it does not control the owner's lifetime.
type Owner interface {
	Name() string
	Get(name string) (value.Value, error)
	Interpolate(v value.Value, roundFloats bool) (value.Value, error)
	Match(expr string) (bool, error)
}

// Element is a drawable primitive of a sketchpad.
type Element struct {
	kind       string
	schema     Schema
	owner      Owner
	definition string
	raw        map[string]value.Value
	properties map[string]value.Value
}

// NewElement parses a definition of the form
//
//	draw <kind> [<name>=<value> | <value>]...
//
// against schema. Bare values fill the schema's keywords in order,
// skipping keywords already given by name. Property values are then
// evaluated by the owner (floats are rounded only in 'text'), and x/x1/x2
// and y/y1/y2 are moved from center to top-left origin by adding half the
// canvas width and height.
func NewElement(owner Owner, kind string, schema Schema, definition string) (*Element, error) {
	e := &Element{
		kind:       kind,
		schema:     schema.withCommon(),
		owner:      owner,
		definition: definition,
	}
	if err := e.parse(); err != nil {
		return nil, err
	}
	if err := e.evalProperties(); err != nil {
		return nil, err
	}
	if err := e.topLeftCoordinates(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Element) parse() error {
	words, err := scanner.Split(e.definition)
	if err != nil {
		return e.invalid(errors.Unwrap(err).Error())
	}
	if len(words) < 2 || token.Lookup(words[0]) != token.DRAW || words[1] != e.kind {
		return e.invalid(fmt.Sprintf("expected 'draw %s'", e.kind))
	}

	e.raw = make(map[string]value.Value, len(e.schema))
	for _, k := range e.schema {
		if k.Default != nil {
			e.raw[k.Name] = k.Default
		}
	}

	given := make(map[string]bool)
	next := 0
	for _, word := range words[2:] {
		var name, val string
		if i := strings.IndexByte(word, '='); i >= 0 {
			name, val = word[:i], word[i+1:]
			if e.schema.index(name) < 0 {
				return &UnknownKeywordError{Keyword: name, Element: e.kind, Item: e.owner.Name()}
			}
		} else {
			for next < len(e.schema) && given[e.schema[next].Name] {
				next++
			}
			if next == len(e.schema) {
				return e.invalid(fmt.Sprintf("too many values (the element accepts %d)", len(e.schema)))
			}
			name, val = e.schema[next].Name, word
		}
		if given[name] {
			return &DuplicateKeywordError{Keyword: name, Element: e.kind, Item: e.owner.Name()}
		}
		given[name] = true
		e.raw[name] = value.AutoType(val)
	}

	for _, k := range e.schema {
		if _, ok := e.raw[k.Name]; !ok {
			return &MissingKeywordError{Keyword: k.Name, Element: e.kind, Item: e.owner.Name()}
		}
	}
	return nil
}

func (e *Element) evalProperties() error {
	e.properties = make(map[string]value.Value, len(e.raw))
	for name, raw := range e.raw {
		v, err := e.owner.Interpolate(raw, name == "text")
		if err != nil {
			return fmt.Errorf("sketchpad element '%s', keyword '%s': %w", e.kind, name, err)
		}
		e.properties[name] = v
	}
	return nil
}

var (
	xCoordinates = []string{"x", "x1", "x2"}
	yCoordinates = []string{"y", "y1", "y2"}
)

// topLeftCoordinates converts center-origin coordinates to top-left origin.
func (e *Element) topLeftCoordinates() error {
	if err := e.shift("width", xCoordinates); err != nil {
		return err
	}
	return e.shift("height", yCoordinates)
}

func (e *Element) shift(dimension string, names []string) error {
	var half value.Value
	for _, name := range names {
		v, ok := e.properties[name]
		if !ok {
			continue
		}
		if half == nil {
			size, err := e.owner.Get(dimension)
			if err != nil {
				return err
			}
			h, ok := value.Half(size)
			if !ok {
				return &CoordinateError{Property: dimension, Value: size.String(), Element: e.kind, Item: e.owner.Name()}
			}
			half = h
		}
		sum, ok := value.Add(v, half)
		if !ok {
			return &CoordinateError{Property: name, Value: v.String(), Element: e.kind, Item: e.owner.Name()}
		}
		e.properties[name] = sum
	}
	return nil
}

func (e *Element) invalid(reason string) error {
	return &InvalidElementDefinitionError{Definition: e.definition, Item: e.owner.Name(), Reason: reason}
}

// Kind returns the element type tag.
func (e *Element) Kind() string { return e.kind }

// Definition returns the 'draw' line the element was parsed from.
func (e *Element) Definition() string { return e.definition }

// Property returns an evaluated property.
func (e *Element) Property(name string) (value.Value, bool) {
	v, ok := e.properties[name]
	return v, ok
}

// Properties returns a copy of the evaluated properties, after
// interpolation and the coordinate transform.
func (e *Element) Properties() map[string]value.Value {
	out := make(map[string]value.Value, len(e.properties))
	for k, v := range e.properties {
		out[k] = v
	}
	return out
}

// Raw returns a copy of the properties as written, before evaluation.
func (e *Element) Raw() map[string]value.Value {
	out := make(map[string]value.Value, len(e.raw))
	for k, v := range e.raw {
		out[k] = v
	}
	return out
}

// ZIndex returns the drawing order. Elements with a higher z-index are
// drawn first, so they end up at the bottom.
func (e *Element) ZIndex() int64 {
	n, _ := value.ToInt(e.properties["z_index"])
	return n
}

// Visible evaluates the element's show_if condition.
func (e *Element) Visible() (bool, error) {
	cond, ok := e.properties["show_if"]
	if !ok {
		return true, nil
	}
	return e.owner.Match(cond.String())
}

// String renders the element as a 'draw' line with every keyword named,
// using the values as written.
func (e *Element) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "draw %s", e.kind)
	for _, k := range e.schema {
		v := e.raw[k.Name]
		if v.Kind() == value.KindText {
			fmt.Fprintf(&sb, " %s=\"%s\"", k.Name, v)
		} else {
			fmt.Fprintf(&sb, " %s=%s", k.Name, v)
		}
	}
	return sb.String()
}
