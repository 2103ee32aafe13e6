// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package item implements experiment items: named units that own a
// variable store and evaluate script text against it.
package item

import (
	"strings"

	"nickandperla.net/itemscript/internal/value"
	"nickandperla.net/itemscript/internal/vars"
)

// DefaultRoundDecimals is the number of decimals floats are rounded to in
// interpolated text when rounding is requested.
const DefaultRoundDecimals = 2

// Clock provides time to items. Times are in milliseconds.
type Clock interface {
	Time() int64
	Sleep(ms int64)
}

// Device waits for participant input.
type Device interface {
	WaitKeypress() error
	WaitMouseclick() error
}

// Experiment is the run-loop an item belongs to. Its variable store is the
// fallback for names an item does not bind itself.
type Experiment interface {
	Vars() *vars.Store
	Running() bool
	AutoResponse() bool
	Clock() Clock
	Device() Device
}

// Item is a named unit of experiment behavior.
type Item struct {
	name          string
	typ           string
	exp           Experiment // not owned
	vars          *vars.Store
	comments      []string
	roundDecimals int
	count         int64
	duration      *Duration // nil until prepared
}

// New creates an item of the given type. If definition is not empty it is
// parsed with FromString. exp may be nil for an item without fallback.
func New(name, typ string, exp Experiment, definition string) (*Item, error) {
	it := &Item{
		name:          name,
		typ:           typ,
		exp:           exp,
		vars:          vars.New(),
		roundDecimals: DefaultRoundDecimals,
	}
	if typ == "" {
		it.typ = "item"
	}
	if definition != "" {
		if err := it.FromString(definition); err != nil {
			return nil, err
		}
	}
	return it, nil
}

// Name returns the item name.
func (it *Item) Name() string { return it.name }

// Type returns the item type tag.
func (it *Item) Type() string { return it.typ }

// Experiment returns the experiment the item belongs to, or nil.
func (it *Item) Experiment() Experiment { return it.exp }

// Vars returns the item's own variable store.
func (it *Item) Vars() *vars.Store { return it.vars }

// Comments returns the item's comments in order.
func (it *Item) Comments() []string {
	out := make([]string, len(it.comments))
	copy(out, it.comments)
	return out
}

// AddComment appends a comment.
func (it *Item) AddComment(c string) {
	it.comments = append(it.comments, c)
}

// SetRoundDecimals sets the precision used when rounding floats, unless a
// round_decimals variable overrides it.
func (it *Item) SetRoundDecimals(n int) { it.roundDecimals = n }

// Set binds a variable in the item. See Sanitize.
func (it *Item) Set(name string, v value.Value) {
	it.vars.Set(name, Sanitize(v))
}

// Sanitize prepares a value for storage. Text is re-typed, so Text("5")
// becomes Int(5), and double quotes in text become single quotes so the
// value can be written back as 'set name "value"'.
func Sanitize(v value.Value) value.Value {
	v = value.Normalize(v)
	if t, ok := v.(value.Text); ok {
		v = value.Text(strings.ReplaceAll(string(t), `"`, "'"))
	}
	return v
}

// Unset removes a variable from the item. Unsetting an absent variable is
// not an error.
func (it *Item) Unset(name string) {
	it.vars.Delete(name)
}

// Has returns true if the variable is bound in the item or the experiment.
func (it *Item) Has(name string) bool {
	_, ok := it.lookup(name)
	return ok
}

// Get returns the value of a variable, looking in the item first and the
// experiment second. While the experiment runs, a value of the form
// '[other]' is replaced by the value of 'other'.
func (it *Item) Get(name string) (value.Value, error) {
	return it.resolve(name, nil)
}

func (it *Item) resolve(name string, chain []string) (value.Value, error) {
	v, ok := it.lookup(name)
	if !ok {
		return nil, &UnsetVariableError{Name: name, Item: it.name}
	}
	if !it.running() {
		return v, nil
	}
	inner, ok := reference(v)
	if !ok {
		return v, nil
	}
	if inner == name {
		return nil, &SelfReferenceError{Name: name, Item: it.name}
	}
	chain = append(chain, name)
	for _, seen := range chain {
		if seen == inner {
			return nil, &ReferenceCycleError{Chain: append(chain, inner), Item: it.name}
		}
	}
	return it.resolve(inner, chain)
}

// reference returns the variable name held by a '[name]' text value.
func reference(v value.Value) (string, bool) {
	t, ok := v.(value.Text)
	if !ok {
		return "", false
	}
	s := string(t)
	if len(s) < 3 || s[0] != '[' || s[len(s)-1] != ']' {
		return "", false
	}
	return s[1 : len(s)-1], true
}

func (it *Item) lookup(name string) (value.Value, bool) {
	if v, ok := it.vars.Get(name); ok {
		return v, true
	}
	if it.exp != nil {
		return it.exp.Vars().Get(name)
	}
	return nil, false
}

// running reports whether '[name]' values are followed. An item without an
// experiment always follows them.
func (it *Item) running() bool {
	return it.exp == nil || it.exp.Running()
}

// assign writes a bookkeeping variable into the experiment, or into the item
// itself when there is no experiment.
func (it *Item) assign(name string, v value.Value) {
	if it.exp != nil {
		it.exp.Vars().Set(name, v)
		return
	}
	it.vars.Set(name, v)
}

// Prepare records the item's count in the experiment as count_<name> and
// increments it.
func (it *Item) Prepare() error {
	it.assign("count_"+it.name, value.Int(it.count))
	it.count++
	return nil
}

// SetItemOnset records the time the item appeared as time_<name>.
func (it *Item) SetItemOnset(t int64) {
	it.assign("time_"+it.name, value.Int(t))
}

// MarkOnset records the current clock time as the item's onset and
// returns it.
func (it *Item) MarkOnset() int64 {
	var t int64
	if it.exp != nil && it.exp.Clock() != nil {
		t = it.exp.Clock().Time()
	}
	it.SetItemOnset(t)
	return t
}

// VarInfo describes a variable an item provides.
type VarInfo struct {
	Name        string
	Description string
}

// VarInfo lists the variables the item writes at runtime.
func (it *Item) VarInfo() []VarInfo {
	return []VarInfo{
		{Name: "time_" + it.name, Description: "Determined at runtime"},
		{Name: "count_" + it.name, Description: "Determined at runtime"},
	}
}

// Run executes the item. A generic item does nothing.
func (it *Item) Run() error { return nil }
