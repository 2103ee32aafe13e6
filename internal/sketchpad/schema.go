// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package sketchpad

import (
	"sync"

	"nickandperla.net/itemscript/internal/value"
)

// Keyword is one accepted property of an element. A nil Default means the
// keyword is required.
type Keyword struct {
	Name    string
	Default value.Value
}

// Schema is the ordered list of keywords an element accepts. Bare values
// in a definition are assigned to keywords in this order.
type Schema []Keyword

// Required returns a keyword without a default.
func Required(name string) Keyword {
	return Keyword{Name: name}
}

// Optional returns a keyword with a default.
func Optional(name string, def value.Value) Keyword {
	return Keyword{Name: name, Default: def}
}

// common keywords every element accepts after its own.
var common = Schema{
	Optional("z_index", value.Int(0)),
	Optional("show_if", value.Text("always")),
}

// withCommon returns a copy of s followed by the common keywords.
func (s Schema) withCommon() Schema {
	out := make(Schema, 0, len(s)+len(common))
	out = append(out, s...)
	return append(out, common...)
}

// index returns the position of a keyword, or -1.
func (s Schema) index(name string) int {
	for i, k := range s {
		if k.Name == name {
			return i
		}
	}
	return -1
}

var foreground = value.Text("[foreground]")

var (
	schemaMu sync.RWMutex
	schemas  = map[string]Schema{
		"line": {
			Required("x1"), Required("y1"), Required("x2"), Required("y2"),
			Optional("color", foreground), Optional("penwidth", value.Int(1)),
		},
		"arrow": {
			Required("x1"), Required("y1"), Required("x2"), Required("y2"),
			Optional("color", foreground), Optional("penwidth", value.Int(1)),
			Optional("arrow_size", value.Int(20)),
		},
		"rect": {
			Required("x"), Required("y"), Required("w"), Required("h"),
			Optional("color", foreground), Optional("penwidth", value.Int(1)),
			Optional("fill", value.Int(0)),
		},
		"circle": {
			Required("x"), Required("y"), Required("r"),
			Optional("color", foreground), Optional("penwidth", value.Int(1)),
			Optional("fill", value.Int(0)),
		},
		"ellipse": {
			Required("x"), Required("y"), Required("w"), Required("h"),
			Optional("color", foreground), Optional("penwidth", value.Int(1)),
			Optional("fill", value.Int(0)),
		},
		"fixdot": {
			Required("x"), Required("y"),
			Optional("color", foreground), Optional("style", value.Text("default")),
		},
		"textline": {
			Required("x"), Required("y"), Required("text"),
			Optional("center", value.Int(1)), Optional("color", foreground),
			Optional("font_family", value.Text("mono")), Optional("font_size", value.Int(18)),
			Optional("font_italic", value.Text("no")), Optional("font_bold", value.Text("no")),
			Optional("html", value.Text("yes")),
		},
		"image": {
			Required("x"), Required("y"), Required("file"),
			Optional("scale", value.Int(1)), Optional("center", value.Int(1)),
		},
		"gabor": {
			Required("x"), Required("y"),
			Optional("orient", value.Int(0)), Optional("freq", value.Float(0.1)),
			Optional("env", value.Text("gaussian")), Optional("size", value.Int(96)),
			Optional("stdev", value.Int(12)), Optional("phase", value.Int(0)),
			Optional("color1", value.Text("white")), Optional("color2", value.Text("black")),
			Optional("bgmode", value.Text("avg")),
		},
		"noise": {
			Required("x"), Required("y"),
			Optional("env", value.Text("gaussian")), Optional("size", value.Int(96)),
			Optional("stdev", value.Int(12)),
			Optional("color1", value.Text("white")), Optional("color2", value.Text("black")),
			Optional("bgmode", value.Text("avg")),
		},
	}
)

// Lookup returns the schema of an element type.
func Lookup(kind string) (Schema, bool) {
	schemaMu.RLock()
	defer schemaMu.RUnlock()
	s, ok := schemas[kind]
	return s, ok
}

// Register adds or replaces the schema of an element type.
func Register(kind string, s Schema) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	schemas[kind] = s
}
