// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package experiment

import "fmt"

// DefineError reports a top-level script line that is not a comment, a
// 'set' statement or a 'define' block.
type DefineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *DefineError) Error() string {
	return fmt.Sprintf("line %d: %s: '%s'", e.Line, e.Reason, e.Text)
}

// UnknownItemError reports a reference to an item that is not defined.
type UnknownItemError struct {
	Name string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown item '%s'", e.Name)
}
