// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package sketchpad

import "fmt"

// InvalidElementDefinitionError reports a 'draw' line that cannot describe
// the element.
type InvalidElementDefinitionError struct {
	Definition string
	Item       string
	Reason     string
}

func (e *InvalidElementDefinitionError) Error() string {
	return fmt.Sprintf("invalid sketchpad-element definition '%s' in item '%s': %s", e.Definition, e.Item, e.Reason)
}

// DuplicateKeywordError reports a keyword given more than once.
type DuplicateKeywordError struct {
	Keyword string
	Element string
	Item    string
}

func (e *DuplicateKeywordError) Error() string {
	return fmt.Sprintf("the keyword '%s' has been specified multiple times in sketchpad element '%s' in item '%s'", e.Keyword, e.Element, e.Item)
}

// UnknownKeywordError reports a keyword the element does not accept.
type UnknownKeywordError struct {
	Keyword string
	Element string
	Item    string
}

func (e *UnknownKeywordError) Error() string {
	return fmt.Sprintf("the keyword '%s' is not applicable to sketchpad element '%s' in item '%s'", e.Keyword, e.Element, e.Item)
}

// MissingKeywordError reports a required keyword that was not given.
type MissingKeywordError struct {
	Keyword string
	Element string
	Item    string
}

func (e *MissingKeywordError) Error() string {
	return fmt.Sprintf("the keyword '%s' has not been specified in sketchpad element '%s' in item '%s'", e.Keyword, e.Element, e.Item)
}

// CoordinateError reports a coordinate, or canvas size, that is not a number.
type CoordinateError struct {
	Property string
	Value    string
	Element  string
	Item     string
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("'%s' should be numeric and not '%s' in sketchpad element '%s' in item '%s'", e.Property, e.Value, e.Element, e.Item)
}
