// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package item

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotPrepared is returned when an item's duration is run before the
// item has been prepared.
var ErrNotPrepared = errors.New("item has not been prepared")

// ScriptError reports a line that could not be parsed.
type ScriptError struct {
	Line string
	Item string
	Err  error
}

func (e *ScriptError) Error() string {
	if e.Item == "" {
		return fmt.Sprintf("error parsing '%s': %v", e.Line, e.Err)
	}
	return fmt.Sprintf("error parsing '%s' in item '%s': %v", e.Line, e.Item, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// UnsetVariableError reports a variable that is bound neither in the item
// nor in the experiment.
type UnsetVariableError struct {
	Name string
	Item string
}

func (e *UnsetVariableError) Error() string {
	return fmt.Sprintf("variable '%s' is not set in item '%s'", e.Name, e.Item)
}

// SelfReferenceError reports a variable defined in terms of itself, as in
// 'set var [var]'.
type SelfReferenceError struct {
	Name string
	Item string
}

func (e *SelfReferenceError) Error() string {
	return fmt.Sprintf("variable '%s' is defined in terms of itself (e.g., 'var = [var]') in item '%s'", e.Name, e.Item)
}

// ReferenceCycleError reports a chain of variable references that leads
// back to a variable already in the chain.
type ReferenceCycleError struct {
	Chain []string
	Item  string
}

func (e *ReferenceCycleError) Error() string {
	return fmt.Sprintf("variables form a reference cycle (%s) in item '%s'", strings.Join(e.Chain, " -> "), e.Item)
}

// UnterminatedBracketError reports a '[' without a closing ']'.
type UnterminatedBracketError struct {
	Text string
	Item string
}

func (e *UnterminatedBracketError) Error() string {
	return fmt.Sprintf("missing closing bracket ']' in '%s' in item '%s'", e.Text, e.Item)
}

// InterpolationLimitError reports text whose substitutions keep producing
// new variable references.
type InterpolationLimitError struct {
	Text  string
	Item  string
	Limit int
}

func (e *InterpolationLimitError) Error() string {
	return fmt.Sprintf("more than %d substitutions while evaluating '%s' in item '%s'", e.Limit, e.Text, e.Item)
}

// ExpressionError reports a conditional expression that is malformed or
// cannot be evaluated.
type ExpressionError struct {
	Expr   string
	Item   string
	Reason string
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("failed to evaluate '%s' in item '%s': %s", e.Expr, e.Item, e.Reason)
}

// InvalidDurationError reports a duration that is neither a non-negative
// number nor 'keypress' or 'mouseclick'.
type InvalidDurationError struct {
	Value string
	Item  string
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration '%s' in item '%s': expecting a positive number, 'keypress' or 'mouseclick'", e.Value, e.Item)
}

// InvalidCompensationError reports a non-numeric compensation.
type InvalidCompensationError struct {
	Value    string
	ItemType string
	Item     string
}

func (e *InvalidCompensationError) Error() string {
	return fmt.Sprintf("variable 'compensation' should be numeric and not '%s' in %s item '%s'", e.Value, e.ItemType, e.Item)
}
