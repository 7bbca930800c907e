// Copyright (c) 2014 Alex Kalyvitis

package mustache

import (
	"fmt"
	"strings"
)

// ErrorSlice aggregates multiple errors encountered while rendering a
// section's children, the way the teacher's sectionNode collects one error
// per failing child before deciding whether to propagate.
type ErrorSlice []error

func (es ErrorSlice) Error() string {
	b := strings.Builder{}
	b.WriteRune('[')
	for i, e := range es {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Error())
	}
	b.WriteRune(']')
	return b.String()
}

// Unwrap lets errors.Is/errors.As reach into each collected error, per the
// multi-error convention (errors.Join-style) rather than only matching the
// slice's own type.
func (es ErrorSlice) Unwrap() []error {
	return es
}

// ParseError reports a malformed tag, an unpaired section, or a partial
// carrying a forbidden modifier. Raised synchronously from Make (and so
// from the package-level Render).
type ParseError struct {
	Raw string
	Msg string
}

func (e *ParseError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("parse error: %s", e.Msg)
	}
	return fmt.Sprintf("parse error: %s at %q", e.Msg, e.Raw)
}

// BindingError reports a pass-to-function target that resolves to a value
// that is not callable. A target that does not resolve at all does not
// raise a BindingError; the tag is handled as a missing binding instead.
type BindingError struct {
	Raw string
	Msg string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("binding error: %s at %q", e.Msg, e.Raw)
}

// MissingBindingError reports a key that could not be resolved at render
// time. Suppressed to "" unless ErrorOnMissingTags is set.
type MissingBindingError struct {
	Key string
}

func (e *MissingBindingError) Error() string {
	return fmt.Sprintf("missing binding for %q", e.Key)
}

// CallableFailure reports a panic or error raised while evaluating a bound
// callable. Suppressed unless ErrorOnFuncFailure is set.
type CallableFailure struct {
	Key string
	Err error
}

func (e *CallableFailure) Error() string {
	return fmt.Sprintf("callable failed at %q: %s", e.Key, e.Err)
}

func (e *CallableFailure) Unwrap() error {
	return e.Err
}

// MissingPartial reports a referenced partial with no registered template.
// Suppressed to "" unless ErrorOnMissingTags is set.
type MissingPartial struct {
	Key string
}

func (e *MissingPartial) Error() string {
	return fmt.Sprintf("missing partial for %q", e.Key)
}

// overflowError is internal: it never propagates out of Render, only
// formats a diagnostic logged once evalf's chain hits the hard cap.
type overflowError struct {
	Key string
}

func (e *overflowError) Error() string {
	return fmt.Sprintf("callable chain overflow at %q", e.Key)
}
