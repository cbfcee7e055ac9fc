package nodemap

import (
	"errors"
	"fmt"
)

var (
	// ErrNoControlElement indicates the fragment holds no input, select or textarea element.
	ErrNoControlElement = errors.New("nodemap: no control element")
	// ErrNoIdentifier indicates the control element has no identifier attribute.
	ErrNoIdentifier = errors.New("nodemap: control has no identifier")
	// ErrMissingFragment indicates a parameter without exported markup.
	ErrMissingFragment = errors.New("nodemap: raw fragment is missing")
	// ErrNonIdempotentRules indicates a correction table whose output would be rewritten again.
	ErrNonIdempotentRules = errors.New("nodemap: correction rules are not idempotent")
	// ErrInvalidRule indicates a correction rule with an empty pattern.
	ErrInvalidRule = errors.New("nodemap: invalid correction rule")
)

// ParseError describes why a fragment could not be turned into a parsed field.
type ParseError struct {
	Element string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Element == "" {
		return fmt.Sprintf("parse fragment: %v", e.Err)
	}
	return fmt.Sprintf("parse fragment: <%s>: %v", e.Element, e.Err)
}

// Unwrap exposes the underlying sentinel.
func (e *ParseError) Unwrap() error { return e.Err }
