// Package gameerr defines the error taxonomy shared by every command surface.
// Commands either fully apply or fail with one of these; a failed command
// leaves game state untouched.
package gameerr

import (
	"errors"
	"fmt"
)

// NotFoundError reports a missing game, round, question, team or player.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NewNotFound builds a NotFoundError for the given entity kind and id.
func NewNotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// InvalidTransitionError reports a lifecycle transition whose target state is
// not reachable from the current one. Never retried automatically.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition %s -> %s", e.Entity, e.From, e.To)
}

// InvalidCommandError reports malformed command arguments, e.g. a missing
// team id where one is required.
type InvalidCommandError struct {
	Reason string
}

func (e *InvalidCommandError) Error() string {
	return "invalid command: " + e.Reason
}

// NewInvalidCommand builds an InvalidCommandError with a formatted reason.
func NewInvalidCommand(format string, args ...any) *InvalidCommandError {
	return &InvalidCommandError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError reports a domain constraint violation on authored data,
// e.g. a team name over the length limit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidTransition reports whether err wraps an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var it *InvalidTransitionError
	return errors.As(err, &it)
}

// IsInvalidCommand reports whether err wraps an InvalidCommandError.
func IsInvalidCommand(err error) bool {
	var ic *InvalidCommandError
	return errors.As(err, &ic)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
