// Package fault defines the error kinds shared by the domain packages.
// Services return one of these kinds (or wrap one); the transport layer
// maps them to HTTP status codes.
package fault

import "fmt"

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	if e.Ref == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.Ref)
}

func NotFound(entity, ref string) error {
	return &NotFoundError{Entity: entity, Ref: ref}
}

// StateConflictError reports a transition attempted from an incompatible
// state, or a uniqueness conflict such as a duplicate (teacher, year)
// appraisal. Current carries the entity's status at the time of the attempt.
type StateConflictError struct {
	Entity    string
	Ref       string
	Current   string
	Attempted string
}

func (e *StateConflictError) Error() string {
	if e.Attempted == "" {
		return fmt.Sprintf("%s %s: conflict in state %q", e.Entity, e.Ref, e.Current)
	}
	return fmt.Sprintf("%s %s: cannot %s from state %q", e.Entity, e.Ref, e.Attempted, e.Current)
}

func StateConflict(entity, ref, current, attempted string) error {
	return &StateConflictError{Entity: entity, Ref: ref, Current: current, Attempted: attempted}
}
