package domain

import "fmt"

// ValidationError reports a rejected input value and names the field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing (or soft-deleted) resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// ConflictError reports a duplicate unique field or a one-shot operation
// applied twice.
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Resource, e.Field, e.Value)
}

// InvalidTransitionError reports an order state machine violation. It is
// always surfaced to the caller, never masked or retried.
type InvalidTransitionError struct {
	Current   OrderStatus
	Operation Transition
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s order in status %q", e.Operation, e.Current)
}

// PersistenceError wraps a backend I/O failure. The engine never retries;
// callers may.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
