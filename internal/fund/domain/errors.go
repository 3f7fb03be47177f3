package domain

import "fmt"

// ValidationError indicates user-supplied input violated a precondition
// checked before any store mutation happens.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// BillNotFoundError indicates a referenced bill identifier does not exist
// in the fund.
type BillNotFoundError struct {
	BillID string
}

// Error implements the error interface.
func (e *BillNotFoundError) Error() string {
	return fmt.Sprintf("bill not found: %q", e.BillID)
}

// DuplicateBillError indicates an attempt to add a bill whose identifier
// already exists in the fund.
type DuplicateBillError struct {
	BillID string
}

// Error implements the error interface.
func (e *DuplicateBillError) Error() string {
	return fmt.Sprintf("bill already exists: %q", e.BillID)
}

// UnknownStrategyError indicates an allocation or scheduler strategy name
// that is not registered. It is the runtime error path for names sourced
// from configuration; in-code callers use the typed strategy constants.
type UnknownStrategyError struct {
	Kind string // "allocation" or "scheduler"
	Name string
}

// Error implements the error interface.
func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown %s strategy: %q", e.Kind, e.Name)
}

// SourceFormatError indicates a bulk bill source file could not be parsed.
// No partial ingestion occurs when it is returned.
type SourceFormatError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *SourceFormatError) Error() string {
	return fmt.Sprintf("unreadable bill source %s: %s", e.Path, e.Reason)
}
