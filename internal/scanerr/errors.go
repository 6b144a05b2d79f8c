// Package scanerr defines the concrete error kinds of spec §7: IoError,
// ParseError, ResolveError, ConflictError, StateError and CancelledError.
// Each is a struct implementing error and Unwrap so the scan aggregator can
// route them with errors.As instead of string matching.
package scanerr

import "fmt"

// IoError reports a per-entry filesystem failure. Per spec §4.1 and §7 a
// single IoError must never abort a walk or scan; it is accumulated into the
// scan report.
type IoError struct {
	Path  string
	Cause error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io error at %s: %v", e.Path, e.Cause)
}

func (e *IoError) Unwrap() error { return e.Cause }

// ParseErrorKind enumerates why a single file failed to parse.
type ParseErrorKind string

const (
	ParseErrMalformedYAML   ParseErrorKind = "malformed_yaml"
	ParseErrMissingGUID     ParseErrorKind = "missing_guid"
	ParseErrBadGUID         ParseErrorKind = "bad_guid"
	ParseErrUnknownImporter ParseErrorKind = "unknown_importer"
	ParseErrTimeout         ParseErrorKind = "timeout"
	ParseErrTooLarge        ParseErrorKind = "too_large"
)

// ParseError reports a per-file parse failure. Non-fatal: batch parsing
// continues past individual failures (spec §4.3.1).
type ParseError struct {
	Path   string
	Kind   ParseErrorKind
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error (%s) at %s: %s", e.Kind, e.Path, e.Detail)
}

// ResolveError reports a reference whose target GUID has no known node. The
// edge is skipped, not absorbed; this is recorded as a warning (spec §3,
// §4.5, §7).
type ResolveError struct {
	SourceGUID string
	TargetGUID string
	Reason     string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("unresolved reference %s -> %s: %s", e.SourceGUID, e.TargetGUID, e.Reason)
}

// ConflictKind enumerates why a GraphUpdater transaction was rejected.
type ConflictKind string

const (
	ConflictExistence       ConflictKind = "existence"
	ConflictEdgeValidity    ConflictKind = "edge_validity"
	ConflictCycleIntroduced ConflictKind = "cycle_introduction"
	ConflictDataConsistency ConflictKind = "data_consistency"
)

// ConflictError reports a rejected transaction. Per spec §4.5, a conflict
// aborts only the offending transaction: status becomes FAILED and no
// mutation in the batch is applied.
type ConflictError struct {
	Kind       ConflictKind
	Operations []string // human-readable description of the offending operations
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("transaction conflict (%s): %v", e.Kind, e.Operations)
}

// StateError reports an invariant violation — a bug, not user input. Per
// spec §7 this is fatal: the caller should log it and abort the process.
type StateError struct {
	Detail string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Detail)
}

// CancelledError reports cooperative cancellation of a scan or query.
type CancelledError struct {
	Stage string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("cancelled during %s", e.Stage)
}
