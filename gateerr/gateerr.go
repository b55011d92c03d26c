// Package gateerr defines the typed error kinds named in the design
// (ParseError, SchemaError, ConstraintError, TypeError, NotFound,
// CorruptRef, TransactionError, RecursionLimit, GateFailure). The Runner
// converts any of these into an `error` event carrying {message, source};
// IfExists-style suppression switches on Is* helpers rather than string
// matching, the way the teacher's parser distinguishes error classes by
// accumulating typed entries instead of raw strings.
package gateerr

import "fmt"

// ParseError reports a tokenizer or parser failure.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// SchemaError reports a DDL-level conflict: table/column exists or is
// missing, a rename collision, or an attempt to drop the id column.
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string { return e.Message }

// ConstraintError reports a NOT NULL (or, if enabled, UNIQUE/CHECK)
// violation.
type ConstraintError struct {
	Message string
}

func (e *ConstraintError) Error() string { return e.Message }

// TypeError reports a CAST failure or an arithmetic type mismatch that
// could not be coerced.
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string { return e.Message }

// NotFound reports a missing hash, ref, view, trigger, or index.
type NotFound struct {
	Kind string // "hash", "ref", "view", "trigger", "index", "table"
	Name string
}

func (e *NotFound) Error() string { return fmt.Sprintf("%s not found: %s", e.Kind, e.Name) }

// CorruptRef reports a ref that resolves to a hash absent from the
// content store — a structural invariant violation (I1).
type CorruptRef struct {
	RefName string
	Hash    string
}

func (e *CorruptRef) Error() string {
	return fmt.Sprintf("corrupt ref %q: object %s not found in store", e.RefName, e.Hash)
}

// TransactionError reports a double BEGIN, or a COMMIT/ROLLBACK with no
// active transaction.
type TransactionError struct {
	Message string
}

func (e *TransactionError) Error() string { return e.Message }

// RecursionLimit reports a recursive CTE exceeding the iteration cap.
type RecursionLimit struct {
	Limit int
}

func (e *RecursionLimit) Error() string {
	return fmt.Sprintf("recursive CTE exceeded %d iterations", e.Limit)
}

// GateFailure wraps a panic recovered from inside a gate's transform.
type GateFailure struct {
	Source string
	Cause  any
}

func (e *GateFailure) Error() string {
	return fmt.Sprintf("gate %q failed: %v", e.Source, e.Cause)
}

// IsSchemaError reports whether err is a *SchemaError, the one kind that
// IF EXISTS / IF NOT EXISTS clauses suppress per §7.
func IsSchemaError(err error) bool {
	_, ok := err.(*SchemaError)
	return ok
}
