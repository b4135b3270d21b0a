package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the mapper cares about
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

var (
	// ErrNotFound reports that the targeted row does not exist. It is a
	// normal outcome, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is wrapped by every ValidationError
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict reports that a row cannot be removed while other rows
	// still reference it
	ErrConflict = errors.New("conflict")
)

// ValidationError describes rejected client input before any store access
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError builds a ValidationError for field
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// WriteError is a store failure during a transactional write. By the time a
// WriteError is returned the transaction has already been rolled back.
type WriteError struct {
	Op         string
	Constraint string
	Err        error
}

func (e *WriteError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s failed (constraint %s): %v", e.Op, e.Constraint, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// NewWriteError wraps err as a WriteError for op, recording the violated
// constraint when err comes from Postgres. Errors that already carry an
// outcome of their own are returned unchanged.
func NewWriteError(op string, err error) error {
	if err == nil {
		return nil
	}
	var we *WriteError
	if errors.As(err, &we) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrConflict) {
		return err
	}
	we = &WriteError{Op: op, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		we.Constraint = pgErr.ConstraintName
	}
	return we
}

// IsForeignKeyViolation reports whether err is a Postgres foreign key violation
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// IsUniqueViolation reports whether err is a Postgres unique violation
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Outcome is the caller-facing classification of an operation's result
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNotFound
	OutcomeInvalidInput
	OutcomeConflict
	OutcomeWriteFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeInvalidInput:
		return "invalid_input"
	case OutcomeConflict:
		return "conflict"
	default:
		return "write_failure"
	}
}

// Classify maps an error chain onto an Outcome. Anything unrecognised is a
// write failure.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, ErrConflict):
		return OutcomeConflict
	default:
		return OutcomeWriteFailure
	}
}

// StatusFor returns the HTTP status used to render an outcome. created picks
// 201 over 200 for successful inserts.
func StatusFor(o Outcome, created bool) int {
	switch o {
	case OutcomeSuccess:
		if created {
			return http.StatusCreated
		}
		return http.StatusOK
	case OutcomeNotFound:
		return http.StatusNotFound
	case OutcomeInvalidInput:
		return http.StatusBadRequest
	case OutcomeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
