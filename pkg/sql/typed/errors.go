package typed

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	// ErrMissingTypeDeclaration is returned when a value is bound without a declared type
	ErrMissingTypeDeclaration = errors.New("missing type declaration")
	// ErrTypeMismatch is returned when the value can not be encoded as the declared type
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnknownSlot is returned when the slot does not exist in the statement
	ErrUnknownSlot = errors.New("unknown parameter slot")
	// ErrUnboundSlot is returned when a statement is rendered before all slots are bound
	ErrUnboundSlot = errors.New("unbound parameter slot")
	// ErrMixedPlaceholders is returned when a statement uses both `:name` and `?` placeholders
	ErrMixedPlaceholders = errors.New("named and positional placeholders can not be mixed")
)

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	datatypeMismatchCode     = "42804"
	connectionExceptionClass = "08"
)

// TypeMismatchError describes a value that does not fit the declared type
type TypeMismatchError struct {
	Slot     Slot
	Declared SQLType
	Actual   string
	Reason   string
}

// Error implements the error interface
func (e *TypeMismatchError) Error() string {
	msg := fmt.Sprintf("type mismatch: can not bind %s as %s", e.Actual, e.Declared)
	if !e.Slot.IsZero() {
		msg = fmt.Sprintf("type mismatch: can not bind %s as %s to %s", e.Actual, e.Declared, e.Slot)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is makes errors.Is(err, ErrTypeMismatch) work
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// Kind is the category of an error returned while binding or executing a statement
type Kind int

const (
	// KindNone means there was no error
	KindNone Kind = iota
	// KindMissingTypeDeclaration is a programming error, never retry
	KindMissingTypeDeclaration
	// KindTypeMismatch is a value that does not fit the declared type, detected locally
	KindTypeMismatch
	// KindServerTypeMismatch is the server rejecting a parameter of the wrong type,
	// the caller must bind again with the correct type
	KindServerTypeMismatch
	// KindConnection is a transport failure, the caller may retry
	KindConnection
	// KindOther is any other error
	KindOther
)

var kindNames = map[Kind]string{
	KindNone:                   "none",
	KindMissingTypeDeclaration: "missing_type_declaration",
	KindTypeMismatch:           "type_mismatch",
	KindServerTypeMismatch:     "server_type_mismatch",
	KindConnection:             "connection",
	KindOther:                  "other",
}

// String implements the Stringer interface
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Retryable is true only for connection errors. A retry with the same binding after any
// other error fails the same way.
func (k Kind) Retryable() bool {
	return k == KindConnection
}

// Classify returns the category of err without modifying it
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMissingTypeDeclaration):
		return KindMissingTypeDeclaration
	case errors.Is(err, ErrTypeMismatch):
		return KindTypeMismatch
	case IsServerTypeMismatch(err):
		return KindServerTypeMismatch
	case IsConnectionError(err):
		return KindConnection
	default:
		return KindOther
	}
}

// IsServerTypeMismatch returns true when the server rejected the statement because a
// parameter type did not match the column type.
func IsServerTypeMismatch(err error) bool {
	return sqlState(err) == datatypeMismatchCode
}

// IsConnectionError returns true for transport-level failures
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if code := sqlState(err); len(code) == 5 && code[:2] == connectionExceptionClass {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// sqlState extracts the SQLSTATE from lib/pq and pgx errors
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}
