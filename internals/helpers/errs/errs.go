// Typed domain failures. Services raise these; controllers map them to HTTP
// status codes. Nothing in here knows about fiber.
package errs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInvalidTransition
	KindInsufficientEntitlement
	KindAlreadyReviewed
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

/* =========================
   Constructors
   ========================= */

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(entity, from, to string) error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("%s: transition %s -> %s not permitted", entity, from, to),
	}
}

func InsufficientEntitlement(format string, args ...any) error {
	return &Error{Kind: KindInsufficientEntitlement, Message: fmt.Sprintf(format, args...)}
}

func AlreadyReviewed() error {
	return &Error{Kind: KindAlreadyReviewed, Message: "booking already reviewed"}
}

/* =========================
   Inspection
   ========================= */

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, k Kind) bool { return KindOf(err) == k }

/* =========================
   Postgres mapping
   ========================= */

const (
	pgExclusionViolation  = "23P01"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// FromPG translates constraint violations into domain errors. An exclusion
// violation on (coach_id, time range) is a write-time conflict signal.
func FromPG(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return &Error{Kind: KindConflict, Message: "time range overlap", Err: err}
		case pgUniqueViolation:
			return &Error{Kind: KindConflict, Message: "duplicate key", Err: err}
		case pgForeignKeyViolation:
			return &Error{Kind: KindNotFound, Message: "referenced row not found", Err: err}
		}
	}
	return err
}

// IsWriteConflict reports whether err is a write-time conflict signal that
// the creation paths may retry exactly once.
func IsWriteConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgExclusionViolation || pgErr.Code == pgUniqueViolation
	}
	return false
}

/* =========================
   HTTP mapping
   ========================= */

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidTransition, KindAlreadyReviewed:
		return http.StatusConflict
	case KindInsufficientEntitlement:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
