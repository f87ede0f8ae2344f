package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dutyroster/schedule-backend/internal/database"
)

// Error kinds returned by services. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error carries a caller-facing message and one of the kinds above
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validationError(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func unauthorizedError(format string, args ...interface{}) error {
	return &Error{Kind: ErrUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// notFoundIfNoRows turns sql.ErrNoRows from an update into a not-found error naming the entity
func notFoundIfNoRows(err error, entity string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundError("%s %d not found", entity, id)
	}
	return err
}

// notFoundIfMissingParent turns a foreign key violation from an insert into a not-found error
// naming the parent entity
func notFoundIfMissingParent(err error, parent string, id int64) error {
	if database.IsForeignKeyViolation(err) {
		return notFoundError("%s %d not found", parent, id)
	}
	return err
}
