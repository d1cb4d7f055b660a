package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel errors classify every failure a service can surface. Handlers
// map them to HTTP statuses: ErrValidation -> 400, ErrNotFound -> 404,
// ErrConflict -> 409. Anything else is an internal failure.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

func validationErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func conflictErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// asNotFound converts a gorm record-not-found into the service taxonomy,
// leaving other database errors untouched.
func asNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr(format, args...)
	}
	return err
}
