package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrConflict             = errors.New("conflict")
	ErrNotFound             = errors.New("not found or unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrRideClosed           = errors.New("ride is closed")
	ErrNoValidFields        = errors.New("no valid fields to update")
	ErrInProgressRestricted = errors.New("only specialRequirements can be changed while the ride is in progress")
	ErrCancelNotAllowed     = errors.New("ride can no longer be cancelled")
	ErrProfileCreation      = errors.New("failed to create profile")
	ErrIdentityCreation     = errors.New("failed to create identity")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
