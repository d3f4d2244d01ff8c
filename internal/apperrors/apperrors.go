package apperrors

import (
	"errors"
	"fmt"
)

// Sentinels for the five error classes every handler maps to a status code.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("invalid input")
	ErrDataAccess     = errors.New("data access failed")
)

func Authentication(msg string) error {
	return fmt.Errorf("%w: %s", ErrAuthentication, msg)
}

func Authorization(msg string) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, msg)
}

func NotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// DataAccess wraps a store failure so handlers surface a 500 without leaking
// driver detail to the caller.
func DataAccess(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrDataAccess, op, err)
}

func IsAuthentication(err error) bool { return errors.Is(err, ErrAuthentication) }
func IsAuthorization(err error) bool  { return errors.Is(err, ErrAuthorization) }
func IsNotFound(err error) bool       { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool     { return errors.Is(err, ErrValidation) }
func IsDataAccess(err error) bool     { return errors.Is(err, ErrDataAccess) }
