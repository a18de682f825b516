package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Emma781227/Ble-dor/gate"
	"github.com/Emma781227/Ble-dor/validation"
)

var (
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrForbidden              = errors.New("forbidden")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrMissingCustomerName    = errors.New("customer name is required")
	ErrProductNotFound        = errors.New("product not found")
	ErrInvalidStatus          = errors.New("invalid order status")
	ErrOrderNotFound          = errors.New("order not found")
	ErrDuplicateTicket        = errors.New("duplicate ticket number")
	ErrTicketGenerationFailed = errors.New("could not generate a unique ticket number")
	ErrStorage                = errors.New("storage error")

	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError carries per-field violation codes. It matches ErrValidation.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string { return e.Violations.Error() }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(v validation.Violations) error {
	return &ValidationError{Violations: v}
}

// ProductNotFoundError names every requested product id the catalog lacks.
type ProductNotFoundError struct {
	IDs []string
}

func (e *ProductNotFoundError) Error() string {
	return "product not found: " + strings.Join(e.IDs, ", ")
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// authzErr converts gate errors to the service taxonomy.
func authzErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gate.ErrUnauthenticated):
		return ErrUnauthenticated
	case errors.Is(err, gate.ErrForbidden):
		return ErrForbidden
	default:
		return err
	}
}
