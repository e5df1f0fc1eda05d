package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrSweetNotFound   = errors.New("sweet not found")
	ErrOutOfStock      = errors.New("out of stock")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// SweetNotFoundError names the cart line that referenced a missing sweet.
type SweetNotFoundError struct {
	ID int64
}

func (e *SweetNotFoundError) Error() string {
	return fmt.Sprintf("sweet with ID %d not found", e.ID)
}

func (e *SweetNotFoundError) Is(target error) bool {
	return target == ErrSweetNotFound
}

// InsufficientStockError names the sweet whose stock could not cover a
// requested quantity.
type InsufficientStockError struct {
	ID   int64
	Name string
}

func (e *InsufficientStockError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("insufficient stock for sweet %d", e.ID)
	}
	return fmt.Sprintf("insufficient stock for %s", e.Name)
}

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001":
			return ErrorClassSerialization
		case "40P01":
			return ErrorClassDeadlock
		case "55P03":
			return ErrorClassTransient
		case "23505", "23503", "23502", "23514":
			return ErrorClassPermanent
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

// IsUniqueViolation reports whether err is a postgres unique-constraint
// violation, used to map duplicate emails to ErrEmailTaken.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
