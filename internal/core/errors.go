package core

import (
	"errors"
	"fmt"
)

// Error kinds. Concrete failures wrap one of these so callers can branch with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("expense not found")
	ErrStorage    = errors.New("storage error")
)

var (
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be a positive number", ErrValidation)
	ErrInvalidBudget   = fmt.Errorf("%w: budget must be a positive number", ErrValidation)
	ErrEmptyCategory   = fmt.Errorf("%w: category is required", ErrValidation)
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrInvalidDate     = fmt.Errorf("%w: date must be a valid YYYY-MM-DD date", ErrValidation)
)
