package models

import (
	"errors"
	"fmt"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
	ErrDateInvalid      = errors.New("the date must be in the format YYYY-MM-DD")

	// ErrBudgetNotExisting wraps ErrResourceNotFound so that creating an
	// entry for a vanished budget reports a missing resource.
	ErrBudgetNotExisting = fmt.Errorf("%w budget matching your query", ErrResourceNotFound)
)
