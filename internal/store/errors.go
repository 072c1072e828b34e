package store

import (
	"fmt"

	"github.com/budgetbuddy/backend/internal/models"
)

// errNotFound reports that a mutation hit a row that has vanished.
func errNotFound(resource string) error {
	return fmt.Errorf("%w %s matching your query", models.ErrResourceNotFound, resource)
}
