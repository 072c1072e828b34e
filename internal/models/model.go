package models

import (
	"time"

	"gorm.io/gorm"
)

// Model is the base model for all other models in BudgetBuddy.
//
// The ID is only ever set by the database. Resources that have not been
// persisted yet are represented without a Model, see the Editable types
// in the controllers package.
type Model struct {
	ID        uint64    `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AfterFind updates the timestamps to use UTC as
// timezone, not +0000. Yes, this is different.
//
// We already store them in UTC, but somehow reading
// them from the database returns them as +0000.
func (m *Model) AfterFind(_ *gorm.DB) (err error) {
	m.CreatedAt = m.CreatedAt.In(time.UTC)
	m.UpdatedAt = m.UpdatedAt.In(time.UTC)
	return nil
}
