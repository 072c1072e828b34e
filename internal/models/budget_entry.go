package models

import (
	"errors"
	"strings"
	"time"

	"github.com/budgetbuddy/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// EntryType determines whether an entry adds money to a budget or
// subtracts it.
type EntryType string

const (
	IncomeEntry  EntryType = "INCOME"
	OutcomeEntry EntryType = "OUTCOME"
)

// EntryTypes returns all valid entry types.
func EntryTypes() []EntryType {
	return []EntryType{IncomeEntry, OutcomeEntry}
}

// Valid reports whether the entry type is one of the known types.
func (t EntryType) Valid() bool {
	return slices.Contains(EntryTypes(), t)
}

// Category classifies an entry.
type Category string

const (
	CategoryFood           Category = "FOOD"
	CategoryGroceries      Category = "GROCERIES"
	CategoryTransportation Category = "TRANSPORTATION"
	CategoryHousing        Category = "HOUSING"
	CategoryUtilities      Category = "UTILITIES"
	CategoryHealth         Category = "HEALTH"
	CategoryEntertainment  Category = "ENTERTAINMENT"
	CategoryEducation      Category = "EDUCATION"
	CategoryTravel         Category = "TRAVEL"
	CategorySalary         Category = "SALARY"
	CategoryOther          Category = "OTHER"
)

// Categories returns all valid categories.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryGroceries,
		CategoryTransportation,
		CategoryHousing,
		CategoryUtilities,
		CategoryHealth,
		CategoryEntertainment,
		CategoryEducation,
		CategoryTravel,
		CategorySalary,
		CategoryOther,
	}
}

// Valid reports whether the category is one of the known categories.
func (c Category) Valid() bool {
	return slices.Contains(Categories(), c)
}

// SyncState is the reconciliation state of an entry with the remote
// collaboration backend.
type SyncState string

const (
	// SyncStateLocalPending marks an entry with local changes the remote
	// does not know about yet.
	SyncStateLocalPending SyncState = "LOCAL_PENDING"
	// SyncStateSyncing marks an entry that is part of an in-flight,
	// explicitly triggered sync.
	SyncStateSyncing SyncState = "SYNCING"
	// SyncStateSynced marks an entry the remote has acknowledged.
	SyncStateSynced SyncState = "SYNCED"
	// SyncStateConflict marks an entry that was overwritten with the
	// remote version after a concurrent edit.
	SyncStateConflict SyncState = "CONFLICT"
)

// BudgetEntry represents one income or outcome transaction recorded
// against a budget.
type BudgetEntry struct {
	Model
	BudgetID    uint64          `json:"budgetId"`
	Budget      Budget          `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,2)"`
	Description string          `json:"description"`
	Type        EntryType       `json:"type"`
	Category    Category        `json:"category"`
	Date        types.Date      `json:"date"`
	Invoice     *string         `json:"invoice,omitempty"` // Path of an attached invoice file
	Synced      bool            `json:"synced"`
	SyncState   SyncState       `json:"syncState"`

	// Reconciliation data, all of it owned by the sync engine
	RemoteID        uuid.UUID `json:"-"` // Identity of the entry at the remote service, Nil while unknown
	RemoteUpdatedAt time.Time `json:"-"` // Server side timestamp of the last acknowledged write
	CreatedBy       string    `json:"createdBy,omitempty"` // Email of the creator as reported by the remote
	UpdatedBy       string    `json:"updatedBy,omitempty"` // Email of the last writer as reported by the remote
}

var (
	ErrAmountNegative   = errors.New("the amount must not be negative")
	ErrEntryTypeInvalid = errors.New("the entry type must be INCOME or OUTCOME")
	ErrCategoryInvalid  = errors.New("the category is not one of the known categories")
)

// BeforeSave sets default values and verifies all user configurable fields.
func (e *BudgetEntry) BeforeSave(_ *gorm.DB) error {
	e.Description = strings.TrimSpace(e.Description)

	if e.Amount.IsNegative() {
		return ErrAmountNegative
	}

	if !e.Type.Valid() {
		return ErrEntryTypeInvalid
	}

	if e.Category != "" && !e.Category.Valid() {
		return ErrCategoryInvalid
	}

	if e.Date.IsZero() {
		e.Date = types.Today()
	} else if _, err := types.ParseDate(e.Date.String()); err != nil {
		return ErrDateInvalid
	}

	if e.SyncState == "" {
		e.SyncState = SyncStateLocalPending
	}

	return nil
}

// BeforeCreate resolves the category from the category rules when the
// caller did not set one.
func (e *BudgetEntry) BeforeCreate(tx *gorm.DB) error {
	if e.Category != "" {
		return nil
	}

	category, ok, err := ResolveCategory(tx, e.Description)
	if err != nil {
		return err
	}

	if !ok {
		category = CategoryOther
	}

	e.Category = category
	return nil
}

// AfterFind normalizes timestamps and the amount, which the API guarantees
// to have at most two fractional digits.
func (e *BudgetEntry) AfterFind(tx *gorm.DB) error {
	err := e.Model.AfterFind(tx)
	if err != nil {
		return err
	}

	e.Amount = e.Amount.Round(2)
	e.RemoteUpdatedAt = e.RemoteUpdatedAt.In(time.UTC)
	return nil
}

// Equal reports whether two entries are equal in every field.
//
// decimal.Decimal values with different exponents can represent the same
// number, so the amount needs its own comparison instead of ==.
func (e BudgetEntry) Equal(other BudgetEntry) bool {
	if !e.Amount.Equal(other.Amount) {
		return false
	}

	if (e.Invoice == nil) != (other.Invoice == nil) {
		return false
	}
	if e.Invoice != nil && *e.Invoice != *other.Invoice {
		return false
	}

	return e.ID == other.ID &&
		e.BudgetID == other.BudgetID &&
		e.Description == other.Description &&
		e.Type == other.Type &&
		e.Category == other.Category &&
		e.Date == other.Date &&
		e.Synced == other.Synced &&
		e.SyncState == other.SyncState &&
		e.RemoteID == other.RemoteID &&
		e.RemoteUpdatedAt.Equal(other.RemoteUpdatedAt) &&
		e.CreatedBy == other.CreatedBy &&
		e.UpdatedBy == other.UpdatedBy
}

// Equal reports whether two budgets are equal in every user visible field.
func (b Budget) Equal(other Budget) bool {
	return b.ID == other.ID &&
		b.Name == other.Name &&
		b.Amount.Equal(other.Amount) &&
		b.Currency == other.Currency &&
		b.Date == other.Date &&
		b.Code == other.Code &&
		b.Synced == other.Synced &&
		b.TotalIncome.Equal(other.TotalIncome) &&
		b.TotalExpenses.Equal(other.TotalExpenses) &&
		b.Balance.Equal(other.Balance)
}
