package models

import (
	"errors"
	"strings"

	"github.com/budgetbuddy/backend/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"gorm.io/gorm"
)

// Budget represents a spending plan.
//
// A budget is the highest level of organization in BudgetBuddy, every entry
// references exactly one budget.
type Budget struct {
	Model
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,2)"` // The target amount for the budget
	Currency string          `json:"currency"`                         // ISO 4217 code, empty for the default currency
	Date     types.Date      `json:"date"`                             // The date the budget was created on
	Code     string          `json:"code"`                             // The collaboration code, empty while the budget is not shared
	Synced   bool            `json:"synced"`

	// These fields are calculated from the entries of the budget and never stored
	TotalIncome   decimal.Decimal `json:"totalIncome" gorm:"-"`
	TotalExpenses decimal.Decimal `json:"totalExpenses" gorm:"-"`
	Balance       decimal.Decimal `json:"balance" gorm:"-"`
}

var (
	ErrBudgetNameEmpty = errors.New("the budget name must not be empty")
	ErrCurrencyInvalid = errors.New("the currency must be a valid ISO 4217 code")
)

// BeforeSave sets default values and verifies all user configurable fields.
func (b *Budget) BeforeSave(_ *gorm.DB) error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return ErrBudgetNameEmpty
	}

	if b.Date.IsZero() {
		b.Date = types.Today()
	} else if _, err := types.ParseDate(b.Date.String()); err != nil {
		return ErrDateInvalid
	}

	if b.Currency != "" {
		if _, err := currency.ParseISO(b.Currency); err != nil {
			return ErrCurrencyInvalid
		}
	}

	return nil
}

// AfterFind normalizes the amount to the two fractional digits the API
// guarantees.
func (b *Budget) AfterFind(tx *gorm.DB) error {
	err := b.Model.AfterFind(tx)
	if err != nil {
		return err
	}

	b.Amount = b.Amount.Round(2)
	return nil
}

// WithCalculations computes the total income, total expenses and the
// remaining balance from the entries of the budget.
//
// The balance is the target amount plus all income minus all expenses.
func (b Budget) WithCalculations(db *gorm.DB) (Budget, error) {
	income, err := b.entrySum(db, IncomeEntry)
	if err != nil {
		return Budget{}, err
	}

	expenses, err := b.entrySum(db, OutcomeEntry)
	if err != nil {
		return Budget{}, err
	}

	b.TotalIncome = income
	b.TotalExpenses = expenses
	b.Balance = b.Amount.Add(income).Sub(expenses).Round(2)

	return b, nil
}

// entrySum returns the sum of all entry amounts of one type for the budget.
func (b Budget) entrySum(db *gorm.DB, t EntryType) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	err := db.
		Table("budget_entries").
		Where("budget_id = ?", b.ID).
		Where("type = ?", t).
		Select("SUM(amount)").
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	// The sum is NULL when the budget has no entries of this type
	if !sum.Valid {
		return decimal.Zero, nil
	}

	return sum.Decimal.Round(2), nil
}
