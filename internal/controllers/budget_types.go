package controllers

import (
	"fmt"

	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// BudgetEditable represents all user configurable parameters
type BudgetEditable struct {
	Name     string          `json:"name" example:"Groceries" default:""`  // Name of the budget
	Amount   decimal.Decimal `json:"amount" example:"500.00"`              // The target amount for the budget
	Currency string          `json:"currency" example:"EUR" default:""`    // ISO 4217 code, empty for the default currency
	Date     types.Date      `json:"date" example:"2026-09-01" default:""` // Date the budget applies from, defaults to today
}

func (editable BudgetEditable) model() models.Budget {
	return models.Budget{
		Name:     editable.Name,
		Amount:   editable.Amount,
		Currency: editable.Currency,
		Date:     editable.Date,
	}
}

type BudgetLinks struct {
	Self    string `json:"self" example:"https://example.com/api/v1/budgets/17"`            // The budget itself
	Detail  string `json:"detail" example:"https://example.com/api/v1/budgets/17/detail"`   // The composite view of the budget and its entries
	Entries string `json:"entries" example:"https://example.com/api/v1/budgets/17/entries"` // Entries of this budget
}

type Budget struct {
	models.Model
	BudgetEditable
	Code   string `json:"code" example:"4F7A21C0"` // The collaboration code, empty while the budget is not shared
	Synced bool   `json:"synced" example:"true"`

	// These fields are computed
	TotalIncome   decimal.Decimal `json:"totalIncome" example:"1250.00"`
	TotalExpenses decimal.Decimal `json:"totalExpenses" example:"370.59"`
	Balance       decimal.Decimal `json:"balance" example:"1379.41"`

	Links BudgetLinks `json:"links"`
}

func newBudget(c *gin.Context, model models.Budget) Budget {
	url := c.GetString(string(models.DBContextURL))

	return Budget{
		Model: model.Model,
		BudgetEditable: BudgetEditable{
			Name:     model.Name,
			Amount:   model.Amount,
			Currency: model.Currency,
			Date:     model.Date,
		},
		Code:          model.Code,
		Synced:        model.Synced,
		TotalIncome:   model.TotalIncome,
		TotalExpenses: model.TotalExpenses,
		Balance:       model.Balance,
		Links: BudgetLinks{
			Self:    fmt.Sprintf("%s/v1/budgets/%d", url, model.ID),
			Detail:  fmt.Sprintf("%s/v1/budgets/%d/detail", url, model.ID),
			Entries: fmt.Sprintf("%s/v1/budgets/%d/entries", url, model.ID),
		},
	}
}

type BudgetListResponse struct {
	Data  []Budget `json:"data"`                                                // List of budgets
	Error *string  `json:"error" example:"the specified resource was not found"` // The error, if any occurred
}

type BudgetCreateResponse struct {
	Data  []BudgetResponse `json:"data"`                                                // List of the created budgets or their respective error
	Error *string          `json:"error" example:"the request body must not be empty"` // The error, if any occurred
}

func (b *BudgetCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	b.Data = append(b.Data, BudgetResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type BudgetResponse struct {
	Data  *Budget `json:"data"`                                                // Data for the budget
	Error *string `json:"error" example:"there is no budget matching your query"` // The error, if any occurred
}

// BudgetDetailResponse wraps the composite view of one budget.
type BudgetDetailResponse struct {
	Data  *BudgetDetail `json:"data"`
	Error *string       `json:"error" example:"there is no budget matching your query"` // The error, if any occurred
}

// BudgetDetail is the composite of a budget and its entries, recomputed as a
// whole whenever either side changes.
type BudgetDetail struct {
	Budget  Budget  `json:"budget"`
	Entries []Entry `json:"entries"`
}

// ShareResponse carries the collaboration code of a shared budget.
type ShareResponse struct {
	Data  *ShareData `json:"data"`
	Error *string    `json:"error" example:"there is no budget matching your query"` // The error, if any occurred
}

type ShareData struct {
	Code string `json:"code" example:"4F7A21C0"` // The collaboration code to pass to other participants
}

// JoinEditable is the request body for joining a shared budget.
type JoinEditable struct {
	Code string `json:"code" example:"4F7A21C0"` // The collaboration code of the budget to join
}
