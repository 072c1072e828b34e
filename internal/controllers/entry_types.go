package controllers

import (
	"fmt"

	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// EntryEditable represents all user configurable parameters
type EntryEditable struct {
	Amount      decimal.Decimal  `json:"amount" example:"14.50"`
	Description string           `json:"description" example:"Supermarket Mundo" default:""`
	Type        models.EntryType `json:"type" example:"OUTCOME"`
	Category    models.Category  `json:"category" example:"GROCERIES" default:""` // Empty to resolve the category from the rules
	Date        types.Date       `json:"date" example:"2026-09-01" default:""`    // Defaults to today
	Invoice     *string          `json:"invoice,omitempty"`                       // Path of an attached invoice file
}

func (editable EntryEditable) model() models.BudgetEntry {
	return models.BudgetEntry{
		Amount:      editable.Amount,
		Description: editable.Description,
		Type:        editable.Type,
		Category:    editable.Category,
		Date:        editable.Date,
		Invoice:     editable.Invoice,
	}
}

type EntryLinks struct {
	Self   string `json:"self" example:"https://example.com/api/v1/entries/42"`  // The entry itself
	Budget string `json:"budget" example:"https://example.com/api/v1/budgets/7"` // The budget the entry belongs to
}

type Entry struct {
	models.Model
	EntryEditable
	BudgetID  uint64           `json:"budgetId" example:"7"`
	Synced    bool             `json:"synced" example:"false"`
	SyncState models.SyncState `json:"syncState" example:"LOCAL_PENDING"`
	CreatedBy string           `json:"createdBy,omitempty" example:"jo@example.com"` // Email of the creator as reported by the remote
	UpdatedBy string           `json:"updatedBy,omitempty" example:"sam@example.com"` // Email of the last writer as reported by the remote

	Links EntryLinks `json:"links"`
}

func newEntry(c *gin.Context, model models.BudgetEntry) Entry {
	url := c.GetString(string(models.DBContextURL))

	return Entry{
		Model: model.Model,
		EntryEditable: EntryEditable{
			Amount:      model.Amount,
			Description: model.Description,
			Type:        model.Type,
			Category:    model.Category,
			Date:        model.Date,
			Invoice:     model.Invoice,
		},
		BudgetID:  model.BudgetID,
		Synced:    model.Synced,
		SyncState: model.SyncState,
		CreatedBy: model.CreatedBy,
		UpdatedBy: model.UpdatedBy,
		Links: EntryLinks{
			Self:   fmt.Sprintf("%s/v1/entries/%d", url, model.ID),
			Budget: fmt.Sprintf("%s/v1/budgets/%d", url, model.BudgetID),
		},
	}
}

func newEntries(c *gin.Context, models []models.BudgetEntry) []Entry {
	entries := make([]Entry, 0, len(models))
	for _, model := range models {
		entries = append(entries, newEntry(c, model))
	}

	return entries
}

type EntryListResponse struct {
	Data  []Entry `json:"data"`                                                   // List of entries
	Error *string `json:"error" example:"there is no budget matching your query"` // The error, if any occurred
}

type EntryCreateResponse struct {
	Data  []EntryResponse `json:"data"`                                               // List of the created entries or their respective error
	Error *string         `json:"error" example:"the request body must not be empty"` // The error, if any occurred
}

func (e *EntryCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	e.Data = append(e.Data, EntryResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type EntryResponse struct {
	Data  *Entry  `json:"data"`                                                         // Data for the entry
	Error *string `json:"error" example:"there is no budget entry matching your query"` // The error, if any occurred
}

// EntryDeleteEditable is the request body for batch deleting entries.
type EntryDeleteEditable struct {
	IDs []uint64 `json:"ids" example:"4,17,23"` // IDs of the entries to delete
}
