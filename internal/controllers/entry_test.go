package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/budgetbuddy/backend/internal/controllers"
	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/types"
	"github.com/budgetbuddy/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEntriesOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestEntriesOptions() {
	tests := []struct {
		name   string
		id     string // path at the /v1/entries endpoint to test
		status int    // Expected HTTP status code
	}{
		{"No entry with this ID", "4096", http.StatusNotFound},
		{"Not a valid ID", "NotANumber", http.StatusBadRequest},
		{"Entry exists", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			id := tt.id
			if id == "" {
				budget := suite.createTestBudget(controllers.BudgetEditable{})
				entry := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(1)})
				id = fmt.Sprintf("%d", entry.Data.ID)
			}

			r := test.Request(suite.co, t, http.MethodOptions, fmt.Sprintf("http://example.com/v1/entries/%s", id), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestEntriesCreate() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})

	entry := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{
		Description: "Supermarket Mundo",
		Amount:      decimal.RequireFromString("14.50"),
		Category:    models.CategoryGroceries,
	})

	require.NotNil(suite.T(), entry.Data)
	assert.Equal(suite.T(), budget.Data.ID, entry.Data.BudgetID)
	assert.Equal(suite.T(), models.SyncStateLocalPending, entry.Data.SyncState)
	assert.False(suite.T(), entry.Data.Synced)
	assert.Equal(suite.T(), budget.Data.Links.Self, entry.Data.Links.Budget)
}

// TestEntriesCreateResolvesCategory verifies that entries without a category
// get one from the category rules.
func (suite *TestSuiteStandard) TestEntriesCreateResolvesCategory() {
	suite.createTestRule(controllers.RuleEditable{
		Priority: 1,
		Match:    "Supermarket*",
		Category: models.CategoryGroceries,
	})

	budget := suite.createTestBudget(controllers.BudgetEditable{})

	entry := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{
		Description: "Supermarket Mundo",
		Amount:      decimal.NewFromInt(14),
	})
	require.NotNil(suite.T(), entry.Data)
	assert.Equal(suite.T(), models.CategoryGroceries, entry.Data.Category)

	// Without a matching rule the entry lands in OTHER
	entry = suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{
		Description: "Cinema",
		Amount:      decimal.NewFromInt(12),
	})
	require.NotNil(suite.T(), entry.Data)
	assert.Equal(suite.T(), models.CategoryOther, entry.Data.Category)
}

func (suite *TestSuiteStandard) TestEntriesCreateUnknownBudget() {
	body := []controllers.EntryEditable{
		{Amount: decimal.NewFromInt(1), Type: models.OutcomeEntry},
	}

	r := test.Request(suite.co, suite.T(), http.MethodPost, "http://example.com/v1/budgets/4096/entries", body)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestEntriesCreateInvalid() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})

	suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{
		Amount: decimal.NewFromInt(-10),
	}, http.StatusBadRequest)

	suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{
		Amount: decimal.NewFromInt(10),
		Type:   "TRANSFER",
	}, http.StatusBadRequest)
}

// TestEntriesGetFiltered verifies the filter parameters of the entry list.
func (suite *TestSuiteStandard) TestEntriesGetFiltered() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})

	suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{
		Description: "Supermarket Mundo",
		Amount:      decimal.RequireFromString("14.50"),
		Category:    models.CategoryGroceries,
		Date:        types.Date("2026-03-02"),
	})
	suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{
		Description: "Monthly salary",
		Amount:      decimal.RequireFromString("2500.00"),
		Type:        models.IncomeEntry,
		Category:    models.CategorySalary,
		Date:        types.Date("2026-03-01"),
	})
	suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{
		Description: "SUPERMARKET corner shop",
		Amount:      decimal.RequireFromString("7.10"),
		Category:    models.CategoryGroceries,
		Date:        types.Date("2026-02-14"),
	})

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"no filter returns everything", "", 3},
		{"description is case-insensitive", "description=supermarket", 2},
		{"type", "type=INCOME", 1},
		{"category", "category=GROCERIES", 2},
		{"date bounds are inclusive", "startDate=2026-03-01&endDate=2026-03-02", 2},
		{"predicates combine", "description=supermarket&startDate=2026-03-01", 1},
		{"no match", "description=pharmacy", 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			url := fmt.Sprintf("http://example.com/v1/budgets/%d/entries?%s", budget.Data.ID, tt.query)

			r := test.Request(suite.co, t, http.MethodGet, url, "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response controllers.EntryListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.count)
		})
	}
}

func (suite *TestSuiteStandard) TestEntriesGetNewestFirst() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})

	older := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{
		Amount: decimal.NewFromInt(1),
		Date:   types.Date("2026-02-01"),
	})
	newer := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{
		Amount: decimal.NewFromInt(2),
		Date:   types.Date("2026-03-01"),
	})

	r := test.Request(suite.co, suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/budgets/%d/entries", budget.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response controllers.EntryListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 2)

	assert.Equal(suite.T(), newer.Data.ID, response.Data[0].ID)
	assert.Equal(suite.T(), older.Data.ID, response.Data[1].ID)
}

func (suite *TestSuiteStandard) TestEntriesGetUnknownBudget() {
	r := test.Request(suite.co, suite.T(), http.MethodGet, "http://example.com/v1/budgets/4096/entries", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

// TestEntriesUpdate verifies PATCH semantics and that a local edit returns
// the entry to the pending state.
func (suite *TestSuiteStandard) TestEntriesUpdate() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})
	entry := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{
		Description: "Supermarket Mundo",
		Amount:      decimal.RequireFromString("14.50"),
		Category:    models.CategoryGroceries,
	})

	// Sync first so that the edit has to flip the entry back to pending
	r := test.Request(suite.co, suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/budgets/%d/sync", budget.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.co, suite.T(), http.MethodPatch, entry.Data.Links.Self, map[string]any{
		"amount": "15.00",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response controllers.EntryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)

	assert.True(suite.T(), response.Data.Amount.Equal(decimal.RequireFromString("15.00")))
	assert.Equal(suite.T(), "Supermarket Mundo", response.Data.Description)
	assert.Equal(suite.T(), models.CategoryGroceries, response.Data.Category)

	// The edit is local again until the next sync
	assert.False(suite.T(), response.Data.Synced)
	assert.Equal(suite.T(), models.SyncStateLocalPending, response.Data.SyncState)
}

func (suite *TestSuiteStandard) TestEntriesUpdateNotFound() {
	r := test.Request(suite.co, suite.T(), http.MethodPatch, "http://example.com/v1/entries/4096", map[string]any{
		"description": "Gone",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestEntriesDelete() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})
	entry := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(1)})

	r := test.Request(suite.co, suite.T(), http.MethodDelete, entry.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	// Deleting a missing entry is a 404, not a no-op
	r = test.Request(suite.co, suite.T(), http.MethodDelete, entry.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

// TestEntriesDeleteBatch verifies the idempotent batch delete.
func (suite *TestSuiteStandard) TestEntriesDeleteBatch() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})
	first := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(1)})
	second := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(2)})
	kept := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(3)})

	body := controllers.EntryDeleteEditable{IDs: []uint64{first.Data.ID, second.Data.ID}}

	r := test.Request(suite.co, suite.T(), http.MethodDelete, "http://example.com/v1/entries", body)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	// Repeating the batch is fine, ids that are gone are skipped
	r = test.Request(suite.co, suite.T(), http.MethodDelete, "http://example.com/v1/entries", body)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.co, suite.T(), http.MethodGet, kept.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}
