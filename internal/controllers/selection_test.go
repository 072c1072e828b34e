package controllers_test

import (
	"fmt"
	"net/http"

	"github.com/budgetbuddy/backend/internal/controllers"
	"github.com/budgetbuddy/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) selectionURL(budgetID uint64) string {
	return fmt.Sprintf("http://example.com/v1/budgets/%d/selection", budgetID)
}

// updateSelection applies one gesture and returns the resulting state.
func (suite *TestSuiteStandard) updateSelection(budgetID uint64, editable controllers.SelectionEditable) controllers.SelectionData {
	r := test.Request(suite.co, suite.T(), http.MethodPost, suite.selectionURL(budgetID), editable)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response controllers.SelectionResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)

	return *response.Data
}

func (suite *TestSuiteStandard) TestSelectionOptions() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})

	r := test.Request(suite.co, suite.T(), http.MethodOptions, suite.selectionURL(budget.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	assert.Equal(suite.T(), "GET, POST, DELETE", r.Header().Get("allow"))

	r = test.Request(suite.co, suite.T(), http.MethodOptions, suite.selectionURL(4096), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestSelectionGetInactive() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})

	r := test.Request(suite.co, suite.T(), http.MethodGet, suite.selectionURL(budget.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response controllers.SelectionResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)

	assert.False(suite.T(), response.Data.Active)
	assert.Zero(suite.T(), response.Data.Count)
}

func (suite *TestSuiteStandard) TestSelectionGetUnknownBudget() {
	r := test.Request(suite.co, suite.T(), http.MethodGet, suite.selectionURL(4096), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

// TestSelectionStart verifies that a long-press enters selection mode with
// the entry selected.
func (suite *TestSuiteStandard) TestSelectionStart() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})
	entry := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(1)})

	data := suite.updateSelection(budget.Data.ID, controllers.SelectionEditable{
		Action:  controllers.SelectionStart,
		EntryID: entry.Data.ID,
	})

	assert.True(suite.T(), data.Active)
	assert.Equal(suite.T(), []uint64{entry.Data.ID}, data.EntryIDs)
	assert.Equal(suite.T(), 1, data.Count)
}

func (suite *TestSuiteStandard) TestSelectionToggle() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})
	first := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(1)})
	second := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(2)})

	suite.updateSelection(budget.Data.ID, controllers.SelectionEditable{
		Action: controllers.SelectionToggle, EntryID: first.Data.ID, Selected: true,
	})
	data := suite.updateSelection(budget.Data.ID, controllers.SelectionEditable{
		Action: controllers.SelectionToggle, EntryID: second.Data.ID, Selected: true,
	})
	assert.Equal(suite.T(), 2, data.Count)

	// Unselecting one entry never touches the other
	data = suite.updateSelection(budget.Data.ID, controllers.SelectionEditable{
		Action: controllers.SelectionToggle, EntryID: first.Data.ID, Selected: false,
	})
	assert.Equal(suite.T(), []uint64{second.Data.ID}, data.EntryIDs)
}

// TestSelectionSelectAll verifies SELECT_ALL and that a toggle after
// unselecting everything selects exactly one entry.
func (suite *TestSuiteStandard) TestSelectionSelectAll() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})
	first := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(1)})
	second := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(2)})

	data := suite.updateSelection(budget.Data.ID, controllers.SelectionEditable{
		Action: controllers.SelectionAll, Selected: true,
	})
	assert.ElementsMatch(suite.T(), []uint64{first.Data.ID, second.Data.ID}, data.EntryIDs)

	data = suite.updateSelection(budget.Data.ID, controllers.SelectionEditable{
		Action: controllers.SelectionAll, Selected: false,
	})
	assert.Empty(suite.T(), data.EntryIDs)
	assert.True(suite.T(), data.Active)

	data = suite.updateSelection(budget.Data.ID, controllers.SelectionEditable{
		Action: controllers.SelectionToggle, EntryID: first.Data.ID, Selected: true,
	})
	assert.Equal(suite.T(), []uint64{first.Data.ID}, data.EntryIDs)
}

func (suite *TestSuiteStandard) TestSelectionActionInvalid() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})

	r := test.Request(suite.co, suite.T(), http.MethodPost, suite.selectionURL(budget.Data.ID), map[string]any{
		"action": "HOVER",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestSelectionClear() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})
	entry := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(1)})

	suite.updateSelection(budget.Data.ID, controllers.SelectionEditable{
		Action: controllers.SelectionStart, EntryID: entry.Data.ID,
	})

	r := test.Request(suite.co, suite.T(), http.MethodDelete, suite.selectionURL(budget.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.co, suite.T(), http.MethodGet, suite.selectionURL(budget.Data.ID), "")
	var response controllers.SelectionResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.False(suite.T(), response.Data.Active)
}

// TestSelectionDeleteEntries verifies deleting the selected entries as a
// batch.
func (suite *TestSuiteStandard) TestSelectionDeleteEntries() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})
	first := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(1)})
	second := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(2)})
	kept := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(3)})

	suite.updateSelection(budget.Data.ID, controllers.SelectionEditable{
		Action: controllers.SelectionToggle, EntryID: first.Data.ID, Selected: true,
	})
	suite.updateSelection(budget.Data.ID, controllers.SelectionEditable{
		Action: controllers.SelectionToggle, EntryID: second.Data.ID, Selected: true,
	})

	r := test.Request(suite.co, suite.T(), http.MethodDelete, suite.selectionURL(budget.Data.ID)+"/entries", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.co, suite.T(), http.MethodGet, first.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
	r = test.Request(suite.co, suite.T(), http.MethodGet, second.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
	r = test.Request(suite.co, suite.T(), http.MethodGet, kept.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	// Deleting exits selection mode
	r = test.Request(suite.co, suite.T(), http.MethodGet, suite.selectionURL(budget.Data.ID), "")
	var response controllers.SelectionResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.False(suite.T(), response.Data.Active)
}

// TestSelectionDeleteEntriesInactive verifies that the batch delete needs an
// active selection.
func (suite *TestSuiteStandard) TestSelectionDeleteEntriesInactive() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})
	suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(1)})

	r := test.Request(suite.co, suite.T(), http.MethodDelete, suite.selectionURL(budget.Data.ID)+"/entries", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}
