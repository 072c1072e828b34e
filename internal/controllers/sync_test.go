package controllers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/budgetbuddy/backend/internal/controllers"
	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/syncer"
	"github.com/budgetbuddy/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestShareBudget verifies that sharing returns a collaboration code and
// that the code is stable.
func (suite *TestSuiteStandard) TestShareBudget() {
	budget := suite.createTestBudget(controllers.BudgetEditable{Name: "Shared"})
	url := fmt.Sprintf("http://example.com/v1/budgets/%d/share", budget.Data.ID)

	r := test.Request(suite.co, suite.T(), http.MethodPost, url, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response controllers.ShareResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)
	require.NotEmpty(suite.T(), response.Data.Code)

	code := response.Data.Code

	r = test.Request(suite.co, suite.T(), http.MethodPost, url, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), code, response.Data.Code)
}

func (suite *TestSuiteStandard) TestShareBudgetNotFound() {
	r := test.Request(suite.co, suite.T(), http.MethodPost, "http://example.com/v1/budgets/4096/share", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

// TestSyncBudget verifies that an explicit sync pushes the pending entries.
func (suite *TestSuiteStandard) TestSyncBudget() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})
	entry := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{
		Description: "Supermarket Mundo",
		Amount:      decimal.RequireFromString("14.50"),
	})
	assert.Equal(suite.T(), models.SyncStateLocalPending, entry.Data.SyncState)

	r := test.Request(suite.co, suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/budgets/%d/sync", budget.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.co, suite.T(), http.MethodGet, entry.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response controllers.EntryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)

	assert.True(suite.T(), response.Data.Synced)
	assert.Equal(suite.T(), models.SyncStateSynced, response.Data.SyncState)
	assert.Equal(suite.T(), "sam@example.com", response.Data.CreatedBy)
}

// TestSyncBudgetRemoteDown verifies that a failed sync maps to a bad
// gateway and the entries stay local.
func (suite *TestSuiteStandard) TestSyncBudgetRemoteDown() {
	budget := suite.createTestBudget(controllers.BudgetEditable{})
	entry := suite.createTestEntry(budget.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(1)})

	suite.remote.FailWith(errors.New("the network is down"))

	r := test.Request(suite.co, suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/budgets/%d/sync", budget.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadGateway)

	r = test.Request(suite.co, suite.T(), http.MethodGet, entry.Data.Links.Self, "")
	var response controllers.EntryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)
	assert.Equal(suite.T(), models.SyncStateLocalPending, response.Data.SyncState)
}

func (suite *TestSuiteStandard) TestSyncAll() {
	first := suite.createTestBudget(controllers.BudgetEditable{Name: "First"})
	second := suite.createTestBudget(controllers.BudgetEditable{Name: "Second"})
	one := suite.createTestEntry(first.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(1)})
	two := suite.createTestEntry(second.Data.ID, controllers.EntryEditable{Amount: decimal.NewFromInt(2)})

	r := test.Request(suite.co, suite.T(), http.MethodPost, "http://example.com/v1/sync", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	for _, entry := range []controllers.EntryResponse{one, two} {
		r = test.Request(suite.co, suite.T(), http.MethodGet, entry.Data.Links.Self, "")

		var response controllers.EntryResponse
		test.DecodeResponse(suite.T(), &r, &response)
		require.NotNil(suite.T(), response.Data)
		assert.Equal(suite.T(), models.SyncStateSynced, response.Data.SyncState)
	}
}

// TestJoinBudget verifies joining a budget that only exists at the remote.
func (suite *TestSuiteStandard) TestJoinBudget() {
	code, err := suite.remote.ShareBudget(context.Background(), syncer.RemoteBudget{
		Name:     "Holiday",
		Amount:   decimal.NewFromInt(2000),
		Currency: "EUR",
	})
	require.Nil(suite.T(), err)

	require.Nil(suite.T(), suite.remote.Seed(code, syncer.RemoteEntry{
		RemoteID:    uuid.New(),
		Description: "Ferry tickets",
		Amount:      decimal.RequireFromString("88.00"),
		Type:        models.OutcomeEntry,
		Category:    models.CategoryTravel,
		CreatedBy:   "jo@example.com",
		UpdatedBy:   "jo@example.com",
		UpdatedAt:   time.Now().In(time.UTC),
	}))

	r := test.Request(suite.co, suite.T(), http.MethodPost, "http://example.com/v1/join", controllers.JoinEditable{Code: code})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response controllers.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)

	assert.Equal(suite.T(), "Holiday", response.Data.Name)
	assert.Equal(suite.T(), code, response.Data.Code)
	assert.True(suite.T(), response.Data.Synced)

	r = test.Request(suite.co, suite.T(), http.MethodGet, response.Data.Links.Entries, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var entries controllers.EntryListResponse
	test.DecodeResponse(suite.T(), &r, &entries)
	require.Len(suite.T(), entries.Data, 1)
	assert.Equal(suite.T(), "Ferry tickets", entries.Data[0].Description)
	assert.Equal(suite.T(), "jo@example.com", entries.Data[0].CreatedBy)
}

// TestJoinBudgetInvalidCode verifies that an invalid code is a 404 and
// leaves the local state untouched.
func (suite *TestSuiteStandard) TestJoinBudgetInvalidCode() {
	r := test.Request(suite.co, suite.T(), http.MethodPost, "http://example.com/v1/join", controllers.JoinEditable{Code: "NOPE"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	var response controllers.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Error)
	assert.Equal(suite.T(), syncer.ErrInvalidCollaborationCode.Error(), *response.Error)
}

func (suite *TestSuiteStandard) TestJoinBudgetBodyEmpty() {
	r := test.Request(suite.co, suite.T(), http.MethodPost, "http://example.com/v1/join", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}
