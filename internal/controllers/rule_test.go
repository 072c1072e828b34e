package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/budgetbuddy/backend/internal/controllers"
	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRulesOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestRulesOptions() {
	tests := []struct {
		name   string
		id     string // path at the /v1/rules endpoint to test
		status int    // Expected HTTP status code
	}{
		{"No rule with this ID", "4096", http.StatusNotFound},
		{"Not a valid ID", "NotANumber", http.StatusBadRequest},
		{"Rule exists", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			id := tt.id
			if id == "" {
				rule := suite.createTestRule(controllers.RuleEditable{
					Match:    "Supermarket*",
					Category: models.CategoryGroceries,
				})
				id = fmt.Sprintf("%d", rule.Data.ID)
			}

			r := test.Request(suite.co, t, http.MethodOptions, fmt.Sprintf("http://example.com/v1/rules/%s", id), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestRulesCreate() {
	rule := suite.createTestRule(controllers.RuleEditable{
		Priority: 2,
		Match:    "*Pharmacy*",
		Category: models.CategoryHealth,
	})

	require.NotNil(suite.T(), rule.Data)
	assert.Equal(suite.T(), uint(2), rule.Data.Priority)
	assert.Equal(suite.T(), fmt.Sprintf("http://example.com/v1/rules/%d", rule.Data.ID), rule.Data.Links.Self)
}

func (suite *TestSuiteStandard) TestRulesCreateInvalid() {
	// An empty match pattern can never apply
	suite.createTestRule(controllers.RuleEditable{
		Category: models.CategoryGroceries,
	}, http.StatusBadRequest)

	// The category must be one of the known ones
	suite.createTestRule(controllers.RuleEditable{
		Match:    "Supermarket*",
		Category: "LOOT",
	}, http.StatusBadRequest)
}

// TestRulesGetAll verifies that rules are returned in evaluation order.
func (suite *TestSuiteStandard) TestRulesGetAll() {
	second := suite.createTestRule(controllers.RuleEditable{
		Priority: 10,
		Match:    "*Pharmacy*",
		Category: models.CategoryHealth,
	})
	first := suite.createTestRule(controllers.RuleEditable{
		Priority: 1,
		Match:    "Supermarket*",
		Category: models.CategoryGroceries,
	})

	r := test.Request(suite.co, suite.T(), http.MethodGet, "http://example.com/v1/rules", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response controllers.RuleListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 2)

	assert.Equal(suite.T(), first.Data.ID, response.Data[0].ID)
	assert.Equal(suite.T(), second.Data.ID, response.Data[1].ID)
}

func (suite *TestSuiteStandard) TestRulesGetSingle() {
	rule := suite.createTestRule(controllers.RuleEditable{
		Match:    "Supermarket*",
		Category: models.CategoryGroceries,
	})

	r := test.Request(suite.co, suite.T(), http.MethodGet, rule.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response controllers.RuleResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)
	assert.Equal(suite.T(), "Supermarket*", response.Data.Match)
}

func (suite *TestSuiteStandard) TestRulesGetNotFound() {
	r := test.Request(suite.co, suite.T(), http.MethodGet, "http://example.com/v1/rules/4096", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

// TestRulesUpdate verifies PATCH semantics for rules.
func (suite *TestSuiteStandard) TestRulesUpdate() {
	rule := suite.createTestRule(controllers.RuleEditable{
		Priority: 5,
		Match:    "Supermarket*",
		Category: models.CategoryGroceries,
	})

	r := test.Request(suite.co, suite.T(), http.MethodPatch, rule.Data.Links.Self, map[string]any{
		"priority": 1,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response controllers.RuleResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)

	assert.Equal(suite.T(), uint(1), response.Data.Priority)
	assert.Equal(suite.T(), "Supermarket*", response.Data.Match)
}

func (suite *TestSuiteStandard) TestRulesUpdateNotFound() {
	r := test.Request(suite.co, suite.T(), http.MethodPatch, "http://example.com/v1/rules/4096", map[string]any{
		"priority": 1,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestRulesDelete() {
	rule := suite.createTestRule(controllers.RuleEditable{
		Match:    "Supermarket*",
		Category: models.CategoryGroceries,
	})

	r := test.Request(suite.co, suite.T(), http.MethodDelete, rule.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.co, suite.T(), http.MethodGet, rule.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestRulesDeleteNotFound() {
	r := test.Request(suite.co, suite.T(), http.MethodDelete, "http://example.com/v1/rules/4096", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
