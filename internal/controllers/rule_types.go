package controllers

import (
	"fmt"

	"github.com/budgetbuddy/backend/internal/models"
	"github.com/gin-gonic/gin"
)

// RuleEditable represents all user configurable parameters
type RuleEditable struct {
	Priority uint            `json:"priority" example:"2" default:"0"`    // Rules with lower priority are evaluated first
	Match    string          `json:"match" example:"Supermarket*"`        // Glob pattern matched against the entry description
	Category models.Category `json:"category" example:"GROCERIES"`       // The category entries matching the pattern get
}

func (editable RuleEditable) model() models.CategoryRule {
	return models.CategoryRule{
		Priority: editable.Priority,
		Match:    editable.Match,
		Category: editable.Category,
	}
}

type RuleLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/rules/3"` // The rule itself
}

type Rule struct {
	models.Model
	RuleEditable
	Links RuleLinks `json:"links"`
}

func newRule(c *gin.Context, model models.CategoryRule) Rule {
	url := c.GetString(string(models.DBContextURL))

	return Rule{
		Model: model.Model,
		RuleEditable: RuleEditable{
			Priority: model.Priority,
			Match:    model.Match,
			Category: model.Category,
		},
		Links: RuleLinks{
			Self: fmt.Sprintf("%s/v1/rules/%d", url, model.ID),
		},
	}
}

type RuleListResponse struct {
	Data  []Rule  `json:"data"`                                                 // List of rules
	Error *string `json:"error" example:"the specified resource was not found"` // The error, if any occurred
}

type RuleCreateResponse struct {
	Data  []RuleResponse `json:"data"`                                               // List of the created rules or their respective error
	Error *string        `json:"error" example:"the request body must not be empty"` // The error, if any occurred
}

func (r *RuleCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, RuleResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type RuleResponse struct {
	Data  *Rule   `json:"data"`                                                          // Data for the rule
	Error *string `json:"error" example:"there is no category rule matching your query"` // The error, if any occurred
}
