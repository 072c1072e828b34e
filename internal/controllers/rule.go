package controllers

import (
	"net/http"

	"github.com/budgetbuddy/backend/internal/httputil"
	"github.com/budgetbuddy/backend/internal/models"
	"github.com/gin-gonic/gin"
)

// Category rules are plain configuration, they are not part of the reactive
// layer and go straight to the database.

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Rules
// @Success		204
// @Router			/v1/rules [options]
func OptionsRuleList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Rules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		uint64	true	"ID of the rule"
// @Router			/v1/rules/{id} [options]
func (co *Controller) OptionsRuleDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.CategoryRule{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create rules
// @Description	Creates new category rules
// @Tags			Rules
// @Produce		json
// @Success		201		{object}	RuleCreateResponse
// @Failure		400		{object}	RuleCreateResponse
// @Param			rules	body		[]RuleEditable	true	"Rules"
// @Router			/v1/rules [post]
func (co *Controller) CreateRules(c *gin.Context) {
	var editables []RuleEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RuleCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := RuleCreateResponse{}

	for _, editable := range editables {
		rule := editable.model()

		err = models.DB.Create(&rule).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newRule(c, rule)
		r.Data = append(r.Data, RuleResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		List rules
// @Description	Returns all category rules in evaluation order
// @Tags			Rules
// @Produce		json
// @Success		200	{object}	RuleListResponse
// @Failure		500	{object}	RuleListResponse
// @Router			/v1/rules [get]
func (co *Controller) GetRules(c *gin.Context) {
	var rules []models.CategoryRule
	err := models.DB.Order("priority ASC, id ASC").Find(&rules).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RuleListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		data = append(data, newRule(c, rule))
	}

	c.JSON(http.StatusOK, RuleListResponse{
		Data: data,
	})
}

// @Summary		Get rule
// @Description	Returns a specific category rule
// @Tags			Rules
// @Produce		json
// @Success		200	{object}	RuleResponse
// @Failure		400	{object}	RuleResponse
// @Failure		404	{object}	RuleResponse
// @Param			id	path		uint64	true	"ID of the rule"
// @Router			/v1/rules/{id} [get]
func (co *Controller) GetRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RuleResponse{
			Error: &s,
		})
		return
	}

	var rule models.CategoryRule
	err = models.DB.First(&rule, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RuleResponse{
			Error: &s,
		})
		return
	}

	data := newRule(c, rule)
	c.JSON(http.StatusOK, RuleResponse{Data: &data})
}

// @Summary		Update rule
// @Description	Update an existing category rule. Only values to be updated need to be specified.
// @Tags			Rules
// @Accept			json
// @Produce		json
// @Success		200		{object}	RuleResponse
// @Failure		400		{object}	RuleResponse
// @Failure		404		{object}	RuleResponse
// @Param			id		path		uint64			true	"ID of the rule"
// @Param			rule	body		RuleEditable	true	"Rule"
// @Router			/v1/rules/{id} [patch]
func (co *Controller) UpdateRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RuleResponse{
			Error: &s,
		})
		return
	}

	var rule models.CategoryRule
	err = models.DB.First(&rule, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RuleResponse{
			Error: &s,
		})
		return
	}

	// Prefill with the persisted values so that fields missing from the
	// request body keep their current value
	editable := RuleEditable{
		Priority: rule.Priority,
		Match:    rule.Match,
		Category: rule.Category,
	}

	err = httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RuleResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Model(&rule).Select("*").Omit("id", "created_at").Updates(editable.model()).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RuleResponse{
			Error: &s,
		})
		return
	}

	data := newRule(c, rule)
	c.JSON(http.StatusOK, RuleResponse{Data: &data})
}

// @Summary		Delete rule
// @Description	Deletes a category rule
// @Tags			Rules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		uint64	true	"ID of the rule"
// @Router			/v1/rules/{id} [delete]
func (co *Controller) DeleteRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var rule models.CategoryRule
	err = models.DB.First(&rule, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&rule).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
