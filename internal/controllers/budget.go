package controllers

import (
	"net/http"

	"github.com/budgetbuddy/backend/internal/httputil"
	"github.com/budgetbuddy/backend/internal/models"
	"github.com/gin-gonic/gin"
)

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Router			/v1/budgets [options]
func OptionsBudgetList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		uint64	true	"ID of the budget"
// @Router			/v1/budgets/{id} [options]
func (co *Controller) OptionsBudgetDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	_, err = co.store.GetBudget(c.Request.Context(), uri.ID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create budgets
// @Description	Creates new budgets
// @Tags			Budgets
// @Produce		json
// @Success		201		{object}	BudgetCreateResponse
// @Failure		400		{object}	BudgetCreateResponse
// @Failure		500		{object}	BudgetCreateResponse
// @Param			budgets	body		[]BudgetEditable	true	"Budgets"
// @Router			/v1/budgets [post]
func (co *Controller) CreateBudgets(c *gin.Context) {
	var editables []BudgetEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := BudgetCreateResponse{}

	for _, editable := range editables {
		budget := editable.model()

		err = co.store.CreateBudget(c.Request.Context(), &budget)
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newBudget(c, budget)
		r.Data = append(r.Data, BudgetResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		List budgets
// @Description	Returns the budget list with the calculated totals
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetListResponse
// @Failure		500	{object}	BudgetListResponse
// @Router			/v1/budgets [get]
func (co *Controller) GetBudgets(c *gin.Context) {
	// The cache tracks the budget list from the moment the controller is
	// created, reads never hit the database
	budgets := co.cache.Budgets()

	data := make([]Budget, 0, len(budgets))
	for _, budget := range budgets {
		data = append(data, newBudget(c, budget))
	}

	c.JSON(http.StatusOK, BudgetListResponse{
		Data: data,
	})
}

// @Summary		Get budget
// @Description	Returns a specific budget with its calculated totals
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetResponse
// @Failure		400	{object}	BudgetResponse
// @Failure		404	{object}	BudgetResponse
// @Param			id	path		uint64	true	"ID of the budget"
// @Router			/v1/budgets/{id} [get]
func (co *Controller) GetBudget(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &s,
		})
		return
	}

	budget, err := co.store.GetBudget(c.Request.Context(), uri.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &s,
		})
		return
	}

	data := newBudget(c, budget)
	c.JSON(http.StatusOK, BudgetResponse{Data: &data})
}

// @Summary		Update budget
// @Description	Update an existing budget. Only values to be updated need to be specified.
// @Tags			Budgets
// @Accept			json
// @Produce		json
// @Success		200		{object}	BudgetResponse
// @Failure		400		{object}	BudgetResponse
// @Failure		404		{object}	BudgetResponse
// @Param			id		path		uint64			true	"ID of the budget"
// @Param			budget	body		BudgetEditable	true	"Budget"
// @Router			/v1/budgets/{id} [patch]
func (co *Controller) UpdateBudget(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &s,
		})
		return
	}

	budget, err := co.store.GetBudget(c.Request.Context(), uri.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &s,
		})
		return
	}

	// Prefill with the persisted values so that fields missing from the
	// request body keep their current value
	editable := BudgetEditable{
		Name:     budget.Name,
		Amount:   budget.Amount,
		Currency: budget.Currency,
		Date:     budget.Date,
	}

	err = httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &s,
		})
		return
	}

	updated := editable.model()
	updated.Model = budget.Model
	updated.Code = budget.Code

	// The remote does not know about this change yet
	updated.Synced = false

	err = co.store.UpdateBudget(c.Request.Context(), &updated)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &s,
		})
		return
	}

	budget, err = co.store.GetBudget(c.Request.Context(), uri.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &s,
		})
		return
	}

	data := newBudget(c, budget)
	c.JSON(http.StatusOK, BudgetResponse{Data: &data})
}

// @Summary		Delete budget
// @Description	Deletes a budget and all its entries
// @Tags			Budgets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		uint64	true	"ID of the budget"
// @Router			/v1/budgets/{id} [delete]
func (co *Controller) DeleteBudget(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = co.store.DeleteBudget(c.Request.Context(), uri.ID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	co.dropBudget(uri.ID)

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Get budget detail
// @Description	Returns the composite view of a budget and its entries
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetDetailResponse
// @Failure		400	{object}	BudgetDetailResponse
// @Failure		404	{object}	BudgetDetailResponse
// @Param			id	path		uint64	true	"ID of the budget"
// @Router			/v1/budgets/{id}/detail [get]
func (co *Controller) GetBudgetDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetDetailResponse{
			Error: &s,
		})
		return
	}

	budget, err := co.store.GetBudget(c.Request.Context(), uri.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetDetailResponse{
			Error: &s,
		})
		return
	}

	combiner, err := co.combiner(uri.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetDetailResponse{
			Error: &s,
		})
		return
	}

	var entries []models.BudgetEntry
	if current, ok := combiner.Current(); ok {
		budget = current.Budget
		entries = current.Entries
	} else {
		// The combiner has not emitted yet, read the same state it will
		// converge on
		entries, err = co.store.Entries(c.Request.Context(), uri.ID)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), BudgetDetailResponse{
				Error: &s,
			})
			return
		}
	}

	data := BudgetDetail{
		Budget:  newBudget(c, budget),
		Entries: newEntries(c, entries),
	}

	c.JSON(http.StatusOK, BudgetDetailResponse{Data: &data})
}

// @Summary		Share budget
// @Description	Registers the budget with the collaboration service and returns its collaboration code
// @Tags			Collaboration
// @Produce		json
// @Success		200	{object}	ShareResponse
// @Failure		400	{object}	ShareResponse
// @Failure		404	{object}	ShareResponse
// @Failure		502	{object}	ShareResponse
// @Param			id	path		uint64	true	"ID of the budget"
// @Router			/v1/budgets/{id}/share [post]
func (co *Controller) ShareBudget(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ShareResponse{
			Error: &s,
		})
		return
	}

	code, err := co.syncer.Share(c.Request.Context(), uri.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ShareResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, ShareResponse{Data: &ShareData{Code: code}})
}

// @Summary		Sync budget
// @Description	Pushes all pending entries of the budget to the collaboration service
// @Tags			Collaboration
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		502	{object}	httpError
// @Param			id	path		uint64	true	"ID of the budget"
// @Router			/v1/budgets/{id}/sync [post]
func (co *Controller) SyncBudget(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = co.syncer.SyncEntries(c.Request.Context(), uri.ID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
