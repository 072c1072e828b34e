package controllers

import (
	"net/http"

	"github.com/budgetbuddy/backend/internal/httputil"
	"github.com/gin-gonic/gin"
)

// @Summary		Sync all budgets
// @Description	Pushes the pending entries of every budget to the collaboration service
// @Tags			Collaboration
// @Success		204
// @Failure		502	{object}	httpError
// @Router			/v1/sync [post]
func (co *Controller) SyncAll(c *gin.Context) {
	err := co.syncer.SyncBudgets(c.Request.Context())
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Join budget
// @Description	Grants access to a shared budget via its collaboration code and merges its entries with the local state
// @Tags			Collaboration
// @Produce		json
// @Success		201		{object}	BudgetResponse
// @Failure		400		{object}	BudgetResponse
// @Failure		404		{object}	BudgetResponse
// @Failure		502		{object}	BudgetResponse
// @Param			join	body		JoinEditable	true	"The collaboration code"
// @Router			/v1/join [post]
func (co *Controller) JoinBudget(c *gin.Context) {
	var editable JoinEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &s,
		})
		return
	}

	budget, err := co.syncer.Join(c.Request.Context(), editable.Code)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &s,
		})
		return
	}

	data := newBudget(c, budget)
	c.JSON(http.StatusCreated, BudgetResponse{Data: &data})
}
