package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/budgetbuddy/backend/internal/httputil"
)

// SelectionAction is one of the gestures that change the selection.
type SelectionAction string

const (
	// SelectionStart enters selection mode with a long-press on an entry,
	// selecting it.
	SelectionStart SelectionAction = "START"
	// SelectionToggle sets the selection state of exactly one entry.
	SelectionToggle SelectionAction = "TOGGLE"
	// SelectionAll sets the selection state of every entry of the budget.
	SelectionAll SelectionAction = "SELECT_ALL"
)

// SelectionEditable is the request body for changing the selection.
type SelectionEditable struct {
	Action   SelectionAction `json:"action" example:"TOGGLE"`
	EntryID  uint64          `json:"entryId,omitempty" example:"42"` // The entry for START and TOGGLE
	Selected bool            `json:"selected" example:"true"`        // The target state for TOGGLE and SELECT_ALL
}

type SelectionResponse struct {
	Data  *SelectionData `json:"data"`
	Error *string        `json:"error" example:"there is no budget matching your query"` // The error, if any occurred
}

type SelectionData struct {
	Active   bool     `json:"active" example:"true"`
	EntryIDs []uint64 `json:"entryIds" example:"4,17"` // IDs of the selected entries, ascending
	Count    int      `json:"count" example:"2"`
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Selection
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		uint64	true	"ID of the budget"
// @Router			/v1/budgets/{id}/selection [options]
func (co *Controller) OptionsSelection(c *gin.Context) {
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

	c.Header("allow", "GET, POST, DELETE")
	c.Status(http.StatusNoContent)
}

// @Summary		Get selection
// @Description	Returns the selection state of a budget's entry list
// @Tags			Selection
// @Produce		json
// @Success		200	{object}	SelectionResponse
// @Failure		400	{object}	SelectionResponse
// @Failure		404	{object}	SelectionResponse
// @Param			id	path		uint64	true	"ID of the budget"
// @Router			/v1/budgets/{id}/selection [get]
func (co *Controller) GetSelection(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SelectionResponse{
			Error: &s,
		})
		return
	}

	_, err = co.store.GetBudget(c.Request.Context(), uri.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SelectionResponse{
			Error: &s,
		})
		return
	}

	selection := co.selection(uri.ID)

	c.JSON(http.StatusOK, SelectionResponse{
		Data: &SelectionData{
			Active:   selection.Active(),
			EntryIDs: selection.IDs(),
			Count:    selection.Count(),
		},
	})
}

// @Summary		Update selection
// @Description	Applies a selection gesture: START enters selection mode on an entry, TOGGLE changes one entry, SELECT_ALL changes all entries of the budget
// @Tags			Selection
// @Produce		json
// @Success		200			{object}	SelectionResponse
// @Failure		400			{object}	SelectionResponse
// @Failure		404			{object}	SelectionResponse
// @Param			id			path		uint64				true	"ID of the budget"
// @Param			selection	body		SelectionEditable	true	"The gesture to apply"
// @Router			/v1/budgets/{id}/selection [post]
func (co *Controller) UpdateSelection(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SelectionResponse{
			Error: &s,
		})
		return
	}

	_, err = co.store.GetBudget(c.Request.Context(), uri.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SelectionResponse{
			Error: &s,
		})
		return
	}

	var editable SelectionEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SelectionResponse{
			Error: &s,
		})
		return
	}

	selection := co.selection(uri.ID)

	switch editable.Action {
	case SelectionStart:
		selection.Start(editable.EntryID)

	case SelectionToggle:
		selection.Toggle(editable.EntryID, editable.Selected)

	case SelectionAll:
		entries := co.cache.Entries(uri.ID)
		if len(entries) == 0 {
			models, err := co.store.Entries(c.Request.Context(), uri.ID)
			if err != nil {
				s := err.Error()
				c.JSON(status(err), SelectionResponse{
					Error: &s,
				})
				return
			}
			entries = models
		}

		ids := make([]uint64, 0, len(entries))
		for _, entry := range entries {
			ids = append(ids, entry.ID)
		}

		selection.SelectAll(ids, editable.Selected)

	default:
		s := errSelectionActionInvalid.Error()
		c.JSON(http.StatusBadRequest, SelectionResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, SelectionResponse{
		Data: &SelectionData{
			Active:   selection.Active(),
			EntryIDs: selection.IDs(),
			Count:    selection.Count(),
		},
	})
}

// @Summary		Clear selection
// @Description	Exits selection mode and unselects everything
// @Tags			Selection
// @Success		204
// @Failure		400	{object}	httpError
// @Param			id	path		uint64	true	"ID of the budget"
// @Router			/v1/budgets/{id}/selection [delete]
func (co *Controller) ClearSelection(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	co.selection(uri.ID).Clear()

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Delete selected entries
// @Description	Deletes all selected entries of the budget and exits selection mode
// @Tags			Selection
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		uint64	true	"ID of the budget"
// @Router			/v1/budgets/{id}/selection/entries [delete]
func (co *Controller) DeleteSelectedEntries(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	selection := co.selection(uri.ID)
	if !selection.Active() {
		c.JSON(http.StatusBadRequest, httpError{
			Error: errSelectionInactive.Error(),
		})
		return
	}

	err = co.store.DeleteEntriesByIDs(c.Request.Context(), selection.IDs())
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	selection.Clear()

	c.JSON(http.StatusNoContent, nil)
}
