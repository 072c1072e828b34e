package controllers

import (
	"net/http"

	"github.com/budgetbuddy/backend/internal/filter"
	"github.com/budgetbuddy/backend/internal/httputil"
	"github.com/budgetbuddy/backend/internal/models"
	"github.com/gin-gonic/gin"
)

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Entries
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		uint64	true	"ID of the entry"
// @Router			/v1/entries/{id} [options]
func (co *Controller) OptionsEntryDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	_, err = co.store.GetEntry(c.Request.Context(), uri.ID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create entries
// @Description	Creates new entries for a budget. Entries without a category get one from the category rules.
// @Tags			Entries
// @Produce		json
// @Success		201		{object}	EntryCreateResponse
// @Failure		400		{object}	EntryCreateResponse
// @Failure		404		{object}	EntryCreateResponse
// @Param			id		path		uint64			true	"ID of the budget"
// @Param			entries	body		[]EntryEditable	true	"Entries"
// @Router			/v1/budgets/{id}/entries [post]
func (co *Controller) CreateEntries(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EntryCreateResponse{
			Error: &e,
		})
		return
	}

	var editables []EntryEditable
	err = httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EntryCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := EntryCreateResponse{}

	for _, editable := range editables {
		entry := editable.model()
		entry.BudgetID = uri.ID

		err = co.store.CreateEntry(c.Request.Context(), &entry)
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newEntry(c, entry)
		r.Data = append(r.Data, EntryResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		List entries
// @Description	Returns the entries of a budget, newest first, narrowed by the filter parameters
// @Tags			Entries
// @Produce		json
// @Success		200	{object}	EntryListResponse
// @Failure		400	{object}	EntryListResponse
// @Failure		404	{object}	EntryListResponse
// @Param			id			path	uint64	true	"ID of the budget"
// @Param			description	query	string	false	"Case-insensitive substring of the description"
// @Param			type		query	string	false	"Filter by entry type"
// @Param			category	query	string	false	"Filter by category"
// @Param			startDate	query	string	false	"Inclusive lower date bound"
// @Param			endDate		query	string	false	"Inclusive upper date bound"
// @Router			/v1/budgets/{id}/entries [get]
func (co *Controller) GetEntries(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntryListResponse{
			Error: &s,
		})
		return
	}

	_, err = co.store.GetBudget(c.Request.Context(), uri.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntryListResponse{
			Error: &s,
		})
		return
	}

	var f filter.Filter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.ShouldBindQuery(&f)

	// Filtering is applied on the cached snapshot, it never goes back to
	// the database
	entries := co.cache.Entries(uri.ID)
	if len(entries) == 0 {
		// No snapshot yet, read the state the cache will converge on
		entries, err = co.store.Entries(c.Request.Context(), uri.ID)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), EntryListResponse{
				Error: &s,
			})
			return
		}
	}

	c.JSON(http.StatusOK, EntryListResponse{
		Data: newEntries(c, filter.Apply(entries, f)),
	})
}

// @Summary		Get entry
// @Description	Returns a specific entry
// @Tags			Entries
// @Produce		json
// @Success		200	{object}	EntryResponse
// @Failure		400	{object}	EntryResponse
// @Failure		404	{object}	EntryResponse
// @Param			id	path		uint64	true	"ID of the entry"
// @Router			/v1/entries/{id} [get]
func (co *Controller) GetEntry(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntryResponse{
			Error: &s,
		})
		return
	}

	entry, err := co.store.GetEntry(c.Request.Context(), uri.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntryResponse{
			Error: &s,
		})
		return
	}

	data := newEntry(c, entry)
	c.JSON(http.StatusOK, EntryResponse{Data: &data})
}

// @Summary		Update entry
// @Description	Update an existing entry. Only values to be updated need to be specified.
// @Tags			Entries
// @Accept			json
// @Produce		json
// @Success		200		{object}	EntryResponse
// @Failure		400		{object}	EntryResponse
// @Failure		404		{object}	EntryResponse
// @Param			id		path		uint64			true	"ID of the entry"
// @Param			entry	body		EntryEditable	true	"Entry"
// @Router			/v1/entries/{id} [patch]
func (co *Controller) UpdateEntry(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntryResponse{
			Error: &s,
		})
		return
	}

	entry, err := co.store.GetEntry(c.Request.Context(), uri.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntryResponse{
			Error: &s,
		})
		return
	}

	// Prefill with the persisted values so that fields missing from the
	// request body keep their current value
	editable := EntryEditable{
		Amount:      entry.Amount,
		Description: entry.Description,
		Type:        entry.Type,
		Category:    entry.Category,
		Date:        entry.Date,
		Invoice:     entry.Invoice,
	}

	err = httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntryResponse{
			Error: &s,
		})
		return
	}

	updated := editable.model()
	updated.Model = entry.Model
	updated.BudgetID = entry.BudgetID
	updated.RemoteID = entry.RemoteID
	updated.RemoteUpdatedAt = entry.RemoteUpdatedAt
	updated.CreatedBy = entry.CreatedBy
	updated.UpdatedBy = entry.UpdatedBy

	// A local edit always returns the entry to the pending state, also after
	// a conflict: the replacement became the new local truth and this edit
	// builds on it
	updated.Synced = false
	updated.SyncState = models.SyncStateLocalPending

	err = co.store.UpdateEntry(c.Request.Context(), &updated)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntryResponse{
			Error: &s,
		})
		return
	}

	entry, err = co.store.GetEntry(c.Request.Context(), uri.ID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EntryResponse{
			Error: &s,
		})
		return
	}

	data := newEntry(c, entry)
	c.JSON(http.StatusOK, EntryResponse{Data: &data})
}

// @Summary		Delete entry
// @Description	Deletes an entry
// @Tags			Entries
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		uint64	true	"ID of the entry"
// @Router			/v1/entries/{id} [delete]
func (co *Controller) DeleteEntry(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	// Resolved first so that deleting a missing entry is a 404, not a no-op
	_, err = co.store.GetEntry(c.Request.Context(), uri.ID)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = co.store.DeleteEntriesByIDs(c.Request.Context(), []uint64{uri.ID})
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Delete entries
// @Description	Deletes a batch of entries. IDs that do not exist anymore are skipped, the operation is idempotent.
// @Tags			Entries
// @Success		204
// @Failure		400		{object}	httpError
// @Param			entries	body		EntryDeleteEditable	true	"IDs of the entries to delete"
// @Router			/v1/entries [delete]
func (co *Controller) DeleteEntries(c *gin.Context) {
	var editable EntryDeleteEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = co.store.DeleteEntriesByIDs(c.Request.Context(), editable.IDs)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
