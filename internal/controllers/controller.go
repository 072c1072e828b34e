// Package controllers implements the HTTP API of the backend.
//
// Reads are served from the reactive layer: list endpoints read the cache
// snapshot, the composite budget view comes from a per-budget combiner.
// Mutations go to the store, which re-emits the affected aggregates so that
// the snapshots converge before the next read.
package controllers

import (
	"context"
	"sync"

	"github.com/budgetbuddy/backend/internal/cache"
	"github.com/budgetbuddy/backend/internal/detail"
	"github.com/budgetbuddy/backend/internal/httputil"
	"github.com/budgetbuddy/backend/internal/selection"
	"github.com/budgetbuddy/backend/internal/store"
	"github.com/budgetbuddy/backend/internal/syncer"
	"github.com/gin-gonic/gin"
)

// Controller holds the dependencies of all HTTP handlers.
type Controller struct {
	store  *store.Store
	cache  *cache.Cache
	syncer *syncer.Syncer

	// ctx bounds the lifetime of the lazily started combiners
	ctx context.Context

	mu         sync.Mutex
	combiners  map[uint64]combinerHandle
	selections map[uint64]*selection.Selection
}

// combinerHandle pairs a combiner with the cancel of its own context, so
// that it can be stopped individually when its budget is deleted.
type combinerHandle struct {
	combiner *detail.Combiner
	cancel   context.CancelFunc
}

// New returns a Controller and subscribes the cache to the budget list. The
// subscriptions and the lazily started combiners stop when ctx ends.
func New(ctx context.Context, s *store.Store, c *cache.Cache, sy *syncer.Syncer) (*Controller, error) {
	err := c.FollowBudgets(ctx, s)
	if err != nil {
		return nil, err
	}

	return &Controller{
		store:      s,
		cache:      c,
		syncer:     sy,
		ctx:        ctx,
		combiners:  make(map[uint64]combinerHandle),
		selections: make(map[uint64]*selection.Selection),
	}, nil
}

// combiner returns the combiner of a budget, starting it on first use.
func (co *Controller) combiner(budgetID uint64) (*detail.Combiner, error) {
	co.mu.Lock()
	defer co.mu.Unlock()

	handle, ok := co.combiners[budgetID]
	if !ok {
		ctx, cancel := context.WithCancel(co.ctx)

		combiner, err := detail.Combine(ctx, co.store, co.cache, budgetID)
		if err != nil {
			cancel()
			return nil, err
		}

		handle = combinerHandle{combiner: combiner, cancel: cancel}
		co.combiners[budgetID] = handle
	}

	return handle.combiner, nil
}

// selection returns the selection of a budget, creating it on first use.
func (co *Controller) selection(budgetID uint64) *selection.Selection {
	co.mu.Lock()
	defer co.mu.Unlock()

	s, ok := co.selections[budgetID]
	if !ok {
		s = selection.New()
		co.selections[budgetID] = s
	}

	return s
}

// dropBudget discards the reactive state of a deleted budget. The combiner
// is cancelled first so that it releases its stream subscriptions and stops
// writing to the cache slot that is dropped right after.
func (co *Controller) dropBudget(budgetID uint64) {
	co.mu.Lock()
	if handle, ok := co.combiners[budgetID]; ok {
		handle.cancel()
	}
	delete(co.combiners, budgetID)
	delete(co.selections, budgetID)
	co.mu.Unlock()

	co.cache.DropEntries(budgetID)
}

// RegisterBudgetRoutes registers the routes for budgets with
// the RouterGroup that is passed.
func (co *Controller) RegisterBudgetRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsBudgetList)
		r.GET("", co.GetBudgets)
		r.POST("", co.CreateBudgets)
	}

	// Budget with ID
	{
		r.OPTIONS("/:id", co.OptionsBudgetDetail)
		r.GET("/:id", co.GetBudget)
		r.PATCH("/:id", co.UpdateBudget)
		r.DELETE("/:id", co.DeleteBudget)
	}

	// Composite view and entries of one budget
	{
		r.OPTIONS("/:id/detail", httputil.OptionsGet)
		r.GET("/:id/detail", co.GetBudgetDetail)
		r.OPTIONS("/:id/entries", httputil.OptionsGetPost)
		r.GET("/:id/entries", co.GetEntries)
		r.POST("/:id/entries", co.CreateEntries)
	}

	// Selection mode
	{
		r.OPTIONS("/:id/selection", co.OptionsSelection)
		r.GET("/:id/selection", co.GetSelection)
		r.POST("/:id/selection", co.UpdateSelection)
		r.DELETE("/:id/selection", co.ClearSelection)
		r.OPTIONS("/:id/selection/entries", httputil.OptionsDelete)
		r.DELETE("/:id/selection/entries", co.DeleteSelectedEntries)
	}

	// Collaboration
	{
		r.OPTIONS("/:id/share", httputil.OptionsPost)
		r.POST("/:id/share", co.ShareBudget)
		r.OPTIONS("/:id/sync", httputil.OptionsPost)
		r.POST("/:id/sync", co.SyncBudget)
	}
}

// RegisterEntryRoutes registers the routes for entries with
// the RouterGroup that is passed.
func (co *Controller) RegisterEntryRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsDelete)
		r.DELETE("", co.DeleteEntries)
	}

	// Entry with ID
	{
		r.OPTIONS("/:id", co.OptionsEntryDetail)
		r.GET("/:id", co.GetEntry)
		r.PATCH("/:id", co.UpdateEntry)
		r.DELETE("/:id", co.DeleteEntry)
	}
}

// RegisterRuleRoutes registers the routes for category rules with
// the RouterGroup that is passed.
func (co *Controller) RegisterRuleRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsRuleList)
		r.GET("", co.GetRules)
		r.POST("", co.CreateRules)
	}

	// Rule with ID
	{
		r.OPTIONS("/:id", co.OptionsRuleDetail)
		r.GET("/:id", co.GetRule)
		r.PATCH("/:id", co.UpdateRule)
		r.DELETE("/:id", co.DeleteRule)
	}
}

// RegisterSyncRoutes registers the routes for synchronization with
// the RouterGroup that is passed.
func (co *Controller) RegisterSyncRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsPost)
	r.POST("", co.SyncAll)
}

// RegisterCollaborationRoutes registers the routes for joining shared
// budgets with the RouterGroup that is passed.
func (co *Controller) RegisterCollaborationRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsPost)
	r.POST("", co.JoinBudget)
}
