// Package cache keeps an in-memory snapshot of the store's aggregates.
//
// The snapshot is fed from the store's live streams and is the only piece
// of state shared between the stream goroutines and consumers. Reads never
// block on I/O: they return the most recently observed emission, or an
// empty snapshot before the first one.
package cache

import (
	"context"
	"sync"

	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/store"
)

// Cache holds the latest snapshot per aggregate. One lock per aggregate
// kind, held only for the instant of a swap or a read, never across I/O.
type Cache struct {
	budgetMu sync.RWMutex
	budgets  []models.Budget

	entryMu sync.RWMutex
	entries map[uint64][]models.BudgetEntry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[uint64][]models.BudgetEntry),
	}
}

// Budgets returns the most recently observed budget list. The returned
// slice is a copy, callers can hold on to it without observing later swaps.
func (c *Cache) Budgets() []models.Budget {
	c.budgetMu.RLock()
	defer c.budgetMu.RUnlock()

	budgets := make([]models.Budget, len(c.budgets))
	copy(budgets, c.budgets)
	return budgets
}

// Entries returns the most recently observed entries of a budget. Before
// the first emission for the budget it returns an empty slice.
func (c *Cache) Entries(budgetID uint64) []models.BudgetEntry {
	c.entryMu.RLock()
	defer c.entryMu.RUnlock()

	entries := make([]models.BudgetEntry, len(c.entries[budgetID]))
	copy(entries, c.entries[budgetID])
	return entries
}

// SetBudgets swaps the budget snapshot.
func (c *Cache) SetBudgets(budgets []models.Budget) {
	c.budgetMu.Lock()
	c.budgets = budgets
	c.budgetMu.Unlock()
}

// SetEntries swaps the entry snapshot of one budget.
func (c *Cache) SetEntries(budgetID uint64, entries []models.BudgetEntry) {
	c.entryMu.Lock()
	c.entries[budgetID] = entries
	c.entryMu.Unlock()
}

// DropEntries removes the entry snapshot of a budget, used when the budget
// itself is deleted.
func (c *Cache) DropEntries(budgetID uint64) {
	c.entryMu.Lock()
	delete(c.entries, budgetID)
	c.entryMu.Unlock()
}

// FollowBudgets subscribes to the store's budget stream and keeps the
// budget snapshot current until ctx ends. It returns after the initial
// emission has been written to the snapshot, the following emissions are
// consumed on a background goroutine.
func (c *Cache) FollowBudgets(ctx context.Context, s *store.Store) error {
	stream, err := s.StreamBudgets(ctx)
	if err != nil {
		return err
	}

	// The stream buffers the current state, so this never blocks.
	c.SetBudgets(<-stream)

	go func() {
		for budgets := range stream {
			c.SetBudgets(budgets)
		}
	}()

	return nil
}

// FollowEntries subscribes to the entry stream of one budget and keeps its
// snapshot current until ctx ends, with the same semantics as
// FollowBudgets.
func (c *Cache) FollowEntries(ctx context.Context, s *store.Store, budgetID uint64) error {
	stream, err := s.StreamEntries(ctx, budgetID)
	if err != nil {
		return err
	}

	c.SetEntries(budgetID, <-stream)

	go func() {
		for entries := range stream {
			c.SetEntries(budgetID, entries)
		}
	}()

	return nil
}
