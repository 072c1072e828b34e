// Package detail composes a budget and its entries into the single view
// model the UI observes.
package detail

import (
	"context"
	"sync"

	"github.com/budgetbuddy/backend/internal/cache"
	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/store"
	"golang.org/x/exp/slices"
)

// Detail is the composite of a budget and its entries. It is recomputed as
// a whole on every change, never partially updated.
type Detail struct {
	Budget  models.Budget        `json:"budget"`
	Entries []models.BudgetEntry `json:"entries"`
}

// Equal reports whether two composites are equal by value.
func (d Detail) Equal(other Detail) bool {
	if !d.Budget.Equal(other.Budget) {
		return false
	}

	return slices.EqualFunc(d.Entries, other.Entries, models.BudgetEntry.Equal)
}

// Combiner joins the budget stream with the entry stream of one budget.
//
// On every emission from either side it recomputes the composite and emits
// it downstream, deduplicated by value equality so that dependents never
// recompute for a change that is none. The latest composite is also kept in
// a cache slot for synchronous, non-reactive reads.
type Combiner struct {
	budgetID uint64
	cache    *cache.Cache

	mu      sync.RWMutex
	current Detail
	hasAny  bool

	out chan Detail
}

// Combine subscribes to both streams of a budget and starts combining. The
// combiner stops and closes its output when ctx ends.
func Combine(ctx context.Context, s *store.Store, c *cache.Cache, budgetID uint64) (*Combiner, error) {
	budgets, err := s.StreamBudgets(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.StreamEntries(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	co := &Combiner{
		budgetID: budgetID,
		cache:    c,
		out:      make(chan Detail, 1),
	}

	go co.run(ctx, budgets, entries)

	return co, nil
}

// Stream returns the composite stream. Like the store streams it buffers
// the latest composite, a slow consumer skips intermediate states.
func (co *Combiner) Stream() <-chan Detail {
	return co.out
}

// Current returns the last emitted composite. The second return value is
// false while nothing has been emitted yet.
func (co *Combiner) Current() (Detail, bool) {
	co.mu.RLock()
	defer co.mu.RUnlock()

	return co.current, co.hasAny
}

func (co *Combiner) run(ctx context.Context, budgets <-chan []models.Budget, entries <-chan []models.BudgetEntry) {
	defer close(co.out)

	var budgetList []models.Budget
	var entryList []models.BudgetEntry

	for {
		select {
		case <-ctx.Done():
			return
		case list, ok := <-budgets:
			// After cancellation a buffered emission may still be readable,
			// but the cache must not be written anymore
			if !ok || ctx.Err() != nil {
				return
			}
			budgetList = list
			co.cache.SetBudgets(list)
		case list, ok := <-entries:
			if !ok || ctx.Err() != nil {
				return
			}
			entryList = list
			co.cache.SetEntries(co.budgetID, list)
		}

		co.recompute(budgetList, entryList)
	}
}

// recompute builds the composite and emits it if it differs from the last
// emitted one.
func (co *Combiner) recompute(budgets []models.Budget, entries []models.BudgetEntry) {
	idx := slices.IndexFunc(budgets, func(b models.Budget) bool {
		return b.ID == co.budgetID
	})
	// The budget is gone from the list, e.g. after deletion. Dependents keep
	// the last composite until their own teardown.
	if idx < 0 {
		return
	}

	next := Detail{
		Budget:  budgets[idx],
		Entries: entries,
	}

	co.mu.Lock()
	if co.hasAny && co.current.Equal(next) {
		co.mu.Unlock()
		return
	}
	co.current = next
	co.hasAny = true
	co.mu.Unlock()

	// Buffer-latest emission, consistent with the store streams
	select {
	case co.out <- next:
	default:
		select {
		case <-co.out:
		default:
		}

		select {
		case co.out <- next:
		default:
		}
	}
}
