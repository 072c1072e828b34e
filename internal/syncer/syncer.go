// Package syncer reconciles local mutations with the remote collaboration
// service.
//
// Reconciliation is explicit: nothing is pushed in the background, a sync
// runs when the user triggers one. Every entry carries its own sync state,
// a failed sync returns its entries to LocalPending and waits for the next
// trigger. Conflicts are resolved last-writer-wins by the server timestamp,
// the losing local write is replaced in full by the server version.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/store"
	"github.com/budgetbuddy/backend/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrSync is a recoverable reconciliation failure: the affected entries
	// stay LocalPending, nothing is lost.
	ErrSync = errors.New("synchronization with the remote backend failed")

	// ErrInvalidCollaborationCode is returned for a collaboration code the
	// remote does not know. Local state is never mutated in that case.
	ErrInvalidCollaborationCode = errors.New("the collaboration code is invalid or expired")
)

// RemoteEntry is the wire representation of an entry at the collaboration
// service. UpdatedAt is the server-side timestamp of the version the
// sender knows, the server uses it to detect concurrent edits.
type RemoteEntry struct {
	RemoteID    uuid.UUID        `json:"remoteId"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
	Type        models.EntryType `json:"type"`
	Category    models.Category  `json:"category"`
	Date        types.Date       `json:"date"`
	Invoice     *string          `json:"invoice,omitempty"`
	CreatedBy   string           `json:"createdBy"`
	UpdatedBy   string           `json:"updatedBy"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// RemoteBudget is the remote snapshot of a shared budget.
type RemoteBudget struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Date     types.Date      `json:"date"`
	Entries  []RemoteEntry   `json:"entries"`
}

// PushResult is the per-entry outcome of a push.
type PushResult struct {
	RemoteID  uuid.UUID `json:"remoteId"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedBy string    `json:"createdBy"`
	UpdatedBy string    `json:"updatedBy"`

	// Winner is set when the server had a newer version of the entry: the
	// local write lost and must be replaced in full with this version.
	Winner *RemoteEntry `json:"winner,omitempty"`
}

// Remote is the collaboration service as the syncer sees it.
type Remote interface {
	// ShareBudget registers a budget with the remote and returns the
	// shareable collaboration code.
	ShareBudget(ctx context.Context, budget RemoteBudget) (string, error)

	// FetchBudget returns the remote snapshot for a collaboration code.
	FetchBudget(ctx context.Context, code string) (RemoteBudget, error)

	// PushEntries uploads entries and returns one result per entry, in
	// input order.
	PushEntries(ctx context.Context, code string, entries []RemoteEntry) ([]PushResult, error)
}

// Syncer drives reconciliation between the store and a Remote.
type Syncer struct {
	store  *store.Store
	remote Remote
}

// New returns a Syncer.
func New(s *store.Store, remote Remote) *Syncer {
	return &Syncer{
		store:  s,
		remote: remote,
	}
}

// Share makes sure a budget is registered with the remote and returns its
// collaboration code.
func (s *Syncer) Share(ctx context.Context, budgetID uint64) (string, error) {
	budget, err := s.store.GetBudget(ctx, budgetID)
	if err != nil {
		return "", err
	}

	return s.ensureShared(ctx, budget)
}

func (s *Syncer) ensureShared(ctx context.Context, budget models.Budget) (string, error) {
	if budget.Code != "" {
		return budget.Code, nil
	}

	code, err := s.remote.ShareBudget(ctx, RemoteBudget{
		Name:     budget.Name,
		Amount:   budget.Amount,
		Currency: budget.Currency,
		Date:     budget.Date,
	})
	if err != nil {
		return "", wrapSyncError(err)
	}

	err = s.store.MarkBudgetShared(ctx, budget.ID, code)
	if err != nil {
		return "", err
	}

	return code, nil
}

// SyncEntries pushes all LocalPending entries of one budget to the remote
// and applies the per-entry results. On failure every affected entry
// returns to LocalPending, a new explicit trigger is needed to retry.
func (s *Syncer) SyncEntries(ctx context.Context, budgetID uint64) error {
	budget, err := s.store.GetBudget(ctx, budgetID)
	if err != nil {
		return err
	}

	code, err := s.ensureShared(ctx, budget)
	if err != nil {
		return err
	}

	pending, err := s.store.PendingEntries(ctx, budgetID)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		return nil
	}

	ids := make([]uint64, len(pending))
	payload := make([]RemoteEntry, len(pending))
	for i, entry := range pending {
		ids[i] = entry.ID
		payload[i] = toRemote(entry)
	}

	err = s.store.MarkEntriesSyncing(ctx, budgetID, ids)
	if err != nil {
		return err
	}

	results, err := s.remote.PushEntries(ctx, code, payload)
	if err == nil && len(results) != len(pending) {
		err = fmt.Errorf("the remote returned %d results for %d entries", len(results), len(pending))
	}
	if err != nil {
		// The sync owner may be gone, then the entries must not be touched
		// anymore. They are picked up as stale Syncing state on the next
		// explicit trigger.
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if resetErr := s.store.ResetEntriesPending(ctx, budgetID, ids); resetErr != nil {
			log.Error().Err(resetErr).Uint64("budget-id", budgetID).Msg("failed to reset entries to pending")
		}

		return wrapSyncError(err)
	}

	for i, result := range results {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		entry := pending[i]
		if result.Winner != nil {
			// The concurrent edit at the remote wins, the local version is
			// discarded as a whole
			err = s.store.ReplaceEntryFromRemote(ctx, entry.ID, fromRemote(budgetID, *result.Winner))
		} else {
			err = s.store.MarkEntrySynced(ctx, entry, result.RemoteID, result.UpdatedAt, result.CreatedBy, result.UpdatedBy)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// SyncBudgets runs SyncEntries for every budget, budgets are reconciled
// concurrently.
func (s *Syncer) SyncBudgets(ctx context.Context) error {
	budgets, err := s.store.Budgets(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, budget := range budgets {
		g.Go(func() error {
			return s.SyncEntries(ctx, budget.ID)
		})
	}

	return g.Wait()
}

// Join grants access to a shared budget via its collaboration code.
//
// The remote snapshot is fetched first: an invalid or expired code fails
// here and leaves all local state untouched. On success a one-time merge
// runs, entries that exist only remotely are pulled, entries that exist
// only locally are pushed, then item-level sync takes over.
func (s *Syncer) Join(ctx context.Context, code string) (models.Budget, error) {
	snapshot, err := s.remote.FetchBudget(ctx, code)
	if err != nil {
		return models.Budget{}, wrapSyncError(err)
	}

	budget, err := s.store.GetBudgetByCode(ctx, code)
	if errors.Is(err, models.ErrResourceNotFound) {
		budget = models.Budget{
			Name:     snapshot.Name,
			Amount:   snapshot.Amount,
			Currency: snapshot.Currency,
			Date:     snapshot.Date,
			Code:     code,
			Synced:   true,
		}

		err = s.store.CreateBudget(ctx, &budget)
	}
	if err != nil {
		return models.Budget{}, err
	}

	err = s.mergeEntries(ctx, budget.ID, snapshot.Entries)
	if err != nil {
		return models.Budget{}, err
	}

	// Push the local side of the merge
	err = s.SyncEntries(ctx, budget.ID)
	if err != nil {
		return models.Budget{}, err
	}

	return s.store.GetBudget(ctx, budget.ID)
}

// mergeEntries inserts all remote entries that do not exist locally yet.
func (s *Syncer) mergeEntries(ctx context.Context, budgetID uint64, remotes []RemoteEntry) error {
	local, err := s.store.Entries(ctx, budgetID)
	if err != nil {
		return err
	}

	known := make(map[uuid.UUID]bool, len(local))
	for _, entry := range local {
		if entry.RemoteID != uuid.Nil {
			known[entry.RemoteID] = true
		}
	}

	for _, remote := range remotes {
		if known[remote.RemoteID] {
			continue
		}

		entry := fromRemote(budgetID, remote)
		entry.Synced = true
		entry.SyncState = models.SyncStateSynced

		err = s.store.CreateEntry(ctx, &entry)
		if err != nil {
			return err
		}
	}

	return nil
}

// wrapSyncError classifies remote failures. Invalid collaboration codes
// pass through, everything else becomes a recoverable ErrSync.
func wrapSyncError(err error) error {
	if errors.Is(err, ErrInvalidCollaborationCode) {
		return err
	}

	return fmt.Errorf("%w: %s", ErrSync, err)
}

// toRemote converts an entry to its wire representation.
func toRemote(entry models.BudgetEntry) RemoteEntry {
	return RemoteEntry{
		RemoteID:    entry.RemoteID,
		Amount:      entry.Amount,
		Description: entry.Description,
		Type:        entry.Type,
		Category:    entry.Category,
		Date:        entry.Date,
		Invoice:     entry.Invoice,
		CreatedBy:   entry.CreatedBy,
		UpdatedBy:   entry.UpdatedBy,
		UpdatedAt:   entry.RemoteUpdatedAt,
	}
}

// fromRemote converts a wire entry into a local one.
func fromRemote(budgetID uint64, remote RemoteEntry) models.BudgetEntry {
	return models.BudgetEntry{
		BudgetID:        budgetID,
		Amount:          remote.Amount,
		Description:     remote.Description,
		Type:            remote.Type,
		Category:        remote.Category,
		Date:            remote.Date,
		Invoice:         remote.Invoice,
		Synced:          true,
		SyncState:       models.SyncStateSynced,
		RemoteID:        remote.RemoteID,
		RemoteUpdatedAt: remote.UpdatedAt,
		CreatedBy:       remote.CreatedBy,
		UpdatedBy:       remote.UpdatedBy,
	}
}
