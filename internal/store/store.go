// Package store is the persistence adapter of the backend.
//
// It wraps the database with typed CRUD operations and publishes a live
// read stream per aggregate: one for the budget list and one per budget for
// its entries. Every successful mutation re-reads the affected aggregate
// and re-emits it, so subscribers always converge on the persisted state.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/budgetbuddy/backend/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Store provides access to budgets and their entries.
type Store struct {
	db *gorm.DB

	budgets *topic[[]models.Budget]

	mu      sync.Mutex
	entries map[uint64]*topic[[]models.BudgetEntry]

	// emitMu serializes re-read and publish so that two mutations can never
	// emit their aggregates out of order. It is only ever held inside the
	// store, never by consumers.
	emitMu sync.Mutex
}

// New returns a Store on top of an already connected database.
func New(db *gorm.DB) *Store {
	return &Store{
		db:      db,
		budgets: newTopic[[]models.Budget](),
		entries: make(map[uint64]*topic[[]models.BudgetEntry]),
	}
}

func (s *Store) entryTopic(budgetID uint64) *topic[[]models.BudgetEntry] {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.entries[budgetID]
	if !ok {
		t = newTopic[[]models.BudgetEntry]()
		s.entries[budgetID] = t
	}

	return t
}

// Budgets returns all budgets with their calculated totals, sorted by name.
func (s *Store) Budgets(ctx context.Context) ([]models.Budget, error) {
	var budgets []models.Budget

	err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&budgets).Error
	if err != nil {
		return nil, err
	}

	for i, budget := range budgets {
		budgets[i], err = budget.WithCalculations(s.db.WithContext(ctx))
		if err != nil {
			return nil, err
		}
	}

	return budgets, nil
}

// GetBudget returns a single budget with its calculated totals.
func (s *Store) GetBudget(ctx context.Context, id uint64) (models.Budget, error) {
	var budget models.Budget

	err := s.db.WithContext(ctx).First(&budget, id).Error
	if err != nil {
		return models.Budget{}, err
	}

	return budget.WithCalculations(s.db.WithContext(ctx))
}

// GetBudgetByCode returns the budget carrying a collaboration code.
func (s *Store) GetBudgetByCode(ctx context.Context, code string) (models.Budget, error) {
	var budget models.Budget

	err := s.db.WithContext(ctx).Where(&models.Budget{Code: code}).First(&budget).Error
	if err != nil {
		return models.Budget{}, err
	}

	return budget.WithCalculations(s.db.WithContext(ctx))
}

// Entries returns all entries of a budget, newest first.
func (s *Store) Entries(ctx context.Context, budgetID uint64) ([]models.BudgetEntry, error) {
	var entries []models.BudgetEntry

	err := s.db.WithContext(ctx).
		Where(&models.BudgetEntry{BudgetID: budgetID}).
		Order("date DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// GetEntry returns a single entry.
func (s *Store) GetEntry(ctx context.Context, id uint64) (models.BudgetEntry, error) {
	var entry models.BudgetEntry

	err := s.db.WithContext(ctx).First(&entry, id).Error
	if err != nil {
		return models.BudgetEntry{}, err
	}

	return entry, nil
}

// PendingEntries returns all entries of a budget with local changes the
// remote does not know about yet. Entries left in the Syncing state by an
// interrupted sync are stale and included again.
func (s *Store) PendingEntries(ctx context.Context, budgetID uint64) ([]models.BudgetEntry, error) {
	var entries []models.BudgetEntry

	err := s.db.WithContext(ctx).
		Where("budget_id = ? AND sync_state IN ?", budgetID, []models.SyncState{models.SyncStateLocalPending, models.SyncStateSyncing}).
		Order("date DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// StreamBudgets subscribes to the budget list. The current state is emitted
// immediately, every mutation afterwards re-emits the full list. The stream
// ends when ctx does. Emissions have buffer-latest semantics: a subscriber
// that does not keep up only skips intermediate states, never the latest.
func (s *Store) StreamBudgets(ctx context.Context) (<-chan []models.Budget, error) {
	// emitMu spans the initial read and the registration, a mutation cannot
	// slip between them and leave the subscriber one state behind
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	budgets, err := s.Budgets(ctx)
	if err != nil {
		return nil, err
	}

	return s.budgets.subscribe(ctx, budgets), nil
}

// StreamEntries subscribes to the entries of one budget, with the same
// semantics as StreamBudgets.
func (s *Store) StreamEntries(ctx context.Context, budgetID uint64) (<-chan []models.BudgetEntry, error) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	entries, err := s.Entries(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	return s.entryTopic(budgetID).subscribe(ctx, entries), nil
}

// notifyBudgets re-reads the budget list and publishes it to all
// subscribers. Failures only mean that subscribers lag behind until the
// next successful emission, so they are logged, not returned.
func (s *Store) notifyBudgets() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	budgets, err := s.Budgets(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("budget stream emission failed")
		return
	}

	s.budgets.publish(budgets)
}

// notifyEntries re-reads the entries of a budget and publishes them.
func (s *Store) notifyEntries(budgetID uint64) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	entries, err := s.Entries(context.Background(), budgetID)
	if err != nil {
		log.Error().Err(err).Uint64("budget-id", budgetID).Msg("entry stream emission failed")
		return
	}

	s.entryTopic(budgetID).publish(entries)
}

// CreateBudget persists a new budget. The ID is generated by the database
// within the insert, the caller never observes a budget without one.
func (s *Store) CreateBudget(ctx context.Context, budget *models.Budget) error {
	err := s.db.WithContext(ctx).Create(budget).Error
	if err != nil {
		return err
	}

	s.notifyBudgets()
	return nil
}

// UpdateBudget writes all fields of an already persisted budget.
func (s *Store) UpdateBudget(ctx context.Context, budget *models.Budget) error {
	tx := s.db.WithContext(ctx).
		Model(budget).
		Select("*").
		Omit("id", "created_at").
		Updates(*budget)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return errNotFound("budget")
	}

	s.notifyBudgets()
	return nil
}

// DeleteBudget removes a budget. All its entries are removed with it.
func (s *Store) DeleteBudget(ctx context.Context, id uint64) error {
	var budget models.Budget
	err := s.db.WithContext(ctx).First(&budget, id).Error
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Delete(&budget).Error
	if err != nil {
		return err
	}

	s.notifyBudgets()
	s.notifyEntries(id)
	return nil
}

// CreateEntry persists a new entry. Creating an entry for a budget that
// does not exist fails with models.ErrBudgetNotExisting.
func (s *Store) CreateEntry(ctx context.Context, entry *models.BudgetEntry) error {
	err := s.db.WithContext(ctx).Create(entry).Error
	if err != nil {
		return err
	}

	s.notifyEntries(entry.BudgetID)
	s.notifyBudgets()
	return nil
}

// UpdateEntry writes all fields of an already persisted entry.
func (s *Store) UpdateEntry(ctx context.Context, entry *models.BudgetEntry) error {
	tx := s.db.WithContext(ctx).
		Model(entry).
		Select("*").
		Omit("id", "created_at").
		Updates(*entry)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return errNotFound("budget entry")
	}

	s.notifyEntries(entry.BudgetID)
	s.notifyBudgets()
	return nil
}

// DeleteEntriesByIDs removes a batch of entries. An empty batch is a no-op,
// ids that are already gone are skipped without an error, so the operation
// is idempotent.
func (s *Store) DeleteEntriesByIDs(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}

	// The budget ids are needed for the stream emissions after the delete
	var budgetIDs []uint64
	err := s.db.WithContext(ctx).
		Model(&models.BudgetEntry{}).
		Where("id IN ?", ids).
		Distinct("budget_id").
		Pluck("budget_id", &budgetIDs).Error
	if err != nil {
		return err
	}

	if len(budgetIDs) == 0 {
		return nil
	}

	err = s.db.WithContext(ctx).Delete(&models.BudgetEntry{}, ids).Error
	if err != nil {
		return err
	}

	for _, budgetID := range budgetIDs {
		s.notifyEntries(budgetID)
	}
	s.notifyBudgets()
	return nil
}

// DeleteEntriesByBudget removes all entries of a budget.
func (s *Store) DeleteEntriesByBudget(ctx context.Context, budgetID uint64) error {
	err := s.db.WithContext(ctx).
		Where(&models.BudgetEntry{BudgetID: budgetID}).
		Delete(&models.BudgetEntry{}).Error
	if err != nil {
		return err
	}

	s.notifyEntries(budgetID)
	s.notifyBudgets()
	return nil
}

// MarkEntriesSyncing transitions entries into the Syncing state for the
// duration of an explicitly triggered sync.
func (s *Store) MarkEntriesSyncing(ctx context.Context, budgetID uint64, ids []uint64) error {
	return s.setEntryState(ctx, budgetID, ids, models.SyncStateSyncing)
}

// ResetEntriesPending returns entries to the LocalPending state after a
// failed sync. The local changes are kept, nothing is retried until the
// next explicit trigger.
func (s *Store) ResetEntriesPending(ctx context.Context, budgetID uint64, ids []uint64) error {
	return s.setEntryState(ctx, budgetID, ids, models.SyncStateLocalPending)
}

func (s *Store) setEntryState(ctx context.Context, budgetID uint64, ids []uint64, state models.SyncState) error {
	if len(ids) == 0 {
		return nil
	}

	// UpdateColumn skips the model hooks, which would reject the partial
	// entry used as the statement model.
	err := s.db.WithContext(ctx).
		Model(&models.BudgetEntry{}).
		Where("id IN ?", ids).
		UpdateColumn("sync_state", state).Error
	if err != nil {
		return err
	}

	s.notifyEntries(budgetID)
	return nil
}

// MarkEntrySynced records a successful round-trip with the remote: the
// server assigned identity, its timestamp and the author attribution it
// reported.
func (s *Store) MarkEntrySynced(ctx context.Context, entry models.BudgetEntry, remoteID uuid.UUID, remoteUpdatedAt time.Time, createdBy, updatedBy string) error {
	err := s.db.WithContext(ctx).
		Model(&models.BudgetEntry{Model: models.Model{ID: entry.ID}}).
		UpdateColumns(map[string]any{
			"synced":            true,
			"sync_state":        models.SyncStateSynced,
			"remote_id":         remoteID,
			"remote_updated_at": remoteUpdatedAt.In(time.UTC),
			"created_by":        createdBy,
			"updated_by":        updatedBy,
		}).Error
	if err != nil {
		return err
	}

	s.notifyEntries(entry.BudgetID)
	return nil
}

// ReplaceEntryFromRemote discards the local state of an entry and overwrites
// it in full with the version the remote reported as the winner of a
// concurrent edit.
func (s *Store) ReplaceEntryFromRemote(ctx context.Context, id uint64, remote models.BudgetEntry) error {
	remote.Model = models.Model{ID: id}
	remote.Synced = true
	remote.SyncState = models.SyncStateConflict

	tx := s.db.WithContext(ctx).
		Model(&remote).
		Select("*").
		Omit("id", "created_at").
		Updates(remote)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return errNotFound("budget entry")
	}

	s.notifyEntries(remote.BudgetID)
	s.notifyBudgets()
	return nil
}

// MarkBudgetShared stores the collaboration code of a budget once the
// remote has acknowledged it.
func (s *Store) MarkBudgetShared(ctx context.Context, id uint64, code string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Budget{Model: models.Model{ID: id}}).
		UpdateColumns(map[string]any{"code": code, "synced": true}).Error
	if err != nil {
		return err
	}

	s.notifyBudgets()
	return nil
}
