// Package memory implements the collaboration service in process. It backs
// the test suites and local development without a reachable server.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/budgetbuddy/backend/internal/syncer"
	"github.com/google/uuid"
)

type sharedBudget struct {
	budget  syncer.RemoteBudget
	order   []uuid.UUID
	entries map[uuid.UUID]syncer.RemoteEntry
}

// Remote is an in-memory syncer.Remote. All methods are safe for concurrent
// use.
type Remote struct {
	mu       sync.Mutex
	identity string
	budgets  map[string]*sharedBudget

	// failWith, when set, is returned by every remote call. Used to exercise
	// failure paths in tests.
	failWith error

	now func() time.Time
}

// New returns an empty Remote that attributes writes to identity.
func New(identity string) *Remote {
	return &Remote{
		identity: identity,
		budgets:  make(map[string]*sharedBudget),
		now:      time.Now,
	}
}

// FailWith makes every following call return err. Passing nil restores
// normal operation.
func (r *Remote) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failWith = err
}

// SetNow overrides the clock used for server timestamps.
func (r *Remote) SetNow(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.now = now
}

// ShareBudget registers the budget and returns a fresh collaboration code.
func (r *Remote) ShareBudget(_ context.Context, budget syncer.RemoteBudget) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return "", r.failWith
	}

	code := strings.ToUpper(uuid.NewString()[:8])
	budget.Code = code

	r.budgets[code] = &sharedBudget{
		budget:  budget,
		entries: make(map[uuid.UUID]syncer.RemoteEntry),
	}

	return code, nil
}

// FetchBudget returns the snapshot for a collaboration code.
func (r *Remote) FetchBudget(_ context.Context, code string) (syncer.RemoteBudget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return syncer.RemoteBudget{}, r.failWith
	}

	shared, ok := r.budgets[code]
	if !ok {
		return syncer.RemoteBudget{}, syncer.ErrInvalidCollaborationCode
	}

	snapshot := shared.budget
	snapshot.Entries = make([]syncer.RemoteEntry, 0, len(shared.order))
	for _, id := range shared.order {
		snapshot.Entries = append(snapshot.Entries, shared.entries[id])
	}

	return snapshot, nil
}

// PushEntries applies entries to the shared budget. An entry without a
// remote id is created, a known one is updated unless the server version is
// newer than the version the sender knows, then the server version wins and
// is returned unchanged.
func (r *Remote) PushEntries(_ context.Context, code string, entries []syncer.RemoteEntry) ([]syncer.PushResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return nil, r.failWith
	}

	shared, ok := r.budgets[code]
	if !ok {
		return nil, syncer.ErrInvalidCollaborationCode
	}

	now := r.now().In(time.UTC)

	results := make([]syncer.PushResult, len(entries))
	for i, entry := range entries {
		if entry.RemoteID == uuid.Nil {
			entry.RemoteID = uuid.New()
			entry.CreatedBy = r.identity
			entry.UpdatedBy = r.identity
			entry.UpdatedAt = now

			shared.order = append(shared.order, entry.RemoteID)
			shared.entries[entry.RemoteID] = entry

			results[i] = resultFor(entry)
			continue
		}

		existing, known := shared.entries[entry.RemoteID]
		if known && existing.UpdatedAt.After(entry.UpdatedAt) {
			// A collaborator updated the entry since the sender last saw it
			winner := existing
			results[i] = resultFor(existing)
			results[i].Winner = &winner
			continue
		}

		if !known {
			shared.order = append(shared.order, entry.RemoteID)
			entry.CreatedBy = r.identity
		} else {
			entry.CreatedBy = existing.CreatedBy
		}

		entry.UpdatedBy = r.identity
		entry.UpdatedAt = now
		shared.entries[entry.RemoteID] = entry

		results[i] = resultFor(entry)
	}

	return results, nil
}

// Seed places an entry on the remote side directly, bypassing conflict
// detection. Used by tests to fabricate concurrent collaborator edits.
func (r *Remote) Seed(code string, entry syncer.RemoteEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	shared, ok := r.budgets[code]
	if !ok {
		return fmt.Errorf("no shared budget with code %q", code)
	}

	if entry.RemoteID == uuid.Nil {
		entry.RemoteID = uuid.New()
	}

	if _, known := shared.entries[entry.RemoteID]; !known {
		shared.order = append(shared.order, entry.RemoteID)
	}
	shared.entries[entry.RemoteID] = entry

	return nil
}

func resultFor(entry syncer.RemoteEntry) syncer.PushResult {
	return syncer.PushResult{
		RemoteID:  entry.RemoteID,
		UpdatedAt: entry.UpdatedAt,
		CreatedBy: entry.CreatedBy,
		UpdatedBy: entry.UpdatedBy,
	}
}
