package shopping

import "github.com/planifia/planner/internal/domain/shared"

// SyncState is the per-user record of the tracked week and the quantities
// the user removed from the auto list during it.
type SyncState struct {
	WeekKey  string
	Consumed map[string]shared.Quantity
}

// NewSyncState returns an empty ledger for weekKey.
func NewSyncState(weekKey string) *SyncState {
	return &SyncState{WeekKey: weekKey, Consumed: map[string]shared.Quantity{}}
}

// Status reports UNSYNCED for a missing state and SYNCED otherwise.
func (s *SyncState) Status() SyncStatus {
	if s == nil || s.WeekKey == "" {
		return StatusUnsynced
	}
	return StatusSynced
}

// NeedsRollover reports whether the stored week differs from weekKey.
func (s *SyncState) NeedsRollover(weekKey string) bool {
	return s.Status() == StatusUnsynced || s.WeekKey != weekKey
}

// ConsumedFor returns a copy of the ledger when it belongs to weekKey and
// an empty map otherwise.
func (s *SyncState) ConsumedFor(weekKey string) map[string]shared.Quantity {
	out := map[string]shared.Quantity{}
	if s == nil || s.WeekKey != weekKey {
		return out
	}
	for key, qty := range s.Consumed {
		out[key] = qty
	}
	return out
}

// SyncStatus is the week tracker state.
type SyncStatus string

const (
	StatusUnsynced SyncStatus = "UNSYNCED"
	StatusSynced   SyncStatus = "SYNCED"
)
