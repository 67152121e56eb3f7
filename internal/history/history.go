// Package history records recommendation runs and their ranked results in a
// SQL database so they can be inspected and exported later.
package history

import (
	"sync"

	"github.com/mountjawa/peakfinder/internal/contract"
)

// HistoryStoreManager owns the process-wide HistoryStore.
type HistoryStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	store        contract.HistoryStore
}

var _ contract.HistoryManager = &HistoryStoreManager{} // Compile-time check

// GetHistoryStore returns the HistoryStore, or nil before InitHistory.
func (mgr *HistoryStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.store
}
