package decay

import (
	"cogmem/internal/logging"
	"cogmem/internal/types"
)

// Manager runs one batch decay pass over a set of memories.
type Manager struct {
	log *logging.EnhancedLogger
}

// NewManager creates a decay manager.
func NewManager() *Manager {
	return &Manager{log: logging.NewEnhancedLogger("decay")}
}

// RunResult summarizes one batch decay pass.
type RunResult struct {
	Scanned int
	Changed int
}

// RunBatch decays every memory in place at nowMs and returns how many
// had their salience actually change (the dirty count apply_decay
// reports to the caller).
func (mgr *Manager) RunBatch(memories []*types.Memory, nowMs int64) RunResult {
	result := RunResult{Scanned: len(memories)}
	for _, m := range memories {
		if Decay(m, nowMs) {
			result.Changed++
		}
		m.ClampSalience()
	}
	mgr.log.Info("decay batch completed", "scanned", result.Scanned, "changed", result.Changed)
	return result
}
