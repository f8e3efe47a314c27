package consensus

import (
	"time"

	"github.com/roman778roman/massa/bootstrap"
	"github.com/roman778roman/massa/hashx"
	"github.com/roman778roman/massa/interfaces"
	"github.com/roman778roman/massa/ledger"
	"github.com/roman778roman/massa/logx"
	"github.com/roman778roman/massa/monitoring"
	"github.com/roman778roman/massa/store"
	"github.com/roman778roman/massa/types"
)

// Controller is the facade callers interact with. Retrieval goes through the
// shared state under a read lock; modifications are asked by sending a
// command to the worker's channel, without waiting for them to be processed.
//
// A command just submitted and a read right after it are mutually
// asynchronous: the read may reflect the state before the command, but the
// single writer guarantees it never reflects a state that skipped an older,
// already-applied one.
//
// Controller is a value type; copies share the same channel and state.
type Controller struct {
	commands chan<- Command
	shared   *SharedState
}

func NewController(commands chan<- Command, shared *SharedState) Controller {
	return Controller{commands: commands, shared: shared}
}

// submit performs the non-blocking, best-effort send. The command channel is
// never closed, so an absent worker shows up as a full buffer, not a panic.
func (c Controller) submit(cmd Command) {
	select {
	case c.commands <- cmd:
	default:
		monitoring.IncreaseDroppedCommandCount(cmd.kind())
		logx.Debug("CONSENSUS", "dropped command: ", cmd.kind())
	}
}

// RegisterBlock submits a full block for graph insertion. Fire-and-forget:
// callers needing confirmation must poll the state afterwards.
func (c Controller) RegisterBlock(id types.BlockID, slot types.Slot, parents []types.BlockID,
	storage *store.Storage, payouts *ledger.DeferredCredits, created bool) {
	c.submit(registerBlockCommand{
		id:      id,
		slot:    slot,
		parents: parents,
		storage: storage,
		payouts: payouts,
		created: created,
	})
}

// RegisterBlockHeader submits a standalone header. Fire-and-forget.
func (c Controller) RegisterBlockHeader(id types.BlockID, header types.BlockHeader) {
	c.submit(registerBlockHeaderCommand{id: id, header: header})
}

// MarkInvalidBlock reports a block that failed header checks. Fire-and-forget.
func (c Controller) MarkInvalidBlock(id types.BlockID, header types.BlockHeader) {
	c.submit(markInvalidBlockCommand{id: id, header: header})
}

// GetBlockGraphStatus extracts the graph over an optional slot interval.
func (c Controller) GetBlockGraphStatus(start, end *types.Slot) BlockGraphExport {
	c.shared.mu.RLock()
	defer c.shared.mu.RUnlock()
	return c.shared.inner.ExtractGraphPart(start, end)
}

// GetBlockStatuses answers the status of each id, in the order given.
func (c Controller) GetBlockStatuses(ids []types.BlockID) []BlockGraphStatus {
	c.shared.mu.RLock()
	defer c.shared.mu.RUnlock()
	statuses := make([]BlockGraphStatus, len(ids))
	for i, id := range ids {
		statuses[i] = c.shared.inner.BlockStatusOf(id)
	}
	return statuses
}

// GetCliques returns all current cliques.
func (c Controller) GetCliques() []Clique {
	c.shared.mu.RLock()
	defer c.shared.mu.RUnlock()
	return c.shared.inner.Cliques()
}

// GetBootstrapPart serves one batch of the finalized-graph bootstrap stream.
func (c Controller) GetBootstrapPart(cursor, executionCursor types.StreamingStep) (bootstrap.BootstrapableGraph, types.StreamingStep, error) {
	c.shared.mu.RLock()
	defer c.shared.mu.RUnlock()
	return c.shared.inner.BootstrapPart(cursor, executionCursor)
}

// GetBootstrapPartForExecution is GetBootstrapPart with the execution cursor
// read live from the execution-side bootstrap stream.
func (c Controller) GetBootstrapPartForExecution(cursor types.StreamingStep, execution interfaces.ExecutionBootstrap) (bootstrap.BootstrapableGraph, types.StreamingStep, error) {
	return c.GetBootstrapPart(cursor, execution.Cursor())
}

// GetStats snapshots graph activity over the stats window.
func (c Controller) GetStats() Stats {
	c.shared.mu.RLock()
	defer c.shared.mu.RUnlock()
	return c.shared.inner.Stats(time.Now())
}

// GetBestParents returns the preferred tip per thread.
func (c Controller) GetBestParents() []BlockParent {
	c.shared.mu.RLock()
	defer c.shared.mu.RUnlock()
	return c.shared.inner.BestParents()
}

// GetBlockcliqueBlockAtSlot returns the blockclique block at exactly slot.
func (c Controller) GetBlockcliqueBlockAtSlot(slot types.Slot) (types.BlockID, bool) {
	c.shared.mu.RLock()
	defer c.shared.mu.RUnlock()
	return c.shared.inner.BlockcliqueBlockAtSlot(slot)
}

// GetLatestBlockcliqueBlockAtSlot returns the latest blockclique block in
// slot's thread strictly before slot.
func (c Controller) GetLatestBlockcliqueBlockAtSlot(slot types.Slot) (types.BlockID, bool) {
	c.shared.mu.RLock()
	defer c.shared.mu.RUnlock()
	return c.shared.inner.LatestBlockcliqueBlockAtSlot(slot)
}

// GetLedgerHash returns the digest of the finalized deferred-credit ledger.
func (c Controller) GetLedgerHash() hashx.Hash {
	c.shared.mu.RLock()
	defer c.shared.mu.RUnlock()
	return c.shared.inner.DeferredCredits().Hash()
}

// GetDeferredCreditsSnapshot returns a private copy of the finalized credit
// ledger, safe for speculative merges.
func (c Controller) GetDeferredCreditsSnapshot() *ledger.DeferredCredits {
	c.shared.mu.RLock()
	defer c.shared.mu.RUnlock()
	return c.shared.inner.DeferredCredits().Clone()
}
