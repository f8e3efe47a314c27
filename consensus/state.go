package consensus

import (
	"sort"
	"sync"
	"time"

	"github.com/roman778roman/massa/config"
	"github.com/roman778roman/massa/ledger"
	"github.com/roman778roman/massa/store"
	"github.com/roman778roman/massa/types"
)

// State is the consensus-side view of the block graph plus the canonical
// finalized deferred-credit ledger. It is owned by a single writer (the
// worker) and read under the shared lock of SharedState; none of its methods
// lock anything themselves.
type State struct {
	cfg config.ConsensusConfig

	blockStatuses map[types.BlockID]*BlockStatus
	maxCliques    []Clique
	bestParents   []BlockParent

	deferredCredits *ledger.DeferredCredits
	stats           *statsTracker
}

func newState(cfg config.ConsensusConfig) *State {
	return &State{
		cfg:             cfg,
		blockStatuses:   make(map[types.BlockID]*BlockStatus),
		deferredCredits: ledger.NewDeferredCredits(),
		stats:           newStatsTracker(time.Duration(cfg.StatsTimespanMs) * time.Millisecond),
	}
}

// SharedState pairs a State with the reader/writer lock every access goes
// through. Controller handles share one instance; the worker is the only
// component allowed to take the write side.
type SharedState struct {
	mu    sync.RWMutex
	inner *State
}

func NewSharedState(cfg config.ConsensusConfig) *SharedState {
	return &SharedState{inner: newState(cfg)}
}

// --- writer-side mutations, caller must hold the write lock ---

func (s *State) registerIncomingHeader(id types.BlockID, header types.BlockHeader) {
	if _, exists := s.blockStatuses[id]; exists {
		return
	}
	s.blockStatuses[id] = &BlockStatus{State: StateIncoming, Header: header}
}

func (s *State) registerActiveBlock(id types.BlockID, slot types.Slot, parents []types.BlockID,
	storage *store.Storage, payouts *ledger.DeferredCredits, created bool) *ActiveBlock {
	status, exists := s.blockStatuses[id]
	if exists && status.State == StateActive {
		return status.Block
	}
	block := &ActiveBlock{
		ID:      id,
		Slot:    slot,
		Parents: parents,
		Payouts: payouts,
		Created: created,
	}
	s.blockStatuses[id] = &BlockStatus{
		State:   StateActive,
		Header:  types.BlockHeader{Slot: slot, Parents: parents},
		Block:   block,
		Storage: storage,
	}
	return block
}

func (s *State) discardBlock(id types.BlockID, header types.BlockHeader, reason string) {
	s.blockStatuses[id] = &BlockStatus{
		State:         StateDiscarded,
		Header:        header,
		DiscardReason: reason,
	}
}

// --- read-side queries, caller must hold at least the read lock ---

// BlockStatusOf answers the externally-visible status of one block id.
func (s *State) BlockStatusOf(id types.BlockID) BlockGraphStatus {
	status, ok := s.blockStatuses[id]
	if !ok {
		return BlockGraphNotFound
	}
	switch status.State {
	case StateIncoming:
		return BlockGraphIncoming
	case StateDiscarded:
		return BlockGraphDiscarded
	default:
		if status.Block.IsFinal {
			return BlockGraphFinal
		}
		return BlockGraphActive
	}
}

// ListRequiredActiveBlocks returns the ids needed to reconstruct finalized
// state: every active block plus the parents of every final one. Parents are
// listed even when absent from the status map; the exporter treats that as a
// container inconsistency.
func (s *State) ListRequiredActiveBlocks() []types.BlockID {
	seen := make(map[types.BlockID]struct{})
	var required []types.BlockID
	add := func(id types.BlockID) {
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		required = append(required, id)
	}
	for id, status := range s.blockStatuses {
		if status.State != StateActive {
			continue
		}
		add(id)
		if status.Block.IsFinal {
			for _, parent := range status.Block.Parents {
				add(parent)
			}
		}
	}
	return required
}

// Cliques returns a copy of the current cliques.
func (s *State) Cliques() []Clique {
	out := make([]Clique, len(s.maxCliques))
	for i, c := range s.maxCliques {
		out[i] = Clique{
			BlockIDs:      append([]types.BlockID(nil), c.BlockIDs...),
			Fitness:       c.Fitness,
			IsBlockclique: c.IsBlockclique,
		}
	}
	return out
}

// BestParents returns a copy of the preferred tip per thread.
func (s *State) BestParents() []BlockParent {
	return append([]BlockParent(nil), s.bestParents...)
}

// Stats snapshots graph activity over the configured window.
func (s *State) Stats(now time.Time) Stats {
	return s.stats.snapshot(now, len(s.maxCliques))
}

// blockclique returns the blockclique, if any.
func (s *State) blockclique() (Clique, bool) {
	for _, c := range s.maxCliques {
		if c.IsBlockclique {
			return c, true
		}
	}
	return Clique{}, false
}

// BlockcliqueBlockAtSlot returns the blockclique block sitting exactly at
// slot, if one exists.
func (s *State) BlockcliqueBlockAtSlot(slot types.Slot) (types.BlockID, bool) {
	clique, ok := s.blockclique()
	if !ok {
		return types.BlockID{}, false
	}
	for _, id := range clique.BlockIDs {
		status, ok := s.blockStatuses[id]
		if ok && status.State == StateActive && status.Block.Slot == slot {
			return id, true
		}
	}
	return types.BlockID{}, false
}

// LatestBlockcliqueBlockAtSlot returns the latest blockclique block in the
// thread of slot and strictly before slot.
func (s *State) LatestBlockcliqueBlockAtSlot(slot types.Slot) (types.BlockID, bool) {
	clique, ok := s.blockclique()
	if !ok {
		return types.BlockID{}, false
	}
	var (
		bestID   types.BlockID
		bestSlot types.Slot
		found    bool
	)
	for _, id := range clique.BlockIDs {
		status, ok := s.blockStatuses[id]
		if !ok || status.State != StateActive {
			continue
		}
		blockSlot := status.Block.Slot
		if blockSlot.Thread != slot.Thread || !slot.After(blockSlot) {
			continue
		}
		if !found || blockSlot.After(bestSlot) {
			bestID, bestSlot, found = id, blockSlot, true
		}
	}
	return bestID, found
}

// DeferredCredits exposes the canonical finalized credit ledger. Only the
// worker may mutate it; readers must treat it as a snapshot and copy before
// any speculative merge.
func (s *State) DeferredCredits() *ledger.DeferredCredits {
	return s.deferredCredits
}

// activeBlocksBySlot returns the active blocks sorted ascending by slot.
func (s *State) activeBlocksBySlot() []*BlockStatus {
	var actives []*BlockStatus
	for _, status := range s.blockStatuses {
		if status.State == StateActive {
			actives = append(actives, status)
		}
	}
	sort.Slice(actives, func(i, j int) bool {
		return actives[i].Block.Slot.Cmp(actives[j].Block.Slot) < 0
	})
	return actives
}
