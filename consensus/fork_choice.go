package consensus

import (
	"sort"

	"github.com/roman778roman/massa/interfaces"
	"github.com/roman778roman/massa/types"
)

// DepthForkChoice is a depth-based finality rule usable until a full clique
// computation is plugged in. A block becomes final once some registered block
// sits finalityDepth or more periods ahead of it. Best parents are the latest
// known block per thread, and the blockclique is every non-final block.
type DepthForkChoice struct {
	threadCount   uint8
	finalityDepth uint64

	slots     map[types.BlockID]types.Slot
	finalized map[types.BlockID]struct{}
	maxPeriod uint64
}

var _ interfaces.ForkChoice = (*DepthForkChoice)(nil)

func NewDepthForkChoice(threadCount uint8, finalityDepth uint64) *DepthForkChoice {
	return &DepthForkChoice{
		threadCount:   threadCount,
		finalityDepth: finalityDepth,
		slots:         make(map[types.BlockID]types.Slot),
		finalized:     make(map[types.BlockID]struct{}),
	}
}

func (f *DepthForkChoice) OnBlockRegistered(id types.BlockID, slot types.Slot, parents []types.BlockID) interfaces.ForkChoiceOutcome {
	f.slots[id] = slot
	if slot.Period > f.maxPeriod {
		f.maxPeriod = slot.Period
	}

	outcome := interfaces.ForkChoiceOutcome{
		Finalized:   f.collectFinalized(),
		BestParents: f.bestParents(),
		Blockclique: f.blockclique(),
	}
	return outcome
}

func (f *DepthForkChoice) OnBlockInvalidated(id types.BlockID) {
	delete(f.slots, id)
	delete(f.finalized, id)
}

// collectFinalized reports, exactly once each, the blocks that crossed the
// finality depth. Deterministic order keeps downstream ledger updates and
// logs reproducible.
func (f *DepthForkChoice) collectFinalized() []types.BlockID {
	if f.maxPeriod < f.finalityDepth {
		return nil
	}
	horizon := f.maxPeriod - f.finalityDepth
	var final []types.BlockID
	for id, slot := range f.slots {
		if _, done := f.finalized[id]; done {
			continue
		}
		if slot.Period <= horizon {
			final = append(final, id)
		}
	}
	sort.Slice(final, func(i, j int) bool {
		si, sj := f.slots[final[i]], f.slots[final[j]]
		if c := si.Cmp(sj); c != 0 {
			return c < 0
		}
		return final[i].String() < final[j].String()
	})
	for _, id := range final {
		f.finalized[id] = struct{}{}
	}
	return final
}

// bestParents picks the latest registered block of each thread, in thread
// order, skipping threads with no block yet.
func (f *DepthForkChoice) bestParents() []types.BlockID {
	type tip struct {
		id   types.BlockID
		slot types.Slot
		set  bool
	}
	tips := make([]tip, f.threadCount)
	for id, slot := range f.slots {
		if int(slot.Thread) >= len(tips) {
			continue
		}
		t := &tips[slot.Thread]
		if !t.set || slot.After(t.slot) {
			*t = tip{id: id, slot: slot, set: true}
		}
	}
	var parents []types.BlockID
	for _, t := range tips {
		if t.set {
			parents = append(parents, t.id)
		}
	}
	return parents
}

// blockclique is every known non-final block, ascending by slot.
func (f *DepthForkChoice) blockclique() []types.BlockID {
	var ids []types.BlockID
	for id := range f.slots {
		if _, done := f.finalized[id]; done {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return f.slots[ids[i]].Cmp(f.slots[ids[j]]) < 0
	})
	return ids
}
