package consensus

import (
	"time"

	"github.com/roman778roman/massa/exception"
	"github.com/roman778roman/massa/interfaces"
	"github.com/roman778roman/massa/ledger"
	"github.com/roman778roman/massa/logx"
	"github.com/roman778roman/massa/monitoring"
	"github.com/roman778roman/massa/store"
	"github.com/roman778roman/massa/types"
)

// Worker is the single writer of the shared consensus state. It drains the
// command channel serially, consults the fork-choice collaborator, folds
// finalized payout deltas into the canonical credit ledger and checkpoints
// them through the credit store.
type Worker struct {
	commands    <-chan Command
	shared      *SharedState
	forkChoice  interfaces.ForkChoice
	creditStore store.CreditStore
	serializer  *ledger.CreditsSerializer

	quit chan struct{}
	done chan struct{}
}

// NewWorker builds the worker. creditStore may be nil when checkpointing is
// not wanted (tests, light nodes).
func NewWorker(commands <-chan Command, shared *SharedState,
	forkChoice interfaces.ForkChoice, creditStore store.CreditStore) *Worker {
	return &Worker{
		commands:    commands,
		shared:      shared,
		forkChoice:  forkChoice,
		creditStore: creditStore,
		serializer:  ledger.NewCreditsSerializer(),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func (w *Worker) Start() {
	exception.SafeGo("consensus-worker", w.run)
}

// Stop asks the worker to exit and waits for the current command to finish.
// The command channel stays open; submissions after Stop are dropped once the
// buffer fills, per the best-effort contract.
func (w *Worker) Stop() {
	close(w.quit)
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		select {
		case cmd := <-w.commands:
			w.apply(cmd)
			monitoring.IncreaseAppliedCommandCount(cmd.kind())
		case <-w.quit:
			return
		}
	}
}

func (w *Worker) apply(cmd Command) {
	w.shared.mu.Lock()
	defer w.shared.mu.Unlock()

	state := w.shared.inner
	switch c := cmd.(type) {
	case registerBlockCommand:
		w.applyRegisterBlock(state, c)
	case registerBlockHeaderCommand:
		state.registerIncomingHeader(c.id, c.header)
	case markInvalidBlockCommand:
		w.applyMarkInvalid(state, c)
	}
}

func (w *Worker) applyRegisterBlock(state *State, c registerBlockCommand) {
	state.registerActiveBlock(c.id, c.slot, c.parents, c.storage, c.payouts, c.created)
	outcome := w.forkChoice.OnBlockRegistered(c.id, c.slot, c.parents)

	state.bestParents = bestParentsFrom(state, outcome.BestParents)
	state.maxCliques = []Clique{{
		BlockIDs:      outcome.Blockclique,
		Fitness:       uint64(len(outcome.Blockclique)),
		IsBlockclique: true,
	}}

	for _, id := range outcome.Finalized {
		w.finalizeBlock(state, id)
	}
}

func (w *Worker) applyMarkInvalid(state *State, c markInvalidBlockCommand) {
	state.discardBlock(c.id, c.header, "invalid block")
	w.forkChoice.OnBlockInvalidated(c.id)
	state.stats.recordStale(time.Now())
	logx.Warn("CONSENSUS", "marked invalid block ", c.id.String(), " at ", c.header.Slot.String())
}

// finalizeBlock flags a block irreversible and applies its payout delta to
// the canonical credit ledger. This is the only code path allowed to touch
// the ledger digest, and it runs at most once per block: fork-choice reports
// each id exactly once.
func (w *Worker) finalizeBlock(state *State, id types.BlockID) {
	status, ok := state.blockStatuses[id]
	if !ok || status.State != StateActive {
		logx.Error("CONSENSUS", "finalized block ", id.String(), " missing from status map")
		return
	}
	block := status.Block
	if block.IsFinal {
		return
	}
	block.IsFinal = true
	state.stats.recordFinal(time.Now())

	if block.Payouts != nil && !block.Payouts.IsEmpty() {
		credits := state.deferredCredits
		credits.FinalNestedReplace(block.Payouts)
		pruned := credits.RemoveZeros()
		monitoring.IncreaseFinalizedDeltaCount()
		monitoring.AddPrunedCreditCount(pruned)
		monitoring.SetFinalCreditSlots(credits.SlotCount())
		w.checkpoint(block.Slot, credits)
	}

	logx.Info("CONSENSUS", "block ", id.String(), " finalized at slot ", block.Slot.String())
}

func (w *Worker) checkpoint(slot types.Slot, credits *ledger.DeferredCredits) {
	if w.creditStore == nil {
		return
	}
	data := w.serializer.Serialize(credits)
	if err := w.creditStore.SaveCheckpoint(slot, data, credits.Hash()); err != nil {
		logx.Error("CONSENSUS", "failed to checkpoint credits at slot ", slot.String(), ": ", err)
	}
}

// bestParentsFrom resolves the period of each best-parent id against the
// status map, skipping ids the map does not know.
func bestParentsFrom(state *State, ids []types.BlockID) []BlockParent {
	parents := make([]BlockParent, 0, len(ids))
	for _, id := range ids {
		status, ok := state.blockStatuses[id]
		if !ok || status.State != StateActive {
			continue
		}
		parents = append(parents, BlockParent{ID: id, Period: status.Block.Slot.Period})
	}
	return parents
}
