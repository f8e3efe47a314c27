package interfaces

import (
	"github.com/roman778roman/massa/types"
)

// ForkChoiceOutcome is what the block-graph algorithm reports after ingesting
// a block.
type ForkChoiceOutcome struct {
	// Finalized lists block ids that became irreversible, in finalization order.
	Finalized []types.BlockID
	// BestParents holds the current best parent block per thread.
	BestParents []types.BlockID
	// Blockclique lists the blocks of the current preferred clique.
	Blockclique []types.BlockID
}

// ForkChoice is the block-graph algorithm consumed by the consensus worker.
// Fork-choice rules, clique computation and block validation live behind this
// interface; the worker only applies its outcomes.
type ForkChoice interface {
	// OnBlockRegistered ingests a full block and returns the resulting outcome.
	OnBlockRegistered(id types.BlockID, slot types.Slot, parents []types.BlockID) ForkChoiceOutcome
	// OnBlockInvalidated removes a block the header checks rejected.
	OnBlockInvalidated(id types.BlockID)
}
