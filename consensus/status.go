package consensus

import (
	"github.com/roman778roman/massa/ledger"
	"github.com/roman778roman/massa/store"
	"github.com/roman778roman/massa/types"
)

// BlockState is the lifecycle stage of a block inside the status map.
type BlockState uint8

const (
	// StateIncoming marks a block whose header arrived but whose full
	// registration is still pending.
	StateIncoming BlockState = iota
	// StateActive marks a registered block that is part of the live graph.
	StateActive
	// StateDiscarded marks a block rejected or pruned from the graph.
	StateDiscarded
)

// ActiveBlock is the in-graph record of a registered block.
type ActiveBlock struct {
	ID      types.BlockID
	Slot    types.Slot
	Parents []types.BlockID
	IsFinal bool
	// Payouts holds the deferred credit delta this block schedules. It is
	// folded into the canonical credit ledger exactly once, when the block
	// becomes final.
	Payouts *ledger.DeferredCredits
	// Created marks blocks produced by this node.
	Created bool
}

// BlockStatus tracks one block id through its lifecycle. Storage is only set
// while the block is active.
type BlockStatus struct {
	State         BlockState
	Header        types.BlockHeader
	Block         *ActiveBlock
	Storage       *store.Storage
	DiscardReason string
}

// BlockGraphStatus is the externally-visible status of a block id, as
// answered to status queries.
type BlockGraphStatus int

const (
	BlockGraphNotFound BlockGraphStatus = iota
	BlockGraphIncoming
	BlockGraphActive
	BlockGraphFinal
	BlockGraphDiscarded
)

func (s BlockGraphStatus) String() string {
	switch s {
	case BlockGraphIncoming:
		return "incoming"
	case BlockGraphActive:
		return "active"
	case BlockGraphFinal:
		return "final"
	case BlockGraphDiscarded:
		return "discarded"
	default:
		return "not_found"
	}
}

// BlockParent is one entry of the best-parents list: the preferred tip of a
// thread and its period.
type BlockParent struct {
	ID     types.BlockID
	Period uint64
}

// Clique is a consistent set of mutually-compatible blocks. At most one
// clique is the blockclique, the one block production extends.
type Clique struct {
	BlockIDs      []types.BlockID
	Fitness       uint64
	IsBlockclique bool
}
