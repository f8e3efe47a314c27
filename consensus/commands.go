package consensus

import (
	"github.com/roman778roman/massa/ledger"
	"github.com/roman778roman/massa/monitoring"
	"github.com/roman778roman/massa/store"
	"github.com/roman778roman/massa/types"
)

// Command is a state-changing request submitted to the worker through the
// bounded command channel. Delivery is best-effort and at-most-once: a full
// channel drops the command silently. The variant set is closed.
type Command interface {
	kind() monitoring.CommandKind
}

type registerBlockCommand struct {
	id      types.BlockID
	slot    types.Slot
	parents []types.BlockID
	storage *store.Storage
	payouts *ledger.DeferredCredits
	created bool
}

func (registerBlockCommand) kind() monitoring.CommandKind {
	return monitoring.CommandRegisterBlock
}

type registerBlockHeaderCommand struct {
	id     types.BlockID
	header types.BlockHeader
}

func (registerBlockHeaderCommand) kind() monitoring.CommandKind {
	return monitoring.CommandRegisterBlockHeader
}

type markInvalidBlockCommand struct {
	id     types.BlockID
	header types.BlockHeader
}

func (markInvalidBlockCommand) kind() monitoring.CommandKind {
	return monitoring.CommandMarkInvalidBlock
}
