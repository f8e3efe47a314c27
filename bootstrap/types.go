package bootstrap

import (
	"github.com/roman778roman/massa/store"
	"github.com/roman778roman/massa/types"
)

// ExportActiveBlock is one finalized block as shipped to a bootstrapping
// node: the graph-relevant fields plus the opaque storage handle carrying the
// block's payload, forwarded unchanged.
type ExportActiveBlock struct {
	ID      types.BlockID
	Slot    types.Slot
	Parents []types.BlockID
	IsFinal bool
	Storage *store.Storage
}

// BootstrapableGraph is one batch of the graph export stream, in ascending
// slot order. The cursor tracking stream progress travels next to it, never
// inside it.
type BootstrapableGraph struct {
	FinalBlocks []ExportActiveBlock
}

// Len returns the number of export units in the batch.
func (g BootstrapableGraph) Len() int {
	return len(g.FinalBlocks)
}
