package consensus

import "github.com/roman778roman/massa/types"

// ExportBlockInfo is the compact form of an active block in a graph export.
type ExportBlockInfo struct {
	Slot    types.Slot      `json:"slot"`
	Parents []types.BlockID `json:"parents"`
	IsFinal bool            `json:"is_final"`
}

// BlockGraphExport is a read-only extract of the graph over a slot interval,
// as served to explorers and APIs.
type BlockGraphExport struct {
	ActiveBlocks    map[types.BlockID]ExportBlockInfo `json:"active_blocks"`
	DiscardedBlocks map[types.BlockID]string          `json:"discarded_blocks"`
	BestParents     []BlockParent                     `json:"best_parents"`
	MaxCliques      []Clique                          `json:"max_cliques"`
}

func slotInRange(slot types.Slot, start, end *types.Slot) bool {
	if start != nil && start.After(slot) {
		return false
	}
	if end != nil && slot.After(*end) {
		return false
	}
	return true
}

// ExtractGraphPart builds a BlockGraphExport covering the blocks whose slot
// falls inside the optional [start, end] interval.
func (s *State) ExtractGraphPart(start, end *types.Slot) BlockGraphExport {
	export := BlockGraphExport{
		ActiveBlocks:    make(map[types.BlockID]ExportBlockInfo),
		DiscardedBlocks: make(map[types.BlockID]string),
		BestParents:     s.BestParents(),
		MaxCliques:      s.Cliques(),
	}
	for id, status := range s.blockStatuses {
		switch status.State {
		case StateActive:
			if !slotInRange(status.Block.Slot, start, end) {
				continue
			}
			export.ActiveBlocks[id] = ExportBlockInfo{
				Slot:    status.Block.Slot,
				Parents: append([]types.BlockID(nil), status.Block.Parents...),
				IsFinal: status.Block.IsFinal,
			}
		case StateDiscarded:
			if !slotInRange(status.Header.Slot, start, end) {
				continue
			}
			export.DiscardedBlocks[id] = status.DiscardReason
		}
	}
	return export
}
