package consensus

import (
	"fmt"
	"sort"

	"github.com/roman778roman/massa/bootstrap"
	"github.com/roman778roman/massa/logx"
	"github.com/roman778roman/massa/monitoring"
	"github.com/roman778roman/massa/types"
)

// BootstrapPart serves one batch of the finalized-graph export stream.
//
// cursor is the caller's progress through the block-graph stream;
// executionCursor is the progress of the independent execution-state stream.
// The returned cursor replaces the caller's for its next call. The stream
// walks active final blocks in ascending slot order, delivers each block
// exactly once per cursor sequence, caps every batch at the configured part
// size, and never advances past the slot at which the execution stream
// finished: a joining node cannot execute blocks beyond the state it has
// downloaded.
func (s *State) BootstrapPart(cursor, executionCursor types.StreamingStep) (bootstrap.BootstrapableGraph, types.StreamingStep, error) {
	if cursor.IsTerminal() {
		return bootstrap.BootstrapableGraph{}, types.StepFinished(), nil
	}

	var candidates []*BlockStatus
	for _, id := range s.ListRequiredActiveBlocks() {
		status, ok := s.blockStatuses[id]
		if !ok {
			return bootstrap.BootstrapableGraph{}, cursor, fmt.Errorf(
				"%w: block %s was expected to be active but wasn't on bootstrap graph export",
				ErrContainerInconsistency, id)
		}
		if status.State != StateActive || !status.Block.IsFinal {
			continue
		}
		if eligible(cursor, status.Block.Slot) {
			candidates = append(candidates, status)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Block.Slot.Cmp(candidates[j].Block.Slot) < 0
	})

	logx.Debug("CONSENSUS", "bootstrap part requested, cursor=", cursor.String(),
		" candidates=", len(candidates))

	var finalBlocks []bootstrap.ExportActiveBlock
	for _, status := range candidates {
		if len(finalBlocks) >= s.cfg.BootstrapPartSize {
			break
		}
		block := status.Block
		finalBlocks = append(finalBlocks, bootstrap.ExportActiveBlock{
			ID:      block.ID,
			Slot:    block.Slot,
			Parents: append([]types.BlockID(nil), block.Parents...),
			IsFinal: true,
			Storage: status.Storage,
		})
		if execSlot, terminal, hasSlot := executionCursor.Finished(); terminal && hasSlot && execSlot == block.Slot {
			cursor = types.StepFinishedAt(block.Slot)
			break
		}
		cursor = types.StepOngoing(block.Slot)
	}

	monitoring.RecordBootstrapBatchSize(len(finalBlocks))
	return bootstrap.BootstrapableGraph{FinalBlocks: finalBlocks}, cursor, nil
}

// eligible reports whether a final block at slot still has to be delivered to
// the given cursor.
func eligible(cursor types.StreamingStep, slot types.Slot) bool {
	if cursor.IsStarted() {
		return true
	}
	if last, ok := cursor.Ongoing(); ok {
		return slot.After(last)
	}
	return false
}
