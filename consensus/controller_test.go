package consensus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman778roman/massa/config"
	"github.com/roman778roman/massa/types"
)

func newTestController(channelSize int) (Controller, chan Command, *SharedState) {
	commands := make(chan Command, channelSize)
	shared := NewSharedState(config.DefaultConsensusConfig())
	return NewController(commands, shared), commands, shared
}

func TestControllerSubmitNeverBlocks(t *testing.T) {
	ctrl, commands, _ := newTestController(1)

	// No worker drains the channel: the first submit fills the buffer, every
	// later one must drop silently instead of blocking or panicking.
	for i := 0; i < 5; i++ {
		ctrl.RegisterBlockHeader(blockID(byte(i+1)), types.BlockHeader{
			Slot: types.Slot{Period: uint64(i + 1), Thread: 0},
		})
	}
	assert.Len(t, commands, 1)

	first := <-commands
	cmd, ok := first.(registerBlockHeaderCommand)
	require.True(t, ok)
	assert.Equal(t, blockID(1), cmd.id)
}

func TestControllerDroppedCommandLeavesStateUntouched(t *testing.T) {
	ctrl, _, shared := newTestController(0)

	ctrl.RegisterBlock(blockID(1), types.Slot{Period: 1, Thread: 0}, nil, nil, nil, false)

	statuses := ctrl.GetBlockStatuses([]types.BlockID{blockID(1)})
	require.Len(t, statuses, 1)
	assert.Equal(t, BlockGraphNotFound, statuses[0])
	assert.Empty(t, shared.inner.blockStatuses)
}

func TestControllerBlockStatusReads(t *testing.T) {
	ctrl, _, shared := newTestController(8)

	shared.inner.registerIncomingHeader(blockID(1), types.BlockHeader{Slot: types.Slot{Period: 1, Thread: 0}})
	active := shared.inner.registerActiveBlock(blockID(2), types.Slot{Period: 2, Thread: 0}, nil, nil, nil, false)
	final := shared.inner.registerActiveBlock(blockID(3), types.Slot{Period: 3, Thread: 0}, nil, nil, nil, false)
	final.IsFinal = true
	shared.inner.discardBlock(blockID(4), types.BlockHeader{Slot: types.Slot{Period: 4, Thread: 0}}, "invalid block")
	_ = active

	statuses := ctrl.GetBlockStatuses([]types.BlockID{
		blockID(1), blockID(2), blockID(3), blockID(4), blockID(5),
	})
	assert.Equal(t, []BlockGraphStatus{
		BlockGraphIncoming,
		BlockGraphActive,
		BlockGraphFinal,
		BlockGraphDiscarded,
		BlockGraphNotFound,
	}, statuses)
}

func TestControllerDeferredCreditsSnapshotIsIsolated(t *testing.T) {
	ctrl, _, shared := newTestController(8)

	snapshot := ctrl.GetDeferredCreditsSnapshot()
	require.NotNil(t, snapshot)
	require.NotSame(t, shared.inner.DeferredCredits(), snapshot)
	assert.True(t, snapshot.IsEmpty())
	assert.True(t, ctrl.GetLedgerHash().IsZero())
}

// Reads hold the shared lock's read side and must therefore be free of any
// shared-state mutation: this test hammers every read path from many
// goroutines while the worker keeps writing, and relies on the race detector
// to flag a reader that writes.
func TestControllerConcurrentReadersWithLiveWorker(t *testing.T) {
	cfg := config.DefaultConsensusConfig()
	cfg.FinalityDepth = 2
	shared := NewSharedState(cfg)
	commands := make(chan Command, cfg.CommandChannelSize)
	forkChoice := NewDepthForkChoice(cfg.ThreadCount, cfg.FinalityDepth)
	worker := NewWorker(commands, shared, forkChoice, nil)
	ctrl := NewController(commands, shared)

	worker.Start()
	defer worker.Stop()

	done := make(chan struct{})
	var wg sync.WaitGroup
	for reader := 0; reader < 8; reader++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := []types.BlockID{blockID(1), blockID(2), blockID(3)}
			for i := 0; ; i++ {
				select {
				case <-done:
					return
				default:
				}
				switch i % 5 {
				case 0:
					ctrl.GetStats()
				case 1:
					ctrl.GetBlockStatuses(ids)
				case 2:
					_, _, err := ctrl.GetBootstrapPart(types.StepStarted(), types.StepStarted())
					assert.NoError(t, err)
				case 3:
					ctrl.GetCliques()
				default:
					ctrl.GetBlockGraphStatus(nil, nil)
				}
			}
		}()
	}

	for period := uint64(1); period <= 50; period++ {
		ctrl.RegisterBlock(blockID(byte(period)), types.Slot{Period: period, Thread: 0}, nil, nil,
			payoutDelta(types.Slot{Period: period, Thread: 0}, byte(period), period), false)
	}

	require.Eventually(t, func() bool {
		statuses := ctrl.GetBlockStatuses([]types.BlockID{blockID(1)})
		return statuses[0] == BlockGraphFinal
	}, 2*time.Second, 10*time.Millisecond)

	close(done)
	wg.Wait()

	// The stats the readers polled concurrently stayed consistent.
	stats := ctrl.GetStats()
	assert.NotZero(t, stats.FinalBlockCount)
}

func TestControllerGraphExportSlotRange(t *testing.T) {
	ctrl, _, shared := newTestController(8)

	for period := uint64(1); period <= 5; period++ {
		shared.inner.registerActiveBlock(blockID(byte(period)),
			types.Slot{Period: period, Thread: 0}, nil, nil, nil, false)
	}

	start := types.Slot{Period: 2, Thread: 0}
	end := types.Slot{Period: 4, Thread: 0}
	export := ctrl.GetBlockGraphStatus(&start, &end)
	assert.Len(t, export.ActiveBlocks, 3)
	for _, info := range export.ActiveBlocks {
		assert.False(t, start.After(info.Slot))
		assert.False(t, info.Slot.After(end))
	}

	export = ctrl.GetBlockGraphStatus(nil, nil)
	assert.Len(t, export.ActiveBlocks, 5)
}
