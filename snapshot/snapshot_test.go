package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman778roman/massa/ledger"
	"github.com/roman778roman/massa/types"
)

func testCredits(t *testing.T) *ledger.DeferredCredits {
	t.Helper()
	delta := ledger.NewDeferredCredits()
	var addr types.Address
	addr[0] = 0xAA
	delta.Insert(addr, types.Slot{Period: 7, Thread: 1}, uint256.NewInt(1234))

	credits := ledger.NewDeferredCredits()
	credits.FinalNestedReplace(delta)
	return credits
}

func TestWriteAndReadSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	credits := testCredits(t)
	slot := types.Slot{Period: 7, Thread: 1}
	blocks := []SnapshotBlock{{BlockID: "abc", Slot: slot}}

	file := BuildSnapshot(slot, blocks, credits)
	path, err := WriteSnapshot(dir, file)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	loaded, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, file.Meta.Slot, loaded.Meta.Slot)
	assert.Equal(t, file.Meta.LedgerHash, loaded.Meta.LedgerHash)
	assert.Equal(t, file.FinalBlocks, loaded.FinalBlocks)
	assert.Equal(t, file.Credits, loaded.Credits)
}

func TestRestoreCreditsMatchesOriginal(t *testing.T) {
	credits := testCredits(t)
	file := BuildSnapshot(types.Slot{Period: 7, Thread: 1}, nil, credits)

	deserializer := ledger.NewCreditsDeserializer(32, 1000, 1000)
	restored, hash, err := RestoreCredits(file, deserializer)
	require.NoError(t, err)
	assert.Equal(t, credits.Credits, restored.Credits)
	assert.Equal(t, credits.Hash(), hash)
	assert.True(t, restored.Hash().IsZero())
}

func TestWriteSnapshotRemovesOlderFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "snapshot-100.json")
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0644))

	credits := testCredits(t)
	_, err := WriteSnapshot(dir, BuildSnapshot(types.Slot{Period: 7, Thread: 1}, nil, credits))
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}
