package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman778roman/massa/db"
	"github.com/roman778roman/massa/hashx"
	"github.com/roman778roman/massa/types"
)

func openProviders(t *testing.T) map[string]db.Provider {
	t.Helper()
	providers := make(map[string]db.Provider)
	for _, backend := range []string{db.BackendLevelDB, db.BackendBolt} {
		provider, err := db.NewProvider(backend, t.TempDir())
		require.NoError(t, err)
		t.Cleanup(func() { provider.Close() })
		providers[backend] = provider
	}
	return providers
}

func TestCreditStoreCheckpointRoundTrip(t *testing.T) {
	for backend, provider := range openProviders(t) {
		t.Run(backend, func(t *testing.T) {
			creditStore := NewGenericCreditStore(provider)

			slot := types.Slot{Period: 42, Thread: 3}
			data := []byte("serialized credits")
			hash := hashx.Compute([]byte("ledger state"))

			require.NoError(t, creditStore.SaveCheckpoint(slot, data, hash))

			gotData, gotHash, found, err := creditStore.GetCheckpoint(slot)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, data, gotData)
			assert.Equal(t, hash, gotHash)
		})
	}
}

func TestCreditStoreMissingCheckpoint(t *testing.T) {
	for backend, provider := range openProviders(t) {
		t.Run(backend, func(t *testing.T) {
			creditStore := NewGenericCreditStore(provider)

			_, _, found, err := creditStore.GetCheckpoint(types.Slot{Period: 1, Thread: 0})
			require.NoError(t, err)
			assert.False(t, found)

			_, found, err = creditStore.LatestSlot()
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestCreditStoreLatestSlotTracksNewestCheckpoint(t *testing.T) {
	for backend, provider := range openProviders(t) {
		t.Run(backend, func(t *testing.T) {
			creditStore := NewGenericCreditStore(provider)
			hash := hashx.Compute([]byte("x"))

			require.NoError(t, creditStore.SaveCheckpoint(types.Slot{Period: 1, Thread: 0}, []byte("a"), hash))
			require.NoError(t, creditStore.SaveCheckpoint(types.Slot{Period: 2, Thread: 5}, []byte("b"), hash))

			slot, found, err := creditStore.LatestSlot()
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, types.Slot{Period: 2, Thread: 5}, slot)
		})
	}
}
