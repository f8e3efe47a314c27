package ledger

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman778roman/massa/types"
)

const testThreadCount uint8 = 32

func randomLedger(t *testing.T, slots, creditsPerSlot int) *DeferredCredits {
	t.Helper()
	f := fuzz.NewWithSeed(7)
	d := NewDeferredCredits()
	for i := 0; i < slots; i++ {
		var period uint64
		var thread byte
		f.Fuzz(&period)
		f.Fuzz(&thread)
		slot := types.NewSlot(period, thread%testThreadCount)
		for j := 0; j < creditsPerSlot; j++ {
			var a types.Address
			var amount uint64
			f.Fuzz(&a)
			f.Fuzz(&amount)
			d.Insert(a, slot, uint256.NewInt(amount))
		}
	}
	return d
}

func TestCodecRoundTrip(t *testing.T) {
	original := randomLedger(t, 20, 8)

	data := NewCreditsSerializer().Serialize(original)
	decoded, err := NewCreditsDeserializer(testThreadCount, 100, 100).Deserialize(data)
	require.NoError(t, err)

	assert.Equal(t, original.Credits, decoded.Credits)
	// The decoder never reconstructs a trusted digest.
	assert.True(t, decoded.Hash().IsZero())
}

func TestCodecEmptyLedger(t *testing.T) {
	data := NewCreditsSerializer().Serialize(NewDeferredCredits())
	decoded, err := NewCreditsDeserializer(testThreadCount, 10, 10).Deserialize(data)
	require.NoError(t, err)
	assert.True(t, decoded.IsEmpty())
}

func TestCodecDeterministic(t *testing.T) {
	d := randomLedger(t, 10, 5)
	ser := NewCreditsSerializer()
	assert.Equal(t, ser.Serialize(d), ser.Serialize(d))
}

func TestCodecSlotBound(t *testing.T) {
	d := NewDeferredCredits()
	for p := uint64(1); p <= 3; p++ {
		d.Insert(addr(1), types.NewSlot(p, 0), uint256.NewInt(p))
	}
	data := NewCreditsSerializer().Serialize(d)

	_, err := NewCreditsDeserializer(testThreadCount, 2, 100).Deserialize(data)
	require.ErrorIs(t, err, ErrTooManySlots)

	decoded, err := NewCreditsDeserializer(testThreadCount, 3, 100).Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, 3, decoded.SlotCount())
}

func TestCodecPerSlotCreditBound(t *testing.T) {
	d := NewDeferredCredits()
	slot := types.NewSlot(1, 0)
	for a := byte(1); a <= 4; a++ {
		d.Insert(addr(a), slot, uint256.NewInt(uint64(a)))
	}
	data := NewCreditsSerializer().Serialize(d)

	_, err := NewCreditsDeserializer(testThreadCount, 10, 3).Deserialize(data)
	require.ErrorIs(t, err, ErrTooManyCredits)
}

func TestCodecThreadBound(t *testing.T) {
	d := NewDeferredCredits()
	d.Insert(addr(1), types.NewSlot(1, 5), uint256.NewInt(9))
	data := NewCreditsSerializer().Serialize(d)

	_, err := NewCreditsDeserializer(5, 10, 10).Deserialize(data)
	require.ErrorIs(t, err, ErrInvalidThread)

	_, err = NewCreditsDeserializer(6, 10, 10).Deserialize(data)
	require.NoError(t, err)
}

func TestCodecTruncatedInput(t *testing.T) {
	d := NewDeferredCredits()
	d.Insert(addr(1), types.NewSlot(1, 0), uint256.NewInt(9))
	data := NewCreditsSerializer().Serialize(d)

	for _, cut := range []int{1, len(data) / 2, len(data) - 1} {
		_, err := NewCreditsDeserializer(testThreadCount, 10, 10).Deserialize(data[:cut])
		assert.ErrorIs(t, err, ErrTruncated, "cut at %d", cut)
	}
}

func TestCodecTrailingBytes(t *testing.T) {
	data := NewCreditsSerializer().Serialize(NewDeferredCredits())
	_, err := NewCreditsDeserializer(testThreadCount, 10, 10).Deserialize(append(data, 0x00))
	require.ErrorIs(t, err, ErrTrailingBytes)
}
