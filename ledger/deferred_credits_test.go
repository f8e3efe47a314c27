package ledger

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman778roman/massa/types"
)

func addr(b byte) types.Address {
	var a types.Address
	a[0] = b
	return a
}

func delta(slot types.Slot, credits map[byte]uint64) *DeferredCredits {
	d := NewDeferredCredits()
	for a, amount := range credits {
		d.Insert(addr(a), slot, uint256.NewInt(amount))
	}
	return d
}

func TestEmptyLedgerBaseline(t *testing.T) {
	d := NewDeferredCredits()
	assert.True(t, d.Hash().IsZero())
	assert.True(t, d.IsEmpty())
}

func TestInsertAndLookup(t *testing.T) {
	d := NewDeferredCredits()
	slot := types.NewSlot(3, 1)
	d.Insert(addr(1), slot, uint256.NewInt(42))

	amount, ok := d.CreditForSlot(addr(1), slot)
	require.True(t, ok)
	assert.Equal(t, uint256.NewInt(42), amount)

	// Insert never touches the digest.
	assert.True(t, d.Hash().IsZero())

	_, ok = d.CreditForSlot(addr(2), slot)
	assert.False(t, ok)
	_, ok = d.CreditForSlot(addr(1), types.NewSlot(4, 1))
	assert.False(t, ok)

	// The returned amount is a copy; mutating it must not reach the ledger.
	amount.SetUint64(7)
	stored, _ := d.CreditForSlot(addr(1), slot)
	assert.Equal(t, uint256.NewInt(42), stored)
}

func TestInsertOverwrites(t *testing.T) {
	d := NewDeferredCredits()
	slot := types.NewSlot(1, 0)
	d.Insert(addr(1), slot, uint256.NewInt(10))
	d.Insert(addr(1), slot, uint256.NewInt(25))

	amount, ok := d.CreditForSlot(addr(1), slot)
	require.True(t, ok)
	assert.Equal(t, uint256.NewInt(25), amount)
}

func TestNestedReplaceLeavesHashAlone(t *testing.T) {
	base := NewDeferredCredits()
	base.FinalNestedReplace(delta(types.NewSlot(1, 0), map[byte]uint64{1: 10}))
	before := base.Hash()

	base.NestedReplace(delta(types.NewSlot(2, 0), map[byte]uint64{2: 20}))
	base.NestedReplace(delta(types.NewSlot(1, 0), map[byte]uint64{1: 99}))

	assert.Equal(t, before, base.Hash())
	amount, _ := base.CreditForSlot(addr(1), types.NewSlot(1, 0))
	assert.Equal(t, uint256.NewInt(99), amount)
}

func TestFinalNestedReplaceOrderIndependence(t *testing.T) {
	deltas := []*DeferredCredits{
		delta(types.NewSlot(1, 0), map[byte]uint64{1: 10, 2: 20}),
		delta(types.NewSlot(1, 3), map[byte]uint64{3: 5}),
		delta(types.NewSlot(2, 0), map[byte]uint64{1: 7}),
		delta(types.NewSlot(9, 31), map[byte]uint64{4: 1, 5: 0}),
	}

	forward := NewDeferredCredits()
	for _, dl := range deltas {
		forward.FinalNestedReplace(dl)
	}
	backward := NewDeferredCredits()
	for i := len(deltas) - 1; i >= 0; i-- {
		backward.FinalNestedReplace(deltas[i])
	}

	assert.Equal(t, forward.Hash(), backward.Hash())
	assert.Equal(t, forward.recomputeHash(), forward.Hash())
}

func TestFinalNestedReplaceReversibility(t *testing.T) {
	slot := types.NewSlot(4, 2)
	base := NewDeferredCredits()
	base.FinalNestedReplace(delta(slot, map[byte]uint64{1: 100}))
	original := base.Hash()

	base.FinalNestedReplace(delta(slot, map[byte]uint64{1: 250}))
	assert.NotEqual(t, original, base.Hash())

	// Re-applying the original amount restores the original digest.
	base.FinalNestedReplace(delta(slot, map[byte]uint64{1: 100}))
	assert.Equal(t, original, base.Hash())
}

func TestFinalNestedReplaceNewSlotMarker(t *testing.T) {
	slot := types.NewSlot(6, 1)
	d := NewDeferredCredits()
	d.FinalNestedReplace(delta(slot, map[byte]uint64{1: 11}))

	// The digest must carry the slot marker, not just the credit digest: an
	// accumulator missing the marker would silently disagree with a
	// from-scratch recomputation.
	assert.Equal(t, d.recomputeHash(), d.Hash())
	withoutMarker := creditDigest(addr(1), uint256.NewInt(11))
	assert.NotEqual(t, withoutMarker, d.Hash())
	assert.Equal(t, withoutMarker.Xor(slotDigest(slot)), d.Hash())
}

func TestFinalNestedReplaceIsExactlyOncePerDelta(t *testing.T) {
	slot := types.NewSlot(2, 2)
	once := NewDeferredCredits()
	once.FinalNestedReplace(delta(slot, map[byte]uint64{1: 10}))

	twice := NewDeferredCredits()
	twice.FinalNestedReplace(delta(slot, map[byte]uint64{1: 10}))
	twice.FinalNestedReplace(delta(slot, map[byte]uint64{1: 10}))

	// Replaying the same delta leaves the credits identical but is a contract
	// violation: same-amount overwrite XORs the digest in and out, so here the
	// hashes happen to agree, but the invariant check is the real guard.
	assert.Equal(t, once.Credits, twice.Credits)
	assert.Equal(t, twice.recomputeHash(), twice.Hash())
}

func TestRemoveZeros(t *testing.T) {
	d := NewDeferredCredits()
	d.FinalNestedReplace(delta(types.NewSlot(1, 0), map[byte]uint64{1: 10, 2: 0}))
	d.FinalNestedReplace(delta(types.NewSlot(2, 0), map[byte]uint64{3: 0}))
	d.FinalNestedReplace(delta(types.NewSlot(3, 0), map[byte]uint64{4: 4}))

	removed := d.RemoveZeros()
	assert.Equal(t, 2, removed)

	// No empty slot maps, no zero amounts left.
	_, ok := d.Credits[types.NewSlot(2, 0)]
	assert.False(t, ok)
	for slot, credits := range d.Credits {
		require.NotEmpty(t, credits, "slot %s left empty", slot)
		for a, amount := range credits {
			assert.False(t, amount.IsZero(), "zero credit left for %s at %s", a, slot)
		}
	}

	assert.Equal(t, d.recomputeHash(), d.Hash())
}

func TestRemoveZerosRestoresPreInsertionHash(t *testing.T) {
	d := NewDeferredCredits()
	d.FinalNestedReplace(delta(types.NewSlot(5, 0), map[byte]uint64{1: 30}))
	before := d.Hash()

	// A fully-consumed payout: the slot appears then collapses back out.
	d.FinalNestedReplace(delta(types.NewSlot(6, 0), map[byte]uint64{2: 0}))
	d.RemoveZeros()

	assert.Equal(t, before, d.Hash())
}

func TestIncrementalHashMatchesRecomputeRandomized(t *testing.T) {
	f := fuzz.NewWithSeed(42)
	d := NewDeferredCredits()
	for i := 0; i < 200; i++ {
		var period, amount uint64
		var thread, a byte
		f.Fuzz(&period)
		f.Fuzz(&thread)
		f.Fuzz(&a)
		f.Fuzz(&amount)
		if i%7 == 0 {
			amount = 0
		}
		dl := delta(types.NewSlot(period%50, thread%32), map[byte]uint64{a: amount})
		d.FinalNestedReplace(dl)
		if i%13 == 0 {
			d.RemoveZeros()
		}
		require.Equal(t, d.recomputeHash(), d.Hash(), "digest diverged at step %d", i)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	d := NewDeferredCredits()
	d.FinalNestedReplace(delta(types.NewSlot(1, 0), map[byte]uint64{1: 10}))

	cp := d.Clone()
	cp.FinalNestedReplace(delta(types.NewSlot(2, 0), map[byte]uint64{2: 20}))

	assert.Equal(t, 1, d.SlotCount())
	assert.Equal(t, 2, cp.SlotCount())
	assert.NotEqual(t, d.Hash(), cp.Hash())
	assert.Equal(t, d.recomputeHash(), d.Hash())
}
