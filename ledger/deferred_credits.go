package ledger

import (
	"sort"

	"github.com/holiman/uint256"

	"github.com/roman778roman/massa/hashx"
	"github.com/roman778roman/massa/types"
)

// Credits maps an address to the amount it will be credited at a given slot.
type Credits map[types.Address]*uint256.Int

// DeferredCredits tracks pending stake payouts per slot together with an
// incrementally-maintained digest of the whole structure.
//
// The digest is the XOR of digest(slot) for every populated slot and
// digest(address, amount) for every credit. XOR is commutative and
// self-inverse, so the digest is independent of the order final mutations were
// applied in and each mutation costs O(1) hash work. Only the final-path
// operations (FinalNestedReplace, RemoveZeros) touch the digest; speculative
// mutations must go through Insert or NestedReplace, which leave it alone.
type DeferredCredits struct {
	Credits map[types.Slot]Credits

	hash hashx.Hash
}

// NewDeferredCredits returns an empty ledger. The empty digest is the all-zero
// baseline.
func NewDeferredCredits() *DeferredCredits {
	return &DeferredCredits{Credits: make(map[types.Slot]Credits)}
}

// Hash returns the current digest of the ledger.
func (d *DeferredCredits) Hash() hashx.Hash {
	return d.hash
}

// creditDigest hashes the canonical encoding of one (address, amount) credit.
func creditDigest(addr types.Address, amount *uint256.Int) hashx.Hash {
	buf := make([]byte, 0, types.AddressSize+types.AmountSize)
	buf = append(buf, addr.Bytes()...)
	amountBytes := types.AmountBytes(amount)
	buf = append(buf, amountBytes[:]...)
	return hashx.Compute(buf)
}

// slotDigest hashes the canonical encoding of a slot alone. It marks the
// slot's presence in the ledger digest independently of its credits.
func slotDigest(slot types.Slot) hashx.Hash {
	return hashx.Compute(slot.Bytes())
}

// Insert overwrites the credit of (slot, addr). The digest is not updated:
// speculative state must never feed the canonical digest.
func (d *DeferredCredits) Insert(addr types.Address, slot types.Slot, amount *uint256.Int) {
	credits, ok := d.Credits[slot]
	if !ok {
		credits = make(Credits)
		d.Credits[slot] = credits
	}
	credits[addr] = amount.Clone()
}

// CreditForSlot returns the credit recorded for addr at slot, if any.
func (d *DeferredCredits) CreditForSlot(addr types.Address, slot types.Slot) (*uint256.Int, bool) {
	credits, ok := d.Credits[slot]
	if !ok {
		return nil, false
	}
	amount, ok := credits[addr]
	if !ok {
		return nil, false
	}
	return amount.Clone(), true
}

// NestedReplace merges other into d, overwriting on collision. The digest is
// left untouched; this is the merge used between candidate (non-final) states.
func (d *DeferredCredits) NestedReplace(other *DeferredCredits) {
	for slot, otherCredits := range other.Credits {
		credits, ok := d.Credits[slot]
		if !ok {
			credits = make(Credits, len(otherCredits))
			d.Credits[slot] = credits
		}
		for addr, amount := range otherCredits {
			credits[addr] = amount.Clone()
		}
	}
}

// FinalNestedReplace merges other into d like NestedReplace while keeping the
// digest invariant: the digest of every replaced credit is combined out and
// the digest of every new credit (and newly-populated slot) is combined in.
//
// It must be called exactly once per delta, at the moment the delta becomes
// final. Calling it twice on the same delta, or on speculative data, silently
// desynchronizes the digest from other nodes; that is a caller contract, not
// a runtime check.
func (d *DeferredCredits) FinalNestedReplace(other *DeferredCredits) {
	for slot, otherCredits := range other.Credits {
		credits, ok := d.Credits[slot]
		if !ok {
			// Newly-populated slot: its marker digest joins the accumulator
			// along with every credit it brings.
			credits = make(Credits, len(otherCredits))
			d.Credits[slot] = credits
			d.hash = d.hash.Xor(slotDigest(slot))
		}
		for addr, amount := range otherCredits {
			if current, exists := credits[addr]; exists {
				d.hash = d.hash.Xor(creditDigest(addr, current))
			}
			d.hash = d.hash.Xor(creditDigest(addr, amount))
			credits[addr] = amount.Clone()
		}
	}
}

// RemoveZeros drops credits whose amount is zero and slots left without any
// credit, combining the removed digests out. Final-path only: it must run
// after FinalNestedReplace calls that may have zeroed amounts out.
func (d *DeferredCredits) RemoveZeros() (removed int) {
	var deleteSlots []types.Slot
	for slot, credits := range d.Credits {
		for addr, amount := range credits {
			if amount.IsZero() {
				d.hash = d.hash.Xor(creditDigest(addr, amount))
				delete(credits, addr)
				removed++
			}
		}
		if len(credits) == 0 {
			d.hash = d.hash.Xor(slotDigest(slot))
			deleteSlots = append(deleteSlots, slot)
		}
	}
	for _, slot := range deleteSlots {
		delete(d.Credits, slot)
	}
	return removed
}

// Clone returns a deep copy, used to run speculative merges on a private copy
// before folding results into the writer-owned instance.
func (d *DeferredCredits) Clone() *DeferredCredits {
	out := &DeferredCredits{
		Credits: make(map[types.Slot]Credits, len(d.Credits)),
		hash:    d.hash,
	}
	for slot, credits := range d.Credits {
		cp := make(Credits, len(credits))
		for addr, amount := range credits {
			cp[addr] = amount.Clone()
		}
		out.Credits[slot] = cp
	}
	return out
}

// IsEmpty reports whether no credit is recorded at all.
func (d *DeferredCredits) IsEmpty() bool {
	return len(d.Credits) == 0
}

// SlotCount returns the number of slots currently holding credits.
func (d *DeferredCredits) SlotCount() int {
	return len(d.Credits)
}

// SortedSlots returns the populated slots in ascending order.
func (d *DeferredCredits) SortedSlots() []types.Slot {
	slots := make([]types.Slot, 0, len(d.Credits))
	for slot := range d.Credits {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Cmp(slots[j]) < 0 })
	return slots
}

// sortedAddresses returns the addresses of a credit map in ascending byte
// order, the canonical iteration order of the wire format.
func sortedAddresses(credits Credits) []types.Address {
	addrs := make([]types.Address, 0, len(credits))
	for addr := range credits {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })
	return addrs
}

// recomputeHash rebuilds the digest from scratch over the live credit set.
// The incremental digest must always equal this value.
func (d *DeferredCredits) recomputeHash() hashx.Hash {
	var h hashx.Hash
	for slot, credits := range d.Credits {
		h = h.Xor(slotDigest(slot))
		for addr, amount := range credits {
			h = h.Xor(creditDigest(addr, amount))
		}
	}
	return h
}
