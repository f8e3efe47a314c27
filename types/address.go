package types

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
)

// AddressSize is the byte length of a canonical address.
const AddressSize = 32

// Address is the canonical 32-byte form of an account address.
type Address [AddressSize]byte

// AddressFromBytes builds an Address from its canonical byte form.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressSize {
		return Address{}, fmt.Errorf("invalid address length: %d", len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// AddressFromString parses the base58 string form.
func AddressFromString(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("failed to decode base58 address: %w", err)
	}
	return AddressFromBytes(raw)
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

// Less orders addresses by their byte form, used wherever a deterministic
// iteration order over an address map is needed.
func (a Address) Less(other Address) bool {
	return bytes.Compare(a[:], other[:]) < 0
}

// BlockID is the 32-byte identifier of a block (the hash of its header).
type BlockID [32]byte

func BlockIDFromBytes(b []byte) (BlockID, error) {
	if len(b) != 32 {
		return BlockID{}, fmt.Errorf("invalid block id length: %d", len(b))
	}
	var id BlockID
	copy(id[:], b)
	return id, nil
}

func BlockIDFromString(s string) (BlockID, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return BlockID{}, fmt.Errorf("failed to decode base58 block id: %w", err)
	}
	return BlockIDFromBytes(raw)
}

func (id BlockID) Bytes() []byte {
	return id[:]
}

func (id BlockID) String() string {
	return base58.Encode(id[:])
}
