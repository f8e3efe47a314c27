package types

import (
	"fmt"

	"github.com/holiman/uint256"
)

// AmountSize is the byte length of the canonical amount encoding.
const AmountSize = 32

// Amounts are carried as *uint256.Int everywhere. The helpers below pin down
// the canonical fixed-width big-endian encoding used for hashing and for the
// wire format.

// AmountBytes returns the canonical 32-byte big-endian encoding of amount.
func AmountBytes(amount *uint256.Int) [AmountSize]byte {
	return amount.Bytes32()
}

// AmountFromBytes decodes a canonical 32-byte big-endian amount.
func AmountFromBytes(b []byte) (*uint256.Int, error) {
	if len(b) != AmountSize {
		return nil, fmt.Errorf("invalid amount length: %d", len(b))
	}
	return new(uint256.Int).SetBytes(b), nil
}
