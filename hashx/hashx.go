package hashx

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// Size is the byte length of every digest produced by this package.
const Size = 32

// Hash is a fixed-size blake2b digest. The zero value is the baseline digest
// used as the starting point of every incremental accumulator.
type Hash [Size]byte

// Compute hashes the given bytes into a Hash.
func Compute(data []byte) Hash {
	return Hash(blake2b.Sum256(data))
}

// Xor combines two hashes with the self-inverse XOR operator:
// a.Xor(b).Xor(b) == a for any a, b. XOR is commutative, so an accumulator
// built from Xor is independent of the order its operands were folded in.
func (h Hash) Xor(other Hash) Hash {
	var out Hash
	for i := range h {
		out[i] = h[i] ^ other[i]
	}
	return out
}

// IsZero reports whether h is the all-zero baseline.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return base58.Encode(h[:])
}

// FromString parses the base58 form produced by String.
func FromString(s string) (Hash, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Hash{}, fmt.Errorf("failed to decode base58 hash: %w", err)
	}
	if len(raw) != Size {
		return Hash{}, fmt.Errorf("invalid hash length: %d", len(raw))
	}
	var h Hash
	copy(h[:], raw)
	return h, nil
}

// Hex returns the lowercase hex form, used in logs where base58 would be noise.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}
