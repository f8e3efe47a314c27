package db

import "fmt"

// Provider abstracts the low-level key-value operations so stores can work
// with different database backends without knowing the implementation.
type Provider interface {
	// Get retrieves a value by key, returning nil when the key is absent.
	Get(key []byte) ([]byte, error)

	// Put stores a key-value pair
	Put(key, value []byte) error

	// Delete removes a key-value pair
	Delete(key []byte) error

	// Has checks if a key exists
	Has(key []byte) (bool, error)

	// IteratePrefix iterates over all key-value pairs with the given prefix,
	// in key order. The callback returns false to stop iteration.
	IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error

	// Batch returns a new batch for atomic operations
	Batch() Batch

	// Close closes the database connection
	Close() error
}

// Batch provides atomic write batching.
type Batch interface {
	// Put adds a key-value pair to the batch
	Put(key, value []byte)

	// Delete adds a deletion to the batch
	Delete(key []byte)

	// Write commits all operations in the batch
	Write() error

	// Reset clears the batch
	Reset()
}

// Backend names accepted by NewProvider.
const (
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
)

// NewProvider opens the configured backend at directory.
func NewProvider(backend, directory string) (Provider, error) {
	switch backend {
	case BackendLevelDB, "":
		return NewLevelDBProvider(directory)
	case BackendBolt:
		return NewBoltProvider(directory)
	default:
		return nil, fmt.Errorf("unknown db backend %q", backend)
	}
}
