package store

import (
	"encoding/binary"
	"fmt"

	"github.com/roman778roman/massa/db"
	"github.com/roman778roman/massa/hashx"
	"github.com/roman778roman/massa/types"
)

// CreditStore persists finalized deferred-credit checkpoints: the serialized
// credit ledger and the running ledger hash, keyed by the slot whose
// finalization produced them.
//
// Keys:
// - PrefixCreditsBySlot + <8-byte big-endian period> + <thread byte> => serialized credits
// - PrefixLedgerHashBySlot + <8-byte big-endian period> + <thread byte> => 32-byte ledger hash
// - CreditsKeyLatestSlot => canonical encoding of the latest checkpointed slot
type CreditStore interface {
	SaveCheckpoint(slot types.Slot, credits []byte, ledgerHash hashx.Hash) error
	GetCheckpoint(slot types.Slot) ([]byte, hashx.Hash, bool, error)
	LatestSlot() (types.Slot, bool, error)
}

type GenericCreditStore struct {
	provider db.Provider
}

func NewGenericCreditStore(provider db.Provider) *GenericCreditStore {
	return &GenericCreditStore{provider: provider}
}

func slotKey(prefix string, slot types.Slot) []byte {
	key := make([]byte, len(prefix)+9)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], slot.Period)
	key[len(prefix)+8] = slot.Thread
	return key
}

// SaveCheckpoint writes credits, hash and the latest-slot marker atomically.
func (s *GenericCreditStore) SaveCheckpoint(slot types.Slot, credits []byte, ledgerHash hashx.Hash) error {
	batch := s.provider.Batch()
	batch.Put(slotKey(PrefixCreditsBySlot, slot), credits)
	batch.Put(slotKey(PrefixLedgerHashBySlot, slot), ledgerHash[:])
	batch.Put([]byte(CreditsKeyLatestSlot), slot.Bytes())
	if err := batch.Write(); err != nil {
		return fmt.Errorf("failed to store credit checkpoint for slot %s: %w", slot, err)
	}
	return nil
}

func (s *GenericCreditStore) GetCheckpoint(slot types.Slot) ([]byte, hashx.Hash, bool, error) {
	credits, err := s.provider.Get(slotKey(PrefixCreditsBySlot, slot))
	if err != nil {
		return nil, hashx.Hash{}, false, fmt.Errorf("failed to get credits for slot %s: %w", slot, err)
	}
	if credits == nil {
		return nil, hashx.Hash{}, false, nil
	}

	raw, err := s.provider.Get(slotKey(PrefixLedgerHashBySlot, slot))
	if err != nil {
		return nil, hashx.Hash{}, false, fmt.Errorf("failed to get ledger hash for slot %s: %w", slot, err)
	}
	if len(raw) != hashx.Size {
		return nil, hashx.Hash{}, false, fmt.Errorf("invalid ledger hash length for slot %s: %d", slot, len(raw))
	}
	var h hashx.Hash
	copy(h[:], raw)
	return credits, h, true, nil
}

func (s *GenericCreditStore) LatestSlot() (types.Slot, bool, error) {
	raw, err := s.provider.Get([]byte(CreditsKeyLatestSlot))
	if err != nil {
		return types.Slot{}, false, fmt.Errorf("failed to get latest checkpoint slot: %w", err)
	}
	if raw == nil {
		return types.Slot{}, false, nil
	}
	period, n := binary.Uvarint(raw)
	if n <= 0 || len(raw) != n+1 {
		return types.Slot{}, false, fmt.Errorf("invalid latest checkpoint slot encoding")
	}
	return types.NewSlot(period, raw[n]), true, nil
}
