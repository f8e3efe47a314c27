package ledger

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/roman778roman/massa/types"
)

// Wire layout of a deferred-credit ledger, canonical for both network
// transfer and persistence:
//
//	uvarint slot count
//	per slot, ascending slot order:
//	  uvarint period, thread byte
//	  uvarint credit count
//	  per credit, ascending address order:
//	    32-byte address, 32-byte big-endian amount
//
// Any change to field order, varint widths or bound semantics is a breaking
// protocol change.

var (
	ErrTooManySlots   = errors.New("deferred credits decoding: too many slots")
	ErrTooManyCredits = errors.New("deferred credits decoding: too many credits in slot")
	ErrInvalidThread  = errors.New("deferred credits decoding: slot thread out of range")
	ErrTruncated      = errors.New("deferred credits decoding: truncated input")
	ErrTrailingBytes  = errors.New("deferred credits decoding: trailing bytes")
)

// CreditsSerializer encodes a DeferredCredits into its canonical byte form.
type CreditsSerializer struct{}

func NewCreditsSerializer() *CreditsSerializer {
	return &CreditsSerializer{}
}

func (s *CreditsSerializer) Serialize(d *DeferredCredits) []byte {
	var buf bytes.Buffer
	writeUvarint(&buf, uint64(len(d.Credits)))
	for _, slot := range d.SortedSlots() {
		buf.Write(slot.Bytes())
		credits := d.Credits[slot]
		writeUvarint(&buf, uint64(len(credits)))
		for _, addr := range sortedAddresses(credits) {
			buf.Write(addr.Bytes())
			amountBytes := types.AmountBytes(credits[addr])
			buf.Write(amountBytes[:])
		}
	}
	return buf.Bytes()
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

// CreditsDeserializer decodes the canonical byte form back into a
// DeferredCredits, enforcing the caller-supplied bounds. The decoded ledger's
// digest is reset to the empty baseline: restoring a trusted digest is the
// caller's responsibility, typically by replaying final merges against an
// already-correct base.
type CreditsDeserializer struct {
	threadCount       uint8
	maxCreditSlots    uint64
	maxCreditsPerSlot uint64
}

func NewCreditsDeserializer(threadCount uint8, maxCreditSlots, maxCreditsPerSlot uint64) *CreditsDeserializer {
	return &CreditsDeserializer{
		threadCount:       threadCount,
		maxCreditSlots:    maxCreditSlots,
		maxCreditsPerSlot: maxCreditsPerSlot,
	}
}

func (ds *CreditsDeserializer) Deserialize(data []byte) (*DeferredCredits, error) {
	r := bytes.NewReader(data)

	slotCount, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("%w: slot count", ErrTruncated)
	}
	if slotCount > ds.maxCreditSlots {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManySlots, slotCount, ds.maxCreditSlots)
	}

	out := NewDeferredCredits()
	for i := uint64(0); i < slotCount; i++ {
		slot, err := ds.readSlot(r)
		if err != nil {
			return nil, err
		}

		creditCount, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("%w: credit count of slot %s", ErrTruncated, slot)
		}
		if creditCount > ds.maxCreditsPerSlot {
			return nil, fmt.Errorf("%w: %d > %d", ErrTooManyCredits, creditCount, ds.maxCreditsPerSlot)
		}

		credits := make(Credits, creditCount)
		for j := uint64(0); j < creditCount; j++ {
			var addrBytes [types.AddressSize]byte
			if _, err := io.ReadFull(r, addrBytes[:]); err != nil {
				return nil, fmt.Errorf("%w: address", ErrTruncated)
			}
			addr, err := types.AddressFromBytes(addrBytes[:])
			if err != nil {
				return nil, err
			}

			var amountBytes [types.AmountSize]byte
			if _, err := io.ReadFull(r, amountBytes[:]); err != nil {
				return nil, fmt.Errorf("%w: amount", ErrTruncated)
			}
			amount, err := types.AmountFromBytes(amountBytes[:])
			if err != nil {
				return nil, err
			}
			credits[addr] = amount
		}
		out.Credits[slot] = credits
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingBytes, r.Len())
	}
	return out, nil
}

func (ds *CreditsDeserializer) readSlot(r *bytes.Reader) (types.Slot, error) {
	period, err := binary.ReadUvarint(r)
	if err != nil {
		return types.Slot{}, fmt.Errorf("%w: slot period", ErrTruncated)
	}
	thread, err := r.ReadByte()
	if err != nil {
		return types.Slot{}, fmt.Errorf("%w: slot thread", ErrTruncated)
	}
	if thread >= ds.threadCount {
		return types.Slot{}, fmt.Errorf("%w: %d >= %d", ErrInvalidThread, thread, ds.threadCount)
	}
	return types.NewSlot(period, thread), nil
}
