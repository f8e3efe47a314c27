package store

import "github.com/roman778roman/massa/types"

// Storage is the opaque per-block handle carried from block registration all
// the way into bootstrap export units. It owns the raw payload needed to
// reconstruct the block on a joining node; nothing in the consensus core
// looks inside it.
type Storage struct {
	blockID types.BlockID
	payload []byte
}

func NewStorage(blockID types.BlockID, payload []byte) *Storage {
	return &Storage{
		blockID: blockID,
		payload: append([]byte(nil), payload...),
	}
}

func (s *Storage) BlockID() types.BlockID {
	return s.blockID
}

func (s *Storage) Payload() []byte {
	return s.payload
}
