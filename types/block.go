package types

// BlockHeader carries the graph-relevant part of a block: where it sits in
// the slot grid and which blocks it builds on. Validation of headers is the
// block-graph algorithm's concern, not ours.
type BlockHeader struct {
	Slot    Slot
	Parents []BlockID
	Creator Address
}
