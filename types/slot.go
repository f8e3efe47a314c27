package types

import (
	"encoding/binary"
	"fmt"
)

// Slot identifies a logical time unit of the graph: a (period, thread) pair.
// Slots are totally ordered by period first, thread second.
type Slot struct {
	Period uint64 `json:"period"`
	Thread uint8  `json:"thread"`
}

func NewSlot(period uint64, thread uint8) Slot {
	return Slot{Period: period, Thread: thread}
}

// Cmp returns -1, 0 or 1 depending on whether s is before, equal to or after
// other in slot order.
func (s Slot) Cmp(other Slot) int {
	if s.Period != other.Period {
		if s.Period < other.Period {
			return -1
		}
		return 1
	}
	if s.Thread != other.Thread {
		if s.Thread < other.Thread {
			return -1
		}
		return 1
	}
	return 0
}

// After reports whether s is strictly after other.
func (s Slot) After(other Slot) bool {
	return s.Cmp(other) > 0
}

// Bytes returns the canonical encoding of the slot: uvarint period followed by
// the thread byte. This layout is part of the wire format.
func (s Slot) Bytes() []byte {
	buf := make([]byte, binary.MaxVarintLen64+1)
	n := binary.PutUvarint(buf, s.Period)
	buf[n] = s.Thread
	return buf[:n+1]
}

// Next returns the slot immediately after s on a grid of threadCount threads.
func (s Slot) Next(threadCount uint8) Slot {
	if s.Thread+1 < threadCount {
		return Slot{Period: s.Period, Thread: s.Thread + 1}
	}
	return Slot{Period: s.Period + 1, Thread: 0}
}

// Prev returns the slot immediately before s, and false when s is the first
// slot of the grid.
func (s Slot) Prev(threadCount uint8) (Slot, bool) {
	if s.Thread > 0 {
		return Slot{Period: s.Period, Thread: s.Thread - 1}, true
	}
	if s.Period == 0 {
		return Slot{}, false
	}
	return Slot{Period: s.Period - 1, Thread: threadCount - 1}, true
}

func (s Slot) String() string {
	return fmt.Sprintf("(period: %d, thread: %d)", s.Period, s.Thread)
}
