package types

import "fmt"

type stepKind uint8

const (
	stepStarted stepKind = iota
	stepOngoing
	stepFinished
)

// StreamingStep is the resumable cursor of a batched export protocol. It is a
// closed variant type with three states:
//
//   - Started: no progress yet
//   - Ongoing(slot): the last slot fully sent
//   - Finished(slot?): terminal, optionally carrying the slot at which the
//     stream ended
//
// Finished is absorbing: once a cursor is terminal it never moves again.
type StreamingStep struct {
	kind    stepKind
	slot    Slot
	hasSlot bool
}

// StepStarted returns the initial cursor.
func StepStarted() StreamingStep {
	return StreamingStep{kind: stepStarted}
}

// StepOngoing returns a cursor recording slot as the last slot fully sent.
func StepOngoing(slot Slot) StreamingStep {
	return StreamingStep{kind: stepOngoing, slot: slot, hasSlot: true}
}

// StepFinished returns a terminal cursor with no known end slot.
func StepFinished() StreamingStep {
	return StreamingStep{kind: stepFinished}
}

// StepFinishedAt returns a terminal cursor that ended at slot.
func StepFinishedAt(slot Slot) StreamingStep {
	return StreamingStep{kind: stepFinished, slot: slot, hasSlot: true}
}

// IsStarted reports whether no progress has been made yet.
func (s StreamingStep) IsStarted() bool {
	return s.kind == stepStarted
}

// Ongoing returns the last fully-sent slot if the cursor is mid-stream.
func (s StreamingStep) Ongoing() (Slot, bool) {
	if s.kind != stepOngoing {
		return Slot{}, false
	}
	return s.slot, true
}

// Finished returns the terminal slot (if known) when the cursor is terminal.
// The second result is false when the cursor is not terminal, the third is
// false when the terminal slot is unknown.
func (s StreamingStep) Finished() (Slot, bool, bool) {
	if s.kind != stepFinished {
		return Slot{}, false, false
	}
	return s.slot, true, s.hasSlot
}

// IsTerminal reports whether the cursor reached its absorbing state.
func (s StreamingStep) IsTerminal() bool {
	return s.kind == stepFinished
}

// CmpProgress orders cursors by progress: Started < Ongoing(s) < Finished,
// and Ongoing cursors compare by their slot.
func (s StreamingStep) CmpProgress(other StreamingStep) int {
	if s.kind != other.kind {
		if s.kind < other.kind {
			return -1
		}
		return 1
	}
	if s.kind == stepOngoing {
		return s.slot.Cmp(other.slot)
	}
	return 0
}

func (s StreamingStep) String() string {
	switch s.kind {
	case stepStarted:
		return "Started"
	case stepOngoing:
		return fmt.Sprintf("Ongoing%s", s.slot)
	default:
		if s.hasSlot {
			return fmt.Sprintf("Finished%s", s.slot)
		}
		return "Finished"
	}
}
