package consensus

import "errors"

// ErrContainerInconsistency flags a broken internal invariant: a block the
// state lists as required is missing from the live status map. It indicates
// corrupted state, never a recoverable condition, and is surfaced to the
// caller of the read operation that hit it.
var ErrContainerInconsistency = errors.New("container inconsistency")
