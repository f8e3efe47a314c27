package interfaces

import "github.com/roman778roman/massa/types"

// ExecutionBootstrap exposes the progress of the execution-state bootstrap
// stream, which advances independently of the block-graph stream. The graph
// exporter must never run past the slot at which this cursor finished.
type ExecutionBootstrap interface {
	Cursor() types.StreamingStep
}
