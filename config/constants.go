package config

const (
	// DefaultThreadCount is the number of threads of the slot grid.
	DefaultThreadCount uint8 = 32
	// DefaultBootstrapPartSize is the maximum number of export units per
	// bootstrap graph batch.
	DefaultBootstrapPartSize = 100
	// DefaultMaxCreditSlots bounds the slot count of a decoded credit ledger.
	DefaultMaxCreditSlots uint64 = 10_000
	// DefaultMaxCreditsPerSlot bounds the credit count of a decoded slot.
	DefaultMaxCreditsPerSlot uint64 = 10_000
	// DefaultCommandChannelSize is the capacity of the consensus command channel.
	DefaultCommandChannelSize = 1024
	// DefaultStatsTimespanMs is the sliding window of the consensus stats.
	DefaultStatsTimespanMs int64 = 60_000
	// DefaultFinalityDepth is the period distance behind the newest block at
	// which a block finalizes.
	DefaultFinalityDepth uint64 = 64
)

// DefaultConsensusConfig returns the consensus tunables used when node.yml
// leaves them unset.
func DefaultConsensusConfig() ConsensusConfig {
	return ConsensusConfig{
		ThreadCount:        DefaultThreadCount,
		BootstrapPartSize:  DefaultBootstrapPartSize,
		MaxCreditSlots:     DefaultMaxCreditSlots,
		MaxCreditsPerSlot:  DefaultMaxCreditsPerSlot,
		CommandChannelSize: DefaultCommandChannelSize,
		StatsTimespanMs:    DefaultStatsTimespanMs,
		FinalityDepth:      DefaultFinalityDepth,
	}
}
