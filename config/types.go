package config

// ConsensusConfig holds the tunables of the consensus state, the deferred
// credit codec bounds and the bootstrap graph exporter.
type ConsensusConfig struct {
	// ThreadCount is the number of parallel threads of the slot grid. Every
	// decoded slot must carry a thread below this bound.
	ThreadCount uint8 `yaml:"thread_count"`
	// BootstrapPartSize caps the number of export units per bootstrap batch.
	BootstrapPartSize int `yaml:"bootstrap_part_size"`
	// MaxCreditSlots bounds the slot count accepted by the credits decoder.
	MaxCreditSlots uint64 `yaml:"max_credit_slots"`
	// MaxCreditsPerSlot bounds the per-slot credit count accepted by the decoder.
	MaxCreditsPerSlot uint64 `yaml:"max_credits_per_slot"`
	// CommandChannelSize is the capacity of the fire-and-forget command channel.
	CommandChannelSize int `yaml:"command_channel_size"`
	// StatsTimespanMs is the sliding window of the consensus stats, in milliseconds.
	StatsTimespanMs int64 `yaml:"stats_timespan_ms"`
	// FinalityDepth is the number of periods a block must be behind the newest
	// registered block before it is finalized.
	FinalityDepth uint64 `yaml:"finality_depth"`
}

// NodeConfig is the top-level node configuration loaded from node.yml.
type NodeConfig struct {
	DataDir     string          `yaml:"data_dir"`
	DBBackend   string          `yaml:"db_backend"`
	RPCAddr     string          `yaml:"rpc_addr"`
	MetricsAddr string          `yaml:"metrics_addr"`
	SnapshotDir string          `yaml:"snapshot_dir"`
	Consensus   ConsensusConfig `yaml:"consensus"`
}

// ConfigFile is the top-level structure for node.yml
type ConfigFile struct {
	Config NodeConfig `yaml:"config"`
}
