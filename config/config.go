package config

import (
	"os"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/roman778roman/massa/logx"
)

// LoadNodeConfig reads and parses the node.yml file, filling unset consensus
// tunables with their defaults.
func LoadNodeConfig(path string) (*NodeConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		logx.Error("CONFIG", "Failed to open config file: ", err)
		return nil, err
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		logx.Error("CONFIG", "Failed to decode YAML: ", err)
		return nil, err
	}

	cfg := cfgFile.Config
	applyConsensusDefaults(&cfg.Consensus)
	logx.Info("CONFIG", "Loaded node config: data_dir=", cfg.DataDir,
		" rpc_addr=", cfg.RPCAddr, " thread_count=", cfg.Consensus.ThreadCount)
	return &cfg, nil
}

func applyConsensusDefaults(cfg *ConsensusConfig) {
	if cfg.ThreadCount == 0 {
		cfg.ThreadCount = DefaultThreadCount
	}
	if cfg.BootstrapPartSize == 0 {
		cfg.BootstrapPartSize = DefaultBootstrapPartSize
	}
	if cfg.MaxCreditSlots == 0 {
		cfg.MaxCreditSlots = DefaultMaxCreditSlots
	}
	if cfg.MaxCreditsPerSlot == 0 {
		cfg.MaxCreditsPerSlot = DefaultMaxCreditsPerSlot
	}
	if cfg.CommandChannelSize == 0 {
		cfg.CommandChannelSize = DefaultCommandChannelSize
	}
	if cfg.StatsTimespanMs == 0 {
		cfg.StatsTimespanMs = DefaultStatsTimespanMs
	}
	if cfg.FinalityDepth == 0 {
		cfg.FinalityDepth = DefaultFinalityDepth
	}
}

// TuningConfig carries operational knobs kept outside the consensus-critical
// YAML file.
type TuningConfig struct {
	LogCategoryDebug bool `ini:"log_category_debug"`
	MetricsEnabled   bool `ini:"metrics_enabled"`
}

// LoadTuningConfig reads the [tuning] section of an .ini file.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	section := cfg.Section("tuning")
	tuningCfg := &TuningConfig{}
	if err := section.MapTo(tuningCfg); err != nil {
		return nil, err
	}
	return tuningCfg, nil
}
