package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/roman778roman/massa/config"
	"github.com/roman778roman/massa/consensus"
	"github.com/roman778roman/massa/db"
	"github.com/roman778roman/massa/jsonrpc"
	"github.com/roman778roman/massa/logx"
	"github.com/roman778roman/massa/monitoring"
	"github.com/roman778roman/massa/snapshot"
	"github.com/roman778roman/massa/store"
	"github.com/roman778roman/massa/types"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			_ = logx.Errorf("NODE CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	configPath := flag.String("config", "config/node.yml", "path to the node config file")
	tuningPath := flag.String("tuning", "", "path to the optional tuning .ini file")
	flag.Parse()

	if err := run(*configPath, *tuningPath); err != nil {
		logx.Error("NODE", "node stopped with error: ", err)
		os.Exit(1)
	}
}

func run(configPath, tuningPath string) error {
	cfg, err := config.LoadNodeConfig(configPath)
	if err != nil {
		return err
	}

	metricsEnabled := true
	if tuningPath != "" {
		tuning, err := config.LoadTuningConfig(tuningPath)
		if err != nil {
			logx.Warn("NODE", "failed to load tuning config, using defaults: ", err)
		} else {
			metricsEnabled = tuning.MetricsEnabled
		}
	}

	if metricsEnabled {
		monitoring.InitMetrics()
	}

	provider, err := db.NewProvider(cfg.DBBackend, filepath.Join(cfg.DataDir, "state"))
	if err != nil {
		return err
	}
	defer provider.Close()

	creditStore := store.NewGenericCreditStore(provider)
	logLatestCheckpoint(creditStore)

	shared := consensus.NewSharedState(cfg.Consensus)
	commands := make(chan consensus.Command, cfg.Consensus.CommandChannelSize)
	forkChoice := consensus.NewDepthForkChoice(cfg.Consensus.ThreadCount, cfg.Consensus.FinalityDepth)
	worker := consensus.NewWorker(commands, shared, forkChoice, creditStore)
	worker.Start()
	defer worker.Stop()

	ctrl := consensus.NewController(commands, shared)

	rpcServer := jsonrpc.NewServer(cfg.RPCAddr, ctrl)
	if corsCfg, ok := jsonrpc.CORSFromEnv(); ok {
		rpcServer.SetCORSConfig(corsCfg)
	}
	rpcServer.Start()
	logx.Info("NODE", "JSON-RPC server listening on ", cfg.RPCAddr)

	var metricsServer *http.Server
	if metricsEnabled && cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		monitoring.RegisterMetrics(mux)
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logx.Error("NODE", "metrics server stopped: ", err)
			}
		}()
		logx.Info("NODE", "metrics server listening on ", cfg.MetricsAddr)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logx.Info("NODE", "shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rpcServer.Stop(shutdownCtx); err != nil {
		logx.Error("NODE", "failed to stop JSON-RPC server: ", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logx.Error("NODE", "failed to stop metrics server: ", err)
		}
	}

	writeShutdownSnapshot(cfg, ctrl, creditStore)
	return nil
}

func logLatestCheckpoint(creditStore store.CreditStore) {
	slot, found, err := creditStore.LatestSlot()
	if err != nil {
		logx.Error("NODE", "failed to read latest credit checkpoint: ", err)
		return
	}
	if !found {
		logx.Info("NODE", "no credit checkpoint found, starting from empty ledger")
		return
	}
	logx.Info("NODE", "latest credit checkpoint at slot ", slot.String())
}

// writeShutdownSnapshot captures the finalized graph and credit ledger so a
// restarting node can serve bootstrap requests without replaying history.
func writeShutdownSnapshot(cfg *config.NodeConfig, ctrl consensus.Controller, creditStore store.CreditStore) {
	dir := cfg.SnapshotDir
	if dir == "" {
		dir = snapshot.SnapshotDirectory
	}

	latest, found, err := creditStore.LatestSlot()
	if err != nil || !found {
		logx.Info("NODE", "skipping shutdown snapshot, no finalized checkpoint")
		return
	}

	export := ctrl.GetBlockGraphStatus(nil, nil)
	var blocks []snapshot.SnapshotBlock
	for id, info := range export.ActiveBlocks {
		if !info.IsFinal {
			continue
		}
		blocks = append(blocks, snapshot.SnapshotBlock{
			BlockID: id.String(),
			Slot:    info.Slot,
			Parents: blockIDStrings(info.Parents),
		})
	}

	credits := ctrl.GetDeferredCreditsSnapshot()
	path, err := snapshot.WriteSnapshot(dir, snapshot.BuildSnapshot(latest, blocks, credits))
	if err != nil {
		logx.Error("NODE", "failed to write shutdown snapshot: ", err)
		return
	}
	logx.Info("NODE", "shutdown snapshot written to ", path)
}

func blockIDStrings(ids []types.BlockID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
