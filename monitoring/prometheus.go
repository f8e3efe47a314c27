package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roman778roman/massa/logx"
)

// CommandKind labels the fire-and-forget commands accepted by the consensus
// controller, for the applied/dropped counters.
type CommandKind string

var (
	CommandRegisterBlock       CommandKind = "register_block"
	CommandRegisterBlockHeader CommandKind = "register_block_header"
	CommandMarkInvalidBlock    CommandKind = "mark_invalid_block"
)

type nodePromMetrics struct {
	nodeUpUnixSeconds   prometheus.Gauge
	appliedCommandCount *prometheus.CounterVec
	droppedCommandCount *prometheus.CounterVec
	finalCreditSlots    prometheus.Gauge
	finalizedDeltaCount prometheus.Counter
	prunedCreditCount   prometheus.Counter
	bootstrapBatchSize  prometheus.Histogram
	bootstrapPartCount  prometheus.Counter
	panicCount          prometheus.Counter
}

func newNodePromMetrics() *nodePromMetrics {
	return &nodePromMetrics{
		nodeUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "massa_node_up_unix_seconds",
				Help: "Unix timestamp at which the node came up",
			},
		),
		appliedCommandCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "massa_node_applied_command_count",
				Help: "Number of consensus commands applied by the worker",
			},
			[]string{"kind"},
		),
		droppedCommandCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "massa_node_dropped_command_count",
				Help: "Number of consensus commands dropped because the command channel was full or closed",
			},
			[]string{"kind"},
		),
		finalCreditSlots: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "massa_node_final_credit_slots",
				Help: "Number of slots currently holding finalized deferred credits",
			},
		),
		finalizedDeltaCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "massa_node_finalized_delta_count",
				Help: "Number of finalized deferred-credit deltas folded into the ledger hash",
			},
		),
		prunedCreditCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "massa_node_pruned_credit_count",
				Help: "Number of fully-paid-out deferred credits pruned from the ledger",
			},
		),
		bootstrapBatchSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "massa_node_bootstrap_batch_size",
				Help:    "Number of export units per bootstrap graph batch",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
		bootstrapPartCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "massa_node_bootstrap_part_count",
				Help: "Number of bootstrap graph parts served",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "massa_node_panic_count",
				Help: "Number of recovered panics in supervised goroutines",
			},
		),
	}
}

var nodeMetrics *nodePromMetrics

// InitMetrics initialize metrics for node but not expose to api yet
func InitMetrics() {
	nodeMetrics = newNodePromMetrics()
	nodeMetrics.nodeUpUnixSeconds.SetToCurrentTime()
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

func IncreaseAppliedCommandCount(kind CommandKind) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.appliedCommandCount.With(prometheus.Labels{"kind": string(kind)}).Inc()
}

func IncreaseDroppedCommandCount(kind CommandKind) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.droppedCommandCount.With(prometheus.Labels{"kind": string(kind)}).Inc()
}

func SetFinalCreditSlots(slots int) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.finalCreditSlots.Set(float64(slots))
}

func IncreaseFinalizedDeltaCount() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.finalizedDeltaCount.Inc()
}

func AddPrunedCreditCount(count int) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.prunedCreditCount.Add(float64(count))
}

func RecordBootstrapBatchSize(size int) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.bootstrapBatchSize.Observe(float64(size))
	nodeMetrics.bootstrapPartCount.Inc()
}

func IncreasePanicCount() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.panicCount.Inc()
}
