package jsonrpc

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/roman778roman/massa/types"
)

// JSON-RPC Method name constants
const (
	// Graph methods
	MethodGraphGetStatus            = "graph.getstatus"
	MethodGraphGetBlockStatuses     = "graph.getblockstatuses"
	MethodGraphGetCliques           = "graph.getcliques"
	MethodGraphGetBestParents       = "graph.getbestparents"
	MethodGraphGetStats             = "graph.getstats"
	MethodGraphGetBlockAtSlot       = "graph.getblockatslot"
	MethodGraphGetLatestBlockAtSlot = "graph.getlatestblockatslot"

	// Bootstrap methods
	MethodBootstrapGetPart = "bootstrap.getpart"

	// Ledger methods
	MethodLedgerGetHash            = "ledger.gethash"
	MethodLedgerGetDeferredCredits = "ledger.getdeferredcredits"

	// Health methods
	MethodHealthCheck = "health.check"
)

// Streaming cursor kinds on the wire.
const (
	cursorKindStarted  = "started"
	cursorKindOngoing  = "ongoing"
	cursorKindFinished = "finished"
)

// cursorParam is the wire form of a streaming cursor. Slot is meaningful for
// "ongoing" always and for "finished" when has_slot is set.
type cursorParam struct {
	Kind    string     `json:"kind"`
	Slot    *slotParam `json:"slot,omitempty"`
	HasSlot bool       `json:"has_slot,omitempty"`
}

func (p cursorParam) toStep() (types.StreamingStep, error) {
	switch p.Kind {
	case cursorKindStarted, "":
		return types.StepStarted(), nil
	case cursorKindOngoing:
		if p.Slot == nil {
			return types.StreamingStep{}, fmt.Errorf("ongoing cursor requires a slot")
		}
		return types.StepOngoing(p.Slot.toSlot()), nil
	case cursorKindFinished:
		if p.Slot != nil {
			return types.StepFinishedAt(p.Slot.toSlot()), nil
		}
		return types.StepFinished(), nil
	default:
		return types.StreamingStep{}, fmt.Errorf("unknown cursor kind %q", p.Kind)
	}
}

func cursorParamOf(step types.StreamingStep) cursorParam {
	if step.IsStarted() {
		return cursorParam{Kind: cursorKindStarted}
	}
	if slot, ok := step.Ongoing(); ok {
		v := slotParamOf(slot)
		return cursorParam{Kind: cursorKindOngoing, Slot: &v}
	}
	slot, _, hasSlot := step.Finished()
	if hasSlot {
		v := slotParamOf(slot)
		return cursorParam{Kind: cursorKindFinished, Slot: &v, HasSlot: true}
	}
	return cursorParam{Kind: cursorKindFinished}
}

// CORSFromEnv reads environment variables and constructs a CORSConfig.
// Returns (cfg, true) if any CORS-related env var is set; otherwise (zero, false).
//
// Env vars:
// - CORS_ALLOWED_ORIGINS: comma-separated list
// - CORS_ALLOWED_METHODS: comma-separated list
// - CORS_ALLOWED_HEADERS: comma-separated list
// - CORS_MAX_AGE: integer seconds
func CORSFromEnv() (CORSConfig, bool) {
	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	methods := os.Getenv("CORS_ALLOWED_METHODS")
	headers := os.Getenv("CORS_ALLOWED_HEADERS")
	maxAgeStr := os.Getenv("CORS_MAX_AGE")

	var maxAge int
	if maxAgeStr != "" {
		if v, err := strconv.Atoi(maxAgeStr); err == nil {
			maxAge = v
		}
	}

	var allowedOrigins, allowedMethods, allowedHeaders []string
	if origins != "" {
		allowedOrigins = splitAndTrim(origins)
	}
	if methods != "" {
		allowedMethods = splitAndTrim(methods)
	}
	if headers != "" {
		allowedHeaders = splitAndTrim(headers)
	}

	provided := len(allowedOrigins) > 0 || len(allowedMethods) > 0 || len(allowedHeaders) > 0 || maxAge > 0
	if !provided {
		return CORSConfig{}, false
	}

	return CORSConfig{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: allowedMethods,
		AllowedHeaders: allowedHeaders,
		MaxAge:         maxAge,
	}, true
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func extractClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return "unknown"
}
