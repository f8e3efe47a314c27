package jsonrpc

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"strings"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/roman778roman/massa/consensus"
	"github.com/roman778roman/massa/logx"
	"github.com/roman778roman/massa/types"
)

// --- Params/Results ---

type slotParam struct {
	Period uint64 `json:"period"`
	Thread uint8  `json:"thread"`
}

func (p slotParam) toSlot() types.Slot {
	return types.Slot{Period: p.Period, Thread: p.Thread}
}

func slotParamOf(s types.Slot) slotParam {
	return slotParam{Period: s.Period, Thread: s.Thread}
}

type getGraphStatusParams struct {
	Start *slotParam `json:"start,omitempty"`
	End   *slotParam `json:"end,omitempty"`
}

type blockInfoResult struct {
	Slot    slotParam `json:"slot"`
	Parents []string  `json:"parents"`
	IsFinal bool      `json:"is_final"`
}

type graphStatusResult struct {
	ActiveBlocks    map[string]blockInfoResult `json:"active_blocks"`
	DiscardedBlocks map[string]string          `json:"discarded_blocks"`
	BestParents     []blockParentResult        `json:"best_parents"`
	MaxCliques      []cliqueResult             `json:"max_cliques"`
}

type blockParentResult struct {
	BlockID string `json:"block_id"`
	Period  uint64 `json:"period"`
}

type cliqueResult struct {
	BlockIDs      []string `json:"block_ids"`
	Fitness       uint64   `json:"fitness"`
	IsBlockclique bool     `json:"is_blockclique"`
}

type getBlockStatusesParams struct {
	BlockIDs []string `json:"block_ids"`
}

type getBlockStatusesResult struct {
	Statuses []string `json:"statuses"`
}

type getBootstrapPartParams struct {
	Cursor          cursorParam `json:"cursor"`
	ExecutionCursor cursorParam `json:"execution_cursor"`
}

type exportBlockResult struct {
	BlockID string    `json:"block_id"`
	Slot    slotParam `json:"slot"`
	Parents []string  `json:"parents"`
	IsFinal bool      `json:"is_final"`
}

type getBootstrapPartResult struct {
	FinalBlocks []exportBlockResult `json:"final_blocks"`
	NextCursor  cursorParam         `json:"next_cursor"`
}

type getStatsResult struct {
	FinalBlockCount uint64 `json:"final_block_count"`
	StaleBlockCount uint64 `json:"stale_block_count"`
	CliqueCount     uint64 `json:"clique_count"`
	StartTimespan   int64  `json:"start_timespan"`
	EndTimespan     int64  `json:"end_timespan"`
}

type getBlockAtSlotParams struct {
	Slot slotParam `json:"slot"`
}

type getBlockAtSlotResult struct {
	BlockID string `json:"block_id"`
	Found   bool   `json:"found"`
}

type getLedgerHashResult struct {
	Hash string `json:"hash"`
}

type deferredCreditResult struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type getDeferredCreditsResult struct {
	Slots map[string][]deferredCreditResult `json:"slots"`
	Hash  string                            `json:"hash"`
}

type healthCheckResult struct {
	Status string `json:"status"`
}

// --- Server ---

// Server exposes the consensus read API over HTTP JSON-RPC. Every method is a
// read; graph mutations only enter through the node's internal command
// channel.
type Server struct {
	addr       string
	ctrl       consensus.Controller
	corsConfig CORSConfig
	httpServer *http.Server
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

func NewServer(addr string, ctrl consensus.Controller) *Server {
	return &Server{
		addr: addr,
		ctrl: ctrl,
		corsConfig: CORSConfig{
			AllowedOrigins: []string{},
			AllowedMethods: []string{},
			AllowedHeaders: []string{},
			MaxAge:         0,
		},
	}
}

// SetCORSConfig allows configuring CORS settings
func (s *Server) SetCORSConfig(config CORSConfig) {
	s.corsConfig = config
}

func (s *Server) Start() {
	methods := s.buildMethodMap()
	jh := jhttp.NewBridge(methods, &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logx.Debug("JSONRPC", "request from ", extractClientIPFromRequest(r))
		s.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		jh.ServeHTTP(w, r)
	})

	mux := http.NewServeMux()
	mux.Handle("/", h)
	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Error("JSONRPC", "server stopped: ", err)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Build jrpc2 method map
func (s *Server) buildMethodMap() handler.Map {
	return handler.Map{
		MethodGraphGetStatus: handler.New(func(ctx context.Context, p getGraphStatusParams) (*graphStatusResult, error) {
			return s.rpcGetGraphStatus(p), nil
		}),
		MethodGraphGetBlockStatuses: handler.New(func(ctx context.Context, p getBlockStatusesParams) (*getBlockStatusesResult, error) {
			return s.rpcGetBlockStatuses(p)
		}),
		MethodGraphGetCliques: handler.New(func(ctx context.Context) ([]cliqueResult, error) {
			return s.rpcGetCliques(), nil
		}),
		MethodGraphGetBestParents: handler.New(func(ctx context.Context) ([]blockParentResult, error) {
			return s.rpcGetBestParents(), nil
		}),
		MethodGraphGetStats: handler.New(func(ctx context.Context) (*getStatsResult, error) {
			return s.rpcGetStats(), nil
		}),
		MethodGraphGetBlockAtSlot: handler.New(func(ctx context.Context, p getBlockAtSlotParams) (*getBlockAtSlotResult, error) {
			return s.rpcGetBlockAtSlot(p), nil
		}),
		MethodGraphGetLatestBlockAtSlot: handler.New(func(ctx context.Context, p getBlockAtSlotParams) (*getBlockAtSlotResult, error) {
			return s.rpcGetLatestBlockAtSlot(p), nil
		}),
		MethodBootstrapGetPart: handler.New(func(ctx context.Context, p getBootstrapPartParams) (*getBootstrapPartResult, error) {
			return s.rpcGetBootstrapPart(p)
		}),
		MethodLedgerGetHash: handler.New(func(ctx context.Context) (*getLedgerHashResult, error) {
			return &getLedgerHashResult{Hash: s.ctrl.GetLedgerHash().String()}, nil
		}),
		MethodLedgerGetDeferredCredits: handler.New(func(ctx context.Context) (*getDeferredCreditsResult, error) {
			return s.rpcGetDeferredCredits(), nil
		}),
		MethodHealthCheck: handler.New(func(ctx context.Context) (*healthCheckResult, error) {
			return &healthCheckResult{Status: "ok"}, nil
		}),
	}
}

// --- Handlers ---

func (s *Server) rpcGetGraphStatus(p getGraphStatusParams) *graphStatusResult {
	var start, end *types.Slot
	if p.Start != nil {
		v := p.Start.toSlot()
		start = &v
	}
	if p.End != nil {
		v := p.End.toSlot()
		end = &v
	}
	export := s.ctrl.GetBlockGraphStatus(start, end)

	result := &graphStatusResult{
		ActiveBlocks:    make(map[string]blockInfoResult, len(export.ActiveBlocks)),
		DiscardedBlocks: make(map[string]string, len(export.DiscardedBlocks)),
		BestParents:     toBlockParentResults(export.BestParents),
		MaxCliques:      toCliqueResults(export.MaxCliques),
	}
	for id, info := range export.ActiveBlocks {
		result.ActiveBlocks[id.String()] = blockInfoResult{
			Slot:    slotParamOf(info.Slot),
			Parents: blockIDStrings(info.Parents),
			IsFinal: info.IsFinal,
		}
	}
	for id, reason := range export.DiscardedBlocks {
		result.DiscardedBlocks[id.String()] = reason
	}
	return result
}

func (s *Server) rpcGetBlockStatuses(p getBlockStatusesParams) (*getBlockStatusesResult, error) {
	ids := make([]types.BlockID, len(p.BlockIDs))
	for i, raw := range p.BlockIDs {
		id, err := types.BlockIDFromString(raw)
		if err != nil {
			return nil, jrpc2.Errorf(jrpc2.InvalidParams, "invalid block id %q: %v", raw, err)
		}
		ids[i] = id
	}
	statuses := s.ctrl.GetBlockStatuses(ids)
	result := &getBlockStatusesResult{Statuses: make([]string, len(statuses))}
	for i, status := range statuses {
		result.Statuses[i] = status.String()
	}
	return result, nil
}

func (s *Server) rpcGetCliques() []cliqueResult {
	return toCliqueResults(s.ctrl.GetCliques())
}

func (s *Server) rpcGetBestParents() []blockParentResult {
	return toBlockParentResults(s.ctrl.GetBestParents())
}

func (s *Server) rpcGetStats() *getStatsResult {
	stats := s.ctrl.GetStats()
	return &getStatsResult{
		FinalBlockCount: stats.FinalBlockCount,
		StaleBlockCount: stats.StaleBlockCount,
		CliqueCount:     stats.CliqueCount,
		StartTimespan:   stats.StartTimespan.UnixMilli(),
		EndTimespan:     stats.EndTimespan.UnixMilli(),
	}
}

func (s *Server) rpcGetBlockAtSlot(p getBlockAtSlotParams) *getBlockAtSlotResult {
	id, found := s.ctrl.GetBlockcliqueBlockAtSlot(p.Slot.toSlot())
	if !found {
		return &getBlockAtSlotResult{}
	}
	return &getBlockAtSlotResult{BlockID: id.String(), Found: true}
}

func (s *Server) rpcGetLatestBlockAtSlot(p getBlockAtSlotParams) *getBlockAtSlotResult {
	id, found := s.ctrl.GetLatestBlockcliqueBlockAtSlot(p.Slot.toSlot())
	if !found {
		return &getBlockAtSlotResult{}
	}
	return &getBlockAtSlotResult{BlockID: id.String(), Found: true}
}

func (s *Server) rpcGetBootstrapPart(p getBootstrapPartParams) (*getBootstrapPartResult, error) {
	cursor, err := p.Cursor.toStep()
	if err != nil {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "invalid cursor: %v", err)
	}
	execCursor, err := p.ExecutionCursor.toStep()
	if err != nil {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "invalid execution cursor: %v", err)
	}

	graph, next, err := s.ctrl.GetBootstrapPart(cursor, execCursor)
	if err != nil {
		return nil, jrpc2.Errorf(jrpc2.InternalError, "%v", err)
	}

	result := &getBootstrapPartResult{
		FinalBlocks: make([]exportBlockResult, len(graph.FinalBlocks)),
		NextCursor:  cursorParamOf(next),
	}
	for i, block := range graph.FinalBlocks {
		result.FinalBlocks[i] = exportBlockResult{
			BlockID: block.ID.String(),
			Slot:    slotParamOf(block.Slot),
			Parents: blockIDStrings(block.Parents),
			IsFinal: block.IsFinal,
		}
	}
	return result, nil
}

func (s *Server) rpcGetDeferredCredits() *getDeferredCreditsResult {
	credits := s.ctrl.GetDeferredCreditsSnapshot()
	result := &getDeferredCreditsResult{
		Slots: make(map[string][]deferredCreditResult, credits.SlotCount()),
		Hash:  credits.Hash().String(),
	}
	for _, slot := range credits.SortedSlots() {
		slotCredits := credits.Credits[slot]
		entries := make([]deferredCreditResult, 0, len(slotCredits))
		for addr, amount := range slotCredits {
			entries = append(entries, deferredCreditResult{
				Address: addr.String(),
				Amount:  amount.Dec(),
			})
		}
		result.Slots[slot.String()] = entries
	}
	return result
}

// --- Helpers ---

func blockIDStrings(ids []types.BlockID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func toBlockParentResults(parents []consensus.BlockParent) []blockParentResult {
	out := make([]blockParentResult, len(parents))
	for i, parent := range parents {
		out[i] = blockParentResult{BlockID: parent.ID.String(), Period: parent.Period}
	}
	return out
}

func toCliqueResults(cliques []consensus.Clique) []cliqueResult {
	out := make([]cliqueResult, len(cliques))
	for i, clique := range cliques {
		out[i] = cliqueResult{
			BlockIDs:      blockIDStrings(clique.BlockIDs),
			Fitness:       clique.Fitness,
			IsBlockclique: clique.IsBlockclique,
		}
	}
	return out
}

func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	if len(s.corsConfig.AllowedOrigins) > 0 {
		if s.corsConfig.AllowedOrigins[0] == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			origin := r.Header.Get("Origin")
			for _, allowedOrigin := range s.corsConfig.AllowedOrigins {
				if origin == allowedOrigin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
	}

	if len(s.corsConfig.AllowedMethods) > 0 {
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(s.corsConfig.AllowedMethods, ", "))
	}
	if len(s.corsConfig.AllowedHeaders) > 0 {
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(s.corsConfig.AllowedHeaders, ", "))
	}
	if s.corsConfig.MaxAge > 0 {
		w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", s.corsConfig.MaxAge))
	}
}
