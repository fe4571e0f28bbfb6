// Package admin exposes the operational control surface over HTTP: the
// per-chain backfill controls, read endpoints over the canonical store,
// on-demand reconciliation, and pipeline health. Mutating endpoints are
// audit-logged and everything sits behind per-IP rate limiting.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/identity"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/reconciliation"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/scanner"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store"
)

const maxRequestBodyBytes = 1 << 20 // 1 MB

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// BackfillController is the per-chain scan control the server drives. In
// production this is *scanner.Scanner; tests provide a stub.
type BackfillController interface {
	Run(ctx context.Context, r scanner.Range) (scanner.Result, error)
	Pause(ctx context.Context) error
	Resume(ctx context.Context) (scanner.Result, error)
	Progress(ctx context.Context) (scanner.Progress, error)
}

// HealthProvider returns per-pipeline health snapshots as JSON-encodable data.
type HealthProvider interface {
	HealthSnapshots() any
}

// Reconciler triggers the aggregate audit for one chain.
type Reconciler interface {
	Reconcile(ctx context.Context, chainID model.ChainID) (*reconciliation.RunResult, error)
	HasChain(chainID model.ChainID) bool
}

// Server provides the HTTP admin API for operational management.
type Server struct {
	users          store.UserRepository
	strategies     store.StrategyRepository
	backfills      map[model.ChainID]BackfillController
	deadLetters    store.DeadLetterRepository
	healthProvider HealthProvider
	reconciler     Reconciler
	logger         *slog.Logger
}

// NewServer creates the admin API server. Backfill controllers and the
// optional subsystems are attached through options.
func NewServer(
	users store.UserRepository,
	strategies store.StrategyRepository,
	logger *slog.Logger,
	opts ...ServerOption,
) *Server {
	s := &Server{
		users:      users,
		strategies: strategies,
		backfills:  make(map[model.ChainID]BackfillController),
		logger:     logger.With("component", "admin"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServerOption configures optional dependencies for the admin server.
type ServerOption func(*Server)

// WithBackfill registers the backfill controller for one chain.
func WithBackfill(chainID model.ChainID, ctrl BackfillController) ServerOption {
	return func(s *Server) { s.backfills[chainID] = ctrl }
}

// WithHealthProvider sets the health provider on the admin server.
func WithHealthProvider(hp HealthProvider) ServerOption {
	return func(s *Server) { s.healthProvider = hp }
}

// WithReconciler sets the reconciliation trigger on the admin server.
func WithReconciler(rec Reconciler) ServerOption {
	return func(s *Server) { s.reconciler = rec }
}

// WithDeadLetters sets the dead-letter repository on the admin server.
func WithDeadLetters(repo store.DeadLetterRepository) ServerOption {
	return func(s *Server) { s.deadLetters = repo }
}

// Handler returns the HTTP handler for the admin API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/v1/backfill/{chain}", s.handleBackfillRun)
	mux.HandleFunc("GET /admin/v1/backfill/{chain}", s.handleBackfillProgress)
	mux.HandleFunc("POST /admin/v1/backfill/{chain}/pause", s.handleBackfillPause)
	mux.HandleFunc("POST /admin/v1/backfill/{chain}/resume", s.handleBackfillResume)
	mux.HandleFunc("GET /admin/v1/strategies", s.handleListStrategies)
	mux.HandleFunc("GET /admin/v1/users/{address}", s.handleGetUser)
	mux.HandleFunc("POST /admin/v1/reconcile", s.handleReconcile)
	mux.HandleFunc("GET /admin/v1/health", s.handleHealth)
	mux.HandleFunc("GET /admin/v1/deadletters", s.handleListDeadLetters)
	mux.HandleFunc("GET /admin/v1/overview", s.handleOverview)
	return mux
}

// writeJSON writes v as JSON with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSONBody reads and decodes a JSON request body into v.
// Returns false (and writes an error response) if decoding fails.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// chainParam parses the {chain} path segment as a numeric chain id.
func chainParam(w http.ResponseWriter, r *http.Request) (model.ChainID, bool) {
	raw := r.PathValue("chain")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid chain id")
		return 0, false
	}
	return model.ChainID(id), true
}

// controller resolves the backfill controller registered for chainID,
// answering 404 when the chain is not served by this process.
func (s *Server) controller(w http.ResponseWriter, chainID model.ChainID) (BackfillController, bool) {
	ctrl, ok := s.backfills[chainID]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown chain")
		return nil, false
	}
	return ctrl, true
}

func pageParams(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxPageLimit)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// --- Backfill endpoints ---

type backfillRequest struct {
	FromBlock *int64 `json:"from_block"`
	ToBlock   *int64 `json:"to_block"`
}

type backfillResultResponse struct {
	ChainID         int64 `json:"chain_id"`
	EventsProcessed int64 `json:"events_processed"`
	BlocksScanned   int64 `json:"blocks_scanned"`
}

// handleBackfillRun scans the requested range synchronously: the caller
// (a CLI or scheduler) holds the connection until the scan completes, and
// dropping it cancels between batches with progress persisted. A scan
// already holding the chain's lease answers 409.
func (s *Server) handleBackfillRun(w http.ResponseWriter, r *http.Request) {
	chainID, ok := chainParam(w, r)
	if !ok {
		return
	}
	ctrl, ok := s.controller(w, chainID)
	if !ok {
		return
	}

	var req backfillRequest
	if r.ContentLength != 0 {
		if !decodeJSONBody(w, r, &req) {
			return
		}
	}
	if req.FromBlock != nil && *req.FromBlock < 0 {
		writeError(w, http.StatusBadRequest, "from_block must be >= 0")
		return
	}
	if req.FromBlock != nil && req.ToBlock != nil && *req.ToBlock < *req.FromBlock {
		writeError(w, http.StatusBadRequest, "to_block must be >= from_block")
		return
	}

	result, err := ctrl.Run(r.Context(), scanner.Range{From: req.FromBlock, To: req.ToBlock})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, "backfill already running for chain")
			return
		}
		s.logger.Error("backfill run failed", "chain_id", int64(chainID), "error", err)
		writeError(w, http.StatusInternalServerError, "backfill failed")
		return
	}

	writeJSON(w, http.StatusOK, backfillResultResponse{
		ChainID:         int64(chainID),
		EventsProcessed: result.EventsProcessed,
		BlocksScanned:   result.BlocksScanned,
	})
}

type progressResponse struct {
	ChainID            int64 `json:"chain_id"`
	IsBackfilling      bool  `json:"is_backfilling"`
	IsPaused           bool  `json:"is_paused"`
	CurrentBlock       int64 `json:"current_block"`
	LatestIndexedBlock int64 `json:"latest_indexed_block"`
	RemainingBlocks    int64 `json:"remaining_blocks"`
}

func toProgressResponse(p scanner.Progress) progressResponse {
	return progressResponse{
		ChainID:            int64(p.ChainID),
		IsBackfilling:      p.IsBackfilling,
		IsPaused:           p.IsPaused,
		CurrentBlock:       p.CurrentBlock,
		LatestIndexedBlock: p.LatestIndexedBlock,
		RemainingBlocks:    p.RemainingBlocks,
	}
}

func (s *Server) handleBackfillProgress(w http.ResponseWriter, r *http.Request) {
	chainID, ok := chainParam(w, r)
	if !ok {
		return
	}
	ctrl, ok := s.controller(w, chainID)
	if !ok {
		return
	}

	progress, err := ctrl.Progress(r.Context())
	if err != nil {
		s.logger.Error("backfill progress failed", "chain_id", int64(chainID), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toProgressResponse(progress))
}

func (s *Server) handleBackfillPause(w http.ResponseWriter, r *http.Request) {
	chainID, ok := chainParam(w, r)
	if !ok {
		return
	}
	ctrl, ok := s.controller(w, chainID)
	if !ok {
		return
	}

	if err := ctrl.Pause(r.Context()); err != nil {
		s.logger.Error("backfill pause failed", "chain_id", int64(chainID), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

// handleBackfillResume clears the pause flag and continues from the
// persisted watermark. Like a run it holds the connection until done.
func (s *Server) handleBackfillResume(w http.ResponseWriter, r *http.Request) {
	chainID, ok := chainParam(w, r)
	if !ok {
		return
	}
	ctrl, ok := s.controller(w, chainID)
	if !ok {
		return
	}

	result, err := ctrl.Resume(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, "backfill already running for chain")
			return
		}
		s.logger.Error("backfill resume failed", "chain_id", int64(chainID), "error", err)
		writeError(w, http.StatusInternalServerError, "backfill failed")
		return
	}

	writeJSON(w, http.StatusOK, backfillResultResponse{
		ChainID:         int64(chainID),
		EventsProcessed: result.EventsProcessed,
		BlocksScanned:   result.BlocksScanned,
	})
}

// --- Read endpoints ---

type strategyResponse struct {
	ChainID          int64      `json:"chain_id"`
	UserAddress      string     `json:"user_address"`
	StrategyID       int64      `json:"strategy_id"`
	Tokens           []string   `json:"tokens"`
	WeightsBps       []int64    `json:"weights_bps"`
	RebalanceSeconds int64      `json:"rebalance_interval_seconds"`
	IsActive         bool       `json:"is_active"`
	IsPaused         bool       `json:"is_paused"`
	TotalRebalances  int64      `json:"total_rebalances"`
	TotalSwaps       int64      `json:"total_swaps"`
	TotalVolume      string     `json:"total_volume"`
	AvgDriftBps      float64    `json:"avg_drift_bps"`
	CreatedAtBlock   int64      `json:"created_at_block"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}

func toStrategyResponse(st model.Strategy) strategyResponse {
	return strategyResponse{
		ChainID:          int64(st.ChainID),
		UserAddress:      st.UserAddress,
		StrategyID:       st.StrategyID,
		Tokens:           st.Tokens,
		WeightsBps:       st.WeightsBps,
		RebalanceSeconds: st.RebalanceIntervalSecond,
		IsActive:         st.IsActive,
		IsPaused:         st.IsPaused,
		TotalRebalances:  st.TotalRebalances,
		TotalSwaps:       st.TotalSwaps,
		TotalVolume:      st.TotalVolume,
		AvgDriftBps:      st.AvgDriftBps,
		CreatedAtBlock:   st.CreatedAtBlock,
		CreatedAt:        st.CreatedAt,
		UpdatedAt:        st.UpdatedAt,
		DeletedAt:        st.DeletedAt,
	}
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	var filter store.StrategyFilter

	if v := r.URL.Query().Get("chain_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid chain_id")
			return
		}
		cid := model.ChainID(id)
		filter.ChainID = &cid
	}
	if v := r.URL.Query().Get("user"); v != "" {
		addr := identity.NormalizeAddress(v)
		filter.UserAddress = &addr
	}
	if r.URL.Query().Get("active") == "true" {
		filter.OnlyActive = true
	}
	limit, offset := pageParams(r)

	list, err := s.strategies.List(r.Context(), filter, limit, offset)
	if err != nil {
		s.logger.Error("list strategies failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]strategyResponse, len(list))
	for i, st := range list {
		resp[i] = toStrategyResponse(st)
	}
	writeJSON(w, http.StatusOK, map[string]any{"strategies": resp})
}

type userResponse struct {
	Address         string    `json:"address"`
	StrategyCount   int64     `json:"strategy_count"`
	TotalRebalances int64     `json:"total_rebalances"`
	TotalGasSpent   string    `json:"total_gas_spent"`
	FirstSeenAt     time.Time `json:"first_seen_at"`
	LastActiveAt    time.Time `json:"last_active_at"`
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	address := identity.NormalizeAddress(r.PathValue("address"))
	if address == "" {
		writeError(w, http.StatusBadRequest, "address required")
		return
	}

	user, err := s.users.Get(r.Context(), address)
	if err != nil {
		s.logger.Error("get user failed", "address", address, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	list, err := s.strategies.List(r.Context(), store.StrategyFilter{UserAddress: &address}, maxPageLimit, 0)
	if err != nil {
		s.logger.Error("list user strategies failed", "address", address, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	strategies := make([]strategyResponse, len(list))
	for i, st := range list {
		strategies[i] = toStrategyResponse(st)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": userResponse{
			Address:         user.Address,
			StrategyCount:   user.StrategyCount,
			TotalRebalances: user.TotalRebalances,
			TotalGasSpent:   user.TotalGasSpent,
			FirstSeenAt:     user.FirstSeenAt,
			LastActiveAt:    user.LastActiveAt,
		},
		"strategies": strategies,
	})
}

// --- Reconciliation endpoint ---

type reconcileRequest struct {
	ChainID int64 `json:"chain_id"`
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if s.reconciler == nil {
		writeError(w, http.StatusServiceUnavailable, "reconciliation not available")
		return
	}

	var req reconcileRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.ChainID <= 0 {
		writeError(w, http.StatusBadRequest, "chain_id is required")
		return
	}

	chainID := model.ChainID(req.ChainID)
	if !s.reconciler.HasChain(chainID) {
		writeError(w, http.StatusNotFound, "unknown chain")
		return
	}

	result, err := s.reconciler.Reconcile(r.Context(), chainID)
	if err != nil {
		s.logger.Error("reconciliation failed", "chain_id", req.ChainID, "error", err)
		writeError(w, http.StatusInternalServerError, "reconciliation failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Health endpoint ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthProvider == nil {
		writeError(w, http.StatusServiceUnavailable, "health provider not available")
		return
	}
	writeJSON(w, http.StatusOK, s.healthProvider.HealthSnapshots())
}

// --- Dead-letter endpoint ---

type deadLetterResponse struct {
	ID        string          `json:"id"`
	ChainID   int64           `json:"chain_id"`
	EventName string          `json:"event_name"`
	TxHash    string          `json:"tx_hash"`
	LogIndex  int64           `json:"log_index"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Failure   string          `json:"failure"`
	Attempts  int             `json:"attempts"`
	CreatedAt time.Time       `json:"created_at"`
}

func (s *Server) handleListDeadLetters(w http.ResponseWriter, r *http.Request) {
	if s.deadLetters == nil {
		writeError(w, http.StatusServiceUnavailable, "dead letters not available")
		return
	}

	raw := r.URL.Query().Get("chain_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "chain_id query param required")
		return
	}
	chainID := model.ChainID(id)
	limit, _ := pageParams(r)

	total, err := s.deadLetters.Count(r.Context(), chainID)
	if err != nil {
		s.logger.Error("count dead letters failed", "chain_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	list, err := s.deadLetters.List(r.Context(), chainID, limit)
	if err != nil {
		s.logger.Error("list dead letters failed", "chain_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	items := make([]deadLetterResponse, len(list))
	for i, dl := range list {
		items[i] = deadLetterResponse{
			ID:        dl.ID.String(),
			ChainID:   int64(dl.ChainID),
			EventName: dl.EventName,
			TxHash:    dl.TxHash,
			LogIndex:  dl.LogIndex,
			Payload:   dl.Payload,
			Failure:   dl.Failure,
			Attempts:  dl.Attempts,
			CreatedAt: dl.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "items": items})
}

// sortedChains returns the registered backfill chains in ascending order
// so overview output is stable.
func (s *Server) sortedChains() []model.ChainID {
	chains := make([]model.ChainID, 0, len(s.backfills))
	for id := range s.backfills {
		chains = append(chains, id)
	}
	slices.Sort(chains)
	return chains
}
