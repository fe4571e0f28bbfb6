package admin

import (
	"net/http"
	"time"
)

type overviewChain struct {
	ChainID     int64             `json:"chain_id"`
	Backfill    *progressResponse `json:"backfill,omitempty"`
	DeadLetters int64             `json:"dead_letters"`
}

type overviewResponse struct {
	Chains     []overviewChain `json:"chains"`
	Health     any             `json:"health,omitempty"`
	ServerTime string          `json:"server_time"`
}

// handleOverview assembles the single-call operator view: per-chain
// backfill progress and dead-letter depth next to the pipeline health
// snapshots. A chain whose progress read fails is reported without it
// rather than failing the whole view.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	resp := overviewResponse{
		Chains:     make([]overviewChain, 0, len(s.backfills)),
		ServerTime: time.Now().UTC().Format(time.RFC3339),
	}

	for _, chainID := range s.sortedChains() {
		oc := overviewChain{ChainID: int64(chainID)}

		if progress, err := s.backfills[chainID].Progress(r.Context()); err != nil {
			s.logger.Warn("overview: backfill progress unavailable",
				"chain_id", int64(chainID), "error", err)
		} else {
			pr := toProgressResponse(progress)
			oc.Backfill = &pr
		}

		if s.deadLetters != nil {
			if n, err := s.deadLetters.Count(r.Context(), chainID); err != nil {
				s.logger.Warn("overview: dead-letter count unavailable",
					"chain_id", int64(chainID), "error", err)
			} else {
				oc.DeadLetters = n
			}
		}

		resp.Chains = append(resp.Chains, oc)
	}

	if s.healthProvider != nil {
		resp.Health = s.healthProvider.HealthSnapshots()
	}

	writeJSON(w, http.StatusOK, resp)
}
