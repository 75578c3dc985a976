package web

import (
	"net/http"
	"strconv"
)

const maxReportLimit = 1000

type reportEntry struct {
	Rank          int      `json:"rank"`
	Item          itemView `json:"item"`
	Title         string   `json:"title"`
	TotalVotes    int      `json:"total_votes"`
	YesVotes      int      `json:"yes_votes"`
	NoVotes       int      `json:"no_votes"`
	MaybeVotes    int      `json:"maybe_votes"`
	YesPercentage float64  `json:"yes_percentage"`
	WeightedScore float64  `json:"weighted_score"`
}

type reportResponse struct {
	Items        []reportEntry `json:"items"`
	Ranked       int           `json:"ranked"`
	TotalVotes   int           `json:"total_votes"`
	UniqueVoters int           `json:"unique_voters"`
}

// handleReport returns the top items by weighted approval. ?limit=N overrides
// the configured top-N; limit=0 returns every ranked item.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	limit := s.opts.ReportLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxReportLimit {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	report := s.ledger.RankedReport(r.Context(), s.catalog.Items(), limit)
	resp := reportResponse{
		Items:        make([]reportEntry, 0, len(report.Items)),
		Ranked:       report.Ranked,
		TotalVotes:   report.TotalVotes,
		UniqueVoters: report.UniqueVoters,
	}
	for i, ranked := range report.Items {
		resp.Items = append(resp.Items, reportEntry{
			Rank:          i + 1,
			Item:          s.viewItem(ranked.Item),
			Title:         ranked.Item.DisplayName(),
			TotalVotes:    ranked.TotalVotes,
			YesVotes:      ranked.YesVotes,
			NoVotes:       ranked.NoVotes,
			MaybeVotes:    ranked.MaybeVotes,
			YesPercentage: ranked.YesPercentage,
			WeightedScore: ranked.WeightedScore,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
