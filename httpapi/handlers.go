package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/liliang-cn/vsmgo"
)

type healthResponse struct {
	Status string        `json:"status"`
	Uptime time.Duration `json:"uptime_ns"`
}

func (s *Server[D, M]) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(s.startTime),
	})
}

type statsResponse struct {
	BuildID    string    `json:"build_id"`
	BuiltAt    time.Time `json:"built_at"`
	WeightName string    `json:"weight_name,omitempty"`
	DocCount   int       `json:"doc_count"`
	TermCount  int       `json:"term_count"`
}

func (s *Server[D, M]) handleStats(w http.ResponseWriter, r *http.Request) {
	info := s.index.BuildInfo
	writeJSON(w, http.StatusOK, statsResponse{
		BuildID:    info.BuildID,
		BuiltAt:    info.BuiltAt,
		WeightName: info.WeightName,
		DocCount:   info.DocCount,
		TermCount:  info.TermCount,
	})
}

type searchRequest struct {
	Terms []string `json:"terms"`
	Mode  string   `json:"mode,omitempty"`
	TopK  int      `json:"top_k,omitempty"`
}

type searchHit[D any] struct {
	DocID    uint32  `json:"doc_id"`
	Document D       `json:"document"`
	Score    float32 `json:"score"`
}

func (s *Server[D, M]) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Terms) == 0 {
		writeError(w, http.StatusBadRequest, "terms must not be empty")
		return
	}

	query, ok := s.index.NewQuery(req.Terms)
	if !ok {
		writeJSON(w, http.StatusOK, []searchHit[D]{})
		return
	}

	mode := vsmgo.CosineRank
	if req.Mode == "dice" {
		mode = vsmgo.DiceRank
	}
	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	results := s.index.Search(&query, mode, topK)
	hits := make([]searchHit[D], len(results))
	for i, r := range results {
		hits[i] = searchHit[D]{DocID: r.DocID, Document: r.Document, Score: r.Score}
	}
	writeJSON(w, http.StatusOK, hits)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
