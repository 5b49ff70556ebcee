package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/query"
	"github.com/jonathan/talent-search/internal/search"
	"github.com/jonathan/talent-search/internal/server/middleware"
	"github.com/jonathan/talent-search/internal/types"
)

// handleQuery compiles keywords and filters into the query text without searching.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	c := req.Filters.Constraints()
	var resp QueryResponse
	switch {
	case req.Keywords != nil && req.LegacyKeywords != nil:
		s.fail(w, r, &ErrValidation{Message: "set either keywords or legacy_keywords, not both"})
		return
	case req.LegacyKeywords != nil:
		mode, err := query.ParseMode(req.Mode)
		if err != nil {
			s.fail(w, r, &ErrValidation{Field: "mode", Message: err.Error()})
			return
		}
		resp.Mode = mode
		resp.Query = query.BuildLegacy(req.LegacyKeywords.Normalize(), mode, c)
	case req.Keywords != nil:
		plan := query.PlanFor(req.Keywords.Normalize(), c)
		resp.Plan = &plan
		resp.Query = plan.Ideal
	default:
		s.fail(w, r, &ErrValidation{Field: "keywords", Message: "is required"})
		return
	}

	resp.Params = req.Filters.Params(0, resp.Query)
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleSearch runs the two-stage search and returns the outcome with the
// status narration collected along the way.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	recorder := &search.Recorder{}
	out, err := s.searcher.Run(r.Context(), req.Keywords, req.Filters, req.Page, recorder)
	if err != nil {
		s.failWith(w, r, err, ErrorResponse{Result: emptyResult(out), Statuses: recorder.Statuses})
		return
	}

	s.jsonResponse(w, http.StatusOK, SearchResponse{
		RequestID:  requestID,
		Outcome:    out,
		Pagination: newPagination(out.Envelope.Found, req.Page, req.Filters.EffectivePerPage()),
		Statuses:   recorder.Statuses,
	})
}

// handleSearchStream runs the two-stage search and streams its narration as
// "status" events, then a "result" (or "error") event and a final "complete".
func (s *Server) handleSearchStream(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	reporter := search.ReporterFunc(func(st search.Status) {
		if err := sse.WriteEvent(EventStatus, statusEvent{RequestID: requestID, Status: st}); err != nil {
			s.logger.Debug("status event not delivered", zap.String("request_id", requestID), zap.Error(err))
		}
	})

	out, err := s.searcher.Run(r.Context(), req.Keywords, req.Filters, req.Page, reporter)
	if err != nil {
		s.logger.Info("streamed search failed", zap.String("request_id", requestID), zap.Error(err))
		sse.WriteError(requestID, err)
		sse.WriteComplete(requestID, "failed")
		return
	}

	if err := sse.WriteEvent(EventResult, SearchResponse{
		RequestID:  requestID,
		Outcome:    out,
		Pagination: newPagination(out.Envelope.Found, req.Page, req.Filters.EffectivePerPage()),
	}); err != nil {
		s.logger.Warn("result event not delivered", zap.String("request_id", requestID), zap.Error(err))
		return
	}
	sse.WriteComplete(requestID, "completed")
}

// statusEvent is the payload of a "status" event.
type statusEvent struct {
	RequestID string `json:"request_id"`
	search.Status
}

// handleSearchLegacy runs the single-strategy search over the four-role keywords.
func (s *Server) handleSearchLegacy(w http.ResponseWriter, r *http.Request) {
	var req LegacySearchRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	mode, err := query.ParseMode(req.Mode)
	if err != nil {
		s.fail(w, r, &ErrValidation{Field: "mode", Message: err.Error()})
		return
	}

	kw := req.Keywords.Normalize()
	env, err := s.searcher.SearchLegacy(r.Context(), kw, mode, req.Filters, req.Page)
	if err != nil {
		s.failWith(w, r, err, ErrorResponse{Result: orEmpty(env)})
		return
	}

	s.jsonResponse(w, http.StatusOK, LegacySearchResponse{
		RequestID:  middleware.GetRequestID(r.Context()),
		Mode:       mode,
		Query:      query.BuildLegacy(kw, mode, req.Filters.Constraints()),
		Result:     env,
		Pagination: newPagination(env.Found, req.Page, req.Filters.EffectivePerPage()),
	})
}

func emptyResult(out *search.Outcome) *types.ResultEnvelope {
	if out == nil {
		return types.EmptyEnvelope()
	}
	return orEmpty(out.Envelope)
}

func orEmpty(env *types.ResultEnvelope) *types.ResultEnvelope {
	if env == nil {
		return types.EmptyEnvelope()
	}
	return env
}
