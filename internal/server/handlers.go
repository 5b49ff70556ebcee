package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/areas"
	"github.com/jonathan/talent-search/internal/keywords"
	"github.com/jonathan/talent-search/internal/query"
	"github.com/jonathan/talent-search/internal/server/middleware"
	"github.com/jonathan/talent-search/internal/types"
)

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAreas returns the region dictionary. A failed load still answers 200
// with the built-in fallback list and fallback=true.
func (s *Server) handleAreas(w http.ResponseWriter, r *http.Request) {
	list, err := s.areas.Get(r.Context())
	resp := AreasResponse{Areas: list}
	if err != nil {
		s.logger.Warn("area dictionary unavailable, serving fallback",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		resp.Fallback = true
		if len(resp.Areas) == 0 {
			resp.Areas = areas.Fallback()
		}
	}
	resp.DefaultIndex = areas.DefaultIndex(resp.Areas, r.URL.Query().Get("name"))
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleListVacancies lists the employer's active vacancies, split into the
// caller's own and the rest.
func (s *Server) handleListVacancies(w http.ResponseWriter, r *http.Request) {
	employerID := strings.TrimSpace(r.URL.Query().Get("employer_id"))
	if employerID == "" {
		employerID = s.employerID
	}
	if employerID == "" {
		s.fail(w, r, &ErrValidation{Field: "employer_id", Message: "is required"})
		return
	}

	me, err := s.vacancies.Me(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.vacancies.ActiveVacancies(r.Context(), employerID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	mine, others := types.PartitionVacancies(list, me.ID)
	s.jsonResponse(w, http.StatusOK, VacanciesResponse{UserID: me.ID, Mine: mine, Others: others})
}

// handleGetVacancy returns one vacancy.
func (s *Server) handleGetVacancy(w http.ResponseWriter, r *http.Request) {
	v, err := s.vacancies.Vacancy(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, VacancyResponse{
		Vacancy:         v,
		DescriptionText: keywords.DescriptionText(v.Description),
	})
}

// handleVacancyKeywords extracts (or recalls) the keywords of a vacancy.
// ?legacy=true selects the four-role structure.
func (s *Server) handleVacancyKeywords(w http.ResponseWriter, r *http.Request) {
	legacy, err := boolParam(r, "legacy")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	v, err := s.vacancies.Vacancy(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp, err := s.extract(r, keywords.VacancyKey(v.ID), v.Name, v.Description, legacy)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp.VacancyID = v.ID
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleKeywords extracts keywords from a pasted vacancy name and description.
func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	var req KeywordsRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	key := keywords.KeyFor("", req.Name, req.Description)
	resp, err := s.extract(r, key, req.Name, req.Description, req.Legacy)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) extract(r *http.Request, key keywords.Key, name, description string, legacy bool) (*KeywordsResponse, error) {
	resp := &KeywordsResponse{Name: name}
	if legacy {
		kw, err := s.keywords.LegacyKeywords(r.Context(), key, name, description)
		if err != nil {
			return nil, err
		}
		resp.LegacyKeywords = kw
		resp.Query = query.BuildLegacy(*kw, query.DefaultMode, types.Constraints{})
		return resp, nil
	}

	kw, err := s.keywords.Keywords(r.Context(), key, name, description)
	if err != nil {
		return nil, err
	}
	plan := query.PlanFor(*kw, types.Constraints{})
	resp.Keywords = kw
	resp.Plan = &plan
	resp.Query = plan.Ideal
	return resp, nil
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, body ErrorResponse) {
	s.jsonResponse(w, status, body)
}

// fail maps err to a status code and writes the error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.failWith(w, r, err, ErrorResponse{})
}

// failWith is fail with extra body fields (the empty envelope, status narration).
func (s *Server) failWith(w http.ResponseWriter, r *http.Request, err error, body ErrorResponse) {
	status := HTTPStatus(err)
	body.Error = err.Error()
	body.Code = errorCode(err)
	body.RequestID = middleware.GetRequestID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", body.RequestID),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	s.errorResponse(w, status, body)
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &ErrValidation{Field: name, Message: "must be a boolean"}
	}
	return v, nil
}
