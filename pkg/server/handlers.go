package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"veridian-hq/callisto/pkg/decision"
	"veridian-hq/callisto/pkg/hierarchy"
	"veridian-hq/callisto/pkg/store"
	"veridian-hq/callisto/pkg/tiered"
)

// errorResponse is the JSON shape of every API error.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeServiceError maps the error taxonomy to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, decision.ErrMalformedInput):
		writeError(w, http.StatusBadRequest, "malformed_input", err.Error())
	case errors.Is(err, hierarchy.ErrUnknownNode):
		writeError(w, http.StatusBadRequest, "unknown_node", err.Error())
	case errors.Is(err, tiered.ErrEvaluationUnavailable), errors.Is(err, hierarchy.ErrNoHierarchy):
		writeError(w, http.StatusServiceUnavailable, "evaluation_unavailable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// evaluateRequest is the evaluation API request body.
type evaluateRequest struct {
	SubjectID   string `json:"subjectId"`
	RequesterID string `json:"requesterId"`
}

// evaluateResponse is the evaluation API response body.
type evaluateResponse struct {
	Decision         string `json:"decision"`
	CacheHit         bool   `json:"cacheHit"`
	UsingTrustedExec bool   `json:"usingTrustedExec"`
	Path             string `json:"path"`
	PolicyVersion    string `json:"policyVersion"`
	LatencyMs        int64  `json:"latencyMs"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_input", "invalid JSON body")
		return
	}
	if req.SubjectID == "" || req.RequesterID == "" {
		writeError(w, http.StatusBadRequest, "malformed_input", "subjectId and requesterId are required")
		return
	}

	out, err := s.service.Evaluate(r.Context(), req.SubjectID, req.RequesterID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		Decision:         string(out.Decision),
		CacheHit:         out.CacheHit,
		UsingTrustedExec: out.UsingTrustedExec,
		Path:             out.Path,
		PolicyVersion:    out.PolicyVersion,
		LatencyMs:        out.Latency.Milliseconds(),
	})
}

// policyDocument is the policy admin wire shape.
type policyDocument struct {
	Attributes []hierarchy.Node `json:"attributes"`
	Purposes   []hierarchy.Node `json:"purposes"`
}

// policyResponse wraps a policy document with its version token.
type policyResponse struct {
	Version    string           `json:"version"`
	Attributes []hierarchy.Node `json:"attributes"`
	Purposes   []hierarchy.Node `json:"purposes"`
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	h, version, err := s.service.GetPolicy()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, policyResponse{
		Version:    version,
		Attributes: h.Attributes().Nodes(),
		Purposes:   h.Purposes().Nodes(),
	})
}

func (s *Server) handlePutPolicy(w http.ResponseWriter, r *http.Request) {
	var doc policyDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_input", "invalid JSON body")
		return
	}

	h, err := hierarchy.New(doc.Attributes, doc.Purposes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_policy", err.Error())
		return
	}

	version, err := s.service.ReplacePolicy(h)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"version": version})
}

func (s *Server) handlePutSubject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var subject store.Subject
	if err := json.NewDecoder(r.Body).Decode(&subject); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_input", "invalid JSON body")
		return
	}
	subject.ID = id

	if err := s.service.SaveSubject(r.Context(), &subject); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleGetSubject(w http.ResponseWriter, r *http.Request) {
	subject, err := s.service.GetSubject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subject)
}

func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteSubject(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.service.ListSubjects(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if subjects == nil {
		subjects = []*store.Subject{}
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (s *Server) handlePutPreference(w http.ResponseWriter, r *http.Request) {
	var pref decision.Preference
	if err := json.NewDecoder(r.Body).Decode(&pref); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_input", "invalid JSON body")
		return
	}

	if err := s.service.UpdatePreference(r.Context(), r.PathValue("id"), pref); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePutRequester(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var requester store.Requester
	if err := json.NewDecoder(r.Body).Decode(&requester); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_input", "invalid JSON body")
		return
	}
	requester.ID = id

	if err := s.service.SaveRequester(r.Context(), &requester); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleGetRequester(w http.ResponseWriter, r *http.Request) {
	requester, err := s.service.GetRequester(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requester)
}

func (s *Server) handleDeleteRequester(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteRequester(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRequesters(w http.ResponseWriter, r *http.Request) {
	requesters, err := s.service.ListRequesters(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if requesters == nil {
		requesters = []*store.Requester{}
	}
	writeJSON(w, http.StatusOK, requesters)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, version, err := s.service.GetPolicy()
	status := "ok"
	if err != nil {
		status = "no_policy"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":        status,
		"policyVersion": version,
		"time":          time.Now().UTC().Format(time.RFC3339),
	})
}
