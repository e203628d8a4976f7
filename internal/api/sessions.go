package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/scribe/internal/llm"
	"github.com/MikeSquared-Agency/scribe/internal/preference"
	"github.com/MikeSquared-Agency/scribe/internal/render"
	"github.com/MikeSquared-Agency/scribe/internal/review"
	"github.com/MikeSquared-Agency/scribe/internal/session"
	"github.com/MikeSquared-Agency/scribe/internal/synth"
)

type createSessionRequest struct {
	ID           string `json:"id,omitempty"`
	OriginalText string `json:"original_text"`
	ImprovedText string `json:"improved_text"`
	Language     string `json:"language"`
}

type sessionResponse struct {
	ID          string       `json:"id"`
	Language    string       `json:"language"`
	CurrentText string       `json:"current_text"`
	State       review.State `json:"state"`
}

type suggestRequest struct {
	Phase      string `json:"phase"`
	QuestionID string `json:"question_id"`
}

type answersRequest struct {
	Responses []preference.Response `json:"responses"`
}

type synthesizeRequest struct {
	UseOriginalAsBase bool `json:"use_original_as_base"`
}

type synthesizeResponse struct {
	NewText string   `json:"new_text"`
	Changes []string `json:"changes"`
	HTML    string   `json:"html,omitempty"`
}

type acceptRequest struct {
	Text string `json:"text"`
}

func respond(w http.ResponseWriter, code int, o *review.Orchestrator, state review.State) {
	doc := o.Document()
	writeJSON(w, code, sessionResponse{
		ID:          doc.ID,
		Language:    doc.Language,
		CurrentText: o.CurrentText(),
		State:       state,
	})
}

// lookup resolves {id} or writes a 404.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*review.Orchestrator, bool) {
	o, err := s.deps.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return o, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// createSession handles POST /api/v1/sessions
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decode(w, r, &req) {
		return
	}

	o, err := s.deps.Sessions.Create(review.Document{
		ID:           req.ID,
		OriginalText: req.OriginalText,
		ImprovedText: req.ImprovedText,
		Language:     req.Language,
	})
	switch {
	case errors.Is(err, session.ErrNoText):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, session.ErrExists):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond(w, http.StatusCreated, o, o.State())
}

// getSession handles GET /api/v1/sessions/{id}
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, o, o.State())
}

// getQuestions handles GET /api/v1/questions/{phase}?language=
func (s *Server) getQuestions(w http.ResponseWriter, r *http.Request) {
	phase, err := preference.ParsePhase(chi.URLParam(r, "phase"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pq, ok := s.deps.Catalog.Lookup(r.URL.Query().Get("language"), phase)
	if !ok {
		writeError(w, http.StatusNotFound, "no questions for phase")
		return
	}
	writeJSON(w, http.StatusOK, pq)
}

// suggest handles POST /api/v1/sessions/{id}/suggestions
func (s *Server) suggest(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req suggestRequest
	if !decode(w, r, &req) {
		return
	}
	phase, err := preference.ParsePhase(req.Phase)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := o.Document()
	q, found := s.deps.Catalog.Find(doc.Language, phase, req.QuestionID)
	if !found {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	suggestions, err := s.deps.Suggester.Suggest(r.Context(), q, doc.OriginalText)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"question_id": q.ID,
		"suggestions": suggestions,
	})
}

// submitAnswers handles POST /api/v1/sessions/{id}/phases/{phase}/answers
func (s *Server) submitAnswers(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	phase, err := preference.ParsePhase(chi.URLParam(r, "phase"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req answersRequest
	if !decode(w, r, &req) {
		return
	}

	state, err := o.SubmitPhaseAnswers(r.Context(), phase, req.Responses)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, o, state)
}

// removeStatement handles DELETE /api/v1/sessions/{id}/statements/{statementID}
func (s *Server) removeStatement(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "statementID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid statement id")
		return
	}
	respond(w, http.StatusOK, o, o.RemoveStatement(id))
}

// advance handles POST /api/v1/sessions/{id}/advance
func (s *Server) advance(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, o, o.AdvancePhase())
}

// synthesize handles POST /api/v1/sessions/{id}/synthesize
func (s *Server) synthesize(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	res, err := o.RequestSynthesis(r.Context(), req.UseOriginalAsBase)
	if err != nil {
		body := map[string]string{"error": synth.ErrSynthesisFailed.Error()}
		if detail := providerDetail(err); detail != "" {
			body["detail"] = detail
		}
		writeJSON(w, http.StatusBadGateway, body)
		return
	}

	resp := synthesizeResponse{NewText: res.NewText, Changes: res.Changes}
	if html, err := render.HTML(res.NewText); err == nil {
		resp.HTML = html
	} else {
		s.logger.Warn("failed to render rewrite preview", "error", err)
	}

	if s.deps.Events != nil {
		s.deps.Events.RewriteProposed(r.Context(), o.Document().ID, req.UseOriginalAsBase, res)
	}
	writeJSON(w, http.StatusOK, resp)
}

// providerDetail names a known provider failure for the user.
func providerDetail(err error) string {
	for _, sentinel := range []error{llm.ErrInvalidCredential, llm.ErrQuotaExceeded, llm.ErrSafetyBlocked, llm.ErrPermissionDenied, llm.ErrEmptyResponse} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ""
}

// accept handles POST /api/v1/sessions/{id}/accept
func (s *Server) accept(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req acceptRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	state := o.AcceptRewrite(req.Text)
	if s.deps.Events != nil {
		s.deps.Events.RewriteAccepted(r.Context(), o.Document().ID, req.Text)
	}
	respond(w, http.StatusOK, o, state)
}
