package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PabloGalante/postcraft/internal/app/refinement"
	"github.com/PabloGalante/postcraft/internal/domain"
	"github.com/PabloGalante/postcraft/internal/observability"
)

// Options tunes the presentation without changing behavior.
type Options struct {
	// Layout is "desktop" (quick topics beside the topic box) or "mobile" (quick topics in the sidebar).
	Layout string
	// SecureCookies marks the session cookie Secure, for deployments behind TLS.
	SecureCookies bool
}

type Server struct {
	svc  *refinement.Service
	opts Options
	web  *webUI
}

func NewServer(svc *refinement.Service, opts Options) http.Handler {
	if opts.Layout == "" {
		opts.Layout = "desktop"
	}
	s := &Server{svc: svc, opts: opts, web: newWebUI()}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/presets", s.handlePresets)

	// /sessions → create (POST) or list (GET)
	mux.HandleFunc("/sessions", s.handleSessions)

	// /sessions/{id}[/generate|/feedback|/revert|/reset|/versions/{n}/text]
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	// browser UI
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ui/generate", s.handleUIGenerate)
	mux.HandleFunc("/ui/feedback", s.handleUIFeedback)
	mux.HandleFunc("/ui/revert", s.handleUIRevert)
	mux.HandleFunc("/ui/reset", s.handleUIReset)
	mux.HandleFunc("/ui/download", s.handleUIDownload)

	return chainMiddlewares(mux,
		withRecovery,
		withLogging,
		withRequestID,
		withCORS,
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type generateRequest struct {
	Topic       string `json:"topic"`
	PresetTopic string `json:"preset_topic,omitempty"`
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
	Preset   string `json:"preset,omitempty"`
}

type revertRequest struct {
	Version int `json:"version"`
}

type versionResponse struct {
	Index           int       `json:"index"`
	Topic           string    `json:"topic"`
	Text            string    `json:"text"`
	CharCount       int       `json:"char_count"`
	FeedbackApplied string    `json:"feedback_applied,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type sessionResponse struct {
	ID                  string            `json:"id"`
	CurrentVersionIndex int               `json:"current_version_index"`
	IterationCount      int               `json:"iteration_count"`
	Current             *versionResponse  `json:"current,omitempty"`
	Versions            []versionResponse `json:"versions"`
	FeedbackHistory     []string          `json:"feedback_history"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

type sessionSummary struct {
	ID             string    `json:"id"`
	IterationCount int       `json:"iteration_count"`
	FeedbackCount  int       `json:"feedback_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Presets())
}

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	case http.MethodGet:
		s.handleListSessions(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")
	id := domain.SessionID(parts[0])

	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleGetSession(w, r, id)

	case len(parts) == 2:
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		switch parts[1] {
		case "generate":
			s.handleGenerate(w, r, id)
		case "feedback":
			s.handleFeedback(w, r, id)
		case "revert":
			s.handleRevert(w, r, id)
		case "reset":
			s.handleReset(w, r, id)
		default:
			http.NotFound(w, r)
		}

	case len(parts) == 4 && parts[1] == "versions" && parts[3] == "text":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			badRequest(w, "version must be a number")
			return
		}
		s.handleDownload(w, r, id, n)

	default:
		http.NotFound(w, r)
	}
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.svc.StartSession(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative number")
			return
		}
		limit = n
	}

	sessions, err := s.svc.ListSessions(r.Context(), limit)
	if err != nil {
		if errors.Is(err, refinement.ErrListingUnsupported) {
			writeJSON(w, http.StatusNotImplemented, errorResponse{Error: err.Error(), Kind: "unsupported"})
			return
		}
		writeError(w, r, err)
		return
	}

	out := make([]sessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionSummary{
			ID:             string(sess.ID),
			IterationCount: sess.IterationCount(),
			FeedbackCount:  len(sess.FeedbackHistory),
			UpdatedAt:      sess.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	session, err := s.svc.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	out, err := s.svc.Generate(r.Context(), refinement.GenerateInput{
		SessionID:   id,
		Topic:       req.Topic,
		PresetTopic: req.PresetTopic,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(out.Session))
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	out, err := s.svc.SubmitFeedback(r.Context(), refinement.FeedbackInput{
		SessionID: id,
		Text:      req.Feedback,
		Preset:    req.Preset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(out.Session))
}

func (s *Server) handleRevert(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	var req revertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	session, err := s.svc.Revert(r.Context(), id, req.Version)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	session, err := s.svc.Reset(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request, id domain.SessionID, n int) {
	v, err := s.svc.ExportVersion(r.Context(), id, n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeText(w, v)
}

// ─────────────────────────────────────────────
// Session Helpers
// ─────────────────────────────────────────────

func toVersionResponse(v domain.Version) versionResponse {
	return versionResponse{
		Index:           v.Index,
		Topic:           v.Topic,
		Text:            v.Text,
		CharCount:       v.CharCount(),
		FeedbackApplied: v.FeedbackApplied,
		CreatedAt:       v.CreatedAt,
	}
}

func toSessionResponse(s *domain.Session) sessionResponse {
	resp := sessionResponse{
		ID:                  string(s.ID),
		CurrentVersionIndex: s.CurrentVersionIndex,
		IterationCount:      s.IterationCount(),
		Versions:            make([]versionResponse, 0, len(s.Versions)),
		FeedbackHistory:     append([]string{}, s.FeedbackHistory...),
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
	for _, v := range s.Versions {
		resp.Versions = append(resp.Versions, toVersionResponse(v))
	}
	if cur, ok := s.CurrentVersion(); ok {
		c := toVersionResponse(cur)
		resp.Current = &c
	}
	return resp
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, v domain.Version) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="linkedin_post_v%d.txt"`, v.Index))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(v.Text))
}

// errorStatus maps a service error to its HTTP status and kind.
func errorStatus(err error) (int, string) {
	var (
		ve  *domain.ValidationError
		ive *domain.InvalidVersionError
		gf  *domain.GenerationFailure
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "validation"
	case errors.As(err, &ive):
		return http.StatusBadRequest, "invalid_version"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &gf):
		return http.StatusBadGateway, "generation_failure"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := errorStatus(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: "validation"})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Kind: "validation"})
}
