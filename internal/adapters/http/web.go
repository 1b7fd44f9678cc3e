package httpadapter

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/PabloGalante/postcraft/internal/app/presets"
	"github.com/PabloGalante/postcraft/internal/app/refinement"
	"github.com/PabloGalante/postcraft/internal/domain"
	"github.com/PabloGalante/postcraft/internal/observability"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionCookie = "postcraft_session"

var notices = map[string]string{
	"generated": "Post generated successfully!",
	"updated":   "Post updated!",
	"reverted":  "Earlier version restored.",
	"reset":     "Session cleared.",
}

type webUI struct {
	page *template.Template
}

func newWebUI() *webUI {
	page := template.Must(template.New("index.html").Funcs(template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}).ParseFS(templateFS, "templates/index.html"))
	return &webUI{page: page}
}

type pageData struct {
	Layout string

	Session  sessionResponse
	Current  *versionResponse
	History  []versionResponse // newest first
	Topics   []presets.Preset
	Feedback []presets.Preset

	TopicValue    string
	FeedbackValue string

	Notice string
	Error  string
}

// lookupSession returns the session bound to the browser. Without a usable
// cookie it returns an empty, unsaved session (ID "") so that read-only pages
// never write to the store.
func (s *Server) lookupSession(r *http.Request) (*domain.Session, error) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		session, err := s.svc.GetSession(r.Context(), domain.SessionID(c.Value))
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
	}
	return domain.NewSession("", time.Now()), nil
}

// session is lookupSession for form posts: a browser without a stored session
// gets one started and bound to its cookie.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*domain.Session, error) {
	session, err := s.lookupSession(r)
	if err != nil || session.ID != "" {
		return session, err
	}

	session, err = s.svc.StartSession(r.Context())
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    string(session.ID),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return session, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, session *domain.Session, data pageData) {
	view := toSessionResponse(session)

	data.Layout = s.opts.Layout
	data.Session = view
	data.Current = view.Current
	data.Topics = s.svc.Presets().Topics
	data.Feedback = s.svc.Presets().Feedback
	for i := len(view.Versions) - 1; i >= 0; i-- {
		data.History = append(data.History, view.Versions[i])
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.web.page.Execute(w, data); err != nil {
		observability.LoggerFromContext(r.Context()).Error("rendering page", "error", err)
	}
}

// renderError shows err as a flash message and keeps what the user typed.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, session *domain.Session, err error, data pageData) {
	status, _ := errorStatus(err)
	data.Error = err.Error()
	if status == http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error("ui request failed", "error", err)
		data.Error = "Something went wrong, please try again."
	}
	s.render(w, r, status, session, data)
}

func redirectHome(w http.ResponseWriter, r *http.Request, notice string) {
	http.Redirect(w, r, "/?notice="+notice, http.StatusSeeOther)
}

// ─────────────────────────────────────────────
// Page handlers
// ─────────────────────────────────────────────

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	session, err := s.lookupSession(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data := pageData{Notice: notices[r.URL.Query().Get("notice")]}
	// Quick topics prefill the topic box; the user still presses Generate.
	if p, ok := s.svc.Presets().Topic(r.URL.Query().Get("topic")); ok {
		data.TopicValue = p.Text
	}
	s.render(w, r, http.StatusOK, session, data)
}

func (s *Server) handleUIGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	session, err := s.session(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	topic := r.PostFormValue("topic")
	_, err = s.svc.Generate(r.Context(), refinement.GenerateInput{
		SessionID:   session.ID,
		Topic:       topic,
		PresetTopic: r.PostFormValue("preset_topic"),
	})
	if err != nil {
		s.renderError(w, r, session, err, pageData{TopicValue: topic})
		return
	}
	redirectHome(w, r, "generated")
}

func (s *Server) handleUIFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	session, err := s.session(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	feedback := r.PostFormValue("feedback")
	_, err = s.svc.SubmitFeedback(r.Context(), refinement.FeedbackInput{
		SessionID: session.ID,
		Text:      feedback,
		Preset:    r.PostFormValue("preset"),
	})
	if err != nil {
		s.renderError(w, r, session, err, pageData{FeedbackValue: feedback})
		return
	}
	redirectHome(w, r, "updated")
}

func (s *Server) handleUIRevert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	session, err := s.session(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	n, err := strconv.Atoi(r.PostFormValue("version"))
	if err != nil {
		s.renderError(w, r, session, &domain.ValidationError{Field: "version", Message: "must be a number"}, pageData{})
		return
	}
	if _, err := s.svc.Revert(r.Context(), session.ID, n); err != nil {
		s.renderError(w, r, session, err, pageData{})
		return
	}
	redirectHome(w, r, "reverted")
}

func (s *Server) handleUIReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	session, err := s.session(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.svc.Reset(r.Context(), session.ID); err != nil {
		s.renderError(w, r, session, err, pageData{})
		return
	}
	redirectHome(w, r, "reset")
}

func (s *Server) handleUIDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	session, err := s.lookupSession(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	n := 0
	if v := r.URL.Query().Get("version"); v != "" {
		if n, err = strconv.Atoi(v); err != nil {
			badRequest(w, "version must be a number")
			return
		}
	}

	if session.ID == "" {
		s.renderError(w, r, session, &domain.InvalidVersionError{Requested: n}, pageData{})
		return
	}
	version, err := s.svc.ExportVersion(r.Context(), session.ID, n)
	if err != nil {
		s.renderError(w, r, session, err, pageData{})
		return
	}
	writeText(w, version)
}
