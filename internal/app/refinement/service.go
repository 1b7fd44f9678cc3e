package refinement

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/postcraft/internal/app/generation"
	"github.com/PabloGalante/postcraft/internal/app/presets"
	"github.com/PabloGalante/postcraft/internal/domain"
	"github.com/PabloGalante/postcraft/internal/observability"
)

// Service runs the draft / feedback / revert / reset loop on stored sessions.
type Service struct {
	store        domain.SessionStore
	orchestrator *generation.Orchestrator
	catalog      *presets.Catalog
	now          func() time.Time
	newID        func() domain.SessionID

	locks sessionLocks
}

// NewService wires a Service. A nil catalog falls back to the built-in presets.
func NewService(llm domain.TextGenerator, store domain.SessionStore, catalog *presets.Catalog) *Service {
	if catalog == nil {
		catalog = presets.Default()
	}
	return &Service{
		store:        store,
		orchestrator: generation.NewOrchestrator(llm),
		catalog:      catalog,
		now:          time.Now,
		newID:        func() domain.SessionID { return domain.SessionID(uuid.NewString()) },
		locks:        sessionLocks{m: make(map[domain.SessionID]*sessionLock)},
	}
}

// Presets exposes the catalog the service resolves preset ids against.
func (s *Service) Presets() *presets.Catalog {
	return s.catalog
}

func (s *Service) StartSession(ctx context.Context) (*domain.Session, error) {
	session := domain.NewSession(s.newID(), s.now())

	ctx = observability.WithSessionID(ctx, string(session.ID))
	log := observability.LoggerFromContext(ctx)

	if err := s.store.CreateSession(ctx, session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	log.Info("session started")
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	return s.store.GetSession(ctx, id)
}

// ErrListingUnsupported is returned by ListSessions when the store cannot enumerate.
var ErrListingUnsupported = errors.New("session store does not support listing")

// ListSessions returns the most recently updated sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, limit int) ([]*domain.Session, error) {
	lister, ok := s.store.(domain.SessionLister)
	if !ok {
		return nil, ErrListingUnsupported
	}
	return lister.ListSessions(ctx, limit)
}

type GenerateInput struct {
	SessionID domain.SessionID
	Topic     string
	// PresetTopic is a quick-topic id, used only when Topic is blank.
	PresetTopic string
}

type Output struct {
	Session *domain.Session
	Version domain.Version
}

// Generate drafts a post for a topic. The session's whole feedback history is
// replayed into the prompt, but the new version carries no feedback of its own.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (*Output, error) {
	topic, err := resolve(in.Topic, in.PresetTopic, "topic", s.catalog.Topic)
	if err != nil {
		return nil, err
	}

	ctx = observability.WithSessionID(ctx, string(in.SessionID))
	log := observability.LoggerFromContext(ctx)
	log.Info("generating post", "topic", topic)

	var version domain.Version
	session, err := s.mutate(ctx, in.SessionID, func(session *domain.Session) error {
		v, err := s.orchestrator.Generate(ctx, generation.Request{
			Topic:           topic,
			FeedbackHistory: session.FeedbackHistory,
		})
		if err != nil {
			return err
		}
		version = session.AppendVersion(v.Topic, v.Text, "", v.CreatedAt)
		return nil
	})
	if err != nil {
		log.Error("generate failed", "error", err)
		return nil, err
	}

	log.Info("post generated", "version", version.Index)
	return &Output{Session: session, Version: version}, nil
}

type FeedbackInput struct {
	SessionID domain.SessionID
	Text      string
	// Preset is a quick-feedback id. Typed text always wins over it.
	Preset string
}

// SubmitFeedback regenerates the post with one more feedback instruction. The
// topic is the one of the latest version, regardless of which version is current.
func (s *Service) SubmitFeedback(ctx context.Context, in FeedbackInput) (*Output, error) {
	feedback, err := resolve(in.Text, in.Preset, "feedback", s.catalog.FeedbackPreset)
	if err != nil {
		return nil, err
	}

	ctx = observability.WithSessionID(ctx, string(in.SessionID))
	log := observability.LoggerFromContext(ctx)
	log.Info("applying feedback", "feedback", feedback)

	var version domain.Version
	session, err := s.mutate(ctx, in.SessionID, func(session *domain.Session) error {
		latest, ok := session.LatestVersion()
		if !ok {
			return &domain.ValidationError{Field: "feedback", Message: "generate a post before giving feedback"}
		}

		history := make([]string, 0, len(session.FeedbackHistory)+1)
		history = append(history, session.FeedbackHistory...)
		history = append(history, feedback)

		v, err := s.orchestrator.Generate(ctx, generation.Request{
			Topic:           latest.Topic,
			FeedbackHistory: history,
			Trigger:         feedback,
		})
		if err != nil {
			return err
		}
		version = session.AppendVersion(v.Topic, v.Text, v.FeedbackApplied, v.CreatedAt)
		return nil
	})
	if err != nil {
		log.Error("feedback failed", "error", err)
		return nil, err
	}

	log.Info("post regenerated", "version", version.Index, "feedback_count", len(session.FeedbackHistory))
	return &Output{Session: session, Version: version}, nil
}

// Revert displays an earlier version again.
func (s *Service) Revert(ctx context.Context, id domain.SessionID, index int) (*domain.Session, error) {
	ctx = observability.WithSessionID(ctx, string(id))
	log := observability.LoggerFromContext(ctx)

	session, err := s.mutate(ctx, id, func(session *domain.Session) error {
		if err := session.RevertTo(index); err != nil {
			return err
		}
		session.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		log.Warn("revert rejected", "version", index, "error", err)
		return nil, err
	}

	log.Info("reverted", "version", index)
	return session, nil
}

// Reset clears the session history. The session keeps its id.
func (s *Service) Reset(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	ctx = observability.WithSessionID(ctx, string(id))

	session, err := s.mutate(ctx, id, func(session *domain.Session) error {
		session.Reset(s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info("session reset")
	return session, nil
}

// ExportVersion returns the text of a version for download. Index 0 means the current one.
func (s *Service) ExportVersion(ctx context.Context, id domain.SessionID, index int) (domain.Version, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return domain.Version{}, err
	}

	if index == 0 {
		index = session.CurrentVersionIndex
	}
	v, ok := session.Version(index)
	if !ok {
		return domain.Version{}, &domain.InvalidVersionError{Requested: index, Available: len(session.Versions)}
	}
	return v, nil
}

// mutate loads a session, applies fn and saves it, holding the session's lock.
// When fn fails nothing is saved.
func (s *Service) mutate(ctx context.Context, id domain.SessionID, fn func(*domain.Session) error) (*domain.Session, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// resolve picks typed text over a preset id.
func resolve(text, presetID, field string, lookup func(string) (presets.Preset, bool)) (string, error) {
	if t := strings.TrimSpace(text); t != "" {
		return t, nil
	}
	if presetID == "" {
		return "", &domain.ValidationError{Field: field, Message: "must not be empty"}
	}
	p, ok := lookup(presetID)
	if !ok {
		return "", &domain.ValidationError{Field: field, Message: "unknown preset " + presetID}
	}
	return p.Text, nil
}

// sessionLocks hands out one mutex per session id. An entry lives only while
// some caller holds or waits for it.
type sessionLocks struct {
	mu sync.Mutex
	m  map[domain.SessionID]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) lock(id domain.SessionID) func() {
	l.mu.Lock()
	e, ok := l.m[id]
	if !ok {
		e = &sessionLock{}
		l.m[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}

// held reports how many session ids currently have a lock entry.
func (l *sessionLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
