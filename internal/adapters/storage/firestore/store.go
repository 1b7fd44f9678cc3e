package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/postcraft/internal/domain"
)

// Store keeps each session, with its versions and feedback, in one document so
// that a save is a single atomic write.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (POSTCRAFT_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("sessions")
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type sessionDoc struct {
	CreatedAt           time.Time    `firestore:"created_at"`
	UpdatedAt           time.Time    `firestore:"updated_at"`
	CurrentVersionIndex int          `firestore:"current_version_index"`
	FeedbackHistory     []string     `firestore:"feedback_history"`
	Versions            []versionDoc `firestore:"versions"`
}

type versionDoc struct {
	Index           int       `firestore:"index"`
	Topic           string    `firestore:"topic"`
	Text            string    `firestore:"text"`
	FeedbackApplied string    `firestore:"feedback_applied,omitempty"`
	CreatedAt       time.Time `firestore:"created_at"`
}

func toDoc(session *domain.Session) sessionDoc {
	versions := make([]versionDoc, 0, len(session.Versions))
	for _, v := range session.Versions {
		versions = append(versions, versionDoc{
			Index:           v.Index,
			Topic:           v.Topic,
			Text:            v.Text,
			FeedbackApplied: v.FeedbackApplied,
			CreatedAt:       v.CreatedAt,
		})
	}

	feedback := session.FeedbackHistory
	if feedback == nil {
		feedback = []string{}
	}

	return sessionDoc{
		CreatedAt:           session.CreatedAt,
		UpdatedAt:           session.UpdatedAt,
		CurrentVersionIndex: session.CurrentVersionIndex,
		FeedbackHistory:     feedback,
		Versions:            versions,
	}
}

func fromDoc(id domain.SessionID, doc sessionDoc) *domain.Session {
	session := &domain.Session{
		ID:                  id,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
		CurrentVersionIndex: doc.CurrentVersionIndex,
		FeedbackHistory:     append([]string{}, doc.FeedbackHistory...),
		Versions:            make([]domain.Version, 0, len(doc.Versions)),
	}
	for _, v := range doc.Versions {
		session.Versions = append(session.Versions, domain.Version{
			Index:           v.Index,
			Topic:           v.Topic,
			Text:            v.Text,
			FeedbackApplied: v.FeedbackApplied,
			CreatedAt:       v.CreatedAt,
		})
	}
	return session
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.sessionDoc(session.ID).Create(ctx, toDoc(session))
	if err != nil {
		return fmt.Errorf("firestore CreateSession: %w", err)
	}
	return nil
}

func (s *Store) SaveSession(ctx context.Context, session *domain.Session) error {
	ref := s.sessionDoc(session.ID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, toDoc(session))
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, session.ID)
		}
		return fmt.Errorf("firestore SaveSession: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	snap, err := s.sessionDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}

	return fromDoc(id, doc), nil
}

func (s *Store) ListSessions(ctx context.Context, limit int) ([]*domain.Session, error) {
	q := s.sessionsCol().OrderBy("updated_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Session
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore ListSessions: %w", err)
		}

		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode sessionDoc: %w", err)
		}

		out = append(out, fromDoc(domain.SessionID(snap.Ref.ID), doc))
	}
	return out, nil
}
