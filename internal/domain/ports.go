package domain

import "context"

// TextGenerator is the chat-completion capability used to draft posts.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// SessionStore defines session's persistence.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	SaveSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id SessionID) (*Session, error)
}

// SessionLister is implemented by stores that can enumerate sessions, newest first.
type SessionLister interface {
	ListSessions(ctx context.Context, limit int) ([]*Session, error)
}
