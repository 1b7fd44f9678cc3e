package domain

import "unicode/utf8"

// Version is one generated post. It is never modified after it has been appended to a Session.
type Version struct {
	Index     int
	Topic     string
	Text      string
	CreatedAt Timestamp

	// FeedbackApplied is the instruction that triggered this version; empty for a topic-only generation.
	FeedbackApplied string
}

// HasFeedback reports whether the version was produced by a feedback regeneration.
func (v Version) HasFeedback() bool {
	return v.FeedbackApplied != ""
}

// CharCount is the length of the post as a reader counts it.
func (v Version) CharCount() int {
	return utf8.RuneCountInString(v.Text)
}

// Session holds the drafting history of one user.
//
// Versions and FeedbackHistory are append-only. CurrentVersionIndex is 1-based and
// 0 while no version exists; reverting moves it without touching either slice.
type Session struct {
	ID        SessionID
	CreatedAt Timestamp
	UpdatedAt Timestamp

	Versions            []Version
	FeedbackHistory     []string
	CurrentVersionIndex int
}

// NewSession returns an empty session.
func NewSession(id SessionID, now Timestamp) *Session {
	return &Session{
		ID:              id,
		CreatedAt:       now,
		UpdatedAt:       now,
		Versions:        []Version{},
		FeedbackHistory: []string{},
	}
}

// IterationCount is always len(Versions).
func (s *Session) IterationCount() int {
	return len(s.Versions)
}

// AppendVersion records a new version and makes it current.
// A non-empty feedbackApplied is appended to FeedbackHistory as well.
func (s *Session) AppendVersion(topic, text, feedbackApplied string, now Timestamp) Version {
	v := Version{
		Index:           len(s.Versions) + 1,
		Topic:           topic,
		Text:            text,
		CreatedAt:       now,
		FeedbackApplied: feedbackApplied,
	}

	s.Versions = append(s.Versions, v)
	if feedbackApplied != "" {
		s.FeedbackHistory = append(s.FeedbackHistory, feedbackApplied)
	}
	s.CurrentVersionIndex = v.Index
	s.UpdatedAt = now

	return v
}

// RevertTo makes an earlier version current. Nothing is truncated.
func (s *Session) RevertTo(index int) error {
	if index < 1 || index > len(s.Versions) {
		return &InvalidVersionError{Requested: index, Available: len(s.Versions)}
	}
	s.CurrentVersionIndex = index
	return nil
}

// Reset brings the session back to its creation state. The ID is kept.
func (s *Session) Reset(now Timestamp) {
	s.Versions = []Version{}
	s.FeedbackHistory = []string{}
	s.CurrentVersionIndex = 0
	s.UpdatedAt = now
}

// Version returns the version with the given 1-based index.
func (s *Session) Version(index int) (Version, bool) {
	if index < 1 || index > len(s.Versions) {
		return Version{}, false
	}
	return s.Versions[index-1], true
}

// CurrentVersion returns the displayed version, if any.
func (s *Session) CurrentVersion() (Version, bool) {
	return s.Version(s.CurrentVersionIndex)
}

// LatestVersion returns the most recently generated version, which may differ
// from the current one after a revert.
func (s *Session) LatestVersion() (Version, bool) {
	return s.Version(len(s.Versions))
}

// Clone returns a deep copy so that stores can hand sessions out without sharing slices.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Versions = append(make([]Version, 0, len(s.Versions)), s.Versions...)
	out.FeedbackHistory = append(make([]string, 0, len(s.FeedbackHistory)), s.FeedbackHistory...)
	return &out
}
