package domain

import "context"

// SessionStore persists interview sessions keyed by session id, with a
// secondary lookup by interview id. Implementations must treat backend
// failures on reads as absence rather than surfacing errors to callers.
type SessionStore interface {
	// Put stores the session and refreshes its TTL. The interview-id
	// index is updated alongside the primary record.
	Put(ctx context.Context, session *InterviewSession) error
	// Get returns the session, or false if absent or unreadable.
	Get(ctx context.Context, sessionID string) (*InterviewSession, bool)
	// GetByInterviewID resolves the interview-id index then loads the
	// session. A dangling index entry reads as absent.
	GetByInterviewID(ctx context.Context, interviewID int64) (*InterviewSession, bool)
	// Remove deletes the session and its index entry, reporting whether
	// a record existed.
	Remove(ctx context.Context, sessionID string) bool
	// Exists reports whether a session record is present.
	Exists(ctx context.Context, sessionID string) bool
	// ListAll returns every live session keyed by session id. Used by
	// the cleanup sweep; not a hot path.
	ListAll(ctx context.Context) map[string]*InterviewSession
}

// InterviewContext is the job and candidate data fetched to seed a session.
type InterviewContext struct {
	JobTitle       string
	JobDescription string
	Candidate      CandidateBackground
}

// InterviewRepository reads and updates the durable interview records that
// outlive sessions.
type InterviewRepository interface {
	GetContext(ctx context.Context, interviewID int64) (*InterviewContext, error)
	// MarkCompleted sets the interview status to completed and records
	// where the finalized recording can be fetched.
	MarkCompleted(ctx context.Context, interviewID int64, recordingURL string) error
}
