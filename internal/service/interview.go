package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/interview"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/recording"
)

// InterviewService creates and inspects interview sessions. The live
// question flow runs over the websocket; this service covers the HTTP
// side: starting a session and reading its state and results.
type InterviewService struct {
	store         domain.SessionStore
	interviews    domain.InterviewRepository
	questions     *interview.QuestionEngine
	recordingRoot string
}

func NewInterviewService(
	store domain.SessionStore,
	interviews domain.InterviewRepository,
	questions *interview.QuestionEngine,
	recordingRoot string,
) *InterviewService {
	return &InterviewService{
		store:         store,
		interviews:    interviews,
		questions:     questions,
		recordingRoot: recordingRoot,
	}
}

// StartInterviewResponse is returned to the client that opens a session.
type StartInterviewResponse struct {
	SessionID     string `json:"session_id"`
	InterviewID   int64  `json:"interview_id"`
	FirstQuestion string `json:"first_question"`
	QuestionCount int    `json:"question_count"`
	MeetingLink   string `json:"meeting_link"`
	Reused        bool   `json:"reused"`
}

func meetingLink(sessionID string) string {
	return "/interview/room/" + sessionID
}

// SessionStatus summarizes a live session.
type SessionStatus struct {
	SessionID       string   `json:"session_id"`
	InterviewID     int64    `json:"interview_id"`
	QuestionCount   int      `json:"question_count"`
	CurrentQuestion string   `json:"current_question"`
	InterviewEnded  bool     `json:"interview_ended"`
	DurationMinutes float64  `json:"duration_minutes"`
	TopicsCovered   []string `json:"topics_covered"`
	ExpertiseLevel  string   `json:"expertise_level"`
}

// StartInterview opens a session for the interview, or returns the
// existing one when the candidate refreshes mid-interview. A fresh
// session gets its recording directory and first question up front so
// the websocket join can replay immediately.
func (s *InterviewService) StartInterview(ctx context.Context, interviewID int64) (*StartInterviewResponse, error) {
	if existing, ok := s.store.GetByInterviewID(ctx, interviewID); ok && !existing.InterviewEnded {
		log.Info().
			Str("session_id", existing.SessionID).
			Int64("interview_id", interviewID).
			Msg("reusing existing interview session")
		return &StartInterviewResponse{
			SessionID:     existing.SessionID,
			InterviewID:   interviewID,
			FirstQuestion: existing.CurrentQuestion,
			QuestionCount: existing.QuestionCount,
			MeetingLink:   meetingLink(existing.SessionID),
			Reused:        true,
		}, nil
	}

	ictx, err := s.interviews.GetContext(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	sess := domain.NewInterviewSession(interviewID, ictx.JobTitle, ictx.JobDescription, ictx.Candidate, "")
	dir, err := recording.EnsureSessionDir(s.recordingRoot, sess.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare recording dir: %w", err)
	}
	sess.SetRecordingPath(dir)

	sess.CurrentQuestion = s.questions.FirstQuestion(ctx, sess)
	sess.QuestionCount = 1

	if err := s.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	log.Info().
		Str("session_id", sess.SessionID).
		Int64("interview_id", interviewID).
		Str("job_title", ictx.JobTitle).
		Msg("interview session started")

	return &StartInterviewResponse{
		SessionID:     sess.SessionID,
		InterviewID:   interviewID,
		FirstQuestion: sess.CurrentQuestion,
		QuestionCount: 1,
		MeetingLink:   meetingLink(sess.SessionID),
	}, nil
}

// Status reports the current state of a session.
func (s *InterviewService) Status(ctx context.Context, sessionID string) (*SessionStatus, error) {
	sess, ok := s.store.Get(ctx, sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &SessionStatus{
		SessionID:       sess.SessionID,
		InterviewID:     sess.InterviewID,
		QuestionCount:   sess.QuestionCount,
		CurrentQuestion: sess.CurrentQuestion,
		InterviewEnded:  sess.InterviewEnded,
		DurationMinutes: sess.DurationMinutes(),
		TopicsCovered:   sess.TopicsCovered.Items(),
		ExpertiseLevel:  sess.ExpertiseLevel,
	}, nil
}

// Results loads the persisted evaluation artifacts for a session. These
// exist once the post-interview pipeline has run; a live session has
// none yet.
func (s *InterviewService) Results(ctx context.Context, sessionID string) (*recording.SessionData, error) {
	dir := recording.SessionDir(s.recordingRoot, sessionID)
	if sess, ok := s.store.Get(ctx, sessionID); ok && sess.RecordingPath != "" {
		dir = sess.RecordingPath
	}
	data, err := recording.LoadSessionData(dir)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ResultsByInterview resolves the interview's session through the
// reverse index, then loads its artifacts. Sessions are created only on
// StartInterview; a read for an interview that never started is a miss.
func (s *InterviewService) ResultsByInterview(ctx context.Context, interviewID int64) (*recording.SessionData, error) {
	sess, ok := s.store.GetByInterviewID(ctx, interviewID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s.Results(ctx, sess.SessionID)
}

// SessionIDForInterview resolves the live session for an interview.
func (s *InterviewService) SessionIDForInterview(ctx context.Context, interviewID int64) (string, bool) {
	sess, ok := s.store.GetByInterviewID(ctx, interviewID)
	if !ok {
		return "", false
	}
	return sess.SessionID, true
}
