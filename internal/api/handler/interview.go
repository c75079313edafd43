package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/api/response"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/recording"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/service"
)

var validate = validator.New()

type InterviewHandler struct {
	svc           *service.InterviewService
	recordingRoot string
}

func NewInterviewHandler(svc *service.InterviewService, recordingRoot string) *InterviewHandler {
	return &InterviewHandler{svc: svc, recordingRoot: recordingRoot}
}

// Start opens (or resumes) the session for an interview.
func (h *InterviewHandler) Start(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := interviewParam(w, r)
	if !ok {
		return
	}

	// The body is optional; clients that stream audio server-side
	// declare it up front.
	var req struct {
		SpeechMode string `json:"speech_mode" validate:"omitempty,oneof=browser server"`
	}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, "speech_mode must be browser or server")
		return
	}

	resp, err := h.svc.StartInterview(r.Context(), interviewID)
	if err != nil {
		if errors.Is(err, domain.ErrInterviewNotFound) {
			response.NotFound(w, "Interview not found")
			return
		}
		log.Error().Err(err).Int64("interview_id", interviewID).Msg("failed to start interview")
		response.InternalError(w, "Failed to start interview")
		return
	}

	if resp.Reused {
		response.OK(w, resp)
		return
	}
	response.Created(w, resp)
}

// Status returns the live state of a session.
func (h *InterviewHandler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	status, err := h.svc.Status(r.Context(), sessionID)
	if err != nil {
		response.NotFound(w, "Session not found")
		return
	}
	response.OK(w, status)
}

// SessionData returns the persisted evaluation artifacts for a session.
func (h *InterviewHandler) SessionData(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	data, err := h.svc.Results(r.Context(), sessionID)
	h.writeSessionData(w, data, err, sessionID)
}

// InterviewData resolves the session through the interview reverse index
// and returns the same artifacts.
func (h *InterviewHandler) InterviewData(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := interviewParam(w, r)
	if !ok {
		return
	}
	data, err := h.svc.ResultsByInterview(r.Context(), interviewID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		response.NotFound(w, "No session for this interview")
		return
	}
	h.writeSessionData(w, data, err, strconv.FormatInt(interviewID, 10))
}

func (h *InterviewHandler) writeSessionData(w http.ResponseWriter, data *recording.SessionData, err error, key string) {
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to load session data")
		response.InternalError(w, "Failed to load session data")
		return
	}
	if data.Evaluation == nil && data.Transcript == "" {
		response.NotFound(w, "No results yet")
		return
	}
	response.OK(w, data)
}

// Recording streams a finalized recording file. Falls back to the raw
// webm when finalization has not produced an mp4 yet.
func (h *InterviewHandler) Recording(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	h.serveRecording(w, r, sessionID)
}

// InterviewRecording is Recording keyed by interview id.
func (h *InterviewHandler) InterviewRecording(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := interviewParam(w, r)
	if !ok {
		return
	}
	sessionID, found := h.svc.SessionIDForInterview(r.Context(), interviewID)
	if !found {
		response.NotFound(w, "No session for this interview")
		return
	}
	h.serveRecording(w, r, sessionID)
}

func (h *InterviewHandler) serveRecording(w http.ResponseWriter, r *http.Request, sessionID string) {
	kind := chi.URLParam(r, "kind")
	if kind != "video" && kind != "audio" {
		response.BadRequest(w, "Recording kind must be video or audio")
		return
	}

	dir := filepath.Join(h.recordingRoot, sessionID)
	for _, name := range []string{kind + "_stream.mp4", kind + ".mp4", kind + "_stream.webm"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			http.ServeFile(w, r, path)
			return
		}
	}
	response.NotFound(w, "Recording not found")
}

func interviewParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "interviewID"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid interview id")
		return 0, false
	}
	return id, true
}
