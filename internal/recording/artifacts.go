package recording

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
)

const (
	transcriptFile = "transcript.txt"
	evaluationFile = "evaluation.json"
	metadataFile   = "metadata.json"
)

// SessionDir returns the recording directory for a session.
func SessionDir(root, sessionID string) string {
	return filepath.Join(root, sessionID)
}

// EnsureSessionDir creates the recording directory for a session.
func EnsureSessionDir(root, sessionID string) (string, error) {
	dir := SessionDir(root, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create recording dir: %w", err)
	}
	return dir, nil
}

// SaveTranscript writes the interview transcript next to the recordings.
func SaveTranscript(s *domain.InterviewSession) error {
	if s.RecordingPath == "" {
		return fmt.Errorf("no recording path for session %s", s.SessionID)
	}
	path := filepath.Join(s.RecordingPath, transcriptFile)
	if err := writeFileAtomic(path, []byte(s.TranscriptText())); err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	return nil
}

// SaveEvaluation writes the scorecard as indented JSON.
func SaveEvaluation(s *domain.InterviewSession, sc *domain.Scorecard) error {
	if s.RecordingPath == "" {
		return fmt.Errorf("no recording path for session %s", s.SessionID)
	}
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}
	path := filepath.Join(s.RecordingPath, evaluationFile)
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

// SaveMetadata writes the archival summary for the session.
func SaveMetadata(s *domain.InterviewSession, sc *domain.Scorecard) error {
	if s.RecordingPath == "" {
		return fmt.Errorf("no recording path for session %s", s.SessionID)
	}
	data, err := json.MarshalIndent(domain.MetadataFor(s, sc), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	path := filepath.Join(s.RecordingPath, metadataFile)
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	return nil
}

// SessionData holds the archived artifacts for a finished interview.
type SessionData struct {
	Evaluation json.RawMessage `json:"evaluation,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	Transcript string          `json:"transcript,omitempty"`
}

// LoadSessionData reads whichever artifacts exist in the recording
// directory. Missing files are not an error; a background evaluation may
// still be running.
func LoadSessionData(recordingPath string) (*SessionData, error) {
	if recordingPath == "" {
		return nil, fmt.Errorf("no recording path")
	}

	data := &SessionData{}
	if raw, err := os.ReadFile(filepath.Join(recordingPath, evaluationFile)); err == nil && json.Valid(raw) {
		data.Evaluation = raw
	}
	if raw, err := os.ReadFile(filepath.Join(recordingPath, metadataFile)); err == nil && json.Valid(raw) {
		data.Metadata = raw
	}
	if raw, err := os.ReadFile(filepath.Join(recordingPath, transcriptFile)); err == nil {
		data.Transcript = string(raw)
	}
	return data, nil
}

// writeFileAtomic writes via a temp file and rename so readers never see
// a half-written artifact.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
