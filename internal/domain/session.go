package domain

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Expertise levels inferred from answers during the interview.
const (
	LevelUnknown = "unknown"
	LevelJunior  = "junior"
	LevelMid     = "mid"
	LevelSenior  = "senior"
)

// maxRedFlags ends the interview early once this many negative signals accumulate.
const maxRedFlags = 5

// techTopicKeywords are scanned in the job description to seed the
// topics a session should cover.
var techTopicKeywords = []string{
	"python", "javascript", "react", "vue", "node", "api", "database",
	"sql", "mongodb", "docker", "kubernetes", "aws", "azure", "git",
	"testing", "agile", "microservices", "architecture", "security",
	"machine learning", "data", "algorithm", "system design",
}

// coreTopics are always required regardless of the job description.
var coreTopics = []string{"experience", "projects", "teamwork", "challenges"}

// TopicSet is a string set that serializes as a sorted JSON array.
type TopicSet map[string]struct{}

func NewTopicSet(items ...string) TopicSet {
	s := make(TopicSet, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func (s TopicSet) Add(topic string) {
	s[topic] = struct{}{}
}

func (s TopicSet) Contains(topic string) bool {
	_, ok := s[topic]
	return ok
}

// Items returns the set contents as a sorted slice.
func (s TopicSet) Items() []string {
	items := make([]string, 0, len(s))
	for t := range s {
		items = append(items, t)
	}
	sort.Strings(items)
	return items
}

// Missing returns the elements of s not present in covered, sorted.
func (s TopicSet) Missing(covered TopicSet) []string {
	var missing []string
	for t := range s {
		if !covered.Contains(t) {
			missing = append(missing, t)
		}
	}
	sort.Strings(missing)
	return missing
}

func (s TopicSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Items())
}

func (s *TopicSet) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewTopicSet(items...)
	return nil
}

// Exchange is one question/answer pair in the conversation history.
type Exchange struct {
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	Timestamp      time.Time `json:"timestamp"`
	QuestionNumber int       `json:"question_number"`
}

// CompanyInfo describes the hiring company, captured at session creation.
type CompanyInfo struct {
	Description string `json:"description,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Size        string `json:"company_size,omitempty"`
	Website     string `json:"website,omitempty"`
	Location    string `json:"location,omitempty"`
}

// WorkExperience is one prior role from the candidate's profile.
type WorkExperience struct {
	Position string `json:"position"`
	Company  string `json:"company"`
}

// Education is one education record from the candidate's profile.
type Education struct {
	Degree     string `json:"degree"`
	Field      string `json:"field"`
	University string `json:"university,omitempty"`
}

// CandidateBackground is the candidate snapshot captured once at session
// creation. It is never re-fetched mid-interview, so an interview stays
// reproducible even if the underlying profile changes.
type CandidateBackground struct {
	Name          string           `json:"name"`
	CompanyName   string           `json:"company_name"`
	CompanyInfo   CompanyInfo      `json:"company_info"`
	Experience    string           `json:"experience,omitempty"`
	Skills        []string         `json:"skills,omitempty"`
	ResumeSummary string           `json:"resume_summary,omitempty"`
	Experiences   []WorkExperience `json:"experiences,omitempty"`
	Educations    []Education      `json:"educations,omitempty"`
}

// InterviewSession is the aggregate root for one interview run.
// Pure data: no live resource handles, fully serializable.
type InterviewSession struct {
	SessionID   string `json:"session_id"`
	InterviewID int64  `json:"interview_id"`

	JobTitle       string              `json:"job_title"`
	JobDescription string              `json:"job_description"`
	Candidate      CandidateBackground `json:"candidate_background"`

	StartedAt    time.Time `json:"started_at"`
	LastActiveAt time.Time `json:"last_active_at"`

	CurrentQuestion string     `json:"current_question"`
	QuestionCount   int        `json:"question_count"`
	History         []Exchange `json:"conversation_history"`
	SpeechMode      string     `json:"speech_mode"`

	TopicsCovered  TopicSet `json:"topics_covered"`
	TopicsToCover  TopicSet `json:"topics_to_cover"`
	ExpertiseLevel string   `json:"candidate_expertise_level"`
	DepthLevel     int      `json:"interview_depth_level"`
	RedFlags       []string `json:"red_flags"`
	GreenFlags     []string `json:"green_flags"`

	InterviewEnded bool `json:"interview_ended"`

	RecordingPath string `json:"recording_path"`
	VideoFile     string `json:"video_file"`
	AudioFile     string `json:"audio_file"`

	FullTranscript    []string `json:"full_transcript"`
	CurrentTranscript string   `json:"current_transcript"`
}

// NewInterviewSession creates a session with a fresh id and the media paths
// derived from the recording path.
func NewInterviewSession(interviewID int64, jobTitle, jobDescription string, candidate CandidateBackground, recordingPath string) *InterviewSession {
	now := time.Now().UTC()
	s := &InterviewSession{
		SessionID:      uuid.New().String(),
		InterviewID:    interviewID,
		JobTitle:       jobTitle,
		JobDescription: jobDescription,
		Candidate:      candidate,
		StartedAt:      now,
		LastActiveAt:   now,
		SpeechMode:     "browser",
		TopicsCovered:  NewTopicSet(),
		TopicsToCover:  extractRequiredTopics(jobDescription),
		ExpertiseLevel: LevelUnknown,
		DepthLevel:     1,
		RecordingPath:  recordingPath,
	}
	if recordingPath != "" {
		s.VideoFile = filepath.Join(recordingPath, "video_stream.webm")
		s.AudioFile = filepath.Join(recordingPath, "audio_stream.webm")
	}
	return s
}

// SetRecordingPath binds the session to its recording directory, which
// is created after the session id is known.
func (s *InterviewSession) SetRecordingPath(dir string) {
	s.RecordingPath = dir
	s.VideoFile = filepath.Join(dir, "video_stream.webm")
	s.AudioFile = filepath.Join(dir, "audio_stream.webm")
}

func extractRequiredTopics(jobDescription string) TopicSet {
	topics := NewTopicSet(coreTopics...)
	desc := strings.ToLower(jobDescription)
	for _, kw := range techTopicKeywords {
		if strings.Contains(desc, kw) {
			topics.Add(kw)
		}
	}
	return topics
}

// AddExchange appends the answered question to the history and transcript
// and bumps the activity timestamp.
func (s *InterviewSession) AddExchange(question, answer string) {
	ex := Exchange{
		Question:       question,
		Answer:         answer,
		Timestamp:      time.Now().UTC(),
		QuestionNumber: len(s.History) + 1,
	}
	s.History = append(s.History, ex)
	n := strconv.Itoa(ex.QuestionNumber)
	s.FullTranscript = append(s.FullTranscript,
		"AI (Q"+n+"): "+question,
		"Candidate (A"+n+"): "+answer,
	)
	s.Touch()
}

// End marks the interview as finished. Idempotent.
func (s *InterviewSession) End() {
	s.InterviewEnded = true
}

// ShouldEnd reports whether the interview has hit its question budget,
// duration ceiling, or too many red flags.
func (s *InterviewSession) ShouldEnd(maxQuestions int, maxDuration time.Duration) bool {
	if len(s.History) >= maxQuestions {
		return true
	}
	if time.Since(s.StartedAt) >= maxDuration {
		return true
	}
	return len(s.RedFlags) >= maxRedFlags
}

// DurationMinutes returns the elapsed interview time in minutes.
func (s *InterviewSession) DurationMinutes() float64 {
	return time.Since(s.StartedAt).Minutes()
}

// Touch updates the last-activity timestamp.
func (s *InterviewSession) Touch() {
	s.LastActiveAt = time.Now().UTC()
}

// UpdateExpertise folds a new level signal into the running estimate using
// weighted smoothing: 60% prior, 40% new signal.
func (s *InterviewSession) UpdateExpertise(suggested string) {
	scores := map[string]float64{LevelJunior: 1, LevelMid: 2, LevelSenior: 3}
	newScore, ok := scores[suggested]
	if !ok {
		return
	}
	if s.ExpertiseLevel == LevelUnknown {
		s.ExpertiseLevel = suggested
		return
	}
	current, ok := scores[s.ExpertiseLevel]
	if !ok {
		current = 2
	}
	avg := current*0.6 + newScore*0.4
	switch {
	case avg < 1.5:
		s.ExpertiseLevel = LevelJunior
	case avg < 2.5:
		s.ExpertiseLevel = LevelMid
	default:
		s.ExpertiseLevel = LevelSenior
	}
}

// TranscriptText renders the accumulated transcript, one line per turn,
// separated by blank lines.
func (s *InterviewSession) TranscriptText() string {
	return strings.Join(s.FullTranscript, "\n\n")
}
