package domain

// CategoryRating is one scored dimension of the evaluation.
type CategoryRating struct {
	Stars       int    `json:"stars"`
	Description string `json:"description"`
}

// Ratings holds the four fixed evaluation dimensions.
type Ratings struct {
	TechnicalSkills CategoryRating `json:"technical_skills"`
	Communication   CategoryRating `json:"communication"`
	ProblemSolving  CategoryRating `json:"problem_solving"`
	CulturalFit     CategoryRating `json:"cultural_fit"`
}

// Recommendation is the hiring verdict attached to a scorecard.
type Recommendation struct {
	Decision   string `json:"decision"`
	Reasoning  string `json:"reasoning"`
	Confidence string `json:"confidence"`
}

// Scorecard is the structured post-interview evaluation.
type Scorecard struct {
	Ratings        Ratings        `json:"ratings"`
	OverallRating  float64        `json:"overall_rating"`
	Strengths      []string       `json:"strengths"`
	AreasOfConcern []string       `json:"areas_of_concern"`
	Recommendation Recommendation `json:"recommendation"`

	Metadata *InterviewMetadata `json:"interview_metadata,omitempty"`
}

// InterviewMetadata summarizes a finished session for archival alongside
// the scorecard and transcript.
type InterviewMetadata struct {
	SessionID       string   `json:"session_id"`
	InterviewID     int64    `json:"interview_id"`
	JobTitle        string   `json:"job_title"`
	CandidateName   string   `json:"candidate_name"`
	StartedAt       string   `json:"started_at"`
	DurationMinutes float64  `json:"duration_minutes"`
	QuestionsAsked  int      `json:"questions_asked"`
	TopicsCovered   []string `json:"topics_covered"`
	DetectedLevel   string   `json:"detected_level"`
	OverallRating   float64  `json:"overall_rating"`
	Recommendation  string   `json:"recommendation"`
}

// MetadataFor builds the archival summary for a session and its scorecard.
// QuestionsAsked counts answered exchanges, matching the figure reported on
// the completion events; QuestionCount runs one ahead as the next-question
// counter and is not used here.
func MetadataFor(s *InterviewSession, sc *Scorecard) *InterviewMetadata {
	return &InterviewMetadata{
		SessionID:       s.SessionID,
		InterviewID:     s.InterviewID,
		JobTitle:        s.JobTitle,
		CandidateName:   s.Candidate.Name,
		StartedAt:       s.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		DurationMinutes: s.DurationMinutes(),
		QuestionsAsked:  len(s.History),
		TopicsCovered:   s.TopicsCovered.Items(),
		DetectedLevel:   s.ExpertiseLevel,
		OverallRating:   sc.OverallRating,
		Recommendation:  sc.Recommendation.Decision,
	}
}
