package interview

import (
	"fmt"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
)

// SuggestedLevel maps an analysis onto a coarse expertise signal for the
// session's running estimate.
func (a Analysis) SuggestedLevel() string {
	switch {
	case a.Depth == DepthDeep && a.TechDensity >= 3:
		return domain.LevelSenior
	case a.Depth == DepthShallow && a.TechDensity == 0:
		return domain.LevelJunior
	default:
		return domain.LevelMid
	}
}

// TopicsMentioned lists the interview topics this answer touched.
func (a Analysis) TopicsMentioned() []string {
	topics := append([]string(nil), a.TechCategories...)
	if a.MentionsProblemSolving {
		topics = append(topics, "challenges")
	}
	if a.MentionsTeamwork {
		topics = append(topics, "teamwork")
	}
	return topics
}

// ApplySignals folds one answer's analysis into the session's adaptive
// state: topic coverage, expertise estimate, depth progression and red
// flags. Callers hold the session exclusively while this runs.
func ApplySignals(s *domain.InterviewSession, a Analysis) {
	for _, topic := range a.TopicsMentioned() {
		s.TopicsCovered.Add(topic)
	}
	s.UpdateExpertise(a.SuggestedLevel())

	if a.Depth == DepthDeep {
		s.DepthLevel++
	}
	if a.Depth == DepthShallow && a.Confidence == ConfidenceUncertain {
		s.RedFlags = append(s.RedFlags,
			fmt.Sprintf("answer %d: shallow and uncertain", len(s.History)))
	}
}
