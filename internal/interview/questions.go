package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
)

// Generator produces a completion for a prompt within a timeout.
// Satisfied by the AI gateway.
type Generator interface {
	Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error)
}

// fallbackQuestions are served instantly when AI generation is skipped or
// fails, rotated by question number.
var fallbackQuestions = []string{
	"Tell me about a recent project you're proud of. What was your role and what challenges did you overcome?",
	"Describe a technical problem you solved recently. Walk me through your approach.",
	"How do you stay updated with new technologies and best practices in your field?",
	"Tell me about a time you had to collaborate with a difficult team member. How did you handle it?",
	"What's your approach to writing maintainable, scalable code? Give me a specific example.",
	"Describe a situation where you had to learn a new technology quickly. How did you approach it?",
	"Tell me about a mistake you made in your code. How did you discover and fix it?",
	"What's your process for debugging a complex issue? Walk me through a recent example.",
	"How do you handle code reviews? What do you look for when reviewing others' code?",
	"Tell me about a time you had to make a technical decision with incomplete information.",
}

var gentleQuestions = []string{
	"I sense some uncertainty. What aspects would you like to explore more deeply?",
	"Let's break that down. What part are you most confident about?",
	"That's okay. Can you walk me through your thought process step by step?",
}

// keywordBanks map answer keywords to rotating follow-up question sets.
// Order matters: the first bank whose keywords match wins.
var keywordBanks = []struct {
	keywords  []string
	questions []string
}{
	{
		keywords: []string{"built", "developed", "created", "implemented", "designed", "coded"},
		questions: []string{
			"What was the most challenging technical aspect of that?",
			"What technologies did you choose and why?",
			"How did you ensure code quality and maintainability?",
			"What performance optimizations did you implement?",
		},
	},
	{
		keywords: []string{"team", "collaborated", "worked with", "colleagues", "pair"},
		questions: []string{
			"How did you handle coordination within the team?",
			"Tell me about a disagreement you had with a teammate. How did you resolve it?",
			"What's your approach to code reviews with team members?",
			"How do you ensure knowledge sharing in your team?",
		},
	},
	{
		keywords: []string{"problem", "issue", "bug", "challenge", "difficult", "error"},
		questions: []string{
			"Walk me through your debugging process. How did you approach it?",
			"What tools or techniques helped you solve it?",
			"How long did it take to resolve, and what did you learn?",
			"How did you prevent similar issues in the future?",
		},
	},
	{
		keywords: []string{"learned", "new", "first time", "unfamiliar", "research"},
		questions: []string{
			"What resources did you use to get up to speed?",
			"How long did it take you to become comfortable with it?",
			"What would you teach someone else about it now?",
			"What surprised you most when learning it?",
		},
	},
	{
		keywords: []string{"performance", "optimize", "faster", "slow", "scale", "efficient"},
		questions: []string{
			"What metrics did you use to measure the improvement?",
			"What trade-offs did you consider?",
			"How did you identify the bottleneck?",
			"How do you balance performance with maintainability?",
		},
	},
	{
		keywords: []string{"test", "testing", "qa", "coverage", "unit test"},
		questions: []string{
			"What's your testing strategy for a new feature?",
			"How do you balance test coverage with development speed?",
			"Tell me about a bug that slipped through testing.",
			"How do you approach integration testing?",
		},
	},
}

var reflectionQuestions = []string{
	"What would you do differently if you faced that situation again?",
	"What did that experience teach you about software development?",
	"How has that influenced your approach to similar problems since?",
	"What advice would you give to someone in a similar situation?",
}

// QuestionEngine picks the next interview question through a tiered
// strategy: AI generation first, then answer-analysis heuristics, then
// keyword banks, and finally a fixed rotation. Every tier returns within
// the configured timeout so the candidate is never left waiting.
type QuestionEngine struct {
	gateway      Generator
	maxQuestions int
	timeout      time.Duration
}

// NewQuestionEngine builds an engine over the given generator.
func NewQuestionEngine(gateway Generator, maxQuestions int, timeout time.Duration) *QuestionEngine {
	return &QuestionEngine{
		gateway:      gateway,
		maxQuestions: maxQuestions,
		timeout:      timeout,
	}
}

// FirstQuestion generates the opening question. A canned greeting is used
// when generation fails.
func (e *QuestionEngine) FirstQuestion(ctx context.Context, s *domain.InterviewSession) string {
	fallback := fmt.Sprintf(
		"Welcome! I'd love to hear about your background. What draws you to this %s role at %s, and what recent projects are you most proud of?",
		s.JobTitle, companyName(s))

	text, err := e.gateway.Generate(ctx, buildFirstQuestionPrompt(s), e.timeout)
	if err != nil {
		log.Warn().Err(err).Str("session_id", s.SessionID).Msg("opening question generation failed, using fallback")
		return fallback
	}
	if q := CleanQuestion(text); q != "" {
		return q
	}
	return fallback
}

// NextQuestion returns the follow-up for the latest answer. Answers too
// short to reason about skip AI entirely and go straight to the rotation.
func (e *QuestionEngine) NextQuestion(ctx context.Context, s *domain.InterviewSession, previousAnswer string) string {
	if len(strings.TrimSpace(previousAnswer)) < 5 {
		log.Debug().Str("session_id", s.SessionID).Msg("short answer, serving instant fallback")
		return e.instantFallback(s.QuestionCount + 1)
	}

	text, err := e.gateway.Generate(ctx, buildNextQuestionPrompt(s, previousAnswer, e.maxQuestions), e.timeout)
	if err == nil {
		if q := CleanQuestion(text); len(q) > 10 {
			return q
		}
		log.Warn().Str("session_id", s.SessionID).Msg("generated question unusable, falling back")
	} else {
		log.Warn().Err(err).Str("session_id", s.SessionID).Msg("question generation failed, falling back")
	}

	analysis := AnalyzeAnswer(previousAnswer)
	if q := questionFromAnalysis(analysis, s, previousAnswer); q != "" {
		return q
	}
	return keywordBasedQuestion(s, previousAnswer)
}

// instantFallback serves the fixed rotation without any AI delay.
func (e *QuestionEngine) instantFallback(questionNumber int) string {
	idx := (questionNumber - 1) % len(fallbackQuestions)
	if idx < 0 {
		idx = 0
	}
	return fallbackQuestions[idx]
}

// questionFromAnalysis maps the answer analysis to a targeted follow-up,
// or "" to fall through to keyword matching.
func questionFromAnalysis(a Analysis, s *domain.InterviewSession, answer string) string {
	if a.Confidence == ConfidenceUncertain {
		return gentleQuestions[s.QuestionCount%len(gentleQuestions)]
	}

	if a.QuestionTypeHint == HintTechnicalDepth || a.TechDensity >= 3 {
		switch {
		case hasCategory(a.TechCategories, "databases"):
			return "You mentioned database work. Can you explain how you designed the schema and handled performance?"
		case hasCategory(a.TechCategories, "frameworks"):
			return "Tell me more about your architecture. Why did you choose that framework over alternatives?"
		case hasCategory(a.TechCategories, "devops"):
			return "Walk me through your deployment process. How do you handle rollbacks and monitoring?"
		default:
			return "That's quite technical. Can you break down the architecture and trade-offs you considered?"
		}
	}

	if a.QuestionTypeHint == HintProblemSolvingDepth || a.MentionsProblemSolving {
		lower := strings.ToLower(answer)
		if strings.Contains(lower, "solved") || strings.Contains(lower, "fixed") {
			return "How did you identify the root cause? What debugging strategies did you use?"
		}
		return "What alternatives did you consider? How did you decide on your approach?"
	}

	if a.QuestionTypeHint == HintCollaborationDepth || a.MentionsTeamwork {
		return "Tell me about a time you disagreed with a teammate on a technical decision. How did you resolve it?"
	}

	if a.QuestionTypeHint == HintRequestExample || a.Depth == DepthShallow {
		return "Can you give me a specific example where you applied that? Walk me through the details."
	}

	if a.QuestionTypeHint == HintReflection || a.Depth == DepthDeep {
		return "Looking back, what would you do differently? What did that experience teach you?"
	}

	return ""
}

// keywordBasedQuestion rotates through a bank keyed on the answer's
// dominant theme.
func keywordBasedQuestion(s *domain.InterviewSession, answer string) string {
	lower := strings.ToLower(answer)
	for _, bank := range keywordBanks {
		if containsAny(lower, bank.keywords) {
			return bank.questions[s.QuestionCount%len(bank.questions)]
		}
	}
	return reflectionQuestions[s.QuestionCount%len(reflectionQuestions)]
}

func hasCategory(categories []string, want string) bool {
	for _, c := range categories {
		if c == want {
			return true
		}
	}
	return false
}

// CleanQuestion normalizes raw model output into a presentable question.
// Returns "" when the output is unusable.
func CleanQuestion(text string) string {
	question := strings.TrimSpace(text)
	question = strings.Trim(question, `"`)
	question = strings.TrimSpace(question)
	if question == "" {
		return ""
	}

	for _, prefix := range []string{"Question:", "Q:", "Next Question:", "Interview Question:"} {
		if strings.HasPrefix(question, prefix) {
			question = strings.TrimSpace(strings.TrimPrefix(question, prefix))
			break
		}
	}

	// The model occasionally answers with a JSON blob instead of prose.
	if strings.HasPrefix(question, "{") || strings.HasPrefix(question, "[") {
		return ""
	}

	if len(question) > 500 {
		cut := question[:500]
		if idx := strings.LastIndex(cut, "."); idx > 0 {
			cut = cut[:idx]
		}
		question = cut + "?"
	}

	return question
}
