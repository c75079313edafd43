package interview

import (
	"regexp"
	"strings"
)

// Answer depth levels.
const (
	DepthShallow  = "shallow"
	DepthModerate = "moderate"
	DepthDeep     = "deep"
)

// Confidence levels detected from language markers.
const (
	ConfidenceUncertain = "uncertain"
	ConfidenceConfident = "confident"
	ConfidenceNeutral   = "neutral"
)

// Follow-up hints produced by the analyzer.
const (
	HintTechnicalDepth      = "technical_depth"
	HintProblemSolvingDepth = "problem_solving_depth"
	HintCollaborationDepth  = "collaboration_depth"
	HintRequestExample      = "request_example"
	HintReflection          = "reflection"
	HintGeneralFollowup     = "general_followup"
)

var techTerms = map[string][]string{
	"languages":  {"python", "javascript", "java", "typescript", "go", "rust", "c++", "ruby", "php"},
	"frameworks": {"react", "vue", "angular", "django", "flask", "fastapi", "express", "spring", "rails"},
	"databases":  {"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch", "dynamodb"},
	"devops":     {"docker", "kubernetes", "aws", "azure", "gcp", "jenkins", "ci/cd", "terraform"},
	"concepts":   {"api", "rest", "graphql", "microservices", "algorithm", "cache", "queue", "async"},
	"testing":    {"test", "testing", "unittest", "pytest", "jest", "tdd", "integration", "e2e"},
}

var (
	confidentMarkers = []string{"definitely", "absolutely", "certainly", "clearly", "obviously", "always", "exactly"}
	uncertainMarkers = []string{"maybe", "perhaps", "possibly", "probably", "think so", "not sure", "might", "could be"}

	problemWords  = []string{"problem", "issue", "bug", "challenge", "difficult", "error", "failed", "struggled"}
	solutionWords = []string{"solved", "fixed", "resolved", "debugged", "optimized", "improved", "refactored"}

	teamWords = []string{"team", "collaborated", "pair", "reviewed", "discussed", "meeting", "colleague"}

	examplePhrases    = []string{"for example", "such as", "like when", "instance"}
	comparisonPhrases = []string{"versus", "compared to", "better than", "instead of"}

	positiveWords = []string{"good", "great", "excellent", "love", "enjoyed", "success"}
	negativeWords = []string{"bad", "difficult", "hard", "failed", "struggled", "problem"}

	metricsRe = regexp.MustCompile(`\d+%|\d+x faster|\d+ times`)
	wordRe    = regexp.MustCompile(`\b\w+\b`)
)

// Analysis summarizes a candidate answer for adaptive question selection.
type Analysis struct {
	WordCount              int
	TechDensity            int
	TechCategories         []string
	Confidence             string
	MentionsProblemSolving bool
	MentionsTeamwork       bool
	Depth                  string
	Sentiment              string
	QuestionTypeHint       string
}

// AnalyzeAnswer inspects a candidate answer with plain keyword heuristics.
// It never calls out anywhere, so it is safe on the hot path.
func AnalyzeAnswer(answer string) Analysis {
	if len(strings.TrimSpace(answer)) < 10 {
		return defaultAnalysis()
	}

	lower := strings.ToLower(answer)
	words := tokenize(answer)

	a := Analysis{
		WordCount:              len(words),
		TechDensity:            techDensity(lower),
		TechCategories:         techCategories(lower),
		Confidence:             detectConfidence(lower),
		MentionsProblemSolving: detectProblemSolving(lower),
		MentionsTeamwork:       containsAny(lower, teamWords),
		Sentiment:              detectSentiment(lower),
	}
	a.Depth = calculateDepth(len(words), lower)
	a.QuestionTypeHint = suggestQuestionType(lower, len(words), a)
	return a
}

func defaultAnalysis() Analysis {
	return Analysis{
		Confidence:       ConfidenceNeutral,
		Depth:            DepthShallow,
		Sentiment:        "neutral",
		QuestionTypeHint: HintGeneralFollowup,
	}
}

func tokenize(text string) []string {
	var words []string
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// containsTerm matches term as a whole word. Boundaries are checked by
// hand so terms with symbols like "c++" and "ci/cd" still match.
func containsTerm(text, term string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start

		before := idx == 0 || !isWordChar(text[idx-1])
		end := idx + len(term)
		after := end == len(text) || !isWordChar(text[end])
		if before && after {
			return true
		}
		start = idx + 1
	}
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func techDensity(text string) int {
	count := 0
	for _, terms := range techTerms {
		for _, term := range terms {
			if containsTerm(text, term) {
				count++
			}
		}
	}
	return count
}

func techCategories(text string) []string {
	// Fixed order keeps output deterministic.
	order := []string{"languages", "frameworks", "databases", "devops", "concepts", "testing"}
	var categories []string
	for _, cat := range order {
		for _, term := range techTerms[cat] {
			if containsTerm(text, term) {
				categories = append(categories, cat)
				break
			}
		}
	}
	return categories
}

func detectConfidence(text string) string {
	confident := countAny(text, confidentMarkers)
	uncertain := countAny(text, uncertainMarkers)

	if uncertain > confident {
		return ConfidenceUncertain
	}
	if confident > 0 {
		return ConfidenceConfident
	}
	return ConfidenceNeutral
}

func detectProblemSolving(text string) bool {
	return countAny(text, problemWords)+countAny(text, solutionWords) >= 2
}

func calculateDepth(wordCount int, text string) string {
	score := 0
	if wordCount > 50 {
		score++
	}
	if containsAny(text, examplePhrases) {
		score++
	}
	if metricsRe.MatchString(text) {
		score++
	}
	if containsAny(text, comparisonPhrases) {
		score++
	}

	switch {
	case score >= 3:
		return DepthDeep
	case score >= 1:
		return DepthModerate
	default:
		return DepthShallow
	}
}

func detectSentiment(text string) string {
	pos := countAny(text, positiveWords)
	neg := countAny(text, negativeWords)
	switch {
	case pos > neg:
		return "positive"
	case neg > pos:
		return "negative"
	default:
		return "neutral"
	}
}

func suggestQuestionType(text string, wordCount int, a Analysis) string {
	if wordCount < 30 {
		for _, cat := range a.TechCategories {
			if cat == "languages" || cat == "frameworks" {
				return HintTechnicalDepth
			}
		}
	}
	if a.MentionsProblemSolving {
		return HintProblemSolvingDepth
	}
	if a.MentionsTeamwork {
		return HintCollaborationDepth
	}
	if wordCount < 40 && !strings.Contains(text, "example") {
		return HintRequestExample
	}
	if wordCount > 80 {
		return HintReflection
	}
	return HintGeneralFollowup
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func countAny(text string, phrases []string) int {
	count := 0
	for _, p := range phrases {
		if strings.Contains(text, p) {
			count++
		}
	}
	return count
}
