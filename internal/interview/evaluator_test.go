package interview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/ai"
)

const evaluationJSON = `{
	"ratings": {
		"technical_skills": {"stars": 4, "description": "Strong fundamentals"},
		"communication": {"stars": 5, "description": "Very clear"},
		"problem_solving": {"stars": 4, "description": "Methodical"},
		"cultural_fit": {"stars": 4, "description": "Good match"}
	},
	"overall_rating": 4.2,
	"strengths": ["Deep Go knowledge"],
	"areas_of_concern": [],
	"recommendation": {"decision": "Pass", "reasoning": "Solid throughout", "confidence": "High (90%)"}
}`

func TestEvaluateParsesModelOutput(t *testing.T) {
	g := new(MockGenerator)
	g.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("Here is the evaluation:\n```json\n"+evaluationJSON+"\n```", nil)

	s := testSession()
	s.AddExchange("q1", "a1")
	s.QuestionCount = 1

	sc := NewEvaluator(g, 30*time.Second).Evaluate(context.Background(), s)

	require.NotNil(t, sc)
	assert.Equal(t, 4.2, sc.OverallRating)
	assert.Equal(t, 4, sc.Ratings.TechnicalSkills.Stars)
	assert.Equal(t, "Pass", sc.Recommendation.Decision)
	require.NotNil(t, sc.Metadata)
	assert.Equal(t, s.SessionID, sc.Metadata.SessionID)
	assert.Equal(t, 4.2, sc.Metadata.OverallRating)
}

func TestEvaluateAmbiguousDecisionDefaultsToPass(t *testing.T) {
	out := `{"ratings": {}, "overall_rating": 3.5, "recommendation": {"decision": "Maybe", "reasoning": "hmm"}}`

	g := new(MockGenerator)
	g.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(out, nil)

	sc := NewEvaluator(g, 30*time.Second).Evaluate(context.Background(), testSession())

	assert.Equal(t, "Pass", sc.Recommendation.Decision)
	assert.Equal(t, 3.5, sc.OverallRating)
}

func TestEvaluateFailVerdictPreserved(t *testing.T) {
	out := `{"overall_rating": 1.0, "recommendation": {"decision": "Fail", "reasoning": "no relevant knowledge", "confidence": "High (95%)"}}`

	g := new(MockGenerator)
	g.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(out, nil)

	sc := NewEvaluator(g, 30*time.Second).Evaluate(context.Background(), testSession())
	assert.Equal(t, "Fail", sc.Recommendation.Decision)
}

func TestEvaluateFallbackOnGenerationFailure(t *testing.T) {
	g := new(MockGenerator)
	g.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", ai.ErrUnavailable)

	s := testSession()
	sc := NewEvaluator(g, 30*time.Second).Evaluate(context.Background(), s)

	require.NotNil(t, sc)
	assert.Equal(t, 3.0, sc.OverallRating)
	assert.Equal(t, 3, sc.Ratings.Communication.Stars)
	assert.Equal(t, "Pass", sc.Recommendation.Decision)
	assert.Contains(t, sc.Recommendation.Reasoning, "Manual review")
	require.NotNil(t, sc.Metadata)
	assert.Equal(t, s.SessionID, sc.Metadata.SessionID)
}

func TestEvaluateFallbackOnGarbageOutput(t *testing.T) {
	g := new(MockGenerator)
	g.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("I'm sorry, I can't evaluate this interview.", nil)

	sc := NewEvaluator(g, 30*time.Second).Evaluate(context.Background(), testSession())
	assert.Equal(t, 3.0, sc.OverallRating)
	assert.Equal(t, "Pass", sc.Recommendation.Decision)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"embedded in prose", `Sure! {"a": 1} Hope that helps.`, `{"a": 1}`},
		{"nested braces", `prefix {"a": {"b": 2}} suffix`, `{"a": {"b": 2}}`},
		{"array", `the list: [1, 2, 3]`, `[1, 2, 3]`},
		{"nothing", "no structure here", "{}"},
		{"empty", "", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.in))
		})
	}
}
