package interview

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/ai"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
)

func testSession() *domain.InterviewSession {
	return domain.NewInterviewSession(1, "Backend Engineer", "Go and Docker role at Acme",
		domain.CandidateBackground{Name: "Ada", CompanyName: "Acme", Skills: []string{"go", "docker"}}, "")
}

func TestFirstQuestionUsesGeneratedText(t *testing.T) {
	g := new(MockGenerator)
	g.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(`"What drew you to backend work at Acme?"`, nil)

	e := NewQuestionEngine(g, 10, time.Second)
	q := e.FirstQuestion(context.Background(), testSession())

	assert.Equal(t, "What drew you to backend work at Acme?", q)
}

func TestFirstQuestionFallsBackOnError(t *testing.T) {
	g := new(MockGenerator)
	g.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", ai.ErrUnavailable)

	e := NewQuestionEngine(g, 10, time.Second)
	q := e.FirstQuestion(context.Background(), testSession())

	assert.Contains(t, q, "Backend Engineer")
	assert.Contains(t, q, "Acme")
}

func TestNextQuestionShortAnswerSkipsGeneration(t *testing.T) {
	g := new(MockGenerator)

	s := testSession()
	s.QuestionCount = 2

	e := NewQuestionEngine(g, 10, time.Second)
	q := e.NextQuestion(context.Background(), s, "ok")

	assert.Equal(t, fallbackQuestions[2], q)
	g.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestNextQuestionShortAnswerRotation(t *testing.T) {
	e := NewQuestionEngine(new(MockGenerator), 10, time.Second)

	s := testSession()
	seen := make(map[string]bool)
	for i := 0; i < len(fallbackQuestions); i++ {
		s.QuestionCount = i
		seen[e.NextQuestion(context.Background(), s, "")] = true
	}
	assert.Len(t, seen, len(fallbackQuestions), "rotation covers the whole bank")
}

func TestNextQuestionPrefersGeneratedText(t *testing.T) {
	g := new(MockGenerator)
	g.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("Question: How did you shard the Postgres cluster?", nil)

	e := NewQuestionEngine(g, 10, time.Second)
	q := e.NextQuestion(context.Background(), testSession(), "I sharded our Postgres cluster to handle growth.")

	assert.Equal(t, "How did you shard the Postgres cluster?", q)
}

func TestNextQuestionGenerationFailureUsesAnalysis(t *testing.T) {
	g := new(MockGenerator)
	g.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", ai.ErrUnavailable)

	e := NewQuestionEngine(g, 10, time.Second)

	// Uncertain answers get a gentle follow-up.
	q := e.NextQuestion(context.Background(), testSession(),
		"I'm not sure, maybe the scheduler, possibly something else entirely.")
	assert.Contains(t, gentleQuestions, q)

	// Database-heavy answers get the schema follow-up.
	q = e.NextQuestion(context.Background(), testSession(),
		"I work with MySQL and MongoDB and Redis and Elasticsearch daily.")
	assert.Contains(t, q, "database work")
}

func TestNextQuestionKeywordFallback(t *testing.T) {
	g := new(MockGenerator)
	g.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", ai.ErrUnavailable)

	s := testSession()
	s.QuestionCount = 1

	e := NewQuestionEngine(g, 10, time.Second)
	q := e.NextQuestion(context.Background(), s,
		"Over the past year I built the billing reconciliation pipeline almost entirely on my own. "+
			"For example, the nightly settlement job pulls provider statements, normalizes the currencies, "+
			"and produces a ledger snapshot that finance signs off on every morning before invoices go out.")

	assert.Equal(t, keywordBanks[0].questions[1], q)
}

func TestNextQuestionRejectsJSONOutput(t *testing.T) {
	g := new(MockGenerator)
	g.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"question": "sneaky"}`, nil)

	e := NewQuestionEngine(g, 10, time.Second)
	q := e.NextQuestion(context.Background(), testSession(),
		"A perfectly reasonable answer about shipping my latest release to production.")

	assert.NotContains(t, q, "{")
	assert.NotEmpty(t, q)
}

func TestCleanQuestion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "What is a goroutine?", "What is a goroutine?"},
		{"quoted", `"What is a goroutine?"`, "What is a goroutine?"},
		{"prefixed", "Next Question: What is a goroutine?", "What is a goroutine?"},
		{"q prefix", "Q: What is a goroutine?", "What is a goroutine?"},
		{"json object", `{"q": "nope"}`, ""},
		{"json array", `["nope"]`, ""},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanQuestion(tt.in))
		})
	}
}

func TestCleanQuestionTruncatesLongOutput(t *testing.T) {
	long := strings.Repeat("This model loves the sound of its own voice. ", 20)
	got := CleanQuestion(long)

	assert.LessOrEqual(t, len(got), 501)
	assert.True(t, strings.HasSuffix(got, "?"))
}
