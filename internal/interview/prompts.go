package interview

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
)

var companyNameRe = regexp.MustCompile(`(?i)at\s+([A-Z][a-zA-Z\s&]+)`)

// companyName resolves the company from the candidate snapshot, falling
// back to scraping the job description.
func companyName(s *domain.InterviewSession) string {
	if name := s.Candidate.CompanyName; name != "" {
		return name
	}
	if m := companyNameRe.FindStringSubmatch(s.JobDescription); m != nil {
		return strings.TrimSpace(m[1])
	}
	return "our company"
}

func companyContext(s *domain.InterviewSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s", companyName(s))
	info := s.Candidate.CompanyInfo
	if info.Description != "" {
		fmt.Fprintf(&b, "\nCompany Description: %s", truncate(info.Description, 200))
	}
	if info.Industry != "" {
		fmt.Fprintf(&b, "\nIndustry: %s", info.Industry)
	}
	if info.Size != "" {
		fmt.Fprintf(&b, "\nCompany Size: %s", info.Size)
	}
	return b.String()
}

func candidateContext(s *domain.InterviewSession) string {
	c := s.Candidate
	name := c.Name
	if name == "" {
		name = "the candidate"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Candidate: %s", name)
	if len(c.Skills) > 0 {
		fmt.Fprintf(&b, "\nSkills: %s", strings.Join(firstN(c.Skills, 8), ", "))
	}
	if c.Experience != "" {
		fmt.Fprintf(&b, "\nExperience: %s", c.Experience)
	}
	if c.ResumeSummary != "" {
		fmt.Fprintf(&b, "\nResume Summary: %s", truncate(c.ResumeSummary, 400))
	}
	if len(c.Experiences) > 0 && c.Experiences[0].Position != "" {
		fmt.Fprintf(&b, "\nCurrent/Recent Role: %s at %s", c.Experiences[0].Position, c.Experiences[0].Company)
	}
	if len(c.Educations) > 0 && c.Educations[0].Degree != "" {
		fmt.Fprintf(&b, "\nEducation: %s in %s", c.Educations[0].Degree, c.Educations[0].Field)
	}
	return b.String()
}

func jobDescriptionOr(s *domain.InterviewSession, limit int) string {
	if s.JobDescription == "" {
		return "Full-stack development role"
	}
	return truncate(s.JobDescription, limit)
}

func skillsHighlight(s *domain.InterviewSession, n int, fallback string) string {
	if len(s.Candidate.Skills) == 0 {
		return fallback
	}
	return strings.Join(firstN(s.Candidate.Skills, n), ", ")
}

// buildFirstQuestionPrompt asks for a warm opener grounded in the company
// and the candidate's resume.
func buildFirstQuestionPrompt(s *domain.InterviewSession) string {
	company := companyName(s)
	return fmt.Sprintf(`You are conducting an interview for %s for the position of %s.

%s

%s

Job Description: %s

Generate a warm, engaging opening question that:
1. Makes the candidate comfortable
2. References %s and the %s role specifically
3. Mentions their background from their resume (%s) when relevant
4. Assesses their background naturally
5. Reveals their experience level
6. Shows you've reviewed their resume and are interested in their specific background

Return ONLY the question (1-2 sentences).`,
		company, s.JobTitle,
		companyContext(s),
		candidateContext(s),
		jobDescriptionOr(s, 300),
		company, s.JobTitle,
		skillsHighlight(s, 2, "their experience"))
}

// buildNextQuestionPrompt carries the recent conversation, topic coverage
// and progress so the model stays on track.
func buildNextQuestionPrompt(s *domain.InterviewSession, previousAnswer string, maxQuestions int) string {
	var recent []string
	history := s.History
	if len(history) > 2 {
		history = history[len(history)-2:]
	}
	for _, ex := range history {
		recent = append(recent, "Q: "+ex.Question, "A: "+truncate(ex.Answer, 200))
	}

	covered := "None yet"
	if items := s.TopicsCovered.Items(); len(items) > 0 {
		covered = strings.Join(firstN(items, 5), ", ")
	}
	needed := "General assessment"
	if missing := s.TopicsToCover.Missing(s.TopicsCovered); len(missing) > 0 {
		needed = strings.Join(firstN(missing, 3), ", ")
	}

	company := companyName(s)
	industry := s.Candidate.CompanyInfo.Industry
	if industry == "" {
		industry = "technology company"
	}

	return fmt.Sprintf(`You are conducting an interview for %s for the position of %s.

%s

%s

Job Description: %s

Progress: Question %d/%d
Topics covered: %s
Topics needed: %s

Recent conversation:
%s

Latest answer: "%s"

Generate the next question that:
- Is specific to %s (%s) and the %s role
- References the candidate's resume, experience (%s), and past work when relevant
- Explores their skills naturally based on their answer
- Digs deeper into what they mentioned, especially if it relates to their resume or experience
- Covers new ground related to the job requirements and company needs
- Is conversational, engaging, and personalized to this specific candidate

Return ONLY the question (1-2 sentences).`,
		company, s.JobTitle,
		companyContext(s),
		candidateContext(s),
		jobDescriptionOr(s, 400),
		s.QuestionCount, maxQuestions,
		covered, needed,
		strings.Join(recent, "\n"),
		truncate(previousAnswer, 300),
		company, industry, s.JobTitle,
		skillsHighlight(s, 3, "their background"))
}

// buildEvaluationPrompt instructs the model to score generously and only
// fail clearly unqualified candidates.
func buildEvaluationPrompt(s *domain.InterviewSession) string {
	var lines []string
	for i, ex := range s.History {
		lines = append(lines,
			fmt.Sprintf("Q%d: %s", i+1, ex.Question),
			fmt.Sprintf("A%d: %s", i+1, ex.Answer))
	}

	return fmt.Sprintf(`Evaluate this interview. Be LENIENT and GENEROUS. Only recommend "Fail" if the candidate's answers are ABSOLUTELY TERRIBLE (completely wrong, no knowledge, incoherent, or clearly unqualified).

IMPORTANT EVALUATION CRITERIA:
- PASS if candidate shows ANY reasonable understanding, effort, or relevant experience
- PASS if answers are partially correct or show learning potential
- PASS if candidate communicates clearly even if technical depth is limited
- PASS if candidate shows enthusiasm, willingness to learn, or cultural fit
- Only FAIL if answers are completely wrong, show zero knowledge, are incoherent, or demonstrate clear unqualification

Conversation:
%s

Duration: %.1f minutes
Questions: %d

Return JSON with:
- ratings: technical_skills, communication, problem_solving, cultural_fit (each with stars 1-5 and description)
- overall_rating: number 1-5
- strengths: array of positive points
- areas_of_concern: array of concerns (only if significant)
- recommendation: {"decision": "Pass" or "Fail" (only fail if absolutely terrible), "reasoning": "explanation", "confidence": "percentage"}

Remember: Be generous. Default to PASS unless answers are clearly terrible.`,
		strings.Join(lines, "\n\n"),
		s.DurationMinutes(),
		len(s.History))
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
