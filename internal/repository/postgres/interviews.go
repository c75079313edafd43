package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
)

// InterviewRepository implements domain.InterviewRepository
type InterviewRepository struct {
	pool *pgxpool.Pool
}

// NewInterviewRepository creates a new interview repository
func NewInterviewRepository(pool *pgxpool.Pool) *InterviewRepository {
	return &InterviewRepository{pool: pool}
}

// GetContext loads the job posting and candidate snapshot for an interview.
func (r *InterviewRepository) GetContext(ctx context.Context, interviewID int64) (*domain.InterviewContext, error) {
	query := `
		SELECT job_title, job_description, candidate_profile
		FROM interviews
		WHERE id = $1
	`

	var (
		ic          domain.InterviewContext
		profileJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, interviewID).Scan(&ic.JobTitle, &ic.JobDescription, &profileJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInterviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interview context: %w", err)
	}

	if len(profileJSON) > 0 {
		if err := json.Unmarshal(profileJSON, &ic.Candidate); err != nil {
			return nil, fmt.Errorf("failed to unmarshal candidate profile: %w", err)
		}
	}

	return &ic, nil
}

// MarkCompleted sets the interview status to completed and records the
// recording URL.
func (r *InterviewRepository) MarkCompleted(ctx context.Context, interviewID int64, recordingURL string) error {
	query := `
		UPDATE interviews
		SET status = 'completed', recording_url = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, interviewID, recordingURL)
	if err != nil {
		return fmt.Errorf("failed to mark interview completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInterviewNotFound
	}

	return nil
}
