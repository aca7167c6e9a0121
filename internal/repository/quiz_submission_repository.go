package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// QuizSubmissionRepository handles persistence of quiz attempts.
type QuizSubmissionRepository struct {
	db *sqlx.DB
}

// NewQuizSubmissionRepository constructs the repository.
func NewQuizSubmissionRepository(db *sqlx.DB) *QuizSubmissionRepository {
	return &QuizSubmissionRepository{db: db}
}

// Create persists a quiz attempt. There is deliberately no uniqueness on
// (quiz_id, student_id): retakes each produce an independent row.
func (r *QuizSubmissionRepository) Create(ctx context.Context, submission *models.QuizSubmission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.TakenAt.IsZero() {
		submission.TakenAt = time.Now().UTC()
	}
	const query = `INSERT INTO quiz_submissions (id, quiz_id, student_id, score, passed, taken_at)
        VALUES (:id, :quiz_id, :student_id, :score, :passed, :taken_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create quiz submission: %w", err)
	}
	return nil
}

// ListByQuiz returns all attempts at a quiz.
func (r *QuizSubmissionRepository) ListByQuiz(ctx context.Context, quizID string) ([]models.QuizSubmission, error) {
	const query = `SELECT id, quiz_id, student_id, score, passed, taken_at FROM quiz_submissions WHERE quiz_id = $1 ORDER BY taken_at`
	var submissions []models.QuizSubmission
	if err := r.db.SelectContext(ctx, &submissions, query, quizID); err != nil {
		return nil, fmt.Errorf("list quiz submissions: %w", err)
	}
	return submissions, nil
}

// ListByStudent returns all quiz attempts of a student.
func (r *QuizSubmissionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.QuizSubmission, error) {
	const query = `SELECT id, quiz_id, student_id, score, passed, taken_at FROM quiz_submissions WHERE student_id = $1 ORDER BY taken_at`
	var submissions []models.QuizSubmission
	if err := r.db.SelectContext(ctx, &submissions, query, studentID); err != nil {
		return nil, fmt.Errorf("list student quiz submissions: %w", err)
	}
	return submissions, nil
}
