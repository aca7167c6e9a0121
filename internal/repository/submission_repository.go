package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// SubmissionRepository handles persistence of assignment submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `id, assignment_id, student_id, content, score, feedback, status, submitted_at`

// FindByID returns a submission by its ID.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE id = $1`, submissionColumns)
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		return nil, err
	}
	return &submission, nil
}

// ExistsByAssignmentAndStudent reports whether the student already submitted
// for the assignment.
func (r *SubmissionRepository) ExistsByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM submissions WHERE assignment_id = $1 AND student_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, assignmentID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check submission: %w", err)
	}
	return true, nil
}

// Create persists a new submission record. The (assignment_id, student_id)
// unique constraint backs the one-submission invariant under races.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	if submission.Status == "" {
		submission.Status = models.SubmissionStatusSubmitted
	}
	const query = `INSERT INTO submissions (id, assignment_id, student_id, content, score, feedback, status, submitted_at)
        VALUES (:id, :assignment_id, :student_id, :content, :score, :feedback, :status, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// UpdateGrade writes score, feedback and status after grading.
func (r *SubmissionRepository) UpdateGrade(ctx context.Context, submission *models.Submission) error {
	const query = `UPDATE submissions SET score = :score, feedback = :feedback, status = :status WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("update submission grade: %w", err)
	}
	return nil
}

// ListByAssignment returns all submissions for an assignment.
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE assignment_id = $1 ORDER BY submitted_at`, submissionColumns)
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list assignment submissions: %w", err)
	}
	return submissions, nil
}

// ListByStudent returns all submissions of a student.
func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE student_id = $1 ORDER BY submitted_at`, submissionColumns)
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, studentID); err != nil {
		return nil, fmt.Errorf("list student submissions: %w", err)
	}
	return submissions, nil
}
