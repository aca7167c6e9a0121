package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// AssignmentRepository handles persistence of assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID returns an assignment by its ID.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	const query = `SELECT id, lesson_id, title, description, due_date, max_score FROM assignments WHERE id = $1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// CourseIDFor resolves the course owning an assignment through the
// lesson→module→course chain.
func (r *AssignmentRepository) CourseIDFor(ctx context.Context, assignmentID string) (string, error) {
	const query = `SELECT m.course_id
        FROM assignments a
        JOIN lessons l ON l.id = a.lesson_id
        JOIN modules m ON m.id = l.module_id
        WHERE a.id = $1`
	var courseID string
	if err := r.db.GetContext(ctx, &courseID, query, assignmentID); err != nil {
		return "", err
	}
	return courseID, nil
}

// ListByLesson returns the assignments of a lesson.
func (r *AssignmentRepository) ListByLesson(ctx context.Context, lessonID string) ([]models.Assignment, error) {
	const query = `SELECT id, lesson_id, title, description, due_date, max_score FROM assignments WHERE lesson_id = $1 ORDER BY due_date NULLS LAST, id`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, lessonID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// Create persists a new assignment record.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	const query = `INSERT INTO assignments (id, lesson_id, title, description, due_date, max_score)
        VALUES (:id, :lesson_id, :title, :description, :due_date, :max_score)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an assignment.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	const query = `UPDATE assignments SET title = :title, description = :description, due_date = :due_date, max_score = :max_score
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment row.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM assignments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
