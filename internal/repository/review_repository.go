package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// ReviewRepository handles persistence of course reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs the repository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create persists a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *models.CourseReview) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO course_reviews (id, course_id, student_id, rating, comment, created_at)
        VALUES (:id, :course_id, :student_id, :rating, :comment, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, review); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// ListByCourse returns the reviews of a course, newest first.
func (r *ReviewRepository) ListByCourse(ctx context.Context, courseID string) ([]models.CourseReview, error) {
	const query = `SELECT id, course_id, student_id, rating, comment, created_at FROM course_reviews WHERE course_id = $1 ORDER BY created_at DESC`
	var reviews []models.CourseReview
	if err := r.db.SelectContext(ctx, &reviews, query, courseID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
