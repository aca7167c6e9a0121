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

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, enrolled_at, status, final_grade FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByStudentAndCourse returns the enrollment for a (student, course) pair.
func (r *EnrollmentRepository) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, enrolled_at, status, final_grade FROM enrollments WHERE student_id = $1 AND course_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists reports whether an enrollment row exists for the pair. With
// activeOnly the check is restricted to ACTIVE rows; otherwise a cancelled
// enrollment still counts.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID string, activeOnly bool) (bool, error) {
	query := "SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2"
	args := []interface{}{studentID, courseID}
	if activeOnly {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, models.EnrollmentStatusActive)
	}
	query += " LIMIT 1"
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// Create persists a new enrollment record. The (student_id, course_id)
// unique constraint turns a lost check-then-insert race into an error here
// instead of a duplicate row.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	const query = `INSERT INTO enrollments (id, student_id, course_id, enrolled_at, status, final_grade)
        VALUES (:id, :student_id, :course_id, :enrolled_at, :status, :final_grade)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateStatus updates the status of an enrollment.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// Delete removes an enrollment row permanently.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM enrollments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// CoursesForStudent returns the courses a student is linked to.
func (r *EnrollmentRepository) CoursesForStudent(ctx context.Context, studentID string) ([]models.Course, error) {
	const query = `SELECT c.id, c.title, c.description, c.duration, c.start_date, c.end_date, c.status, c.category_id, c.teacher_id, c.created_at, c.updated_at
        FROM courses c JOIN enrollments e ON e.course_id = c.id
        WHERE e.student_id = $1 ORDER BY e.enrolled_at DESC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, studentID); err != nil {
		return nil, fmt.Errorf("list student courses: %w", err)
	}
	return courses, nil
}

// StudentsForCourse returns the users enrolled in a course.
func (r *EnrollmentRepository) StudentsForCourse(ctx context.Context, courseID string) ([]models.User, error) {
	const query = `SELECT u.id, u.email, u.password_hash, u.full_name, u.role, u.created_at, u.updated_at
        FROM users u JOIN enrollments e ON e.student_id = u.id
        WHERE e.course_id = $1 ORDER BY u.full_name`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, courseID); err != nil {
		return nil, fmt.Errorf("list course students: %w", err)
	}
	return users, nil
}

// ListDetailsForStudent returns enrollments with course titles, used by the
// transcript export.
func (r *EnrollmentRepository) ListDetailsForStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.enrolled_at, e.status, e.final_grade,
        u.full_name AS student_name, c.title AS course_title
        FROM enrollments e
        JOIN users u ON u.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1 ORDER BY e.enrolled_at`
	var details []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &details, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollment details: %w", err)
	}
	return details, nil
}
