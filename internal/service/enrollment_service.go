package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type enrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	Exists(ctx context.Context, studentID, courseID string, activeOnly bool) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
	Delete(ctx context.Context, id string) error
	CoursesForStudent(ctx context.Context, studentID string) ([]models.Course, error)
	StudentsForCourse(ctx context.Context, courseID string) ([]models.User, error)
}

type courseExistenceChecker interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// EnrollRequest describes enrollment creation.
type EnrollRequest struct {
	CourseID  string `json:"course_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
}

// WithdrawRequest deactivates an enrollment. Remove resolves by the
// (course, student) pair and deletes the row; Cancel resolves by enrollment
// ID and flips the status to CANCELLED.
type WithdrawRequest struct {
	Mode         models.WithdrawMode `json:"mode" validate:"required,oneof=REMOVE CANCEL"`
	EnrollmentID string              `json:"enrollment_id"`
	CourseID     string              `json:"course_id"`
	StudentID    string              `json:"student_id"`
}

// EnrollmentService guards the student↔course relationship: it is the single
// authority on who counts as enrolled.
type EnrollmentService struct {
	repo       enrollmentRepository
	courses    courseExistenceChecker
	users      userReader
	metrics    *MetricsService
	activeOnly bool
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. activeOnly selects the
// enrollment-existence predicate used by IsEnrolled and the submission gate:
// with false, cancelled rows still count as enrolled.
// metrics may be nil.
func NewEnrollmentService(repo enrollmentRepository, courses courseExistenceChecker, users userReader, metrics *MetricsService, activeOnly bool, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, courses: courses, users: users, metrics: metrics, activeOnly: activeOnly, validator: validate, logger: logger}
}

// Enroll registers a student to a course. Any existing enrollment row for
// the pair blocks re-enrollment, cancelled rows included.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	exists, err := s.courses.ExistsByID(ctx, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	student, err := s.users.FindByID(ctx, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if student.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "user is not a student")
	}

	// Existence is checked across every status: a cancelled pair still
	// blocks re-enrollment.
	enrolled, err := s.repo.Exists(ctx, req.StudentID, req.CourseID, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment")
	}
	if enrolled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in the course")
	}

	enrollment := &models.Enrollment{
		StudentID:  req.StudentID,
		CourseID:   req.CourseID,
		EnrolledAt: time.Now().UTC(),
		Status:     models.EnrollmentStatusActive,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	s.metrics.RecordEnrollmentAction("enrolled")

	s.logger.Info("student enrolled",
		zap.String("student_id", req.StudentID),
		zap.String("course_id", req.CourseID),
		zap.String("enrollment_id", enrollment.ID))
	return enrollment, nil
}

// Withdraw deactivates an enrollment according to the requested mode.
func (s *EnrollmentService) Withdraw(ctx context.Context, req WithdrawRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid withdraw payload")
	}

	enrollment, err := s.resolve(ctx, req)
	if err != nil {
		return err
	}

	switch req.Mode {
	case models.WithdrawModeRemove:
		if err := s.repo.Delete(ctx, enrollment.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
		}
	case models.WithdrawModeCancel:
		if err := s.repo.UpdateStatus(ctx, enrollment.ID, models.EnrollmentStatusCancelled); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel enrollment")
		}
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown withdraw mode")
	}
	s.metrics.RecordEnrollmentAction(strings.ToLower(string(req.Mode)))

	s.logger.Info("enrollment withdrawn",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("mode", string(req.Mode)))
	return nil
}

func (s *EnrollmentService) resolve(ctx context.Context, req WithdrawRequest) (*models.Enrollment, error) {
	if req.EnrollmentID != "" {
		enrollment, err := s.repo.FindByID(ctx, req.EnrollmentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		}
		return enrollment, nil
	}
	if req.CourseID == "" || req.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrollment id or course and student ids required")
	}
	enrollment, err := s.repo.FindByStudentAndCourse(ctx, req.StudentID, req.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

// IsEnrolled reports whether the student counts as enrolled in the course
// under the configured predicate.
func (s *EnrollmentService) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	enrolled, err := s.repo.Exists(ctx, studentID, courseID, s.activeOnly)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	return enrolled, nil
}

// CoursesForStudent lists the courses a student is linked to.
func (s *EnrollmentService) CoursesForStudent(ctx context.Context, studentID string) ([]models.Course, error) {
	courses, err := s.repo.CoursesForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// StudentsForCourse lists the users enrolled in a course.
func (s *EnrollmentService) StudentsForCourse(ctx context.Context, courseID string) ([]models.User, error) {
	students, err := s.repo.StudentsForCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}
