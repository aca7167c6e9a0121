package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type submissionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	ExistsByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (bool, error)
	Create(ctx context.Context, submission *models.Submission) error
	UpdateGrade(ctx context.Context, submission *models.Submission) error
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error)
}

type assignmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	CourseIDFor(ctx context.Context, assignmentID string) (string, error)
}

type enrollmentChecker interface {
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
}

// SubmitRequest describes a student handing in assignment work.
// RequireEnrollment selects whether the enrollment gate applies; the open
// submission route leaves it off.
type SubmitRequest struct {
	AssignmentID      string `json:"assignment_id" validate:"required"`
	StudentID         string `json:"student_id" validate:"required"`
	Content           string `json:"content" validate:"required"`
	RequireEnrollment bool   `json:"-"`
}

// GradeRequest carries a teacher's verdict. Score nil leaves any existing
// score untouched, feedback always overwrites, status nil defaults to
// CHECKED.
type GradeRequest struct {
	SubmissionID string                   `json:"submission_id" validate:"required"`
	Score        *int                     `json:"score" validate:"omitempty,min=0"`
	Feedback     *string                  `json:"feedback"`
	Status       *models.SubmissionStatus `json:"status"`
}

// SubmissionService owns the assignment submission lifecycle.
type SubmissionService struct {
	repo        submissionRepository
	assignments assignmentReader
	enrollments enrollmentChecker
	users       userReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSubmissionService constructs SubmissionService.
func NewSubmissionService(repo submissionRepository, assignments assignmentReader, enrollments enrollmentChecker, users userReader, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{repo: repo, assignments: assignments, enrollments: enrollments, users: users, validator: validate, logger: logger}
}

// Submit records a student's work for an assignment. A student submits at
// most once per assignment.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	if _, err := s.assignments.FindByID(ctx, req.AssignmentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	if _, err := s.users.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if req.RequireEnrollment {
		courseID, err := s.assignments.CourseIDFor(ctx, req.AssignmentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve assignment course")
		}
		enrolled, err := s.enrollments.IsEnrolled(ctx, courseID, req.StudentID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "student is not enrolled in the course")
		}
	}

	exists, err := s.repo.ExistsByAssignmentAndStudent(ctx, req.AssignmentID, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate submission")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "submission already exists for this assignment")
	}

	submission := &models.Submission{
		AssignmentID: req.AssignmentID,
		StudentID:    req.StudentID,
		Content:      req.Content,
		Status:       models.SubmissionStatusSubmitted,
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
	}

	s.logger.Info("assignment submitted",
		zap.String("assignment_id", req.AssignmentID),
		zap.String("student_id", req.StudentID),
		zap.String("submission_id", submission.ID))
	return submission, nil
}

// Grade applies a teacher's verdict to a submission.
func (s *SubmissionService) Grade(ctx context.Context, req GradeRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	submission, err := s.repo.FindByID(ctx, req.SubmissionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}

	if req.Score != nil {
		submission.Score = req.Score
	}
	submission.Feedback = req.Feedback
	if req.Status != nil {
		submission.Status = *req.Status
	} else {
		submission.Status = models.SubmissionStatusChecked
	}

	if err := s.repo.UpdateGrade(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grade submission")
	}

	s.logger.Info("submission graded",
		zap.String("submission_id", submission.ID),
		zap.String("status", string(submission.Status)))
	return submission, nil
}

// Get returns a single submission.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	return submission, nil
}

// ListByAssignment returns every submission for an assignment.
func (s *SubmissionService) ListByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error) {
	submissions, err := s.repo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return submissions, nil
}

// ListByStudent returns every submission of a student.
func (s *SubmissionService) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	submissions, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return submissions, nil
}
