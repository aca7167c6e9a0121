package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type mockSubmissionRepo struct {
	submissions map[string]models.Submission
	existing    map[string]bool
	created     *models.Submission
	graded      *models.Submission
}

func (m *mockSubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	if s, ok := m.submissions[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubmissionRepo) ExistsByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (bool, error) {
	return m.existing[assignmentID+"/"+studentID], nil
}

func (m *mockSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = "new-sub"
	}
	if m.submissions == nil {
		m.submissions = make(map[string]models.Submission)
	}
	m.submissions[submission.ID] = *submission
	m.created = submission
	return nil
}

func (m *mockSubmissionRepo) UpdateGrade(ctx context.Context, submission *models.Submission) error {
	m.submissions[submission.ID] = *submission
	m.graded = submission
	return nil
}

func (m *mockSubmissionRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error) {
	return nil, nil
}

func (m *mockSubmissionRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	return nil, nil
}

type mockAssignmentReader struct {
	assignments map[string]*models.Assignment
	courseByID  map[string]string
}

func (m *mockAssignmentReader) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentReader) CourseIDFor(ctx context.Context, assignmentID string) (string, error) {
	if c, ok := m.courseByID[assignmentID]; ok {
		return c, nil
	}
	return "", sql.ErrNoRows
}

type mockEnrollmentChecker struct {
	enrolled map[string]bool
}

func (m *mockEnrollmentChecker) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	return m.enrolled[courseID+"/"+studentID], nil
}

func newSubmissionFixture() (*SubmissionService, *mockSubmissionRepo, *mockEnrollmentChecker) {
	repo := &mockSubmissionRepo{submissions: map[string]models.Submission{}, existing: map[string]bool{}}
	assignments := &mockAssignmentReader{
		assignments: map[string]*models.Assignment{"a1": {ID: "a1", LessonID: "l1"}},
		courseByID:  map[string]string{"a1": "c1"},
	}
	enrollments := &mockEnrollmentChecker{enrolled: map[string]bool{}}
	users := &mockUserReader{users: map[string]*models.User{
		"s1": {ID: "s1", Role: models.RoleStudent},
	}}
	return NewSubmissionService(repo, assignments, enrollments, users, validator.New(), zap.NewNop()), repo, enrollments
}

func TestSubmissionServiceSubmit(t *testing.T) {
	svc, repo, _ := newSubmissionFixture()

	submission, err := svc.Submit(context.Background(), SubmitRequest{AssignmentID: "a1", StudentID: "s1", Content: "answer"})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusSubmitted, submission.Status)
	require.NotNil(t, repo.created)
	assert.Equal(t, "answer", repo.created.Content)
}

func TestSubmissionServiceSubmitDuplicate(t *testing.T) {
	svc, repo, _ := newSubmissionFixture()
	repo.existing["a1/s1"] = true

	_, err := svc.Submit(context.Background(), SubmitRequest{AssignmentID: "a1", StudentID: "s1", Content: "again"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestSubmissionServiceSubmitEnrollmentGate(t *testing.T) {
	svc, repo, enrollments := newSubmissionFixture()

	_, err := svc.Submit(context.Background(), SubmitRequest{AssignmentID: "a1", StudentID: "s1", Content: "x", RequireEnrollment: true})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)

	enrollments.enrolled["c1/s1"] = true
	_, err = svc.Submit(context.Background(), SubmitRequest{AssignmentID: "a1", StudentID: "s1", Content: "x", RequireEnrollment: true})
	require.NoError(t, err)
	assert.NotNil(t, repo.created)
}

func TestSubmissionServiceSubmitAssignmentMissing(t *testing.T) {
	svc, _, _ := newSubmissionFixture()

	_, err := svc.Submit(context.Background(), SubmitRequest{AssignmentID: "ghost", StudentID: "s1", Content: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubmissionServiceSubmitStudentMissing(t *testing.T) {
	svc, repo, _ := newSubmissionFixture()

	_, err := svc.Submit(context.Background(), SubmitRequest{AssignmentID: "a1", StudentID: "ghost", Content: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestSubmissionServiceGradeFull(t *testing.T) {
	svc, repo, _ := newSubmissionFixture()
	repo.submissions["sub1"] = models.Submission{ID: "sub1", AssignmentID: "a1", StudentID: "s1", Status: models.SubmissionStatusSubmitted}

	score := 90
	feedback := "well done"
	status := models.SubmissionStatusAccepted
	graded, err := svc.Grade(context.Background(), GradeRequest{SubmissionID: "sub1", Score: &score, Feedback: &feedback, Status: &status})
	require.NoError(t, err)
	require.NotNil(t, graded.Score)
	assert.Equal(t, 90, *graded.Score)
	assert.Equal(t, models.SubmissionStatusAccepted, graded.Status)
	require.NotNil(t, graded.Feedback)
	assert.Equal(t, "well done", *graded.Feedback)
}

func TestSubmissionServiceGradeDefaults(t *testing.T) {
	svc, repo, _ := newSubmissionFixture()
	prev := 40
	repo.submissions["sub1"] = models.Submission{ID: "sub1", Score: &prev, Status: models.SubmissionStatusSubmitted}

	// Nil score leaves the stored score alone, nil status defaults to
	// CHECKED, feedback is always overwritten.
	graded, err := svc.Grade(context.Background(), GradeRequest{SubmissionID: "sub1"})
	require.NoError(t, err)
	require.NotNil(t, graded.Score)
	assert.Equal(t, 40, *graded.Score)
	assert.Equal(t, models.SubmissionStatusChecked, graded.Status)
	assert.Nil(t, graded.Feedback)
	require.NotNil(t, repo.graded)
}

func TestSubmissionServiceGradeMissing(t *testing.T) {
	svc, _, _ := newSubmissionFixture()

	_, err := svc.Grade(context.Background(), GradeRequest{SubmissionID: "ghost"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
