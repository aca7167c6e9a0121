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

type mockEnrollmentRepo struct {
	enrollments map[string]models.Enrollment
	pairs       map[string]models.Enrollment
	activePairs map[string]bool
	created     *models.Enrollment
	deleted     []string
	status      map[string]models.EnrollmentStatus
}

func pairKey(studentID, courseID string) string {
	return studentID + "/" + courseID
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	if e, ok := m.pairs[pairKey(studentID, courseID)]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) Exists(ctx context.Context, studentID, courseID string, activeOnly bool) (bool, error) {
	if activeOnly {
		return m.activePairs[pairKey(studentID, courseID)], nil
	}
	_, ok := m.pairs[pairKey(studentID, courseID)]
	return ok, nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = "new-enroll"
	}
	if m.enrollments == nil {
		m.enrollments = make(map[string]models.Enrollment)
	}
	if m.pairs == nil {
		m.pairs = make(map[string]models.Enrollment)
	}
	m.enrollments[enrollment.ID] = *enrollment
	m.pairs[pairKey(enrollment.StudentID, enrollment.CourseID)] = *enrollment
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	if m.status == nil {
		m.status = make(map[string]models.EnrollmentStatus)
	}
	m.status[id] = status
	if e, ok := m.enrollments[id]; ok {
		e.Status = status
		m.enrollments[id] = e
	}
	return nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.enrollments, id)
	return nil
}

func (m *mockEnrollmentRepo) CoursesForStudent(ctx context.Context, studentID string) ([]models.Course, error) {
	return nil, nil
}

func (m *mockEnrollmentRepo) StudentsForCourse(ctx context.Context, courseID string) ([]models.User, error) {
	return nil, nil
}

type mockCourseChecker struct {
	existing map[string]bool
}

func (m *mockCourseChecker) ExistsByID(ctx context.Context, id string) (bool, error) {
	return m.existing[id], nil
}

type mockUserReader struct {
	users map[string]*models.User
}

func (m *mockUserReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func newEnrollmentFixture(activeOnly bool) (*EnrollmentService, *mockEnrollmentRepo) {
	repo := &mockEnrollmentRepo{
		enrollments: map[string]models.Enrollment{},
		pairs:       map[string]models.Enrollment{},
		activePairs: map[string]bool{},
	}
	courses := &mockCourseChecker{existing: map[string]bool{"c1": true}}
	users := &mockUserReader{users: map[string]*models.User{
		"s1": {ID: "s1", Role: models.RoleStudent},
		"t1": {ID: "t1", Role: models.RoleTeacher},
	}}
	return NewEnrollmentService(repo, courses, users, nil, activeOnly, validator.New(), zap.NewNop()), repo
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	svc, repo := newEnrollmentFixture(false)

	enrollment, err := svc.Enroll(context.Background(), EnrollRequest{CourseID: "c1", StudentID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.False(t, enrollment.EnrolledAt.IsZero())
	require.NotNil(t, repo.created)
	assert.Equal(t, "s1", repo.created.StudentID)
}

func TestEnrollmentServiceEnrollCourseMissing(t *testing.T) {
	svc, repo := newEnrollmentFixture(false)

	_, err := svc.Enroll(context.Background(), EnrollRequest{CourseID: "nope", StudentID: "s1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestEnrollmentServiceEnrollRejectsTeacher(t *testing.T) {
	svc, repo := newEnrollmentFixture(false)

	_, err := svc.Enroll(context.Background(), EnrollRequest{CourseID: "c1", StudentID: "t1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestEnrollmentServiceEnrollDuplicate(t *testing.T) {
	svc, repo := newEnrollmentFixture(false)
	repo.pairs[pairKey("s1", "c1")] = models.Enrollment{ID: "e1", StudentID: "s1", CourseID: "c1", Status: models.EnrollmentStatusCancelled}

	// A cancelled pair still blocks re-enrollment.
	_, err := svc.Enroll(context.Background(), EnrollRequest{CourseID: "c1", StudentID: "s1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestEnrollmentServiceWithdrawRemoveByPair(t *testing.T) {
	svc, repo := newEnrollmentFixture(false)
	enrollment := models.Enrollment{ID: "e1", StudentID: "s1", CourseID: "c1", Status: models.EnrollmentStatusActive}
	repo.enrollments["e1"] = enrollment
	repo.pairs[pairKey("s1", "c1")] = enrollment

	err := svc.Withdraw(context.Background(), WithdrawRequest{Mode: models.WithdrawModeRemove, CourseID: "c1", StudentID: "s1"})
	require.NoError(t, err)
	assert.Contains(t, repo.deleted, "e1")
}

func TestEnrollmentServiceWithdrawCancelByID(t *testing.T) {
	svc, repo := newEnrollmentFixture(false)
	repo.enrollments["e1"] = models.Enrollment{ID: "e1", StudentID: "s1", CourseID: "c1", Status: models.EnrollmentStatusActive}

	err := svc.Withdraw(context.Background(), WithdrawRequest{Mode: models.WithdrawModeCancel, EnrollmentID: "e1"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCancelled, repo.status["e1"])
	assert.Empty(t, repo.deleted)
}

func TestEnrollmentServiceWithdrawMissing(t *testing.T) {
	svc, _ := newEnrollmentFixture(false)

	err := svc.Withdraw(context.Background(), WithdrawRequest{Mode: models.WithdrawModeCancel, EnrollmentID: "ghost"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceIsEnrolledPredicate(t *testing.T) {
	anyStatus, repo := newEnrollmentFixture(false)
	repo.pairs[pairKey("s1", "c1")] = models.Enrollment{ID: "e1", Status: models.EnrollmentStatusCancelled}

	enrolled, err := anyStatus.IsEnrolled(context.Background(), "c1", "s1")
	require.NoError(t, err)
	assert.True(t, enrolled)

	activeOnly, repo2 := newEnrollmentFixture(true)
	repo2.pairs[pairKey("s1", "c1")] = models.Enrollment{ID: "e1", Status: models.EnrollmentStatusCancelled}

	enrolled, err = activeOnly.IsEnrolled(context.Background(), "c1", "s1")
	require.NoError(t, err)
	assert.False(t, enrolled)
}
