package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type mockCourseRepo struct {
	courses   map[string]models.Course
	created   *models.Course
	status    map[string]models.CourseStatus
	listCalls int
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	m.listCalls++
	var list []models.Course
	for _, c := range m.courses {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		list = append(list, c)
	}
	return list, len(list), nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = "new-course"
	}
	if m.courses == nil {
		m.courses = make(map[string]models.Course)
	}
	m.courses[course.ID] = *course
	m.created = course
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.courses[course.ID] = *course
	return nil
}

func (m *mockCourseRepo) UpdateStatus(ctx context.Context, id string, status models.CourseStatus) error {
	if m.status == nil {
		m.status = make(map[string]models.CourseStatus)
	}
	m.status[id] = status
	if c, ok := m.courses[id]; ok {
		c.Status = status
		m.courses[id] = c
	}
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id string) error {
	delete(m.courses, id)
	return nil
}

type mockCategoryReader struct{}

func (m *mockCategoryReader) FindByID(ctx context.Context, id string) (*models.Category, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Category{ID: id, Name: "General"}, nil
}

type mockModuleRepo struct {
	modules map[string]models.CourseModule
	created *models.CourseModule
}

func (m *mockModuleRepo) FindByID(ctx context.Context, id string) (*models.CourseModule, error) {
	if mod, ok := m.modules[id]; ok {
		return &mod, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockModuleRepo) ListByCourse(ctx context.Context, courseID string) ([]models.CourseModule, error) {
	var list []models.CourseModule
	for _, mod := range m.modules {
		if mod.CourseID == courseID {
			list = append(list, mod)
		}
	}
	return list, nil
}

func (m *mockModuleRepo) Create(ctx context.Context, module *models.CourseModule) error {
	if module.ID == "" {
		module.ID = "new-module"
	}
	if m.modules == nil {
		m.modules = make(map[string]models.CourseModule)
	}
	m.modules[module.ID] = *module
	m.created = module
	return nil
}

type mockLessonRepo struct {
	created *models.Lesson
}

func (m *mockLessonRepo) ListByModule(ctx context.Context, moduleID string) ([]models.Lesson, error) {
	return []models.Lesson{{ID: "l1", ModuleID: moduleID, Position: 1}}, nil
}

func (m *mockLessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = "new-lesson"
	}
	m.created = lesson
	return nil
}

type mockReviewRepo struct {
	created *models.CourseReview
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.CourseReview) error {
	if review.ID == "" {
		review.ID = "new-review"
	}
	m.created = review
	return nil
}

func (m *mockReviewRepo) ListByCourse(ctx context.Context, courseID string) ([]models.CourseReview, error) {
	return nil, nil
}

type memoryCacheRepo struct {
	values map[string][]byte
	sets   int
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	m.values[key] = raw
	m.sets++
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.values = make(map[string][]byte)
	return nil
}

type courseFixture struct {
	svc         *CourseService
	repo        *mockCourseRepo
	modules     *mockModuleRepo
	lessons     *mockLessonRepo
	reviews     *mockReviewRepo
	enrollments *mockEnrollmentChecker
	cacheRepo   *memoryCacheRepo
}

func newCourseFixture(cacheEnabled bool) courseFixture {
	repo := &mockCourseRepo{courses: map[string]models.Course{
		"c1": {ID: "c1", Title: "Go", Status: models.CourseStatusDraft, CategoryID: "cat1", TeacherID: "t1"},
	}}
	modules := &mockModuleRepo{modules: map[string]models.CourseModule{"m1": {ID: "m1", CourseID: "c1", Position: 1}}}
	lessons := &mockLessonRepo{}
	reviews := &mockReviewRepo{}
	enrollments := &mockEnrollmentChecker{enrolled: map[string]bool{}}
	users := &mockUserReader{users: map[string]*models.User{
		"t1": {ID: "t1", Role: models.RoleTeacher},
		"s1": {ID: "s1", Role: models.RoleStudent},
	}}
	cacheRepo := &memoryCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), cacheEnabled)
	svc := NewCourseService(repo, &mockCategoryReader{}, users, modules, lessons, reviews, enrollments, cache, validator.New(), zap.NewNop())
	return courseFixture{svc: svc, repo: repo, modules: modules, lessons: lessons, reviews: reviews, enrollments: enrollments, cacheRepo: cacheRepo}
}

func TestCourseServiceCreate(t *testing.T) {
	f := newCourseFixture(false)

	course, err := f.svc.Create(context.Background(), CreateCourseRequest{Title: "SQL", CategoryID: "cat1", TeacherID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusDraft, course.Status)
	require.NotNil(t, f.repo.created)
}

func TestCourseServiceCreateRejectsStudentOwner(t *testing.T) {
	f := newCourseFixture(false)

	_, err := f.svc.Create(context.Background(), CreateCourseRequest{Title: "SQL", CategoryID: "cat1", TeacherID: "s1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceCreateCategoryMissing(t *testing.T) {
	f := newCourseFixture(false)

	_, err := f.svc.Create(context.Background(), CreateCourseRequest{Title: "SQL", CategoryID: "missing", TeacherID: "t1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCourseServicePublish(t *testing.T) {
	f := newCourseFixture(false)

	course, err := f.svc.Publish(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusPublished, course.Status)

	_, err = f.svc.Publish(context.Background(), "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceListUsesCache(t *testing.T) {
	f := newCourseFixture(true)
	require.NoError(t, f.repo.UpdateStatus(context.Background(), "c1", models.CourseStatusPublished))

	filter := models.CourseFilter{Status: models.CourseStatusPublished, Page: 1, PageSize: 10}

	_, total, err := f.svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, f.repo.listCalls)
	assert.Equal(t, 1, f.cacheRepo.sets)

	// Second read is served from cache.
	_, total, err = f.svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, f.repo.listCalls)
}

func TestCourseServiceCreateInvalidatesCatalogCache(t *testing.T) {
	f := newCourseFixture(true)
	require.NoError(t, f.repo.UpdateStatus(context.Background(), "c1", models.CourseStatusPublished))

	filter := models.CourseFilter{Status: models.CourseStatusPublished, Page: 1, PageSize: 10}
	_, _, err := f.svc.List(context.Background(), filter)
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), CreateCourseRequest{Title: "SQL", CategoryID: "cat1", TeacherID: "t1"})
	require.NoError(t, err)
	assert.Empty(t, f.cacheRepo.values)
}

func TestCourseServiceStructure(t *testing.T) {
	f := newCourseFixture(false)

	structure, err := f.svc.Structure(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, structure.Modules, 1)
	assert.Len(t, structure.Modules[0].Lessons, 1)
}

func TestCourseServiceAddReviewRequiresEnrollment(t *testing.T) {
	f := newCourseFixture(false)

	_, err := f.svc.AddReview(context.Background(), AddReviewRequest{CourseID: "c1", StudentID: "s1", Rating: 5})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)

	f.enrollments.enrolled["c1/s1"] = true
	review, err := f.svc.AddReview(context.Background(), AddReviewRequest{CourseID: "c1", StudentID: "s1", Rating: 5, Comment: "great"})
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	require.NotNil(t, f.reviews.created)
}
