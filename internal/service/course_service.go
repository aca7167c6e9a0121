package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type courseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	UpdateStatus(ctx context.Context, id string, status models.CourseStatus) error
	Delete(ctx context.Context, id string) error
}

type categoryReader interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
}

type moduleRepository interface {
	FindByID(ctx context.Context, id string) (*models.CourseModule, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.CourseModule, error)
	Create(ctx context.Context, module *models.CourseModule) error
}

type lessonRepository interface {
	ListByModule(ctx context.Context, moduleID string) ([]models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
}

type reviewRepository interface {
	Create(ctx context.Context, review *models.CourseReview) error
	ListByCourse(ctx context.Context, courseID string) ([]models.CourseReview, error)
}

const catalogCachePrefix = "catalog:courses"

// CreateCourseRequest carries a new course's details.
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Duration    *int   `json:"duration" validate:"omitempty,min=1"`
	CategoryID  string `json:"category_id" validate:"required"`
	TeacherID   string `json:"teacher_id" validate:"required"`
}

// UpdateCourseRequest carries editable course fields.
type UpdateCourseRequest struct {
	CourseID    string `json:"course_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Duration    *int   `json:"duration" validate:"omitempty,min=1"`
	CategoryID  string `json:"category_id" validate:"required"`
}

// AddModuleRequest appends a module to a course.
type AddModuleRequest struct {
	CourseID    string `json:"course_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// AddLessonRequest appends a lesson to a module.
type AddLessonRequest struct {
	ModuleID string `json:"module_id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content"`
	VideoURL string `json:"video_url" validate:"omitempty,url"`
}

// AddReviewRequest records a student's rating of a course.
type AddReviewRequest struct {
	CourseID  string `json:"course_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

// CourseService manages the course catalog and its structure.
type CourseService struct {
	repo        courseRepository
	categories  categoryReader
	users       userReader
	modules     moduleRepository
	lessons     lessonRepository
	reviews     reviewRepository
	enrollments enrollmentChecker
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs CourseService. cache may be nil; listings then
// always hit the database.
func NewCourseService(repo courseRepository, categories categoryReader, users userReader, modules moduleRepository, lessons lessonRepository, reviews reviewRepository, enrollments enrollmentChecker, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		repo:        repo,
		categories:  categories,
		users:       users,
		modules:     modules,
		lessons:     lessons,
		reviews:     reviews,
		enrollments: enrollments,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// Create registers a new draft course owned by a teacher.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	teacher, err := s.users.FindByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if teacher.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "user is not a teacher")
	}

	if _, err := s.categories.FindByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Status:      models.CourseStatusDraft,
		CategoryID:  req.CategoryID,
		TeacherID:   req.TeacherID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.invalidateCatalog(ctx)
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("teacher_id", course.TeacherID))
	return course, nil
}

// Update edits a course's catalog fields.
func (s *CourseService) Update(ctx context.Context, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.Get(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	if _, err := s.categories.FindByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}

	course.Title = req.Title
	course.Description = req.Description
	course.Duration = req.Duration
	course.CategoryID = req.CategoryID

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.invalidateCatalog(ctx)
	return course, nil
}

// Publish moves a course from DRAFT to PUBLISHED.
func (s *CourseService) Publish(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.Status == models.CourseStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course is already published")
	}

	if err := s.repo.UpdateStatus(ctx, courseID, models.CourseStatusPublished); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish course")
	}
	course.Status = models.CourseStatusPublished

	s.invalidateCatalog(ctx)
	s.logger.Info("course published", zap.String("course_id", courseID))
	return course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, courseID string) error {
	if _, err := s.Get(ctx, courseID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.invalidateCatalog(ctx)
	return nil
}

// Get returns a course by ID.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

type catalogPage struct {
	Courses []models.Course `json:"courses"`
	Total   int             `json:"total"`
}

// List returns courses matching the filter. Published catalog pages are
// served from cache when it is enabled.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	cacheable := s.cache.Enabled() && filter.Status == models.CourseStatusPublished
	key := fmt.Sprintf("%s:%s:%s:%d:%d", catalogCachePrefix, filter.CategoryID, filter.TeacherID, filter.Page, filter.PageSize)

	if cacheable {
		var page catalogPage
		if hit, err := s.cache.Get(ctx, key, &page); err == nil && hit {
			return page.Courses, page.Total, nil
		}
	}

	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	if cacheable {
		_ = s.cache.Set(ctx, key, catalogPage{Courses: courses, Total: total}, 0)
	}
	return courses, total, nil
}

// Structure returns the course with its ordered modules and lessons.
func (s *CourseService) Structure(ctx context.Context, courseID string) (*models.CourseStructure, error) {
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	modules, err := s.modules.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}

	structure := &models.CourseStructure{Course: *course, Modules: make([]models.ModuleWithLessons, 0, len(modules))}
	for _, module := range modules {
		lessons, err := s.lessons.ListByModule(ctx, module.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
		}
		structure.Modules = append(structure.Modules, models.ModuleWithLessons{CourseModule: module, Lessons: lessons})
	}
	return structure, nil
}

// AddModule appends a module to a course. Position is assigned at insert.
func (s *CourseService) AddModule(ctx context.Context, req AddModuleRequest) (*models.CourseModule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}
	if _, err := s.Get(ctx, req.CourseID); err != nil {
		return nil, err
	}

	module := &models.CourseModule{CourseID: req.CourseID, Title: req.Title, Description: req.Description}
	if err := s.modules.Create(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create module")
	}
	return module, nil
}

// AddLesson appends a lesson to a module.
func (s *CourseService) AddLesson(ctx context.Context, req AddLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
	if _, err := s.modules.FindByID(ctx, req.ModuleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}

	lesson := &models.Lesson{ModuleID: req.ModuleID, Title: req.Title, Content: req.Content, VideoURL: req.VideoURL}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
	}
	return lesson, nil
}

// AddReview records a student's rating. Only enrolled students may review.
func (s *CourseService) AddReview(ctx context.Context, req AddReviewRequest) (*models.CourseReview, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	if _, err := s.Get(ctx, req.CourseID); err != nil {
		return nil, err
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, req.CourseID, req.StudentID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "student is not enrolled in the course")
	}

	review := &models.CourseReview{
		CourseID:  req.CourseID,
		StudentID: req.StudentID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create review")
	}
	return review, nil
}

// ListReviews returns a course's reviews, newest first.
func (s *CourseService) ListReviews(ctx context.Context, courseID string) ([]models.CourseReview, error) {
	reviews, err := s.reviews.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	return reviews, nil
}

func (s *CourseService) invalidateCatalog(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, catalogCachePrefix+":*"); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
