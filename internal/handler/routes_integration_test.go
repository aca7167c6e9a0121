package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	internalmiddleware "github.com/noah-isme/lms-api/internal/middleware"
	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/service"
)

func TestEnrollmentRoutesIntegration(t *testing.T) {
	router := buildTestRouter()

	t.Run("enroll success", func(t *testing.T) {
		body := bytes.NewBufferString(`{"course_id":"course-1","student_id":"student-1"}`)
		req, _ := http.NewRequest(http.MethodPost, "/enrollments", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
		require.Contains(t, resp.Body.String(), `"status":"ACTIVE"`)
		require.Contains(t, resp.Body.String(), `"student_id":"student-1"`)
	})

	t.Run("enroll forbidden for students", func(t *testing.T) {
		body := bytes.NewBufferString(`{"course_id":"course-1","student_id":"student-1"}`)
		req, _ := http.NewRequest(http.MethodPost, "/enrollments", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleStudent))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("enroll unauthorized without claims", func(t *testing.T) {
		body := bytes.NewBufferString(`{"course_id":"course-1","student_id":"student-1"}`)
		req, _ := http.NewRequest(http.MethodPost, "/enrollments", body)
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("cancel enrollment by id", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, "/enrollments/enr-1", nil)
		req.Header.Set("X-Test-Role", string(models.RoleTeacher))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNoContent, resp.Code)
	})
}

func TestQuizRoutesIntegration(t *testing.T) {
	router := buildTestRouter()

	t.Run("attempt is graded from claims identity", func(t *testing.T) {
		body := bytes.NewBufferString(`{"answers":{"q-1":["opt-1"]}}`)
		req, _ := http.NewRequest(http.MethodPost, "/quizzes/quiz-1/attempts", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleStudent))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
		require.Contains(t, resp.Body.String(), `"score":100`)
		require.Contains(t, resp.Body.String(), `"student_id":"test-user"`)
	})

	t.Run("attempt forbidden for teachers", func(t *testing.T) {
		body := bytes.NewBufferString(`{"answers":{}}`)
		req, _ := http.NewRequest(http.MethodPost, "/quizzes/quiz-1/attempts", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleTeacher))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("unknown quiz is a 404", func(t *testing.T) {
		body := bytes.NewBufferString(`{"answers":{}}`)
		req, _ := http.NewRequest(http.MethodPost, "/quizzes/missing/attempts", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleStudent))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func buildTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{
				UserID: "test-user",
				Role:   models.UserRole(role),
			})
		}
		c.Next()
	})

	enrollmentSvc := service.NewEnrollmentService(&stubEnrollmentRepo{}, stubCourseChecker{}, stubUserReader{}, nil, false, nil, nil)
	quizSvc := service.NewQuizService(stubQuizRepo{}, &stubQuizSubmissionRepo{}, stubModuleReader{}, stubUserReader{}, nil, 50, nil, nil)

	enrollments := NewEnrollmentHandler(enrollmentSvc)
	quizzes := NewQuizHandler(quizSvc)

	staff := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	router.POST("/enrollments", staff, enrollments.Create)
	router.DELETE("/enrollments/:id", staff, enrollments.Cancel)
	router.POST("/quizzes/:id/attempts", internalmiddleware.RequireRoles(models.RoleStudent), quizzes.Take)

	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type stubEnrollmentRepo struct {
	created []models.Enrollment
}

func (s *stubEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if id != "enr-1" {
		return nil, sql.ErrNoRows
	}
	return &models.Enrollment{ID: id, StudentID: "student-1", CourseID: "course-1", Status: models.EnrollmentStatusActive}, nil
}

func (s *stubEnrollmentRepo) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	return nil, sql.ErrNoRows
}

func (s *stubEnrollmentRepo) Exists(ctx context.Context, studentID, courseID string, activeOnly bool) (bool, error) {
	return false, nil
}

func (s *stubEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	s.created = append(s.created, *enrollment)
	return nil
}

func (s *stubEnrollmentRepo) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	return nil
}

func (s *stubEnrollmentRepo) Delete(ctx context.Context, id string) error { return nil }

func (s *stubEnrollmentRepo) CoursesForStudent(ctx context.Context, studentID string) ([]models.Course, error) {
	return nil, nil
}

func (s *stubEnrollmentRepo) StudentsForCourse(ctx context.Context, courseID string) ([]models.User, error) {
	return nil, nil
}

type stubCourseChecker struct{}

func (stubCourseChecker) ExistsByID(ctx context.Context, id string) (bool, error) {
	return id == "course-1", nil
}

type stubUserReader struct{}

func (stubUserReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	switch id {
	case "student-1", "test-user":
		return &models.User{ID: id, Role: models.RoleStudent}, nil
	}
	return nil, sql.ErrNoRows
}

type stubQuizRepo struct{}

func (stubQuizRepo) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	if id != "quiz-1" {
		return nil, sql.ErrNoRows
	}
	return &models.Quiz{ID: id, ModuleID: "module-1", Title: "Checkpoint"}, nil
}

func (stubQuizRepo) FindGraph(ctx context.Context, id string) (*models.QuizGraph, error) {
	if id != "quiz-1" {
		return nil, sql.ErrNoRows
	}
	return &models.QuizGraph{
		Quiz: models.Quiz{ID: id, ModuleID: "module-1", Title: "Checkpoint"},
		Questions: []models.QuestionWithOptions{
			{
				Question: models.Question{ID: "q-1", QuizID: id, Text: "2+2?", Type: models.QuestionTypeSingleChoice, Position: 0},
				Options: []models.AnswerOption{
					{ID: "opt-1", QuestionID: "q-1", Text: "4", Correct: true, Position: 0},
					{ID: "opt-2", QuestionID: "q-1", Text: "5", Correct: false, Position: 1},
				},
			},
		},
	}, nil
}

func (stubQuizRepo) CreateGraph(ctx context.Context, graph *models.QuizGraph) error { return nil }

type stubQuizSubmissionRepo struct {
	created []models.QuizSubmission
}

func (s *stubQuizSubmissionRepo) Create(ctx context.Context, submission *models.QuizSubmission) error {
	s.created = append(s.created, *submission)
	return nil
}

func (s *stubQuizSubmissionRepo) ListByQuiz(ctx context.Context, quizID string) ([]models.QuizSubmission, error) {
	return nil, nil
}

func (s *stubQuizSubmissionRepo) ListByStudent(ctx context.Context, studentID string) ([]models.QuizSubmission, error) {
	return nil, nil
}

type stubModuleReader struct{}

func (stubModuleReader) FindByID(ctx context.Context, id string) (*models.CourseModule, error) {
	if id != "module-1" {
		return nil, sql.ErrNoRows
	}
	return &models.CourseModule{ID: id, CourseID: "course-1", Title: "Basics"}, nil
}
