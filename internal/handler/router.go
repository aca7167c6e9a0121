package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/middleware"
	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Courses     *CourseHandler
	Enrollments *EnrollmentHandler
	Assignments *AssignmentHandler
	Submissions *SubmissionHandler
	Quizzes     *QuizHandler
	Transcripts *TranscriptHandler
	Metrics     *MetricsHandler
}

// RegisterRoutes wires every endpoint under the API prefix. Public routes are
// the course catalog and auth; everything else sits behind JWT with RBAC.
func RegisterRoutes(r *gin.Engine, prefix string, auth *service.AuthService, h Handlers) {
	r.GET("/healthz", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/register", h.Auth.Register)

	api.GET("/courses", h.Courses.List)
	api.GET("/courses/:id", h.Courses.Get)
	api.GET("/courses/:id/structure", h.Courses.Structure)
	api.GET("/courses/:id/reviews", h.Courses.ListReviews)

	protected := api.Group("")
	protected.Use(middleware.JWT(auth))

	protected.GET("/auth/me", h.Auth.Me)

	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	protected.GET("/users", admin, h.Users.List)
	protected.GET("/users/:id", middleware.RBAC(string(models.RoleAdmin), middleware.SelfParam), h.Users.Get)

	protected.POST("/courses", staff, h.Courses.Create)
	protected.PUT("/courses/:id", staff, h.Courses.Update)
	protected.POST("/courses/:id/publish", staff, h.Courses.Publish)
	protected.DELETE("/courses/:id", admin, h.Courses.Delete)
	protected.POST("/courses/:id/modules", staff, h.Courses.AddModule)
	protected.POST("/modules/:moduleId/lessons", staff, h.Courses.AddLesson)
	protected.POST("/courses/:id/reviews", middleware.RequireRoles(models.RoleStudent), h.Courses.AddReview)

	protected.POST("/enrollments", staff, h.Enrollments.Create)
	protected.POST("/enrollments/withdraw", staff, h.Enrollments.Withdraw)
	protected.DELETE("/enrollments/:id", staff, h.Enrollments.Cancel)
	protected.GET("/courses/:id/students", staff, h.Enrollments.StudentsForCourse)
	protected.GET("/courses/:id/students/:studentId/enrolled", staff, h.Enrollments.IsEnrolled)
	protected.GET("/students/:studentId/courses", middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), middleware.SelfParam), h.Enrollments.CoursesForStudent)

	protected.POST("/lessons/:lessonId/assignments", staff, h.Assignments.Create)
	protected.GET("/lessons/:lessonId/assignments", h.Assignments.ListByLesson)
	protected.GET("/assignments/:id", h.Assignments.Get)
	protected.PUT("/assignments/:id", staff, h.Assignments.Update)
	protected.DELETE("/assignments/:id", staff, h.Assignments.Delete)

	protected.POST("/assignments/:id/submissions", middleware.RequireRoles(models.RoleStudent), h.Submissions.Submit)
	protected.POST("/assignments/:id/submissions/open", middleware.RequireRoles(models.RoleStudent), h.Submissions.SubmitOpen)
	protected.GET("/assignments/:id/submissions", staff, h.Submissions.ListByAssignment)
	protected.GET("/submissions/:id", h.Submissions.Get)
	protected.PUT("/submissions/:id/grade", staff, h.Submissions.Grade)
	protected.GET("/students/:studentId/submissions", middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), middleware.SelfParam), h.Submissions.ListByStudent)

	protected.POST("/modules/:moduleId/quizzes", staff, h.Quizzes.Create)
	protected.GET("/quizzes/:id", h.Quizzes.Get)
	protected.POST("/quizzes/:id/attempts", middleware.RequireRoles(models.RoleStudent), h.Quizzes.Take)
	protected.GET("/quizzes/:id/attempts", staff, h.Quizzes.ListAttempts)
	protected.GET("/students/:studentId/quiz-attempts", middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), middleware.SelfParam), h.Quizzes.ListStudentAttempts)

	protected.GET("/students/:studentId/transcript", middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), middleware.SelfParam), h.Transcripts.Download)

	protected.GET("/admin/metrics", admin, h.Metrics.Snapshot)
}
