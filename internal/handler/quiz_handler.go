package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// QuizHandler exposes quiz authoring and grading endpoints.
type QuizHandler struct {
	quizzes *service.QuizService
}

// NewQuizHandler constructs QuizHandler.
func NewQuizHandler(quizzes *service.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// Create godoc
// @Summary Create a quiz under a module
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param moduleId path string true "Module ID"
// @Param payload body service.CreateQuizRequest true "Quiz payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /modules/{moduleId}/quizzes [post]
func (h *QuizHandler) Create(c *gin.Context) {
	var req service.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.ModuleID = c.Param("moduleId")
	graph, err := h.quizzes.CreateForModule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, graph)
}

// Get godoc
// @Summary Get a quiz with questions and options
// @Tags Quizzes
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /quizzes/{id} [get]
func (h *QuizHandler) Get(c *gin.Context) {
	graph, err := h.quizzes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, graph)
}

// Take godoc
// @Summary Submit answers for a quiz and receive the graded result
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param payload body service.TakeQuizRequest true "Answers payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /quizzes/{id}/attempts [post]
func (h *QuizHandler) Take(c *gin.Context) {
	var req service.TakeQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.QuizID = c.Param("id")
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent {
		req.StudentID = claims.UserID
	}
	result, err := h.quizzes.Take(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListAttempts godoc
// @Summary List the attempts at a quiz
// @Tags Quizzes
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /quizzes/{id}/attempts [get]
func (h *QuizHandler) ListAttempts(c *gin.Context) {
	attempts, err := h.quizzes.ListAttemptsByQuiz(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, attempts)
}

// ListStudentAttempts godoc
// @Summary List the quiz attempts of a student
// @Tags Quizzes
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{studentId}/quiz-attempts [get]
func (h *QuizHandler) ListStudentAttempts(c *gin.Context) {
	attempts, err := h.quizzes.ListAttemptsByStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, attempts)
}
