package service

import (
	"context"
	"database/sql"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type quizRepository interface {
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
	FindGraph(ctx context.Context, id string) (*models.QuizGraph, error)
	CreateGraph(ctx context.Context, graph *models.QuizGraph) error
}

type quizSubmissionRepository interface {
	Create(ctx context.Context, submission *models.QuizSubmission) error
	ListByQuiz(ctx context.Context, quizID string) ([]models.QuizSubmission, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.QuizSubmission, error)
}

type moduleReader interface {
	FindByID(ctx context.Context, id string) (*models.CourseModule, error)
}

// CreateQuizRequest carries a full quiz graph to persist under a module.
type CreateQuizRequest struct {
	ModuleID         string               `json:"module_id" validate:"required"`
	Title            string               `json:"title" validate:"required"`
	TimeLimitMinutes *int                 `json:"time_limit_minutes" validate:"omitempty,min=1"`
	Questions        []CreateQuizQuestion `json:"questions" validate:"required,min=1,dive"`
}

// CreateQuizQuestion is one question of a quiz being created.
type CreateQuizQuestion struct {
	Text    string              `json:"text" validate:"required"`
	Type    models.QuestionType `json:"type" validate:"required,oneof=SINGLE_CHOICE MULTIPLE_CHOICE"`
	Options []CreateQuizOption  `json:"options" validate:"required,min=2,dive"`
}

// CreateQuizOption is one answer option of a question being created.
type CreateQuizOption struct {
	Text    string `json:"text" validate:"required"`
	Correct bool   `json:"correct"`
}

// TakeQuizRequest carries a student's answers, keyed by question ID.
type TakeQuizRequest struct {
	QuizID    string              `json:"quiz_id" validate:"required"`
	StudentID string              `json:"student_id" validate:"required"`
	Answers   map[string][]string `json:"answers"`
}

// QuizService owns quiz authoring and grading.
type QuizService struct {
	repo          quizRepository
	submissions   quizSubmissionRepository
	modules       moduleReader
	users         userReader
	metrics       *MetricsService
	passThreshold int
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewQuizService constructs QuizService. passThreshold is the minimum score
// counted as a pass; metrics may be nil.
func NewQuizService(repo quizRepository, submissions quizSubmissionRepository, modules moduleReader, users userReader, metrics *MetricsService, passThreshold int, validate *validator.Validate, logger *zap.Logger) *QuizService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{repo: repo, submissions: submissions, modules: modules, users: users, metrics: metrics, passThreshold: passThreshold, validator: validate, logger: logger}
}

// CreateForModule persists a new quiz graph under a course module.
func (s *QuizService) CreateForModule(ctx context.Context, req CreateQuizRequest) (*models.QuizGraph, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quiz payload")
	}

	if _, err := s.modules.FindByID(ctx, req.ModuleID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}

	graph := &models.QuizGraph{
		Quiz: models.Quiz{
			ModuleID:         req.ModuleID,
			Title:            req.Title,
			TimeLimitMinutes: req.TimeLimitMinutes,
		},
	}
	for _, q := range req.Questions {
		question := models.QuestionWithOptions{
			Question: models.Question{Text: q.Text, Type: q.Type},
		}
		for _, o := range q.Options {
			question.Options = append(question.Options, models.AnswerOption{Text: o.Text, Correct: o.Correct})
		}
		graph.Questions = append(graph.Questions, question)
	}

	if err := s.repo.CreateGraph(ctx, graph); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create quiz")
	}

	s.logger.Info("quiz created",
		zap.String("quiz_id", graph.ID),
		zap.String("module_id", req.ModuleID),
		zap.Int("questions", len(graph.Questions)))
	return graph, nil
}

// Get loads a quiz with its questions and options.
func (s *QuizService) Get(ctx context.Context, id string) (*models.QuizGraph, error) {
	graph, err := s.repo.FindGraph(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "quiz not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}
	return graph, nil
}

// Take grades a student's answers and records the attempt. A question is
// correct only when the selected option set equals the correct option set
// exactly. Retakes are allowed; each attempt is stored on its own.
func (s *QuizService) Take(ctx context.Context, req TakeQuizRequest) (*models.QuizSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quiz attempt payload")
	}

	if _, err := s.users.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	graph, err := s.repo.FindGraph(ctx, req.QuizID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "quiz not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}

	correct := 0
	for _, question := range graph.Questions {
		if answeredCorrectly(question, req.Answers[question.ID]) {
			correct++
		}
	}

	score := 0
	if total := len(graph.Questions); total > 0 {
		score = int(math.Round(float64(correct) * 100.0 / float64(total)))
	}

	submission := &models.QuizSubmission{
		QuizID:    req.QuizID,
		StudentID: req.StudentID,
		Score:     score,
		Passed:    score >= s.passThreshold,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record quiz attempt")
	}
	s.metrics.RecordQuizAttempt(submission.Passed)

	s.logger.Info("quiz taken",
		zap.String("quiz_id", req.QuizID),
		zap.String("student_id", req.StudentID),
		zap.Int("score", score),
		zap.Bool("passed", submission.Passed))
	return submission, nil
}

// answeredCorrectly compares the selected option IDs against the question's
// correct options as sets. Duplicate selections collapse; extra or missing
// picks both fail the question.
func answeredCorrectly(question models.QuestionWithOptions, selected []string) bool {
	correct := make(map[string]struct{})
	for _, option := range question.Options {
		if option.Correct {
			correct[option.ID] = struct{}{}
		}
	}

	picked := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		picked[id] = struct{}{}
	}

	if len(picked) != len(correct) {
		return false
	}
	for id := range picked {
		if _, ok := correct[id]; !ok {
			return false
		}
	}
	return true
}

// ListAttemptsByQuiz returns every recorded attempt at a quiz.
func (s *QuizService) ListAttemptsByQuiz(ctx context.Context, quizID string) ([]models.QuizSubmission, error) {
	attempts, err := s.submissions.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list quiz attempts")
	}
	return attempts, nil
}

// ListAttemptsByStudent returns every quiz attempt of a student.
func (s *QuizService) ListAttemptsByStudent(ctx context.Context, studentID string) ([]models.QuizSubmission, error) {
	attempts, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list quiz attempts")
	}
	return attempts, nil
}
