package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// QuizRepository handles persistence of quizzes and their question graphs.
type QuizRepository struct {
	db *sqlx.DB
}

// NewQuizRepository constructs the repository.
func NewQuizRepository(db *sqlx.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// FindByID returns a quiz header without its questions.
func (r *QuizRepository) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	const query = `SELECT id, module_id, title, time_limit_minutes FROM quizzes WHERE id = $1`
	var quiz models.Quiz
	if err := r.db.GetContext(ctx, &quiz, query, id); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// FindGraph loads a quiz with its questions and options. Questions and
// options come back in authoring order; the grading loop relies on it.
func (r *QuizRepository) FindGraph(ctx context.Context, id string) (*models.QuizGraph, error) {
	quiz, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	const questionQuery = `SELECT id, quiz_id, text, type, position FROM questions WHERE quiz_id = $1 ORDER BY position, id`
	var questions []models.Question
	if err := r.db.SelectContext(ctx, &questions, questionQuery, id); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	const optionQuery = `SELECT o.id, o.question_id, o.text, o.correct, o.position
        FROM answer_options o JOIN questions q ON q.id = o.question_id
        WHERE q.quiz_id = $1 ORDER BY o.position, o.id`
	var options []models.AnswerOption
	if err := r.db.SelectContext(ctx, &options, optionQuery, id); err != nil {
		return nil, fmt.Errorf("list answer options: %w", err)
	}

	byQuestion := make(map[string][]models.AnswerOption, len(questions))
	for _, option := range options {
		byQuestion[option.QuestionID] = append(byQuestion[option.QuestionID], option)
	}

	graph := &models.QuizGraph{Quiz: *quiz, Questions: make([]models.QuestionWithOptions, 0, len(questions))}
	for _, question := range questions {
		graph.Questions = append(graph.Questions, models.QuestionWithOptions{
			Question: question,
			Options:  byQuestion[question.ID],
		})
	}
	return graph, nil
}

// CreateGraph persists a quiz with its questions and options in one
// transaction. IDs and positions are assigned here; back-references are
// plain foreign keys.
func (r *QuizRepository) CreateGraph(ctx context.Context, graph *models.QuizGraph) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin quiz tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if graph.ID == "" {
		graph.ID = uuid.NewString()
	}
	graph.Quiz.ID = graph.ID

	const quizInsert = `INSERT INTO quizzes (id, module_id, title, time_limit_minutes)
        VALUES (:id, :module_id, :title, :time_limit_minutes)`
	if _, err := tx.NamedExecContext(ctx, quizInsert, graph.Quiz); err != nil {
		return fmt.Errorf("create quiz: %w", err)
	}

	const questionInsert = `INSERT INTO questions (id, quiz_id, text, type, position)
        VALUES (:id, :quiz_id, :text, :type, :position)`
	const optionInsert = `INSERT INTO answer_options (id, question_id, text, correct, position)
        VALUES (:id, :question_id, :text, :correct, :position)`

	for qi := range graph.Questions {
		question := &graph.Questions[qi]
		if question.ID == "" {
			question.ID = uuid.NewString()
		}
		question.QuizID = graph.ID
		question.Position = qi + 1
		if _, err := tx.NamedExecContext(ctx, questionInsert, question.Question); err != nil {
			return fmt.Errorf("create question: %w", err)
		}
		for oi := range question.Options {
			option := &question.Options[oi]
			if option.ID == "" {
				option.ID = uuid.NewString()
			}
			option.QuestionID = question.ID
			option.Position = oi + 1
			if _, err := tx.NamedExecContext(ctx, optionInsert, option); err != nil {
				return fmt.Errorf("create answer option: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit quiz tx: %w", err)
	}
	return nil
}
