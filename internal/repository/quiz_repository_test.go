package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
)

func TestQuizRepositoryFindGraph(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQuizRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, module_id, title, time_limit_minutes FROM quizzes WHERE id = $1")).
		WithArgs("quiz-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "module_id", "title", "time_limit_minutes"}).
			AddRow("quiz-1", "mod-1", "Basics", nil))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, quiz_id, text, type, position FROM questions WHERE quiz_id = $1 ORDER BY position, id")).
		WithArgs("quiz-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quiz_id", "text", "type", "position"}).
			AddRow("q-1", "quiz-1", "2+2?", models.QuestionTypeSingleChoice, 1).
			AddRow("q-2", "quiz-1", "Pick primes", models.QuestionTypeMultipleChoice, 2))

	mock.ExpectQuery("SELECT o.id, o.question_id, o.text, o.correct, o.position").
		WithArgs("quiz-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "question_id", "text", "correct", "position"}).
			AddRow("o-1", "q-1", "3", false, 1).
			AddRow("o-2", "q-1", "4", true, 2).
			AddRow("o-3", "q-2", "2", true, 1).
			AddRow("o-4", "q-2", "4", false, 2))

	graph, err := repo.FindGraph(context.Background(), "quiz-1")
	require.NoError(t, err)
	require.Len(t, graph.Questions, 2)
	require.Len(t, graph.Questions[0].Options, 2)
	require.Equal(t, "o-2", graph.Questions[0].Options[1].ID)
	require.True(t, graph.Questions[0].Options[1].Correct)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepositoryCreateGraph(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQuizRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO quizzes")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO questions")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO answer_options")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO answer_options")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	graph := &models.QuizGraph{
		Quiz: models.Quiz{ModuleID: "mod-1", Title: "Basics"},
		Questions: []models.QuestionWithOptions{
			{
				Question: models.Question{Text: "2+2?", Type: models.QuestionTypeSingleChoice},
				Options: []models.AnswerOption{
					{Text: "3"},
					{Text: "4", Correct: true},
				},
			},
		},
	}
	err := repo.CreateGraph(context.Background(), graph)
	require.NoError(t, err)
	require.NotEmpty(t, graph.ID)
	require.Equal(t, graph.ID, graph.Questions[0].QuizID)
	require.Equal(t, 1, graph.Questions[0].Position)
	require.Equal(t, graph.Questions[0].ID, graph.Questions[0].Options[0].QuestionID)
	require.Equal(t, 2, graph.Questions[0].Options[1].Position)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepositoryCreateGraphRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQuizRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO quizzes")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	graph := &models.QuizGraph{Quiz: models.Quiz{ModuleID: "mod-1", Title: "Basics"}}
	err := repo.CreateGraph(context.Background(), graph)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
