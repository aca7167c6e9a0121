package models

import "time"

// QuestionType distinguishes single from multiple choice questions. Grading
// treats both identically: the selected options must equal the correct set.
type QuestionType string

const (
	QuestionTypeSingleChoice   QuestionType = "SINGLE_CHOICE"
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
)

// Quiz belongs to exactly one course module.
type Quiz struct {
	ID               string `db:"id" json:"id"`
	ModuleID         string `db:"module_id" json:"module_id"`
	Title            string `db:"title" json:"title"`
	TimeLimitMinutes *int   `db:"time_limit_minutes" json:"time_limit_minutes,omitempty"`
}

// Question belongs to a quiz; Position preserves authoring order, which is
// also the grading iteration order.
type Question struct {
	ID       string       `db:"id" json:"id"`
	QuizID   string       `db:"quiz_id" json:"quiz_id"`
	Text     string       `db:"text" json:"text"`
	Type     QuestionType `db:"type" json:"type"`
	Position int          `db:"position" json:"position"`
}

// AnswerOption is one selectable answer for a question.
type AnswerOption struct {
	ID         string `db:"id" json:"id"`
	QuestionID string `db:"question_id" json:"question_id"`
	Text       string `db:"text" json:"text"`
	Correct    bool   `db:"correct" json:"correct"`
	Position   int    `db:"position" json:"position"`
}

// QuestionWithOptions pairs a question with its ordered options.
type QuestionWithOptions struct {
	Question
	Options []AnswerOption `json:"options"`
}

// QuizGraph is a quiz with its full question/option tree, loaded through
// indexed lookups rather than held object references.
type QuizGraph struct {
	Quiz
	Questions []QuestionWithOptions `json:"questions"`
}

// QuizSubmission records the outcome of one attempt at a quiz. Retakes are
// allowed; every attempt produces an independent row and the score is fixed
// at creation.
type QuizSubmission struct {
	ID        string    `db:"id" json:"id"`
	QuizID    string    `db:"quiz_id" json:"quiz_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Score     int       `db:"score" json:"score"`
	Passed    bool      `db:"passed" json:"passed"`
	TakenAt   time.Time `db:"taken_at" json:"taken_at"`
}
