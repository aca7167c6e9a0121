package models

import "time"

// SubmissionStatus represents the grading lifecycle of a submission. The set
// is open: graders may supply their own terminal status.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionStatusChecked   SubmissionStatus = "CHECKED"
	SubmissionStatusAccepted  SubmissionStatus = "ACCEPTED"
	SubmissionStatusRejected  SubmissionStatus = "REJECTED"
)

// Assignment is graded work attached to a lesson. MaxScore is advisory; it is
// not enforced against grades.
type Assignment struct {
	ID          string     `db:"id" json:"id"`
	LessonID    string     `db:"lesson_id" json:"lesson_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	MaxScore    *int       `db:"max_score" json:"max_score,omitempty"`
}

// Submission is a student's answer artifact for one assignment. The
// (assignment_id, student_id) pair carries a unique constraint.
type Submission struct {
	ID           string           `db:"id" json:"id"`
	AssignmentID string           `db:"assignment_id" json:"assignment_id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	Content      string           `db:"content" json:"content"`
	Score        *int             `db:"score" json:"score,omitempty"`
	Feedback     *string          `db:"feedback" json:"feedback,omitempty"`
	Status       SubmissionStatus `db:"status" json:"status"`
	SubmittedAt  time.Time        `db:"submitted_at" json:"submitted_at"`
}
