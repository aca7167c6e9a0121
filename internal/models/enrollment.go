package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// Enrollment links one student to one course. The (student_id, course_id)
// pair carries a unique constraint so a lost check-then-insert race surfaces
// as a rejected duplicate rather than a second row.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	CourseID   string           `db:"course_id" json:"course_id"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	FinalGrade *int             `db:"final_grade" json:"final_grade,omitempty"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
	CourseTitle string `db:"course_title" json:"course_title"`
}

// WithdrawMode selects how an enrollment is deactivated: REMOVE hard deletes
// the row, CANCEL retains it with status CANCELLED. The caller names the
// outcome explicitly.
type WithdrawMode string

const (
	WithdrawModeRemove WithdrawMode = "REMOVE"
	WithdrawModeCancel WithdrawMode = "CANCEL"
)
