package models

import "time"

// CourseStatus represents the publication lifecycle of a course.
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "DRAFT"
	CourseStatusPublished CourseStatus = "PUBLISHED"
	CourseStatusArchived  CourseStatus = "ARCHIVED"
)

// Category groups courses in the catalog.
type Category struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Course is the top level unit of study owned by a teacher.
type Course struct {
	ID          string       `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	Duration    *int         `db:"duration" json:"duration,omitempty"`
	StartDate   *time.Time   `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time   `db:"end_date" json:"end_date,omitempty"`
	Status      CourseStatus `db:"status" json:"status"`
	CategoryID  string       `db:"category_id" json:"category_id"`
	TeacherID   string       `db:"teacher_id" json:"teacher_id"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// CourseModule is an ordered section of a course. Relationships are kept as
// foreign keys plus position columns, never as mutual object references.
type CourseModule struct {
	ID          string `db:"id" json:"id"`
	CourseID    string `db:"course_id" json:"course_id"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	Position    int    `db:"position" json:"position"`
}

// Lesson is an ordered unit of content within a module.
type Lesson struct {
	ID       string `db:"id" json:"id"`
	ModuleID string `db:"module_id" json:"module_id"`
	Title    string `db:"title" json:"title"`
	Content  string `db:"content" json:"content"`
	VideoURL string `db:"video_url" json:"video_url,omitempty"`
	Position int    `db:"position" json:"position"`
}

// ModuleWithLessons pairs a module with its ordered lessons for structure
// responses.
type ModuleWithLessons struct {
	CourseModule
	Lessons []Lesson `json:"lessons"`
}

// CourseStructure is the full course tree returned by the structure endpoint.
type CourseStructure struct {
	Course
	Modules []ModuleWithLessons `json:"modules"`
}

// CourseReview is a student's rating of a course.
type CourseReview struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CourseFilter captures criteria for catalog listings.
type CourseFilter struct {
	TeacherID  string
	CategoryID string
	Status     CourseStatus
	Page       int
	PageSize   int
}
