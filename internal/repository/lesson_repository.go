package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// LessonRepository handles persistence of lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs the repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// FindByID returns a lesson by its ID.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	const query = `SELECT id, module_id, title, content, video_url, position FROM lessons WHERE id = $1`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListByModule returns the lessons of a module in position order.
func (r *LessonRepository) ListByModule(ctx context.Context, moduleID string) ([]models.Lesson, error) {
	const query = `SELECT id, module_id, title, content, video_url, position FROM lessons WHERE module_id = $1 ORDER BY position, id`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, moduleID); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// ListByCourse returns all lessons of a course keyed for structure assembly.
func (r *LessonRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Lesson, error) {
	const query = `SELECT l.id, l.module_id, l.title, l.content, l.video_url, l.position
        FROM lessons l JOIN modules m ON m.id = l.module_id
        WHERE m.course_id = $1 ORDER BY m.position, l.position, l.id`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, courseID); err != nil {
		return nil, fmt.Errorf("list course lessons: %w", err)
	}
	return lessons, nil
}

// Create persists a new lesson record.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	if lesson.Position == 0 {
		const next = `SELECT COALESCE(MAX(position), 0) + 1 FROM lessons WHERE module_id = $1`
		if err := r.db.GetContext(ctx, &lesson.Position, next, lesson.ModuleID); err != nil {
			return fmt.Errorf("next lesson position: %w", err)
		}
	}
	const query = `INSERT INTO lessons (id, module_id, title, content, video_url, position)
        VALUES (:id, :module_id, :title, :content, :video_url, :position)`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}
