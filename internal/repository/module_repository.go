package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// ModuleRepository handles persistence of course modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository constructs the repository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// FindByID returns a module by its ID.
func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*models.CourseModule, error) {
	const query = `SELECT id, course_id, title, description, position FROM modules WHERE id = $1`
	var module models.CourseModule
	if err := r.db.GetContext(ctx, &module, query, id); err != nil {
		return nil, err
	}
	return &module, nil
}

// ListByCourse returns the modules of a course in position order.
func (r *ModuleRepository) ListByCourse(ctx context.Context, courseID string) ([]models.CourseModule, error) {
	const query = `SELECT id, course_id, title, description, position FROM modules WHERE course_id = $1 ORDER BY position, id`
	var modules []models.CourseModule
	if err := r.db.SelectContext(ctx, &modules, query, courseID); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

// Create persists a new module record. Position defaults to the end of the
// course when left zero.
func (r *ModuleRepository) Create(ctx context.Context, module *models.CourseModule) error {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	if module.Position == 0 {
		const next = `SELECT COALESCE(MAX(position), 0) + 1 FROM modules WHERE course_id = $1`
		if err := r.db.GetContext(ctx, &module.Position, next, module.CourseID); err != nil {
			return fmt.Errorf("next module position: %w", err)
		}
	}
	const query = `INSERT INTO modules (id, course_id, title, description, position)
        VALUES (:id, :course_id, :title, :description, :position)`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}
