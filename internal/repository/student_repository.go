package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/sketchwork/assessment-service/internal/models"
)

// StudentRepository is append-only: students are never looked up by id,
// reports synthesize display names from submission rows instead.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
}

type studentRepository struct {
	*PostgresRepository
}

func NewStudentRepository(db *sql.DB, logger zerolog.Logger) StudentRepository {
	return &studentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (id, name, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query,
		student.ID,
		student.Name,
		student.CreatedAt,
	)

	return err
}
