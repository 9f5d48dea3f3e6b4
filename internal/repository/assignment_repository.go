package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sketchwork/assessment-service/internal/models"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id string) (*models.Assignment, error)
	GetByShareCode(ctx context.Context, code string) (*models.Assignment, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type assignmentRepository struct {
	*PostgresRepository
}

func NewAssignmentRepository(db *sql.DB, logger zerolog.Logger) AssignmentRepository {
	return &assignmentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	query := `
		INSERT INTO assignments (id, title, description, teacher_id, share_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		assignment.ID,
		assignment.Title,
		assignment.Description,
		assignment.TeacherID,
		assignment.ShareCode,
		assignment.CreatedAt,
	)

	return err
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := `
		SELECT id, title, description, teacher_id, share_code, created_at
		FROM assignments
		WHERE id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *assignmentRepository) GetByShareCode(ctx context.Context, code string) (*models.Assignment, error) {
	query := `
		SELECT id, title, description, teacher_id, share_code, created_at
		FROM assignments
		WHERE share_code = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, code))
}

func (r *assignmentRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM assignments WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}

func (r *assignmentRepository) scanOne(row *sql.Row) (*models.Assignment, error) {
	assignment := &models.Assignment{}
	err := row.Scan(
		&assignment.ID,
		&assignment.Title,
		&assignment.Description,
		&assignment.TeacherID,
		&assignment.ShareCode,
		&assignment.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// share_code is CHAR(6); trim in case the driver pads it.
	assignment.ShareCode = strings.TrimSpace(assignment.ShareCode)
	return assignment, nil
}
