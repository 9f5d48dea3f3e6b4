package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sketchwork/assessment-service/internal/models"
)

type RubricRepository interface {
	Create(ctx context.Context, rubric *models.Rubric) error
	GetByAssignmentID(ctx context.Context, assignmentID string) (*models.Rubric, error)
	Update(ctx context.Context, assignmentID string, criteria []models.Criterion, totalPoints int, problems *[]models.Problem) (*models.Rubric, error)
}

type rubricRepository struct {
	*PostgresRepository
}

func NewRubricRepository(db *sql.DB, logger zerolog.Logger) RubricRepository {
	return &rubricRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *rubricRepository) Create(ctx context.Context, rubric *models.Rubric) error {
	criteriaJSON, err := json.Marshal(rubric.Criteria)
	if err != nil {
		return fmt.Errorf("failed to marshal criteria: %w", err)
	}
	problemsJSON, err := json.Marshal(rubric.Problems)
	if err != nil {
		return fmt.Errorf("failed to marshal problems: %w", err)
	}

	query := `
		INSERT INTO rubrics (id, assignment_id, criteria, problems, total_points, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		rubric.ID,
		rubric.AssignmentID,
		criteriaJSON,
		problemsJSON,
		rubric.TotalPoints,
		rubric.UpdatedAt,
	)

	return err
}

func (r *rubricRepository) GetByAssignmentID(ctx context.Context, assignmentID string) (*models.Rubric, error) {
	query := `
		SELECT id, assignment_id, criteria, problems, total_points, updated_at
		FROM rubrics
		WHERE assignment_id = $1
	`

	rubric := &models.Rubric{}
	var criteriaJSON, problemsJSON []byte

	err := r.db.QueryRowContext(ctx, query, assignmentID).Scan(
		&rubric.ID,
		&rubric.AssignmentID,
		&criteriaJSON,
		&problemsJSON,
		&rubric.TotalPoints,
		&rubric.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(criteriaJSON, &rubric.Criteria); err != nil {
		return nil, fmt.Errorf("failed to unmarshal criteria: %w", err)
	}
	if err := json.Unmarshal(problemsJSON, &rubric.Problems); err != nil {
		return nil, fmt.Errorf("failed to unmarshal problems: %w", err)
	}

	return rubric, nil
}

func (r *rubricRepository) Update(ctx context.Context, assignmentID string, criteria []models.Criterion, totalPoints int, problems *[]models.Problem) (*models.Rubric, error) {
	criteriaJSON, err := json.Marshal(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal criteria: %w", err)
	}

	// Problems are only replaced when the caller supplies them; criteria and
	// total_points always change together as a unit.
	if problems != nil {
		problemsJSON, err := json.Marshal(*problems)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal problems: %w", err)
		}

		query := `
			UPDATE rubrics
			SET criteria = $1, problems = $2, total_points = $3, updated_at = $4
			WHERE assignment_id = $5
		`
		if _, err := r.db.ExecContext(ctx, query, criteriaJSON, problemsJSON, totalPoints, time.Now(), assignmentID); err != nil {
			return nil, err
		}
	} else {
		query := `
			UPDATE rubrics
			SET criteria = $1, total_points = $2, updated_at = $3
			WHERE assignment_id = $4
		`
		if _, err := r.db.ExecContext(ctx, query, criteriaJSON, totalPoints, time.Now(), assignmentID); err != nil {
			return nil, err
		}
	}

	return r.GetByAssignmentID(ctx, assignmentID)
}
