package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sketchwork/assessment-service/internal/models"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	GetByAssignmentID(ctx context.Context, assignmentID string) ([]models.Submission, error)
	GetByStudent(ctx context.Context, assignmentID, studentID string) ([]models.Submission, error)
	UpdateImageKey(ctx context.Context, id, imageKey string) error
}

type submissionRepository struct {
	*PostgresRepository
}

func NewSubmissionRepository(db *sql.DB, logger zerolog.Logger) SubmissionRepository {
	return &submissionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	whiteboardJSON, err := json.Marshal(submission.Whiteboard)
	if err != nil {
		return fmt.Errorf("failed to marshal whiteboard data: %w", err)
	}

	query := `
		INSERT INTO submissions (id, assignment_id, student_id, problem_index, whiteboard_data, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		submission.ID,
		submission.AssignmentID,
		submission.StudentID,
		submission.ProblemIndex,
		whiteboardJSON,
		submission.SubmittedAt,
	)

	return err
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `
		SELECT id, assignment_id, student_id, problem_index, whiteboard_data, COALESCE(image_key, ''), submitted_at
		FROM submissions
		WHERE id = $1
	`

	submission := &models.Submission{}
	var whiteboardJSON []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&submission.ID,
		&submission.AssignmentID,
		&submission.StudentID,
		&submission.ProblemIndex,
		&whiteboardJSON,
		&submission.ImageKey,
		&submission.SubmittedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(whiteboardJSON, &submission.Whiteboard); err != nil {
		return nil, fmt.Errorf("failed to unmarshal whiteboard data: %w", err)
	}

	return submission, nil
}

// GetByAssignmentID returns submissions in submitted_at order; the report
// fold relies on that order for first-seen student grouping.
func (r *submissionRepository) GetByAssignmentID(ctx context.Context, assignmentID string) ([]models.Submission, error) {
	query := `
		SELECT id, assignment_id, student_id, problem_index, whiteboard_data, COALESCE(image_key, ''), submitted_at
		FROM submissions
		WHERE assignment_id = $1
		ORDER BY submitted_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *submissionRepository) GetByStudent(ctx context.Context, assignmentID, studentID string) ([]models.Submission, error) {
	query := `
		SELECT id, assignment_id, student_id, problem_index, whiteboard_data, COALESCE(image_key, ''), submitted_at
		FROM submissions
		WHERE assignment_id = $1 AND student_id = $2
		ORDER BY problem_index ASC
	`

	rows, err := r.db.QueryContext(ctx, query, assignmentID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *submissionRepository) UpdateImageKey(ctx context.Context, id, imageKey string) error {
	query := `
		UPDATE submissions
		SET image_key = $1
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, imageKey, id)
	return err
}

func (r *submissionRepository) scanAll(rows *sql.Rows) ([]models.Submission, error) {
	var submissions []models.Submission
	for rows.Next() {
		var submission models.Submission
		var whiteboardJSON []byte
		err := rows.Scan(
			&submission.ID,
			&submission.AssignmentID,
			&submission.StudentID,
			&submission.ProblemIndex,
			&whiteboardJSON,
			&submission.ImageKey,
			&submission.SubmittedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(whiteboardJSON, &submission.Whiteboard); err != nil {
			return nil, fmt.Errorf("failed to unmarshal whiteboard data: %w", err)
		}
		submissions = append(submissions, submission)
	}

	return submissions, rows.Err()
}
