package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/sketchwork/assessment-service/internal/models"
)

type ScoreRepository interface {
	Create(ctx context.Context, score *models.Score) error
	GetBySubmissionID(ctx context.Context, submissionID string) (*models.Score, error)
	GetByAssignmentID(ctx context.Context, assignmentID string) ([]models.ScoreWithSubmission, error)
}

type scoreRepository struct {
	*PostgresRepository
}

func NewScoreRepository(db *sql.DB, logger zerolog.Logger) ScoreRepository {
	return &scoreRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *scoreRepository) Create(ctx context.Context, score *models.Score) error {
	query := `
		INSERT INTO scores (id, submission_id, rubric_id, points_earned, feedback, graded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		score.ID,
		score.SubmissionID,
		score.RubricID,
		score.PointsEarned,
		score.Feedback,
		score.GradedAt,
	)

	return err
}

func (r *scoreRepository) GetBySubmissionID(ctx context.Context, submissionID string) (*models.Score, error) {
	query := `
		SELECT id, submission_id, rubric_id, points_earned, feedback, graded_at
		FROM scores
		WHERE submission_id = $1
	`

	score := &models.Score{}
	err := r.db.QueryRowContext(ctx, query, submissionID).Scan(
		&score.ID,
		&score.SubmissionID,
		&score.RubricID,
		&score.PointsEarned,
		&score.Feedback,
		&score.GradedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return score, err
}

func (r *scoreRepository) GetByAssignmentID(ctx context.Context, assignmentID string) ([]models.ScoreWithSubmission, error) {
	query := `
		SELECT
			sc.id, sc.submission_id, sc.rubric_id, sc.points_earned, sc.feedback, sc.graded_at,
			su.student_id, su.problem_index
		FROM scores sc
		JOIN submissions su ON sc.submission_id = su.id
		WHERE su.assignment_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []models.ScoreWithSubmission
	for rows.Next() {
		var score models.ScoreWithSubmission
		err := rows.Scan(
			&score.ID,
			&score.SubmissionID,
			&score.RubricID,
			&score.PointsEarned,
			&score.Feedback,
			&score.GradedAt,
			&score.StudentID,
			&score.ProblemIndex,
		)
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}

	return scores, rows.Err()
}
