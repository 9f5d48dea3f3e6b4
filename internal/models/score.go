package models

import (
	"time"
)

// Score holds the grader's verdict for exactly one submission.
// PointsEarned is the grader's self-reported total, stored as-is; the
// per-criterion breakdown is not re-summed here.
type Score struct {
	ID           string    `json:"id" db:"id"`
	SubmissionID string    `json:"submission_id" db:"submission_id"`
	RubricID     string    `json:"rubric_id" db:"rubric_id"`
	PointsEarned int       `json:"points_earned" db:"points_earned"`
	Feedback     string    `json:"feedback" db:"feedback"`
	GradedAt     time.Time `json:"graded_at" db:"graded_at"`
}

// ScoreWithSubmission carries the owning submission's keys alongside the
// score, so report aggregation can attribute points without extra lookups.
type ScoreWithSubmission struct {
	Score
	StudentID    string `json:"student_id" db:"student_id"`
	ProblemIndex int    `json:"problem_index" db:"problem_index"`
}
