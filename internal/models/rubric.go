package models

import (
	"time"
)

// ProblemsPerAssignment is fixed across the system: the generator contract
// always returns five problems, and reports assume the same count. Changing
// it here without changing the consuming UI would mis-report progress.
const ProblemsPerAssignment = 5

// LevelNames are the four fixed performance bands every criterion carries.
var LevelNames = [4]string{"Excellent", "Good", "Developing", "Beginning"}

type Level struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Percentage  float64 `json:"percentage"`
}

type Criterion struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Points      int     `json:"points" validate:"required,gt=0"`
	Levels      []Level `json:"levels" validate:"len=4"`
}

type Problem struct {
	Question string  `json:"question"`
	Hint     *string `json:"hint,omitempty"`
}

// Rubric is the scoring template for one assignment, applied identically to
// every problem. TotalPoints is the ceiling for a single problem's score,
// not the sum across problems.
type Rubric struct {
	ID           string      `json:"id" db:"id"`
	AssignmentID string      `json:"assignment_id" db:"assignment_id"`
	Criteria     []Criterion `json:"criteria" db:"criteria"`
	Problems     []Problem   `json:"problems" db:"problems"`
	TotalPoints  int         `json:"total_points" db:"total_points"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}
