package models

import (
	"time"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Stroke struct {
	Points []Point `json:"points"`
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
}

// WhiteboardData is the captured answer: raw strokes plus the rendered
// image the grader actually looks at.
type WhiteboardData struct {
	Strokes  []Stroke `json:"strokes"`
	ImageURL string   `json:"image_url,omitempty"`
}

type Submission struct {
	ID           string         `json:"id" db:"id"`
	AssignmentID string         `json:"assignment_id" db:"assignment_id"`
	StudentID    string         `json:"student_id" db:"student_id"`
	ProblemIndex int            `json:"problem_index" db:"problem_index"`
	Whiteboard   WhiteboardData `json:"whiteboard_data" db:"whiteboard_data"`
	ImageKey     string         `json:"image_key,omitempty" db:"image_key"`
	SubmittedAt  time.Time      `json:"submitted_at" db:"submitted_at"`
}
