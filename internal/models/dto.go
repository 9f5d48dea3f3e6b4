package models

import "time"

// Data Transfer Objects

type CreateAssignmentRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	TeacherID   string `json:"teacher_id" validate:"required,uuid"`
}

type CreateStudentRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type CreateSubmissionRequest struct {
	AssignmentID string         `json:"assignment_id" validate:"required,uuid"`
	StudentID    string         `json:"student_id" validate:"required,uuid"`
	ProblemIndex int            `json:"problem_index" validate:"min=0"`
	Whiteboard   WhiteboardData `json:"whiteboard_data"`
}

type SubmissionGradeResponse struct {
	SubmissionID string `json:"submission_id"`
	PointsEarned int    `json:"points_earned"`
	TotalPoints  int    `json:"total_points"`
}

type UpdateRubricRequest struct {
	Criteria    []Criterion `json:"criteria" validate:"required,min=1,dive"`
	TotalPoints int         `json:"total_points" validate:"required,gt=0"`
	Problems    *[]Problem  `json:"problems,omitempty"`
}

type AssignmentLookupResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ReportAssignment struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	TotalPoints int    `json:"total_points"`
}

type StudentReport struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	ProblemsCompleted int        `json:"problems_completed"`
	TotalProblems     int        `json:"total_problems"`
	TotalScore        int        `json:"total_score"`
	MaxScore          int        `json:"max_score"`
	SubmittedAt       *time.Time `json:"submitted_at"`
}

type AssignmentReport struct {
	Assignment ReportAssignment `json:"assignment"`
	Students   []StudentReport  `json:"students"`
}
