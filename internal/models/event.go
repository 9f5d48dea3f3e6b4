package models

type SubmissionGradedEvent struct {
	SubmissionID string `json:"submission_id"`
	AssignmentID string `json:"assignment_id"`
	StudentID    string `json:"student_id"`
	ProblemIndex int    `json:"problem_index"`
	PointsEarned int    `json:"points_earned"`
	Timestamp    int64  `json:"timestamp"`
}

// GradingRetryEvent is published when a submission persisted but its
// grading did not complete. The retry worker picks these up and re-grades;
// the submission itself is never rolled back.
type GradingRetryEvent struct {
	SubmissionID string `json:"submission_id"`
	AssignmentID string `json:"assignment_id"`
	Reason       string `json:"reason"`
	Timestamp    int64  `json:"timestamp"`
}
