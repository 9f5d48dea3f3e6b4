package models

import (
	"time"
)

type Assignment struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	TeacherID   string    `json:"teacher_id" db:"teacher_id"`
	ShareCode   string    `json:"share_code" db:"share_code"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type AssignmentWithRubric struct {
	Assignment
	Rubric Rubric `json:"rubric"`
}
