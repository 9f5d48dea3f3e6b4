package models

import (
	"time"
)

// Student rows are append-only: every join creates a fresh record and no
// uniqueness key exists. Progress is keyed on the id handed back at join
// time, so repeat joins under the same name stay separate on purpose.
type Student struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
