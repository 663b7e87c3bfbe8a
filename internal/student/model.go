package student

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a student id does not exist.
var ErrNotFound = errors.New("student not found")

// Student mirrors the database schema for the students table.
type Student struct {
	ID            uuid.UUID `json:"id"`
	TeacherID     uuid.UUID `json:"teacher_id"`
	FullName      string    `json:"full_name"`
	GuardianName  string    `json:"guardian_name"`
	GuardianPhone string    `json:"guardian_phone"`
	MonthlyFee    float64   `json:"monthly_fee"`
	EnrolledAt    time.Time `json:"enrolled_at"`
	PayDay        int       `json:"pay_day"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateParams represents validated data needed to insert a student.
type CreateParams struct {
	TeacherID     uuid.UUID
	FullName      string
	GuardianName  string
	GuardianPhone string
	MonthlyFee    float64
	EnrolledAt    time.Time
	PayDay        int
}

// UpdateParams carries mutable fields for an existing student.
type UpdateParams struct {
	ID            uuid.UUID
	FullName      *string
	GuardianName  *string
	GuardianPhone *string
	MonthlyFee    *float64
	PayDay        *int
	Active        *bool
}
