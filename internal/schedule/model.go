package schedule

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a slot id does not exist.
var ErrNotFound = errors.New("schedule slot not found")

// Weekday names indexed 1 (Monday) through 7 (Sunday).
var weekdayNames = map[int]string{
	1: "Monday",
	2: "Tuesday",
	3: "Wednesday",
	4: "Thursday",
	5: "Friday",
	6: "Saturday",
	7: "Sunday",
}

// Slot is one weekly lesson block at a branch.
type Slot struct {
	ID        uuid.UUID `json:"id"`
	Weekday   int       `json:"weekday"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Branch    string    `json:"branch"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WeekdayName returns the slot's day as a display string.
func (s Slot) WeekdayName() string {
	return weekdayNames[s.Weekday]
}

// CreateParams represents validated data needed to insert a slot.
type CreateParams struct {
	Weekday   int
	StartTime string
	EndTime   string
	Branch    string
}

// UpdateParams carries mutable fields for an existing slot.
type UpdateParams struct {
	ID        uuid.UUID
	Weekday   *int
	StartTime *string
	EndTime   *string
	Branch    *string
}
