package payment

import (
	"errors"
	"fmt"

	"github.com/acadmx/tuition-service/internal/period"
)

var (
	// ErrNotFound is returned when a payment id does not exist.
	ErrNotFound = errors.New("payment not found")

	// ErrForbidden is returned when the requesting teacher does not own
	// the student the payment belongs to.
	ErrForbidden = errors.New("payment belongs to another teacher")

	// ErrInvalidPeriod is returned for a period whose month is out of range.
	ErrInvalidPeriod = errors.New("period month must be between 1 and 12")
)

// BeforeEnrollmentError rejects a payment dated before the student joined.
type BeforeEnrollmentError struct {
	Enrollment period.Period
	Proposed   period.Period
}

func (e *BeforeEnrollmentError) Error() string {
	return fmt.Sprintf("cannot record a payment for %s before the enrollment month %s", e.Proposed, e.Enrollment)
}

// AlreadyPaidError rejects a second payment for the same period.
type AlreadyPaidError struct {
	Period period.Period
}

func (e *AlreadyPaidError) Error() string {
	return fmt.Sprintf("period %s is already paid", e.Period)
}

// GapError rejects a payment that would skip over an unpaid month. Missing
// is the earliest unpaid period between enrollment and the proposed one.
type GapError struct {
	Missing  period.Period
	Proposed period.Period
}

func (e *GapError) Error() string {
	return fmt.Sprintf("period %s must be paid before %s", e.Missing, e.Proposed)
}

// LaterPaymentError rejects a deletion while a later period remains paid.
// Next is the earliest of the blocking periods.
type LaterPaymentError struct {
	Next period.Period
}

func (e *LaterPaymentError) Error() string {
	return fmt.Sprintf("later payments exist (%s); delete the most recent periods first", e.Next)
}
