package payment

import (
	"time"

	"github.com/acadmx/tuition-service/internal/period"
)

// ValidateInsertion decides whether a payment for proposed may be recorded
// given the student's enrollment date and the set of periods already paid.
//
// Payments must form an unbroken monthly run starting at the enrollment
// month, so the checks are, in order: the proposed period is not before
// enrollment, is not already paid, and every month from enrollment up to it
// is covered. The earliest missing month is reported on a gap.
//
// The function is pure; the storage layer's unique key still guards the
// window between this check and the insert.
func ValidateInsertion(enrolledAt time.Time, existing []period.Period, proposed period.Period) error {
	if !proposed.Valid() {
		return ErrInvalidPeriod
	}

	enrollment := period.FromTime(enrolledAt)
	if proposed.Before(enrollment) {
		return &BeforeEnrollmentError{Enrollment: enrollment, Proposed: proposed}
	}

	paid := make(map[int]struct{}, len(existing))
	for _, p := range existing {
		paid[p.Index()] = struct{}{}
	}

	if _, ok := paid[proposed.Index()]; ok {
		return &AlreadyPaidError{Period: proposed}
	}

	for idx := enrollment.Index(); idx < proposed.Index(); idx++ {
		if _, ok := paid[idx]; !ok {
			return &GapError{Missing: period.FromIndex(idx), Proposed: proposed}
		}
	}

	return nil
}

// ValidateDeletion decides whether the payment for target may be removed.
// Deletions proceed from the most recent period backward: if any strictly
// later period is paid, the earliest of them is reported and the deletion
// is rejected, keeping the paid run contiguous.
func ValidateDeletion(target period.Period, existing []period.Period) error {
	var next *period.Period
	for _, p := range existing {
		if !p.After(target) {
			continue
		}
		if next == nil || p.Before(*next) {
			q := p
			next = &q
		}
	}
	if next != nil {
		return &LaterPaymentError{Next: *next}
	}
	return nil
}
