// Package reconcile answers "is this period paid" by merging the local
// ledger with the billing provider's live subscription state. The ledger
// wins outright; the provider is consulted only when the ledger has no
// record, and a provider failure narrows the answer to ledger-only truth
// instead of failing the read.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/acadmx/tuition-service/internal/billing"
	"github.com/acadmx/tuition-service/internal/payment"
	"github.com/acadmx/tuition-service/internal/period"
)

// Source tags where the "paid" answer came from.
type Source string

const (
	SourceLedger       Source = "ledger"
	SourceSubscription Source = "subscription"
	SourceNone         Source = "none"
)

// SubscriptionInfo is the slice of a snapshot worth showing to the caller
// when a subscription satisfies the period.
type SubscriptionInfo struct {
	ID                string                     `json:"id"`
	Status            billing.SubscriptionStatus `json:"status"`
	PeriodEnd         time.Time                  `json:"period_end"`
	CancelAtPeriodEnd bool                       `json:"cancel_at_period_end"`
	Amount            int64                      `json:"amount"`
}

// Status is the reconciled answer for one (student, period) pair.
type Status struct {
	StudentID    uuid.UUID         `json:"student_id"`
	PeriodMonth  int               `json:"period_month"`
	PeriodYear   int               `json:"period_year"`
	Satisfied    bool              `json:"satisfied"`
	Source       Source            `json:"source"`
	Payment      *payment.Payment  `json:"payment,omitempty"`
	Subscription *SubscriptionInfo `json:"subscription,omitempty"`
	Degraded     bool              `json:"degraded"`
}

// Ledger is the read side of the payment store.
type Ledger interface {
	GetByStudentPeriod(ctx context.Context, studentID uuid.UUID, p period.Period) (payment.Payment, error)
}

// SubscriptionLookup fetches the student's live subscription, if any.
type SubscriptionLookup interface {
	FindForStudent(ctx context.Context, studentID uuid.UUID) (*billing.Snapshot, error)
}

// Reconciler merges both sources. It performs no writes and keeps no state,
// so callers may poll it freely.
type Reconciler struct {
	ledger  Ledger
	billing SubscriptionLookup
	now     func() time.Time
	log     *slog.Logger
}

func New(ledger Ledger, lookup SubscriptionLookup, log *slog.Logger) *Reconciler {
	return &Reconciler{ledger: ledger, billing: lookup, now: time.Now, log: log}
}

// PeriodStatus resolves whether the student has satisfied payment for p.
func (r *Reconciler) PeriodStatus(ctx context.Context, studentID uuid.UUID, p period.Period) (Status, error) {
	status := Status{
		StudentID:   studentID,
		PeriodMonth: p.Month,
		PeriodYear:  p.Year,
		Satisfied:   false,
		Source:      SourceNone,
	}

	pay, err := r.ledger.GetByStudentPeriod(ctx, studentID, p)
	switch {
	case err == nil:
		status.Satisfied = true
		status.Source = SourceLedger
		status.Payment = &pay
		return status, nil
	case !errors.Is(err, payment.ErrNotFound):
		return Status{}, err
	}

	snap, err := r.billing.FindForStudent(ctx, studentID)
	if err != nil {
		status.Degraded = true
		r.log.Warn("billing lookup failed, falling back to ledger-only status",
			"student_id", studentID,
			"error", err,
		)
		return status, nil
	}

	if snap != nil && snap.Covers(r.now()) {
		status.Satisfied = true
		status.Source = SourceSubscription
		status.Subscription = &SubscriptionInfo{
			ID:                snap.ID,
			Status:            snap.Status,
			PeriodEnd:         snap.PeriodEnd,
			CancelAtPeriodEnd: snap.CancelAtPeriodEnd,
			Amount:            snap.Amount,
		}
	}

	return status, nil
}
