package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/acadmx/tuition-service/internal/period"
)

// Method enumerates how a tuition payment was made.
type Method string

const (
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
	MethodCard     Method = "card"
	MethodOther    Method = "other"
)

// Valid reports whether m is one of the known methods.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodTransfer, MethodCard, MethodOther:
		return true
	}
	return false
}

// Payment mirrors the database schema for the payments table. Rows are
// never updated in place; the ledger only inserts and deletes.
type Payment struct {
	ID          uuid.UUID `json:"id"`
	StudentID   uuid.UUID `json:"student_id"`
	TeacherID   uuid.UUID `json:"teacher_id"`
	PeriodMonth int       `json:"period_month"`
	PeriodYear  int       `json:"period_year"`
	PaidOn      time.Time `json:"paid_on"`
	Amount      float64   `json:"amount"`
	Method      Method    `json:"method"`
	Note        *string   `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Period returns the billing cycle this payment covers.
func (p Payment) Period() period.Period {
	return period.Period{Year: p.PeriodYear, Month: p.PeriodMonth}
}

// CreateParams represents validated data needed to insert a payment.
type CreateParams struct {
	StudentID uuid.UUID
	TeacherID uuid.UUID
	Period    period.Period
	PaidOn    time.Time
	Amount    float64
	Method    Method
	Note      *string
}

// ListFilter narrows the payment listing. TeacherID is always applied.
type ListFilter struct {
	TeacherID uuid.UUID
	StudentID *uuid.UUID
	Month     *int
	Year      *int
}
