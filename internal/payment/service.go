package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/acadmx/tuition-service/internal/period"
	"github.com/acadmx/tuition-service/internal/student"
)

// Store is the ledger persistence consumed by the service.
type Store interface {
	Create(ctx context.Context, params CreateParams) (Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (Payment, error)
	ListPeriods(ctx context.Context, studentID uuid.UUID) ([]period.Period, error)
	List(ctx context.Context, filter ListFilter) ([]Payment, error)
	Delete(ctx context.Context, p Payment) error
	SumAmount(ctx context.Context, filter ListFilter) (float64, error)
}

// StudentDirectory resolves enrollment records for validation and ownership.
type StudentDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (student.Student, error)
}

// Service defines the ledger operations exposed to handlers.
type Service interface {
	Record(ctx context.Context, teacherID uuid.UUID, params CreateParams) (Payment, error)
	Delete(ctx context.Context, teacherID, paymentID uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]Payment, error)
	SumAmount(ctx context.Context, filter ListFilter) (float64, error)
}

type service struct {
	store    Store
	students StudentDirectory
}

// NewService creates a Service backed by the provided store and directory.
func NewService(store Store, students StudentDirectory) Service {
	return &service{store: store, students: students}
}

// Record validates and persists a payment for the requesting teacher.
// Ownership is checked against the student record, then the sequential
// rules run against the student's current periods. The amount is stored as
// given; it is allowed to differ from the student's monthly fee.
func (s *service) Record(ctx context.Context, teacherID uuid.UUID, params CreateParams) (Payment, error) {
	st, err := s.students.GetByID(ctx, params.StudentID)
	if err != nil {
		return Payment{}, err
	}
	if st.TeacherID != teacherID {
		return Payment{}, ErrForbidden
	}

	existing, err := s.store.ListPeriods(ctx, params.StudentID)
	if err != nil {
		return Payment{}, fmt.Errorf("load paid periods: %w", err)
	}

	if err := ValidateInsertion(st.EnrolledAt, existing, params.Period); err != nil {
		return Payment{}, err
	}

	params.TeacherID = teacherID
	return s.store.Create(ctx, params)
}

// Delete removes a payment if it is the most recent one for its student.
// The pre-check here gives a fast rejection; the store repeats it inside
// the delete transaction against locked rows.
func (s *service) Delete(ctx context.Context, teacherID, paymentID uuid.UUID) error {
	p, err := s.store.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if p.TeacherID != teacherID {
		return ErrForbidden
	}

	existing, err := s.store.ListPeriods(ctx, p.StudentID)
	if err != nil {
		return fmt.Errorf("load paid periods: %w", err)
	}
	if err := ValidateDeletion(p.Period(), existing); err != nil {
		return err
	}

	return s.store.Delete(ctx, p)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Payment, error) {
	return s.store.List(ctx, filter)
}

func (s *service) SumAmount(ctx context.Context, filter ListFilter) (float64, error) {
	return s.store.SumAmount(ctx, filter)
}
