package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/acadmx/tuition-service/internal/period"
	"github.com/acadmx/tuition-service/internal/student"
)

type stubStore struct {
	periods  []period.Period
	payments map[uuid.UUID]Payment
	created  *CreateParams
	deleted  *Payment
}

func (s *stubStore) Create(_ context.Context, params CreateParams) (Payment, error) {
	s.created = &params
	return Payment{
		ID:          uuid.New(),
		StudentID:   params.StudentID,
		TeacherID:   params.TeacherID,
		PeriodMonth: params.Period.Month,
		PeriodYear:  params.Period.Year,
		PaidOn:      params.PaidOn,
		Amount:      params.Amount,
		Method:      params.Method,
	}, nil
}

func (s *stubStore) GetByID(_ context.Context, id uuid.UUID) (Payment, error) {
	p, ok := s.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return p, nil
}

func (s *stubStore) ListPeriods(context.Context, uuid.UUID) ([]period.Period, error) {
	return s.periods, nil
}

func (s *stubStore) List(context.Context, ListFilter) ([]Payment, error) {
	return nil, nil
}

func (s *stubStore) Delete(_ context.Context, p Payment) error {
	s.deleted = &p
	return nil
}

func (s *stubStore) SumAmount(context.Context, ListFilter) (float64, error) {
	return 0, nil
}

type stubDirectory struct {
	students map[uuid.UUID]student.Student
}

func (d *stubDirectory) GetByID(_ context.Context, id uuid.UUID) (student.Student, error) {
	st, ok := d.students[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	return st, nil
}

func newFixture(teacherID uuid.UUID, enrolled time.Time, paid []period.Period) (*stubStore, *stubDirectory, uuid.UUID) {
	studentID := uuid.New()
	store := &stubStore{periods: paid, payments: map[uuid.UUID]Payment{}}
	dir := &stubDirectory{students: map[uuid.UUID]student.Student{
		studentID: {ID: studentID, TeacherID: teacherID, EnrolledAt: enrolled, MonthlyFee: 1200},
	}}
	return store, dir, studentID
}

func TestService_RecordHappyPath(t *testing.T) {
	teacherID := uuid.New()
	store, dir, studentID := newFixture(teacherID, date(2024, 1, 1), periods([2]int{2024, 1}))
	svc := NewService(store, dir)

	p, err := svc.Record(context.Background(), teacherID, CreateParams{
		StudentID: studentID,
		Period:    period.Period{Year: 2024, Month: 2},
		PaidOn:    date(2024, 2, 3),
		Amount:    900, // partial payments are allowed
		Method:    MethodCash,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if p.TeacherID != teacherID {
		t.Fatal("teacher id must be stamped from the authenticated caller")
	}
	if store.created == nil || store.created.Amount != 900 {
		t.Fatalf("stored params = %+v, amount must not be clamped to the fee", store.created)
	}
}

func TestService_RecordForbiddenForOtherTeacher(t *testing.T) {
	ownerID := uuid.New()
	store, dir, studentID := newFixture(ownerID, date(2024, 1, 1), nil)
	svc := NewService(store, dir)

	_, err := svc.Record(context.Background(), uuid.New(), CreateParams{
		StudentID: studentID,
		Period:    period.Period{Year: 2024, Month: 1},
		Amount:    1200,
		Method:    MethodCash,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if store.created != nil {
		t.Fatal("nothing may be written after a failed ownership check")
	}
}

func TestService_RecordUnknownStudent(t *testing.T) {
	teacherID := uuid.New()
	store, dir, _ := newFixture(teacherID, date(2024, 1, 1), nil)
	svc := NewService(store, dir)

	_, err := svc.Record(context.Background(), teacherID, CreateParams{
		StudentID: uuid.New(),
		Period:    period.Period{Year: 2024, Month: 1},
		Amount:    1200,
		Method:    MethodCash,
	})
	if !errors.Is(err, student.ErrNotFound) {
		t.Fatalf("expected student.ErrNotFound, got %v", err)
	}
	if store.created != nil {
		t.Fatal("nothing may be written for an unknown student")
	}
}

func TestService_RecordGapRejected(t *testing.T) {
	teacherID := uuid.New()
	store, dir, studentID := newFixture(teacherID, date(2024, 1, 1), periods([2]int{2024, 1}))
	svc := NewService(store, dir)

	_, err := svc.Record(context.Background(), teacherID, CreateParams{
		StudentID: studentID,
		Period:    period.Period{Year: 2024, Month: 3},
		Amount:    1200,
		Method:    MethodCash,
	})
	var gap *GapError
	if !errors.As(err, &gap) {
		t.Fatalf("expected GapError, got %v", err)
	}
	if gap.Missing != (period.Period{Year: 2024, Month: 2}) {
		t.Fatalf("gap = %v", gap.Missing)
	}
}

func TestService_DeleteForbidden(t *testing.T) {
	teacherID := uuid.New()
	store, dir, studentID := newFixture(teacherID, date(2024, 1, 1), periods([2]int{2024, 1}))
	svc := NewService(store, dir)

	paymentID := uuid.New()
	store.payments[paymentID] = Payment{
		ID:          paymentID,
		StudentID:   studentID,
		TeacherID:   teacherID,
		PeriodMonth: 1,
		PeriodYear:  2024,
	}

	if err := svc.Delete(context.Background(), uuid.New(), paymentID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if store.deleted != nil {
		t.Fatal("nothing may be deleted after a failed ownership check")
	}
}

func TestService_DeleteBlockedByLaterPayment(t *testing.T) {
	teacherID := uuid.New()
	store, dir, studentID := newFixture(teacherID, date(2024, 1, 1),
		periods([2]int{2024, 1}, [2]int{2024, 2}))
	svc := NewService(store, dir)

	paymentID := uuid.New()
	store.payments[paymentID] = Payment{
		ID:          paymentID,
		StudentID:   studentID,
		TeacherID:   teacherID,
		PeriodMonth: 1,
		PeriodYear:  2024,
	}

	err := svc.Delete(context.Background(), teacherID, paymentID)
	var later *LaterPaymentError
	if !errors.As(err, &later) {
		t.Fatalf("expected LaterPaymentError, got %v", err)
	}
	if later.Next != (period.Period{Year: 2024, Month: 2}) {
		t.Fatalf("blocking period = %v", later.Next)
	}
}

func TestService_DeleteLatest(t *testing.T) {
	teacherID := uuid.New()
	store, dir, studentID := newFixture(teacherID, date(2024, 1, 1),
		periods([2]int{2024, 1}, [2]int{2024, 2}))
	svc := NewService(store, dir)

	paymentID := uuid.New()
	store.payments[paymentID] = Payment{
		ID:          paymentID,
		StudentID:   studentID,
		TeacherID:   teacherID,
		PeriodMonth: 2,
		PeriodYear:  2024,
	}

	if err := svc.Delete(context.Background(), teacherID, paymentID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.deleted == nil || store.deleted.ID != paymentID {
		t.Fatalf("deleted = %+v", store.deleted)
	}
}
