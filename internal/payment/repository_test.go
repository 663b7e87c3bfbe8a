package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/acadmx/tuition-service/internal/period"
)

var paymentRows = []string{
	"id", "student_id", "teacher_id", "period_month", "period_year",
	"paid_on", "amount", "method", "note", "created_at",
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)

	studentID := uuid.New()
	teacherID := uuid.New()
	paidOn := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	rows := sqlmock.NewRows(paymentRows).
		AddRow(uuid.New().String(), studentID.String(), teacherID.String(), 3, 2024, paidOn, 1500.0, "cash", nil, now)

	mock.ExpectQuery("INSERT INTO payments").
		WithArgs(studentID, teacherID, 3, 2024, paidOn, 1500.0, "cash", nil).
		WillReturnRows(rows)

	p, err := repo.Create(context.Background(), CreateParams{
		StudentID: studentID,
		TeacherID: teacherID,
		Period:    period.Period{Year: 2024, Month: 3},
		PaidOn:    paidOn,
		Amount:    1500,
		Method:    MethodCash,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.StudentID != studentID || p.PeriodMonth != 3 || p.Amount != 1500 {
		t.Fatalf("unexpected payment: %+v", p)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepository_CreateUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)

	// A concurrent insert won the race; the constraint failure must read
	// as "already paid", same as the validator pre-check.
	mock.ExpectQuery("INSERT INTO payments").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "payments_student_period_key"})

	_, err = repo.Create(context.Background(), CreateParams{
		StudentID: uuid.New(),
		TeacherID: uuid.New(),
		Period:    period.Period{Year: 2024, Month: 3},
		PaidOn:    time.Now(),
		Amount:    1500,
		Method:    MethodTransfer,
	})

	var already *AlreadyPaidError
	if !errors.As(err, &already) {
		t.Fatalf("expected AlreadyPaidError, got %v", err)
	}
	if already.Period != (period.Period{Year: 2024, Month: 3}) {
		t.Fatalf("conflicting period = %v", already.Period)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepository_ListPeriods(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)
	studentID := uuid.New()

	rows := sqlmock.NewRows([]string{"period_year", "period_month"}).
		AddRow(2024, 1).
		AddRow(2024, 2).
		AddRow(2024, 3)

	mock.ExpectQuery("SELECT period_year, period_month").
		WithArgs(studentID).
		WillReturnRows(rows)

	periods, err := repo.ListPeriods(context.Background(), studentID)
	if err != nil {
		t.Fatalf("ListPeriods: %v", err)
	}
	if len(periods) != 3 {
		t.Fatalf("got %d periods", len(periods))
	}
	if periods[2] != (period.Period{Year: 2024, Month: 3}) {
		t.Fatalf("periods[2] = %v", periods[2])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepository_DeleteLastPeriod(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)

	target := Payment{
		ID:          uuid.New(),
		StudentID:   uuid.New(),
		PeriodMonth: 3,
		PeriodYear:  2024,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT period_year, period_month").
		WithArgs(target.StudentID).
		WillReturnRows(sqlmock.NewRows([]string{"period_year", "period_month"}).
			AddRow(2024, 1).
			AddRow(2024, 2).
			AddRow(2024, 3))
	mock.ExpectExec("DELETE FROM payments").
		WithArgs(target.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Delete(context.Background(), target); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepository_DeleteRecheckFindsConcurrentInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)

	// The pre-check saw March as the latest period, but a concurrent
	// insert added April before the transaction locked the rows.
	target := Payment{
		ID:          uuid.New(),
		StudentID:   uuid.New(),
		PeriodMonth: 3,
		PeriodYear:  2024,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT period_year, period_month").
		WithArgs(target.StudentID).
		WillReturnRows(sqlmock.NewRows([]string{"period_year", "period_month"}).
			AddRow(2024, 1).
			AddRow(2024, 2).
			AddRow(2024, 3).
			AddRow(2024, 4))
	mock.ExpectRollback()

	err = repo.Delete(context.Background(), target)

	var later *LaterPaymentError
	if !errors.As(err, &later) {
		t.Fatalf("expected LaterPaymentError, got %v", err)
	}
	if later.Next != (period.Period{Year: 2024, Month: 4}) {
		t.Fatalf("blocking period = %v, want 4/2024", later.Next)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM payments").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(paymentRows))

	if _, err := repo.GetByID(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
