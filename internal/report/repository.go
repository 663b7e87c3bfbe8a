package report

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/acadmx/tuition-service/internal/period"
	"github.com/acadmx/tuition-service/internal/student"
)

// MonthStatus splits a teacher's active students into paid and pending for
// one period, with the money totals the dashboard shows.
type MonthStatus struct {
	PeriodMonth  int               `json:"period_month"`
	PeriodYear   int               `json:"period_year"`
	TotalActive  int               `json:"total_active"`
	Paid         []student.Student `json:"paid"`
	Pending      []student.Student `json:"pending"`
	TotalPaid    float64           `json:"total_paid"`
	TotalPending float64           `json:"total_pending"`
}

// Metrics are the admin-wide collection figures for one period.
type Metrics struct {
	PeriodMonth      int     `json:"period_month"`
	PeriodYear       int     `json:"period_year"`
	TotalStudents    int     `json:"total_students"`
	TotalTeachers    int     `json:"total_teachers"`
	ExpectedTotal    float64 `json:"expected_total"`
	CollectedTotal   float64 `json:"collected_total"`
	PendingTotal     float64 `json:"pending_total"`
	CollectedPercent float64 `json:"collected_percent"`
}

// Repository derives dashboard figures from the ledger and student tables.
// Read-only reducers; no business rules live here.
type Repository struct {
	db       *sql.DB
	students *student.Repository
}

func NewRepository(db *sql.DB, students *student.Repository) *Repository {
	return &Repository{db: db, students: students}
}

// MonthStatus reports which of the teacher's active students have paid p.
func (r *Repository) MonthStatus(ctx context.Context, teacherID uuid.UUID, p period.Period) (MonthStatus, error) {
	students, err := r.students.ListByTeacher(ctx, teacherID, true)
	if err != nil {
		return MonthStatus{}, err
	}

	const query = `
		SELECT student_id
		FROM payments
		WHERE teacher_id = $1 AND period_year = $2 AND period_month = $3`

	rows, err := r.db.QueryContext(ctx, query, teacherID, p.Year, p.Month)
	if err != nil {
		return MonthStatus{}, fmt.Errorf("list paid students: %w", err)
	}
	defer rows.Close()

	paidIDs := map[uuid.UUID]struct{}{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return MonthStatus{}, fmt.Errorf("scan paid student: %w", err)
		}
		paidIDs[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return MonthStatus{}, fmt.Errorf("iterate paid students: %w", err)
	}

	status := MonthStatus{
		PeriodMonth: p.Month,
		PeriodYear:  p.Year,
		TotalActive: len(students),
		Paid:        []student.Student{},
		Pending:     []student.Student{},
	}
	for _, st := range students {
		if _, ok := paidIDs[st.ID]; ok {
			status.Paid = append(status.Paid, st)
			status.TotalPaid += st.MonthlyFee
		} else {
			status.Pending = append(status.Pending, st)
			status.TotalPending += st.MonthlyFee
		}
	}
	return status, nil
}

// Metrics aggregates collection figures across every active student.
func (r *Repository) Metrics(ctx context.Context, p period.Period) (Metrics, error) {
	metrics := Metrics{PeriodMonth: p.Month, PeriodYear: p.Year}

	const studentsQuery = `
		SELECT COUNT(*), COUNT(DISTINCT teacher_id), COALESCE(SUM(monthly_fee), 0)
		FROM students
		WHERE active`

	if err := r.db.QueryRowContext(ctx, studentsQuery).Scan(
		&metrics.TotalStudents,
		&metrics.TotalTeachers,
		&metrics.ExpectedTotal,
	); err != nil {
		return Metrics{}, fmt.Errorf("aggregate students: %w", err)
	}

	const collectedQuery = `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE period_year = $1 AND period_month = $2`

	if err := r.db.QueryRowContext(ctx, collectedQuery, p.Year, p.Month).Scan(&metrics.CollectedTotal); err != nil {
		return Metrics{}, fmt.Errorf("aggregate payments: %w", err)
	}

	metrics.PendingTotal = metrics.ExpectedTotal - metrics.CollectedTotal
	if metrics.ExpectedTotal > 0 {
		metrics.CollectedPercent = metrics.CollectedTotal / metrics.ExpectedTotal * 100
	}
	return metrics, nil
}
