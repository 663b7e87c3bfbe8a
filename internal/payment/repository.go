package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/acadmx/tuition-service/internal/period"
)

const paymentColumns = `id, student_id, teacher_id, period_month, period_year, paid_on, amount, method, note, created_at`

// Repository handles persistence for the payment ledger.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a validated payment. A concurrent insert for the same
// (student, period) pair trips the unique constraint and is reported as
// AlreadyPaidError, the same rejection the validator pre-check produces.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Payment, error) {
	const query = `
		INSERT INTO payments (student_id, teacher_id, period_month, period_year, paid_on, amount, method, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + paymentColumns

	row := r.db.QueryRowContext(ctx, query,
		params.StudentID,
		params.TeacherID,
		params.Period.Month,
		params.Period.Year,
		params.PaidOn,
		params.Amount,
		params.Method,
		params.Note,
	)

	p, err := scanPayment(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return Payment{}, &AlreadyPaidError{Period: params.Period}
		}
		return Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	return p, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, fmt.Errorf("select payment: %w", err)
	}
	return p, nil
}

// GetByStudentPeriod returns the payment covering one billing cycle.
func (r *Repository) GetByStudentPeriod(ctx context.Context, studentID uuid.UUID, p period.Period) (Payment, error) {
	const query = `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE student_id = $1 AND period_year = $2 AND period_month = $3`

	pay, err := scanPayment(r.db.QueryRowContext(ctx, query, studentID, p.Year, p.Month))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, fmt.Errorf("select payment by period: %w", err)
	}
	return pay, nil
}

// ListPeriods returns every period currently paid for a student.
func (r *Repository) ListPeriods(ctx context.Context, studentID uuid.UUID) ([]period.Period, error) {
	const query = `
		SELECT period_year, period_month
		FROM payments
		WHERE student_id = $1
		ORDER BY period_year, period_month`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	defer rows.Close()

	return collectPeriods(rows)
}

// List returns payments in the teacher's scope, newest period first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Payment, error) {
	where := []string{}
	args := []any{}

	args = append(args, filter.TeacherID)
	where = append(where, fmt.Sprintf("teacher_id = $%d", len(args)))

	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.Month != nil {
		args = append(args, *filter.Month)
		where = append(where, fmt.Sprintf("period_month = $%d", len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		where = append(where, fmt.Sprintf("period_year = $%d", len(args)))
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE ` +
		strings.Join(where, " AND ") +
		` ORDER BY period_year DESC, period_month DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}

// Delete removes a payment after re-verifying, inside the transaction, that
// no later period is paid for the same student. The student's ledger rows
// are locked for the duration so a concurrent insert cannot invalidate the
// check between the read and the delete.
func (r *Repository) Delete(ctx context.Context, p Payment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	const lockQuery = `
		SELECT period_year, period_month
		FROM payments
		WHERE student_id = $1
		FOR UPDATE`

	rows, err := tx.QueryContext(ctx, lockQuery, p.StudentID)
	if err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}
	periods, err := collectPeriods(rows)
	rows.Close()
	if err != nil {
		return err
	}

	if err := ValidateDeletion(p.Period(), periods); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, p.ID)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// SumAmount totals the recorded amounts matching the filter.
func (r *Repository) SumAmount(ctx context.Context, filter ListFilter) (float64, error) {
	where := []string{}
	args := []any{}

	args = append(args, filter.TeacherID)
	where = append(where, fmt.Sprintf("teacher_id = $%d", len(args)))

	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.Month != nil {
		args = append(args, *filter.Month)
		where = append(where, fmt.Sprintf("period_month = $%d", len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		where = append(where, fmt.Sprintf("period_year = $%d", len(args)))
	}

	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE ` + strings.Join(where, " AND ")

	var total float64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum payments: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID,
		&p.StudentID,
		&p.TeacherID,
		&p.PeriodMonth,
		&p.PeriodYear,
		&p.PaidOn,
		&p.Amount,
		&p.Method,
		&p.Note,
		&p.CreatedAt,
	)
	return p, err
}

func collectPeriods(rows *sql.Rows) ([]period.Period, error) {
	var periods []period.Period
	for rows.Next() {
		var p period.Period
		if err := rows.Scan(&p.Year, &p.Month); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods: %w", err)
	}
	return periods, nil
}
