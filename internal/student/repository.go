package student

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const studentColumns = `id, teacher_id, full_name, guardian_name, guardian_phone, monthly_fee, enrolled_at, pay_day, active, created_at, updated_at`

// Repository handles persistence for students.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Student, error) {
	const query = `
		INSERT INTO students (teacher_id, full_name, guardian_name, guardian_phone, monthly_fee, enrolled_at, pay_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + studentColumns

	row := r.db.QueryRowContext(ctx, query,
		params.TeacherID,
		params.FullName,
		params.GuardianName,
		params.GuardianPhone,
		params.MonthlyFee,
		params.EnrolledAt,
		params.PayDay,
	)

	st, err := scanStudent(row)
	if err != nil {
		return Student{}, fmt.Errorf("insert student: %w", err)
	}
	return st, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Student, error) {
	const query = `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	st, err := scanStudent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, fmt.Errorf("select student: %w", err)
	}
	return st, nil
}

// ListByTeacher returns a teacher's students, optionally only the active ones.
func (r *Repository) ListByTeacher(ctx context.Context, teacherID uuid.UUID, activeOnly bool) ([]Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE teacher_id = $1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY full_name`

	rows, err := r.db.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

func (r *Repository) Update(ctx context.Context, params UpdateParams) (Student, error) {
	setParts := []string{}
	args := []any{}

	if params.FullName != nil {
		args = append(args, *params.FullName)
		setParts = append(setParts, fmt.Sprintf("full_name = $%d", len(args)))
	}
	if params.GuardianName != nil {
		args = append(args, *params.GuardianName)
		setParts = append(setParts, fmt.Sprintf("guardian_name = $%d", len(args)))
	}
	if params.GuardianPhone != nil {
		args = append(args, *params.GuardianPhone)
		setParts = append(setParts, fmt.Sprintf("guardian_phone = $%d", len(args)))
	}
	if params.MonthlyFee != nil {
		args = append(args, *params.MonthlyFee)
		setParts = append(setParts, fmt.Sprintf("monthly_fee = $%d", len(args)))
	}
	if params.PayDay != nil {
		args = append(args, *params.PayDay)
		setParts = append(setParts, fmt.Sprintf("pay_day = $%d", len(args)))
	}
	if params.Active != nil {
		args = append(args, *params.Active)
		setParts = append(setParts, fmt.Sprintf("active = $%d", len(args)))
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, params.ID)
	}

	args = append(args, params.ID)
	query := fmt.Sprintf(`
		UPDATE students
		SET %s, updated_at = now()
		WHERE id = $%d
		RETURNING `+studentColumns,
		strings.Join(setParts, ", "),
		len(args),
	)

	st, err := scanStudent(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, fmt.Errorf("update student: %w", err)
	}
	return st, nil
}

// Deactivate marks a student inactive without losing the payment history.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE students SET active = false, updated_at = now() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate student: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (Student, error) {
	var st Student
	err := row.Scan(
		&st.ID,
		&st.TeacherID,
		&st.FullName,
		&st.GuardianName,
		&st.GuardianPhone,
		&st.MonthlyFee,
		&st.EnrolledAt,
		&st.PayDay,
		&st.Active,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	return st, err
}
