package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const slotColumns = `id, weekday, start_time, end_time, branch, created_at, updated_at`

// Repository handles persistence for schedule slots.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Slot, error) {
	const query = `
		INSERT INTO schedule_slots (weekday, start_time, end_time, branch)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + slotColumns

	slot, err := scanSlot(r.db.QueryRowContext(ctx, query,
		params.Weekday,
		params.StartTime,
		params.EndTime,
		params.Branch,
	))
	if err != nil {
		return Slot{}, fmt.Errorf("insert slot: %w", err)
	}
	return slot, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Slot, error) {
	const query = `SELECT ` + slotColumns + ` FROM schedule_slots WHERE id = $1`

	slot, err := scanSlot(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Slot{}, ErrNotFound
		}
		return Slot{}, fmt.Errorf("select slot: %w", err)
	}
	return slot, nil
}

// List returns all slots ordered the way the week reads: by day, then by
// start time, then by branch.
func (r *Repository) List(ctx context.Context, branch string) ([]Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM schedule_slots`
	args := []any{}
	if branch != "" {
		args = append(args, branch)
		query += ` WHERE branch = $1`
	}
	query += ` ORDER BY weekday, start_time, branch`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return slots, nil
}

func (r *Repository) Update(ctx context.Context, params UpdateParams) (Slot, error) {
	setParts := []string{}
	args := []any{}

	if params.Weekday != nil {
		args = append(args, *params.Weekday)
		setParts = append(setParts, fmt.Sprintf("weekday = $%d", len(args)))
	}
	if params.StartTime != nil {
		args = append(args, *params.StartTime)
		setParts = append(setParts, fmt.Sprintf("start_time = $%d", len(args)))
	}
	if params.EndTime != nil {
		args = append(args, *params.EndTime)
		setParts = append(setParts, fmt.Sprintf("end_time = $%d", len(args)))
	}
	if params.Branch != nil {
		args = append(args, *params.Branch)
		setParts = append(setParts, fmt.Sprintf("branch = $%d", len(args)))
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, params.ID)
	}

	args = append(args, params.ID)
	query := fmt.Sprintf(`
		UPDATE schedule_slots
		SET %s, updated_at = now()
		WHERE id = $%d
		RETURNING `+slotColumns,
		strings.Join(setParts, ", "),
		len(args),
	)

	slot, err := scanSlot(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Slot{}, ErrNotFound
		}
		return Slot{}, fmt.Errorf("update slot: %w", err)
	}
	return slot, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM schedule_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (Slot, error) {
	var slot Slot
	err := row.Scan(
		&slot.ID,
		&slot.Weekday,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Branch,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	return slot, err
}
