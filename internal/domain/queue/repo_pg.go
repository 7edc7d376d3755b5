package queue

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type entryRepoPG struct{ pool *pgxpool.Pool }

// NewEntryRepoPG creates a new PostgreSQL-backed queue entry repository.
func NewEntryRepoPG(pool *pgxpool.Pool) EntryRepository {
	return &entryRepoPG{pool: pool}
}

const entryCols = `id, appointment_id, position, estimated_wait_minutes, status,
	start_time, end_time, created_at, updated_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.AppointmentID, &e.Position, &e.EstimatedWaitMinutes,
		&e.Status, &e.StartTime, &e.EndTime, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &e, err
}

func (r *entryRepoPG) GetActive(ctx context.Context, appointmentID uuid.UUID) (*Entry, error) {
	return scanEntry(r.pool.QueryRow(ctx, `
		SELECT `+entryCols+` FROM queue_entries
		WHERE appointment_id = $1 AND status IN ('waiting', 'in-progress')`,
		appointmentID))
}

func (r *entryRepoPG) Create(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO queue_entries (id, appointment_id, position, estimated_wait_minutes, status, start_time)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.AppointmentID, e.Position, e.EstimatedWaitMinutes, e.Status, e.StartTime)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uniq_active_queue_entry" {
		return ErrAlreadyCheckedIn
	}
	return err
}

func (r *entryRepoPG) Update(ctx context.Context, e *Entry) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE queue_entries
		SET position=$2, estimated_wait_minutes=$3, status=$4, start_time=$5, end_time=$6, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.Position, e.EstimatedWaitMinutes, e.Status, e.StartTime, e.EndTime)
	return err
}
