package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type appointmentRepoPG struct{ pool *pgxpool.Pool }

// NewAppointmentRepoPG creates a new PostgreSQL-backed appointment repository.
func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const apptCols = `a.id, a.patient_id, a.doctor_id, a.scheduled_at, a.symptoms, a.notes,
	a.status, a.consultation_type, a.payment_status, a.payment_method,
	a.consultation_fee, a.queue_number, a.created_at, a.updated_at,
	u.name, COALESCE(p.specialty, ''), COALESCE(p.consultation_fee, 0)`

const apptJoin = ` FROM appointments a
	JOIN users u ON u.id = a.doctor_id
	LEFT JOIN doctor_profiles p ON p.user_id = a.doctor_id`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a       Appointment
		doc     DoctorSummary
	)
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.ScheduledAt, &a.Symptoms, &a.Notes,
		&a.Status, &a.ConsultationType, &a.PaymentStatus, &a.PaymentMethod,
		&a.ConsultationFee, &a.QueueNumber, &a.CreatedAt, &a.UpdatedAt,
		&doc.Name, &doc.Specialty, &doc.ConsultationFee)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	doc.ID = a.DoctorID
	a.Doctor = &doc
	return &a, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, scheduled_at, symptoms, notes,
			status, consultation_type, payment_status, payment_method,
			consultation_fee, queue_number)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.PatientID, a.DoctorID, a.ScheduledAt, a.Symptoms, a.Notes,
		a.Status, a.ConsultationType, a.PaymentStatus, a.PaymentMethod,
		a.ConsultationFee, a.QueueNumber)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "uniq_appointment_slot":
			return ErrSlotConflict
		case "uniq_queue_number":
			return errQueueNumberTaken
		}
	}
	return err
}

func (r *appointmentRepoPG) GetOwned(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptCols+apptJoin+` WHERE a.id = $1 AND a.patient_id = $2`, id, patientID))
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE appointments SET status=$2, symptoms=$3, notes=$4, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Status, a.Symptoms, a.Notes)
	return err
}

func (r *appointmentRepoPG) list(ctx context.Context, sql string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return r.list(ctx,
		`SELECT `+apptCols+apptJoin+` WHERE a.patient_id = $1 ORDER BY a.scheduled_at DESC`,
		patientID)
}

func (r *appointmentRepoPG) ListUpcoming(ctx context.Context, patientID uuid.UUID, limit int) ([]*Appointment, error) {
	return r.list(ctx, `
		SELECT `+apptCols+apptJoin+`
		WHERE a.patient_id = $1 AND a.status = 'scheduled' AND a.scheduled_at > NOW()
		ORDER BY a.scheduled_at ASC LIMIT $2`,
		patientID, limit)
}

func (r *appointmentRepoPG) UsedQueueNumbers(ctx context.Context, doctorID uuid.UUID, day string) (map[int]bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT queue_number FROM appointments
		WHERE doctor_id = $1 AND scheduled_on = $2::date AND status <> 'cancelled'`,
		doctorID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	used := make(map[int]bool)
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		used[n] = true
	}
	return used, rows.Err()
}

func (r *appointmentRepoPG) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET payment_status='paid', payment_method='online', updated_at=NOW()
		WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *appointmentRepoPG) SetPayment(ctx context.Context, id uuid.UUID, status, method string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE appointments SET payment_status=$2, payment_method=$3, updated_at=NOW()
		WHERE id = $1`, id, status, method)
	return err
}

func (r *appointmentRepoPG) Owner(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var owner uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT patient_id FROM appointments WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	return owner, err
}
