package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type recordRepoPG struct{ pool *pgxpool.Pool }

// NewRecordRepoPG creates a new PostgreSQL-backed health record repository.
func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository {
	return &recordRepoPG{pool: pool}
}

const recordCols = `id, patient_id, doctor_id, record_type, value, notes, status, recorded_at`

func scanRecords(rows pgx.Rows) ([]*HealthRecord, error) {
	defer rows.Close()
	var recs []*HealthRecord
	for rows.Next() {
		var rec HealthRecord
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.RecordType,
			&rec.Value, &rec.Notes, &rec.Status, &rec.RecordedAt); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

func (r *recordRepoPG) Create(ctx context.Context, rec *HealthRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO health_records (id, patient_id, doctor_id, record_type, value, notes, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING recorded_at`,
		rec.ID, rec.PatientID, rec.DoctorID, rec.RecordType, rec.Value, rec.Notes, rec.Status).
		Scan(&rec.RecordedAt)
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*HealthRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordCols+` FROM health_records
		WHERE patient_id = $1
		ORDER BY recorded_at DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func (r *recordRepoPG) ListSeries(ctx context.Context, patientID uuid.UUID, recordType string, limit int) ([]*HealthRecord, error) {
	// The inner query takes the newest N, the outer one flips them back
	// into chronological order for charting.
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordCols+` FROM (
			SELECT `+recordCols+` FROM health_records
			WHERE patient_id = $1 AND record_type = $2
			ORDER BY recorded_at DESC
			LIMIT $3
		) latest
		ORDER BY recorded_at ASC`,
		patientID, recordType, limit)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

// NewPrescriptionRepoPG creates a new PostgreSQL-backed prescription repository.
func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

const prescriptionCols = `p.id, p.patient_id, p.doctor_id, u.name, p.appointment_id,
	p.medications, p.general_instructions, p.status, p.issued_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.DoctorName, &p.AppointmentID,
		&p.Medications, &p.GeneralInstructions, &p.Status, &p.IssuedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *prescriptionRepoPG) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return scanPrescription(r.pool.QueryRow(ctx, `
		SELECT `+prescriptionCols+` FROM prescriptions p
		JOIN users u ON u.id = p.doctor_id
		WHERE p.id = $1`,
		id))
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Prescription, int, error) {
	query := `
		SELECT ` + prescriptionCols + ` FROM prescriptions p
		JOIN users u ON u.id = p.doctor_id
		WHERE p.patient_id = $1`
	countQuery := `SELECT COUNT(*) FROM prescriptions p WHERE p.patient_id = $1`
	args := []any{patientID}

	if status != "" {
		query += ` AND p.status = $2`
		countQuery += ` AND p.status = $2`
		args = append(args, status)
	}
	query += fmt.Sprintf(" ORDER BY p.issued_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO prescriptions (id, patient_id, doctor_id, appointment_id, medications, general_instructions, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING issued_at`,
		p.ID, p.PatientID, p.DoctorID, p.AppointmentID, p.Medications, p.GeneralInstructions, p.Status).
		Scan(&p.IssuedAt)
}
