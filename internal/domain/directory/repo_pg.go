package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type doctorRepoPG struct{ pool *pgxpool.Pool }

// NewDoctorRepoPG creates a new PostgreSQL-backed directory repository.
func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

const doctorCols = `u.id, u.name, u.email, p.specialty, p.qualifications,
	p.experience_years, p.consultation_fee, p.rating, p.total_ratings`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Specialty, &d.Qualifications,
		&d.ExperienceYears, &d.ConsultationFee, &d.Rating, &d.TotalRatings)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDoctorNotFound
	}
	return &d, err
}

func (r *doctorRepoPG) Search(ctx context.Context, f SearchFilter) ([]*Doctor, error) {
	sql := `SELECT ` + doctorCols + `
		FROM users u
		JOIN doctor_profiles p ON p.user_id = u.id
		WHERE u.role = 'doctor'`
	var args []interface{}

	if f.Name != "" {
		args = append(args, "%"+f.Name+"%")
		sql += fmt.Sprintf(" AND u.name ILIKE $%d", len(args))
	}
	if f.Specialty != "" {
		args = append(args, "%"+f.Specialty+"%")
		sql += fmt.Sprintf(" AND p.specialty ILIKE $%d", len(args))
	}
	if f.AvailableDate != "" {
		args = append(args, f.AvailableDate)
		sql += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM availability_days d
			JOIN availability_slots s ON s.day_id = d.id
			WHERE d.doctor_id = u.id AND d.day = $%d::date AND NOT s.is_booked)`, len(args))
	}
	sql += " ORDER BY u.name"

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *doctorRepoPG) Profile(ctx context.Context, doctorID uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `
		SELECT `+doctorCols+`
		FROM users u
		JOIN doctor_profiles p ON p.user_id = u.id
		WHERE u.role = 'doctor' AND u.id = $1`, doctorID))
}

func (r *doctorRepoPG) Availability(ctx context.Context, doctorID uuid.UUID) ([]*AvailabilityDay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.doctor_id, to_char(d.day, 'YYYY-MM-DD'), s.slot_time, s.is_booked
		FROM availability_days d
		JOIN availability_slots s ON s.day_id = d.id
		WHERE d.doctor_id = $1
		ORDER BY d.day, s.slot_time`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []*AvailabilityDay
	byID := make(map[uuid.UUID]*AvailabilityDay)
	for rows.Next() {
		var (
			dayID    uuid.UUID
			docID    uuid.UUID
			day      string
			slotTime string
			isBooked bool
		)
		if err := rows.Scan(&dayID, &docID, &day, &slotTime, &isBooked); err != nil {
			return nil, err
		}
		d, ok := byID[dayID]
		if !ok {
			d = &AvailabilityDay{ID: dayID, DoctorID: docID, Day: day}
			byID[dayID] = d
			days = append(days, d)
		}
		d.Slots = append(d.Slots, Slot{Time: slotTime, IsBooked: isBooked})
	}
	return days, rows.Err()
}

func (r *doctorRepoPG) ReplaceAvailability(ctx context.Context, doctorID uuid.UUID, days []*AvailabilityDay) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM availability_days WHERE doctor_id = $1`, doctorID); err != nil {
		return err
	}

	for _, d := range days {
		dayID := uuid.New()
		if _, err := tx.Exec(ctx, `
			INSERT INTO availability_days (id, doctor_id, day)
			VALUES ($1,$2,$3::date)`, dayID, doctorID, d.Day); err != nil {
			return err
		}
		for _, s := range d.Slots {
			if _, err := tx.Exec(ctx, `
				INSERT INTO availability_slots (id, day_id, slot_time, is_booked)
				VALUES ($1,$2,$3,$4)`, uuid.New(), dayID, s.Time, s.IsBooked); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}
