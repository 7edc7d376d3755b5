package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/patientpanel/patientpanel/internal/platform/auth"
	"github.com/patientpanel/patientpanel/pkg/pagination"
)

type mockRecordRepo struct {
	records []*HealthRecord
	clock   time.Time
}

func (m *mockRecordRepo) Create(_ context.Context, rec *HealthRecord) error {
	rec.ID = uuid.New()
	m.clock = m.clock.Add(time.Hour)
	rec.RecordedAt = m.clock
	stored := *rec
	m.records = append(m.records, &stored)
	return nil
}

func (m *mockRecordRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*HealthRecord, error) {
	var out []*HealthRecord
	for _, rec := range m.records {
		if rec.PatientID == patientID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return out, nil
}

func (m *mockRecordRepo) ListSeries(_ context.Context, patientID uuid.UUID, recordType string, limit int) ([]*HealthRecord, error) {
	var out []*HealthRecord
	for _, rec := range m.records {
		if rec.PatientID == patientID && rec.RecordType == recordType {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type mockPrescriptionRepo struct {
	prescriptions []*Prescription
	clock         time.Time
}

func (m *mockPrescriptionRepo) Create(_ context.Context, p *Prescription) error {
	p.ID = uuid.New()
	m.clock = m.clock.Add(time.Hour)
	p.IssuedAt = m.clock
	stored := *p
	m.prescriptions = append(m.prescriptions, &stored)
	return nil
}

func (m *mockPrescriptionRepo) Get(_ context.Context, id uuid.UUID) (*Prescription, error) {
	for _, p := range m.prescriptions {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockPrescriptionRepo) ListByPatient(_ context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Prescription, int, error) {
	var all []*Prescription
	for _, p := range m.prescriptions {
		if p.PatientID != patientID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].IssuedAt.After(all[j].IssuedAt) })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func newTestService() (*Service, *mockRecordRepo, *mockPrescriptionRepo) {
	records := &mockRecordRepo{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	prescriptions := &mockPrescriptionRepo{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(records, prescriptions, auth.NewRoleAuthorizer(), zerolog.Nop())
	return svc, records, prescriptions
}

func doctorActor() auth.Actor {
	return auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}
}

func TestCreateRecordDoctorOnly(t *testing.T) {
	svc, repo, _ := newTestService()
	patient := uuid.New()

	in := CreateRecordInput{
		PatientID:  patient.String(),
		RecordType: TypeDiagnosis,
		Value:      json.RawMessage(`{"condition":"migraine"}`),
		Notes:      "recurring",
	}

	_, err := svc.Create(context.Background(), auth.Actor{ID: uuid.New(), Role: auth.RolePatient}, in)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("patient create: err = %v, want ErrForbidden", err)
	}
	if len(repo.records) != 0 {
		t.Fatal("rejected create must not persist")
	}

	doctor := doctorActor()
	rec, err := svc.Create(context.Background(), doctor, in)
	if err != nil {
		t.Fatalf("doctor create: %v", err)
	}
	if rec.DoctorID != doctor.ID {
		t.Errorf("record attributed to %s, want acting doctor %s", rec.DoctorID, doctor.ID)
	}
	if rec.Status != StatusActive {
		t.Errorf("status = %q, want default active", rec.Status)
	}
}

func TestCreateRecordValidation(t *testing.T) {
	svc, _, _ := newTestService()
	doctor := doctorActor()
	patient := uuid.New().String()

	cases := []struct {
		name string
		in   CreateRecordInput
	}{
		{"bad patient id", CreateRecordInput{PatientID: "nope", RecordType: TypeWeight, Value: json.RawMessage(`70`)}},
		{"unknown type", CreateRecordInput{PatientID: patient, RecordType: "mood", Value: json.RawMessage(`"fine"`)}},
		{"missing value", CreateRecordInput{PatientID: patient, RecordType: TypeWeight}},
		{"invalid json value", CreateRecordInput{PatientID: patient, RecordType: TypeWeight, Value: json.RawMessage(`{`)}},
		{"unknown status", CreateRecordInput{PatientID: patient, RecordType: TypeWeight, Value: json.RawMessage(`70`), Status: "archived"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), doctor, tc.in); !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestListNewestFirst(t *testing.T) {
	svc, _, _ := newTestService()
	doctor := doctorActor()
	patient := uuid.New()

	for _, condition := range []string{"first", "second", "third"} {
		_, err := svc.Create(context.Background(), doctor, CreateRecordInput{
			PatientID:  patient.String(),
			RecordType: TypeDiagnosis,
			Value:      json.RawMessage(fmt.Sprintf("%q", condition)),
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	recs, err := svc.List(context.Background(), patient)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if string(recs[0].Value) != `"third"` {
		t.Errorf("newest first: got %s", recs[0].Value)
	}
}

func TestStatsSeriesChronological(t *testing.T) {
	svc, _, _ := newTestService()
	doctor := doctorActor()
	patient := uuid.New()

	for _, kg := range []int{82, 81, 80} {
		_, err := svc.Create(context.Background(), doctor, CreateRecordInput{
			PatientID:  patient.String(),
			RecordType: TypeWeight,
			Value:      json.RawMessage(fmt.Sprintf("%d", kg)),
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	// A diagnosis must not leak into the weight series.
	if _, err := svc.Create(context.Background(), doctor, CreateRecordInput{
		PatientID:  patient.String(),
		RecordType: TypeDiagnosis,
		Value:      json.RawMessage(`"flu"`),
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	series, err := svc.Stats(context.Background(), patient, TypeWeight)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("got %d points, want 3", len(series))
	}
	if string(series[0].Value) != "82" || string(series[2].Value) != "80" {
		t.Errorf("series out of order: %s .. %s", series[0].Value, series[2].Value)
	}
}

func TestStatsRejectsNonMeasurementType(t *testing.T) {
	svc, _, _ := newTestService()

	for _, recordType := range []string{TypeDiagnosis, TypeTreatment, "bogus", ""} {
		if _, err := svc.Stats(context.Background(), uuid.New(), recordType); !errors.Is(err, ErrValidation) {
			t.Errorf("Stats(%q): err = %v, want ErrValidation", recordType, err)
		}
	}
}

func TestPrescriptionsPaginated(t *testing.T) {
	svc, _, repo := newTestService()
	patient := uuid.New()
	doctor := uuid.New()

	for i := 0; i < 5; i++ {
		status := PrescriptionActive
		if i%2 == 1 {
			status = PrescriptionCompleted
		}
		err := repo.Create(context.Background(), &Prescription{
			PatientID:   patient,
			DoctorID:    doctor,
			DoctorName:  "Reyes",
			Medications: []Medication{{Name: "Amoxicillin", Dosage: "500mg", Frequency: "3x daily", Duration: "7 days"}},
			Status:      status,
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := svc.Prescriptions(context.Background(), patient, "", pagination.Params{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("Prescriptions: %v", err)
	}
	if page.Total != 5 {
		t.Errorf("total = %d, want 5", page.Total)
	}
	if !page.HasMore {
		t.Error("expected has_more on first page")
	}
	items, ok := page.Data.([]*Prescription)
	if !ok {
		t.Fatalf("data has type %T", page.Data)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	active, err := svc.Prescriptions(context.Background(), patient, PrescriptionActive, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("Prescriptions(active): %v", err)
	}
	if active.Total != 3 {
		t.Errorf("active total = %d, want 3", active.Total)
	}

	if _, err := svc.Prescriptions(context.Background(), patient, "expired", pagination.Params{Limit: 10}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad status filter: err = %v, want ErrValidation", err)
	}
}

func TestPrescriptionPDF(t *testing.T) {
	svc, _, repo := newTestService()
	patient := uuid.New()
	doctor := uuid.New()

	p := &Prescription{
		PatientID:  patient,
		DoctorID:   doctor,
		DoctorName: "Reyes",
		Medications: []Medication{
			{Name: "Ibuprofen", Dosage: "400mg", Frequency: "as needed", Duration: "5 days", Instructions: "take with food"},
		},
		GeneralInstructions: "Rest and hydrate.",
		Status:              PrescriptionActive,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	pdf, err := svc.PrescriptionPDF(context.Background(), patient, p.ID)
	if err != nil {
		t.Fatalf("PrescriptionPDF: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("output does not look like a PDF: %q", pdf[:min(len(pdf), 8)])
	}

	if _, err := svc.PrescriptionPDF(context.Background(), uuid.New(), p.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger download: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.PrescriptionPDF(context.Background(), doctor, p.ID); err != nil {
		t.Errorf("prescribing doctor download: %v", err)
	}
	if _, err := svc.PrescriptionPDF(context.Background(), patient, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown prescription: err = %v, want ErrNotFound", err)
	}
}
