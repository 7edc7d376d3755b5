package records

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/patientpanel/patientpanel/internal/platform/auth"
)

func roleContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID uuid.UUID, role string) echo.Context {
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID)
	ctx = context.WithValue(ctx, auth.UserRoleKey, role)
	return e.NewContext(req.WithContext(ctx), rec)
}

func TestHandler_Create(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	doctorID := uuid.New()

	body := fmt.Sprintf(`{"patientId":%q,"recordType":"blood_pressure","value":{"systolic":120,"diastolic":80}}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/health-records", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := roleContext(e, req, rec, doctorID, auth.RoleDoctor)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var got HealthRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if got.DoctorID != doctorID {
		t.Errorf("doctor id = %s, want %s", got.DoctorID, doctorID)
	}
}

func TestHandler_Create_PatientIs403(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	body := fmt.Sprintf(`{"patientId":%q,"recordType":"weight","value":70}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/health-records", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := roleContext(e, req, rec, uuid.New(), auth.RolePatient)

	err := h.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestHandler_Stats_BadTypeIs400(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/health-records/stats?type=diagnosis", nil)
	rec := httptest.NewRecorder()
	c := roleContext(e, req, rec, uuid.New(), auth.RolePatient)

	err := h.Stats(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_Prescriptions(t *testing.T) {
	svc, _, repo := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	patient := uuid.New()

	err := repo.Create(context.Background(), &Prescription{
		PatientID:   patient,
		DoctorID:    uuid.New(),
		DoctorName:  "Reyes",
		Medications: []Medication{{Name: "Cetirizine", Dosage: "10mg", Frequency: "daily", Duration: "14 days"}},
		Status:      PrescriptionActive,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/prescriptions?limit=10", nil)
	rec := httptest.NewRecorder()
	c := roleContext(e, req, rec, patient, auth.RolePatient)

	if err := h.Prescriptions(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Cetirizine") {
		t.Errorf("medication missing from body: %s", rec.Body.String())
	}
}

func TestHandler_PrescriptionPDF_Headers(t *testing.T) {
	svc, _, repo := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	patient := uuid.New()

	p := &Prescription{
		PatientID:   patient,
		DoctorID:    uuid.New(),
		DoctorName:  "Reyes",
		Medications: []Medication{{Name: "Ibuprofen", Dosage: "400mg", Frequency: "as needed", Duration: "5 days"}},
		Status:      PrescriptionActive,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/prescriptions/"+p.ID.String()+"/pdf", nil)
	rec := httptest.NewRecorder()
	c := roleContext(e, req, rec, patient, auth.RolePatient)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.PrescriptionPDF(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/pdf" {
		t.Errorf("content type = %q, want application/pdf", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, ".pdf") {
		t.Errorf("content disposition = %q", cd)
	}
}
