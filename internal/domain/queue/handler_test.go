package queue

import (
	"context"
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

func TestHandler_Update_PatientGets403(t *testing.T) {
	svc, _, owners, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	apptID := uuid.New()
	owners.owners[apptID] = uuid.New()
	if _, err := svc.CheckIn(context.Background(), apptID, staffActor(), CheckInInput{Position: 1}); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/queue/"+apptID.String(),
		strings.NewReader(`{"position":1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := roleContext(e, req, rec, uuid.New(), auth.RolePatient)
	c.SetParamNames("appointmentId")
	c.SetParamValues(apptID.String())

	err := h.Update(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestHandler_Position(t *testing.T) {
	svc, _, owners, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	apptID := uuid.New()
	patientID := uuid.New()
	owners.owners[apptID] = patientID
	if _, err := svc.CheckIn(context.Background(), apptID, staffActor(), CheckInInput{Position: 2, EstimatedWaitTime: 10}); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/queue/"+apptID.String(), nil)
	rec := httptest.NewRecorder()
	c := roleContext(e, req, rec, patientID, auth.RolePatient)
	c.SetParamNames("appointmentId")
	c.SetParamValues(apptID.String())

	if err := h.Position(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{`"position":2`, `"estimatedWaitTime":10`, `"status":"waiting"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in body %s", want, body)
		}
	}
}

func TestHandler_Position_UnknownEntryIs404(t *testing.T) {
	svc, _, owners, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	apptID := uuid.New()
	patientID := uuid.New()
	owners.owners[apptID] = patientID

	req := httptest.NewRequest(http.MethodGet, "/api/queue/"+apptID.String(), nil)
	rec := httptest.NewRecorder()
	c := roleContext(e, req, rec, patientID, auth.RolePatient)
	c.SetParamNames("appointmentId")
	c.SetParamValues(apptID.String())

	err := h.Position(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
