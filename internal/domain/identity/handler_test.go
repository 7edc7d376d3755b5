package identity

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	repo := newMockUserRepo()
	return NewHandler(NewService(repo, "test-secret", time.Hour))
}

func TestHandler_Register(t *testing.T) {
	h := newHandler(t)
	e := echo.New()

	body := `{"email":"eve@example.com","password":"correcthorse","name":"Eve"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"token"`) {
		t.Error("expected token in response")
	}
	if strings.Contains(rec.Body.String(), "correcthorse") {
		t.Error("response leaked the password")
	}
}

func TestHandler_Register_BadInput(t *testing.T) {
	h := newHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Register(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_Login_WrongPassword(t *testing.T) {
	h := newHandler(t)
	e := echo.New()

	reg := `{"email":"frank@example.com","password":"correcthorse","name":"Frank"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(reg))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if err := h.Register(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	login := `{"email":"frank@example.com","password":"wrong"}`
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(login))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.Login(e.NewContext(req, httptest.NewRecorder()))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
