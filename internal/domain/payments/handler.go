package payments

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/patientpanel/patientpanel/internal/platform/auth"
)

// Handler exposes the payment endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a new payments handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the payment endpoints. The webhook stays on the
// public group: the processor authenticates with its signature header,
// not a bearer token.
func (h *Handler) RegisterRoutes(public, authed *echo.Group) {
	authed.POST("/payments/create-session", h.CreateSession)
	public.POST("/payments/webhook", h.Webhook)
}

type createSessionRequest struct {
	AppointmentData struct {
		ID string `json:"id"`
	} `json:"appointmentData"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

func (h *Handler) CreateSession(c echo.Context) error {
	patientID, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	appointmentID, err := uuid.Parse(req.AppointmentData.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	sessionID, err := h.service.CreateSession(c.Request().Context(), appointmentID, patientID, req.SuccessURL, req.CancelURL)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"sessionId": sessionID})
}

func (h *Handler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable payload")
	}

	sigHeader := c.Request().Header.Get("Stripe-Signature")
	if err := h.service.HandleWebhook(c.Request().Context(), payload, sigHeader); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidSignature):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid signature")
	case errors.Is(err, ErrGatewayUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "payment gateway unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
