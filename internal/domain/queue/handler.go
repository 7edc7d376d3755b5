package queue

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/patientpanel/patientpanel/internal/platform/auth"
)

// Handler provides HTTP endpoints for the live queue.
type Handler struct {
	svc *Service
}

// NewHandler creates a new queue handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the queue endpoints on the authenticated group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/queue/:appointmentId", h.Position)
	g.POST("/queue/:appointmentId/check-in", h.CheckIn)
	g.PATCH("/queue/:appointmentId", h.Update)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "no active queue entry")
	case errors.Is(err, ErrAlreadyCheckedIn):
		return echo.NewHTTPError(http.StatusConflict, "appointment already checked in")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "queue operation failed")
}

func appointmentID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	return id, nil
}

func (h *Handler) Position(c echo.Context) error {
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	requesterID, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	view, err := h.svc.Position(c.Request().Context(), id, requesterID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) CheckIn(c echo.Context) error {
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	var in CheckInInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.svc.CheckIn(c.Request().Context(), id, auth.ActorFromContext(c.Request().Context()), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.svc.Update(c.Request().Context(), id, auth.ActorFromContext(c.Request().Context()), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, entry)
}
