package directory

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/patientpanel/patientpanel/internal/platform/auth"
)

// Handler provides HTTP endpoints for the doctor directory.
type Handler struct {
	svc *Service
}

// NewHandler creates a new directory handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the directory endpoints on the authenticated group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/doctors", h.List)
	g.GET("/doctors/search", h.Search)
	g.GET("/doctors/:id/availability", h.Availability)
	g.PUT("/doctors/availability", h.SetAvailability, auth.RequireRole(auth.RoleDoctor))
}

func (h *Handler) List(c echo.Context) error {
	doctors, err := h.svc.Search(c.Request().Context(), SearchFilter{})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "doctor lookup failed")
	}
	return c.JSON(http.StatusOK, doctors)
}

func (h *Handler) Search(c echo.Context) error {
	f := SearchFilter{
		Name:          c.QueryParam("name"),
		Specialty:     c.QueryParam("specialty"),
		AvailableDate: c.QueryParam("availableDate"),
	}
	doctors, err := h.svc.Search(c.Request().Context(), f)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "doctor search failed")
	}
	return c.JSON(http.StatusOK, doctors)
}

func (h *Handler) Availability(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	days, err := h.svc.Availability(c.Request().Context(), doctorID, c.QueryParam("date"))
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrDoctorNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "availability lookup failed")
	}
	return c.JSON(http.StatusOK, days)
}

func (h *Handler) SetAvailability(c echo.Context) error {
	doctorID, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	var in AvailabilityInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	days, err := h.svc.SetAvailability(c.Request().Context(), doctorID, in)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "availability update failed")
	}
	return c.JSON(http.StatusOK, days)
}
