package records

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/patientpanel/patientpanel/internal/platform/auth"
	"github.com/patientpanel/patientpanel/pkg/pagination"
)

// Handler exposes the health record and prescription endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a new records handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the chart endpoints onto the authenticated group.
func (h *Handler) RegisterRoutes(authed *echo.Group) {
	authed.GET("/health-records", h.List)
	authed.GET("/health-records/stats", h.Stats)
	authed.POST("/health-records", h.Create, auth.RequireRole(auth.RoleDoctor))
	authed.GET("/prescriptions", h.Prescriptions)
	authed.GET("/prescriptions/:id/pdf", h.PrescriptionPDF)
}

func (h *Handler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	recs, err := h.service.List(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	if recs == nil {
		recs = []*HealthRecord{}
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) Stats(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	recs, err := h.service.Stats(c.Request().Context(), userID, c.QueryParam("type"))
	if err != nil {
		return httpError(err)
	}
	if recs == nil {
		recs = []*HealthRecord{}
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) Create(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	var in CreateRecordInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	rec, err := h.service.Create(c.Request().Context(), actor, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Prescriptions(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	page, err := h.service.Prescriptions(c.Request().Context(), userID,
		c.QueryParam("status"), pagination.FromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) PrescriptionPDF(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	prescriptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}

	pdf, err := h.service.PrescriptionPDF(c.Request().Context(), userID, prescriptionID)
	if err != nil {
		return httpError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="prescription-%s.pdf"`, prescriptionID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
