package symptoms

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the symptom checker endpoint.
type Handler struct {
	checker *Checker
}

// NewHandler creates a new symptoms handler.
func NewHandler(checker *Checker) *Handler {
	return &Handler{checker: checker}
}

// RegisterRoutes wires the checker onto the authenticated group.
func (h *Handler) RegisterRoutes(authed *echo.Group) {
	authed.POST("/symptom-checker", h.Check)
}

func (h *Handler) Check(c echo.Context) error {
	var in CheckInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	conditions, err := h.checker.Check(in)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, conditions)
}
