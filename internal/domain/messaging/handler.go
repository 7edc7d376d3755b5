package messaging

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/patientpanel/patientpanel/internal/platform/auth"
)

// Handler exposes the messaging endpoints. All routes require a bearer
// token; the requesting user is always one side of the conversation.
type Handler struct {
	service *Service
}

// NewHandler creates a new messaging handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the messaging endpoints onto the authenticated group.
func (h *Handler) RegisterRoutes(authed *echo.Group) {
	authed.GET("/messages/unread/count", h.UnreadCount)
	authed.GET("/messages/:userId", h.History)
	authed.POST("/messages", h.Send)
	authed.PATCH("/messages/read/:userId", h.MarkRead)
}

func (h *Handler) History(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	otherID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	msgs, err := h.service.History(c.Request().Context(), userID, otherID)
	if err != nil {
		return httpError(err)
	}
	if msgs == nil {
		msgs = []*Message{}
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *Handler) Send(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	var in SendInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	m, err := h.service.Send(c.Request().Context(), userID, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) MarkRead(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	senderID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := h.service.MarkRead(c.Request().Context(), userID, senderID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) UnreadCount(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	count, err := h.service.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
