// Package v1 provides the versioned HTTP handlers for the CodeBuddy API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codebuddy/server/internal/auth"
	"github.com/codebuddy/server/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// RegisterRoutes registers the v1 routes with the echo server. protected is
// the middleware that resolves the caller identity.
func (h *Handler) RegisterRoutes(e *echo.Echo, protected echo.MiddlewareFunc) {
	e.POST("/v1/auth/register", h.Register)
	e.POST("/v1/auth/login", h.Login)

	g := e.Group("/v1", protected)
	g.POST("/interviews", h.StartInterview)
	g.GET("/interviews", h.InterviewHistory)
	g.GET("/interviews/:session_id", h.GetInterview)
	g.POST("/interviews/:session_id/respond", h.Respond)
	g.POST("/interviews/:session_id/end", h.EndInterview)
	g.DELETE("/interviews/:session_id", h.CancelInterview)

	g.GET("/questions/daily", h.DailyQuestion)
	g.GET("/questions", h.ListQuestions)
	g.GET("/questions/:question_id", h.GetQuestion)
	g.GET("/topics", h.ListTopics)
	g.GET("/badges", h.ListBadges)
	g.GET("/me", h.Profile)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

func (h *Handler) userID(c echo.Context) string {
	return auth.UserID(c)
}
